// Package main provides the entry point for the nx CLI application.
package main

import "github.com/shawnkhoffman/nx/cmd"

func main() {
	cmd.Execute()
}
