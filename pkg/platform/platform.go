/*
Package platform provides darwin-first platform detection for nx. nx
targets nix-darwin + home-manager configuration repos (spec §1): other
hosts are not a first-class target, but GetNixSystem still reports a
sensible tag so development/testing off-darwin is possible.
*/
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

/*
IsDarwin reports whether nx is running on its first-class target.
*/
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

/*
GetNixSystem returns the Nix system identifier for the current platform,
used by availability checks (spec §4.5) to match against meta.platforms.
*/
func GetNixSystem() string {
	if runtime.GOARCH == "arm64" {
		return "aarch64-darwin"
	}
	return "x86_64-darwin"
}

/*
GetHomeDir returns the current user's home directory.
*/
func GetHomeDir() (string, error) {
	return os.UserHomeDir()
}

/*
GetCacheDir returns nx's cache directory, ~/.cache/nx, the root under
which the package-search Cache lives. nix's own fetcher cache is under
~/.cache/nix, not here.
*/
func GetCacheDir() (string, error) {
	homeDir, err := GetHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".cache", "nx"), nil
}

/*
GetConfigDir returns nx's own preferences directory, ~/.config/nx —
distinct from the managed nix-darwin repo, whose root is resolved by
RepoLocator.
*/
func GetConfigDir() (string, error) {
	homeDir, err := GetHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "nx"), nil
}

/*
GetDefaultRepoPath returns the RepoLocator's final fallback, ~/.nix-config.
*/
func GetDefaultRepoPath() (string, error) {
	homeDir, err := GetHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".nix-config"), nil
}

/*
ParseEnvBool parses the env-var "off" spellings used by NX_RS_AUTO_REFRESH
(spec §6): "0", and "false" or "no" in lower, Title or UPPER case, mean
disabled; unset means defaultVal; anything else means enabled.
*/
func ParseEnvBool(value string, defaultVal bool) bool {
	switch value {
	case "0", "false", "False", "FALSE", "no", "No", "NO":
		return false
	case "":
		return defaultVal
	default:
		return true
	}
}

/*
GetRealUser returns the UID and GID of the real user, even when running
under sudo (needed because `rebuild` execs darwin-rebuild via sudo).
*/
func GetRealUser() (uid, gid int, err error) {
	uid = os.Getuid()
	gid = os.Getgid()

	if sudoUID := os.Getenv("SUDO_UID"); sudoUID != "" {
		if parsedUID, parseErr := strconv.Atoi(sudoUID); parseErr == nil {
			uid = parsedUID
		}
	}
	if sudoGID := os.Getenv("SUDO_GID"); sudoGID != "" {
		if parsedGID, parseErr := strconv.Atoi(sudoGID); parseErr == nil {
			gid = parsedGID
		}
	}
	return uid, gid, nil
}

/*
IsRunningAsSudo checks if the current process is running under sudo.
*/
func IsRunningAsSudo() bool {
	return os.Getenv("SUDO_USER") != ""
}
