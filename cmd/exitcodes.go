package cmd

import nxerrors "github.com/shawnkhoffman/nx/internal/errors"

// exitCodeFor maps a top-level command error to the process exit code,
// honoring the ArgError{2}/everything-else{1} split from spec §6.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var argErr *nxerrors.ArgError
	if asArgError(err, &argErr) {
		return 2
	}
	return 1
}

func asArgError(err error, target **nxerrors.ArgError) bool {
	for err != nil {
		if ae, ok := err.(*nxerrors.ArgError); ok {
			*target = ae
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
