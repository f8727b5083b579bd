package triangulate

import "github.com/pkg/errors"

// Threading errors up and down all the recursive flips and walks during
// insertion would add a ton of complexity to the code. Instead, broken
// invariants panic, and the public API recovers to convert to an error.

type TriangulateError error

// Panic with a TriangulateError.
func fatalf(format string, args ...interface{}) {
	panic(TriangulateError(errors.Errorf(format, args...)))
}

// Panic with a TriangulateError wrapping err.
func fatal(err error) {
	panic(TriangulateError(err))
}

func HandlePanicRecover(r interface{}) error {
	if r != nil {
		if triangulateError, ok := r.(TriangulateError); ok {
			return triangulateError
		}
		panic(r)
	}
	return nil
}
