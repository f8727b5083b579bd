package mesh

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned for malformed indices and ids that do not
	// match the expected append position.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidMeshState is returned when an operation touches a destroyed
	// element or would leave the mesh in an illegal state.
	ErrInvalidMeshState = errors.New("invalid mesh state")
)
