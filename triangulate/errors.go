package triangulate

import (
	"fmt"

	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument  = mesh.ErrInvalidArgument
	ErrInvalidMeshState = mesh.ErrInvalidMeshState

	// ErrLocationFailure means no face contains the query point. Either the
	// point lies outside the triangulation, or the mesh is corrupt.
	ErrLocationFailure = errors.New("point location failed")

	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

// IllegalMeshError reports a merge or shrink that stopped because a candidate
// face matched the error condition.
type IllegalMeshError struct {
	Face   mesh.FaceIndex
	Reason string
}

func (e *IllegalMeshError) Error() string {
	return fmt.Sprintf("illegal mesh at face %d: %s", e.Face, e.Reason)
}

func (e *IllegalMeshError) Unwrap() error {
	return ErrInvalidMeshState
}
