package triangulate

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
)

// PointLocator answers which face contains a point. Locators receive every
// topology event of their triangulation before any external listener does,
// so they can keep auxiliary structures in sync.
type PointLocator interface {
	TriEventListener

	// LocatePoint returns the face containing p, or an error wrapping
	// ErrLocationFailure.
	LocatePoint(p r2.Point) (mesh.FaceIndex, error)

	// Locate is LocatePoint without the error.
	Locate(p r2.Point) (mesh.FaceIndex, bool)

	Type() LocatorType
}

// noopEvents ignores every event, for locators without auxiliary structures.
type noopEvents struct{}

func (noopEvents) PostSplitTriangleEvent(mesh.FaceIndex, [3]mesh.FaceIndex, mesh.VertexIndex) {}
func (noopEvents) PostSplitHalfEdgeEvent(mesh.FaceIndex, mesh.FaceIndex, mesh.FaceIndex, mesh.VertexIndex) {
}
func (noopEvents) PostFlipEdgeEvent(mesh.FaceIndex, mesh.FaceIndex) {}
func (noopEvents) PostInsertEvent(mesh.VertexIndex) {}

func locate(l PointLocator, p r2.Point) (mesh.FaceIndex, bool) {
	f, err := l.LocatePoint(p)
	return f, err == nil
}

// BasePointLocator walks from an arbitrary face. O(n) per query.
type BasePointLocator struct {
	noopEvents
	tc *TriConnectivity
}

func NewBasePointLocator(tc *TriConnectivity) *BasePointLocator {
	return &BasePointLocator{tc: tc}
}

func (l *BasePointLocator) LocatePoint(p r2.Point) (mesh.FaceIndex, error) {
	start := l.tc.AnyFace()
	if start == mesh.NoFace {
		return mesh.NoFace, errors.Wrap(ErrLocationFailure, "mesh has no faces")
	}
	return l.tc.StraightWalk2D(start, p)
}

func (l *BasePointLocator) Locate(p r2.Point) (mesh.FaceIndex, bool) { return locate(l, p) }
func (l *BasePointLocator) Type() LocatorType { return Base }

// JumpAndWalkLocator samples about n^(1/3) random vertices and walks from the
// one closest to the query point.
type JumpAndWalkLocator struct {
	noopEvents
	tc        *TriConnectivity
	base      *BasePointLocator
	threshold int
}

func NewJumpAndWalkLocator(tc *TriConnectivity, threshold int) *JumpAndWalkLocator {
	return &JumpAndWalkLocator{tc: tc, base: NewBasePointLocator(tc), threshold: threshold}
}

func (l *JumpAndWalkLocator) LocatePoint(p r2.Point) (mesh.FaceIndex, error) {
	m := l.tc.mesh
	n := m.NumberOfVertices()
	if n < l.threshold {
		return l.base.LocatePoint(p)
	}

	samples := int(math.Ceil(math.Cbrt(float64(n))))
	best := mesh.NoVertex
	bestDistance := math.Inf(1)
	for i := 0; i < samples; i++ {
		v := mesh.VertexIndex(l.tc.random.Intn(m.VertexCapacity()))
		if m.IsDestroyedVertex(v) || m.VertexEdge(v) == mesh.NoEdge {
			continue
		}
		if d := m.Point(v).Sub(p).Norm(); d < bestDistance {
			best, bestDistance = v, d
		}
	}
	if best == mesh.NoVertex {
		return l.base.LocatePoint(p)
	}
	start := l.tc.InteriorFaceAround(best)
	if start == mesh.NoFace {
		return l.base.LocatePoint(p)
	}
	return l.tc.StraightWalk2D(start, p)
}

func (l *JumpAndWalkLocator) Locate(p r2.Point) (mesh.FaceIndex, bool) { return locate(l, p) }
func (l *JumpAndWalkLocator) Type() LocatorType { return JumpAndWalk }

// CachedPointLocator remembers the last face located for each caller. A
// caller asking again first walks from its cached face, which is cheap when
// queries move coherently, and only falls back to the wrapped locator if
// that walk fails. The cache itself may be shared between goroutines.
type CachedPointLocator struct {
	PointLocator

	tc    *TriConnectivity
	mu    sync.Mutex
	cache map[interface{}]mesh.FaceIndex
}

func NewCachedPointLocator(l PointLocator, tc *TriConnectivity) *CachedPointLocator {
	return &CachedPointLocator{
		PointLocator: l,
		tc:           tc,
		cache:        make(map[interface{}]mesh.FaceIndex),
	}
}

// LocatePointFor locates p on behalf of caller, which must be comparable.
func (c *CachedPointLocator) LocatePointFor(caller interface{}, p r2.Point) (mesh.FaceIndex, error) {
	c.mu.Lock()
	cached, ok := c.cache[caller]
	c.mu.Unlock()

	m := c.tc.mesh
	if ok && int(cached) < m.FaceCapacity() && !m.IsDestroyedFace(cached) && !m.IsBoundary(cached) {
		if f, err := c.tc.StraightWalk2D(cached, p); err == nil {
			c.remember(caller, f)
			return f, nil
		}
	}
	f, err := c.PointLocator.LocatePoint(p)
	if err != nil {
		return f, err
	}
	c.remember(caller, f)
	return f, nil
}

func (c *CachedPointLocator) LocateFor(caller interface{}, p r2.Point) (mesh.FaceIndex, bool) {
	f, err := c.LocatePointFor(caller, p)
	return f, err == nil
}

// Forget drops the cached face of caller.
func (c *CachedPointLocator) Forget(caller interface{}) {
	c.mu.Lock()
	delete(c.cache, caller)
	c.mu.Unlock()
}

func (c *CachedPointLocator) remember(caller interface{}, f mesh.FaceIndex) {
	c.mu.Lock()
	c.cache[caller] = f
	c.mu.Unlock()
}
