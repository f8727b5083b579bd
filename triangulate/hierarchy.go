package triangulate

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"go.uber.org/zap"
)

// DelaunayHierarchyLocator keeps a stack of ever sparser triangulations over
// the same bound. Every point is inserted into the base triangulation, and
// with probability 1/alpha into each next level as well. Vertices link to
// their copy one level down, so a query walks a few faces per level from the
// top down.
//
// Down links are validated on use. Vertices removed from the base or bound to
// holes simply stop being used as shortcuts, so holes and removal are
// supported on a best-effort basis.
type DelaunayHierarchyLocator struct {
	base      *Triangulation
	levels    []*Triangulation // levels[i] is level i+1
	alpha     int
	maxLevels int
	random    *rand.Rand
	logger    *zap.Logger
}

func NewDelaunayHierarchyLocator(base *Triangulation) *DelaunayHierarchyLocator {
	return &DelaunayHierarchyLocator{
		base:      base,
		alpha:     base.config.HierarchyAlpha,
		maxLevels: base.config.HierarchyMaxLevels,
		random:    rand.New(rand.NewSource(base.config.Seed)),
		logger:    base.logger,
	}
}

func (h *DelaunayHierarchyLocator) Type() LocatorType { return DelaunayHierarchy }

// Levels is the number of triangulations including the base.
func (h *DelaunayHierarchyLocator) Levels() int { return len(h.levels) + 1 }

// Level returns triangulation i, 0 being the base.
func (h *DelaunayHierarchyLocator) Level(i int) *Triangulation {
	if i == 0 {
		return h.base
	}
	return h.levels[i-1]
}

func (h *DelaunayHierarchyLocator) addLevel() error {
	config := h.base.config
	config.Locator = Base
	level, err := New(mesh.New(), h.base.bound, WithConfig(config), WithLogger(h.logger))
	if err != nil {
		return err
	}
	if err := level.Init(); err != nil {
		return err
	}
	below := h.Level(len(h.levels))
	if len(below.virtual) == len(level.virtual) {
		for i, v := range level.virtual {
			level.mesh.SetDown(v, below.virtual[i])
		}
	}
	h.levels = append(h.levels, level)
	return nil
}

func (h *DelaunayHierarchyLocator) randomLevel() int {
	level := 0
	for level+1 < h.maxLevels && h.random.Intn(h.alpha) == 0 {
		level++
	}
	return level
}

// PostInsertEvent copies the new base vertex up a random number of levels.
func (h *DelaunayHierarchyLocator) PostInsertEvent(v mesh.VertexIndex) {
	top := h.randomLevel()
	if top == 0 {
		return
	}
	for len(h.levels) < top {
		if err := h.addLevel(); err != nil {
			h.logger.Warn("could not add hierarchy level", zap.Error(err))
			return
		}
	}
	p := h.base.mesh.Point(v)
	faces, err := h.descend(p, 1)
	if err != nil {
		h.logger.Debug("could not locate point in hierarchy, not promoting it", zap.Error(err))
		return
	}
	below := v
	for i := 1; i <= top; i++ {
		level := h.Level(i)
		u, err := level.insertAt(p, faces[i])
		if err != nil {
			h.logger.Debug("could not insert point into hierarchy level",
				zap.Int("level", i), zap.Error(err))
			return
		}
		level.mesh.SetDown(u, below)
		below = u
	}
}

func (h *DelaunayHierarchyLocator) PostSplitTriangleEvent(mesh.FaceIndex, [3]mesh.FaceIndex, mesh.VertexIndex) {
}
func (h *DelaunayHierarchyLocator) PostSplitHalfEdgeEvent(mesh.FaceIndex, mesh.FaceIndex, mesh.FaceIndex, mesh.VertexIndex) {
}
func (h *DelaunayHierarchyLocator) PostFlipEdgeEvent(mesh.FaceIndex, mesh.FaceIndex) {}

// descend locates p on every level from the top down to stop. The result is
// indexed by level.
func (h *DelaunayHierarchyLocator) descend(p r2.Point, stop int) ([]mesh.FaceIndex, error) {
	faces := make([]mesh.FaceIndex, h.Levels())
	hint := mesh.NoVertex
	for i := len(h.levels); i >= stop; i-- {
		level := h.Level(i)
		start := mesh.NoFace
		if hint != mesh.NoVertex {
			start = level.InteriorFaceAround(hint)
		}
		if start == mesh.NoFace {
			start = level.AnyFace()
		}
		if start == mesh.NoFace {
			f, err := level.LocateBruteForce(p)
			if err != nil {
				return nil, err
			}
			faces[i] = f
		} else {
			f, err := level.StraightWalk2D(start, p)
			if err != nil {
				return nil, err
			}
			faces[i] = f
		}
		if i > stop {
			hint = h.down(level, faces[i], p, h.Level(i-1))
		}
	}
	return faces, nil
}

// down picks the corner of f closest to p whose down link is still valid and
// returns the linked vertex in below.
func (h *DelaunayHierarchyLocator) down(level *Triangulation, f mesh.FaceIndex, p r2.Point, below *Triangulation) mesh.VertexIndex {
	m, bm := level.mesh, below.mesh
	best := mesh.NoVertex
	bestDistance := math.Inf(1)
	for v := range m.VerticesOfFace(f) {
		d := m.Down(v)
		if d == mesh.NoVertex || int(d) >= bm.VertexCapacity() || bm.IsDestroyedVertex(d) {
			continue
		}
		if bm.Point(d) != m.Point(v) || bm.VertexEdge(d) == mesh.NoEdge {
			continue
		}
		if distance := m.Point(v).Sub(p).Norm(); distance < bestDistance {
			best, bestDistance = d, distance
		}
	}
	return best
}

func (h *DelaunayHierarchyLocator) LocatePoint(p r2.Point) (mesh.FaceIndex, error) {
	faces, err := h.descend(p, 0)
	if err == nil {
		return faces[0], nil
	}
	h.logger.Debug("hierarchy descent failed, walking the base triangulation", zap.Error(err))
	return NewBasePointLocator(h.base.TriConnectivity).LocatePoint(p)
}

func (h *DelaunayHierarchyLocator) Locate(p r2.Point) (mesh.FaceIndex, bool) { return locate(h, p) }
