package triangulate

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func randomPoints(seed int64, n int, size float64) []r2.Point {
	random := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, n)
	for i := range points {
		points[i] = r2.Point{X: random.Float64() * size, Y: random.Float64() * size}
	}
	return points
}

func configWith(locator LocatorType) Config {
	config := DefaultConfig()
	config.Locator = locator
	return config
}

func largeBound() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: -1000, Y: -1000}, r2.Point{X: 1000, Y: 1000})
}

// edgeSet collects every edge as an unordered pair of endpoints.
func edgeSet(m *mesh.Mesh) map[[2]r2.Point]bool {
	edges := make(map[[2]r2.Point]bool)
	for e := range m.Edges() {
		a, b := m.EdgePoint(m.Twin(e)), m.EdgePoint(e)
		if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
			a, b = b, a
		}
		edges[[2]r2.Point{a, b}] = true
	}
	return edges
}

func TestSingleTriangle(t *testing.T) {
	m := mesh.New()
	tr, err := New(m, largeBound(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, tr.InsertAll([]r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}))
	assert.Len(t, tr.VirtualVertices(), 3)

	require.NoError(t, tr.Finish())
	assert.True(t, tr.IsFinalized())
	assert.Empty(t, tr.VirtualVertices())
	assert.Equal(t, 1, m.NumberOfFaces())
	assert.Equal(t, 3, m.NumberOfVertices())
	assert.Equal(t, 6, m.NumberOfEdges())
	assert.Equal(t, 0, m.NumberOfHoles())
	assert.NoError(t, m.Validate())
}

func TestSplitBeforeFinish(t *testing.T) {
	m := mesh.New()
	splits := 0
	tr, err := New(m, largeBound(), WithListener(ListenerFuncs{
		SplitTriangle: func(mesh.FaceIndex, [3]mesh.FaceIndex, mesh.VertexIndex) { splits++ },
	}))
	require.NoError(t, err)
	require.NoError(t, tr.InsertAll([]r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}))

	splits = 0
	_, err = tr.Insert(r2.Point{X: 3, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, splits)

	require.NoError(t, tr.Finish())
	assert.Equal(t, 3, m.NumberOfFaces())
	assertValidTriangulation(t, m, 4)
}

func TestInsertionOrderIndependence(t *testing.T) {
	points := randomPoints(1, 100, 100)
	reversed := make([]r2.Point, len(points))
	for i, p := range points {
		reversed[len(points)-1-i] = p
	}

	triangulate := func(points []r2.Point) *mesh.Mesh {
		m := mesh.New()
		tr, err := NewFromPoints(m, points, WithConfig(configWith(DelaunayHierarchy)))
		require.NoError(t, err)
		require.NoError(t, tr.Compute())
		assertValidTriangulation(t, m, len(points))
		return m
	}

	assert.Equal(t, edgeSet(triangulate(points)), edgeSet(triangulate(reversed)))
}

func TestLocators(t *testing.T) {
	points := randomPoints(2, 300, 50)
	var reference map[[2]r2.Point]bool

	for _, locator := range []LocatorType{Base, JumpAndWalk, DelaunayHierarchy, DelaunayTree} {
		t.Run(locator.String(), func(t *testing.T) {
			m := mesh.New()
			tr, err := NewFromPoints(m, points, WithConfig(configWith(locator)), WithLogger(zaptest.NewLogger(t)))
			require.NoError(t, err)
			require.NoError(t, tr.Init())
			assert.Equal(t, locator, tr.Locator().Type())
			require.NoError(t, tr.Compute())
			assertValidTriangulation(t, m, len(points))

			edges := edgeSet(m)
			if reference == nil {
				reference = edges
			} else {
				assert.Equal(t, reference, edges)
			}

			// Every face the locator returns must contain the query.
			for _, q := range randomPoints(3, 50, 50) {
				f, ok := tr.Locate(q)
				if !ok {
					// Outside the hull
					continue
				}
				assert.True(t, tr.Contains(f, q), "face %d does not contain %v", f, q)
			}
			for _, p := range points {
				f, err := tr.LocatePoint(p)
				require.NoError(t, err)
				assert.True(t, tr.Contains(f, p))
			}
		})
	}
}

func TestLocatorsAgree(t *testing.T) {
	m := mesh.New()
	tr, err := NewFromPoints(m, randomPoints(2, 300, 50))
	require.NoError(t, err)
	require.NoError(t, tr.Compute())

	base := NewBasePointLocator(tr.TriConnectivity)
	// A threshold of one makes every query jump from sampled vertices.
	jumpAndWalk := NewJumpAndWalkLocator(tr.TriConnectivity, 1)
	cached := NewCachedPointLocator(base, tr.TriConnectivity)
	type walker struct{}

	located := 0
	for _, q := range randomPoints(3, 200, 50) {
		want, ok := base.Locate(q)
		jf, jok := jumpAndWalk.Locate(q)
		cf, cok := cached.LocateFor(walker{}, q)
		assert.Equal(t, ok, jok, "jump and walk at %v", q)
		assert.Equal(t, ok, cok, "cached at %v", q)
		if !ok {
			continue
		}
		located++
		assert.Equal(t, want, jf, "jump and walk at %v", q)
		assert.Equal(t, want, cf, "cached at %v", q)
		f, err := tr.LocatePoint(q)
		require.NoError(t, err)
		assert.Equal(t, want, f)
	}
	assert.Greater(t, located, 100)
}

func TestHierarchyLevels(t *testing.T) {
	config := configWith(DelaunayHierarchy)
	config.HierarchyAlpha = 4
	m := mesh.New()
	tr, err := NewFromPoints(m, randomPoints(4, 500, 100), WithConfig(config))
	require.NoError(t, err)
	require.NoError(t, tr.Compute())

	h, ok := tr.Locator().(*DelaunayHierarchyLocator)
	require.True(t, ok)
	assert.Greater(t, h.Levels(), 1)
	assert.LessOrEqual(t, h.Levels(), config.HierarchyMaxLevels)
	assert.Same(t, tr, h.Level(0))
	// Upper levels are sparser.
	for i := 1; i < h.Levels(); i++ {
		assert.Less(t, h.Level(i).Mesh().NumberOfVertices(), h.Level(i-1).Mesh().NumberOfVertices()+3)
		assert.NoError(t, h.Level(i).Mesh().Validate())
	}
}

func TestDelaunayTree(t *testing.T) {
	t.Run("history grows", func(t *testing.T) {
		m := mesh.New()
		tr, err := NewFromPoints(m, randomPoints(5, 50, 10), WithConfig(configWith(DelaunayTree)))
		require.NoError(t, err)
		require.NoError(t, tr.Compute())
		tree := tr.Locator().(*DelaunayTreeLocator)
		assert.Greater(t, tree.Size(), 50)
	})

	t.Run("needs a single triangle", func(t *testing.T) {
		m, err := mesh.NewFromTriangles(
			[]r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
			[][3]int{{0, 1, 2}, {0, 2, 3}},
		)
		require.NoError(t, err)
		tr, err := New(m, r2.EmptyRect(), WithConfig(configWith(DelaunayTree)))
		require.NoError(t, err)
		assert.ErrorIs(t, tr.Init(), ErrUnsupportedConfiguration)
	})

	t.Run("no removal", func(t *testing.T) {
		m := mesh.New()
		tr, err := NewFromPoints(m, randomPoints(6, 20, 10), WithConfig(configWith(DelaunayTree)))
		require.NoError(t, err)
		require.NoError(t, tr.Compute())
		assert.ErrorIs(t, tr.Remove(0), ErrUnsupportedConfiguration)
	})
}

func TestCachedPointLocator(t *testing.T) {
	m := mesh.New()
	tr, err := NewFromPoints(m, randomPoints(7, 200, 100), WithConfig(configWith(JumpAndWalk)))
	require.NoError(t, err)
	require.NoError(t, tr.Compute())

	cached := NewCachedPointLocator(tr.Locator(), tr.TriConnectivity)
	type walker struct{ id int }
	a, b := walker{1}, walker{2}

	q := r2.Point{X: 50, Y: 50}
	f, err := cached.LocatePointFor(a, q)
	require.NoError(t, err)
	assert.True(t, tr.Contains(f, q))

	// A nearby query from the same caller starts from the cached face.
	g, ok := cached.LocateFor(a, r2.Point{X: 50.5, Y: 50.5})
	assert.True(t, ok)
	assert.True(t, tr.Contains(g, r2.Point{X: 50.5, Y: 50.5}))

	h, ok := cached.LocateFor(b, q)
	assert.True(t, ok)
	assert.Equal(t, f, h)

	cached.Forget(a)
	f, err = cached.LocatePoint(q)
	require.NoError(t, err)
	assert.True(t, tr.Contains(f, q))
}

func TestInsertValidation(t *testing.T) {
	m := mesh.New()
	bound := r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 10, Y: 10})
	tr, err := New(m, bound)
	require.NoError(t, err)

	_, err = tr.Insert(r2.Point{X: 11, Y: 5})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	v, err := tr.Insert(r2.Point{X: 5, Y: 5})
	require.NoError(t, err)
	again, err := tr.Insert(r2.Point{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, v, again, "duplicate points are merged")

	_, err = New(mesh.New(), r2.EmptyRect())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// No points span a zero sized rectangle, which r2 does not consider empty.
	_, err = NewFromPoints(mesh.New(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInsertEvents(t *testing.T) {
	points := LoadFixture("scatter")
	var log eventLog
	m := mesh.New()
	tr, err := NewFromPoints(m, append(points, points[:5]...), WithListener(log.listener()))
	require.NoError(t, err)
	require.NoError(t, tr.Compute())
	assert.Equal(t, len(points), log.inserts)
	assert.Greater(t, log.flips, 0)
	assertValidTriangulation(t, m, len(points))
}

// recordingLocator notes every event in a log shared with a listener before
// passing it on.
type recordingLocator struct {
	PointLocator
	log *[]string
}

func (l recordingLocator) PostSplitTriangleEvent(original mesh.FaceIndex, faces [3]mesh.FaceIndex, v mesh.VertexIndex) {
	*l.log = append(*l.log, "locator split-triangle")
	l.PointLocator.PostSplitTriangleEvent(original, faces, v)
}

func (l recordingLocator) PostSplitHalfEdgeEvent(original, f1, f2 mesh.FaceIndex, v mesh.VertexIndex) {
	*l.log = append(*l.log, "locator split-edge")
	l.PointLocator.PostSplitHalfEdgeEvent(original, f1, f2, v)
}

func (l recordingLocator) PostFlipEdgeEvent(f1, f2 mesh.FaceIndex) {
	*l.log = append(*l.log, "locator flip")
	l.PointLocator.PostFlipEdgeEvent(f1, f2)
}

func (l recordingLocator) PostInsertEvent(v mesh.VertexIndex) {
	*l.log = append(*l.log, "locator insert")
	l.PointLocator.PostInsertEvent(v)
}

func TestEventOrder(t *testing.T) {
	var log []string
	m := mesh.New()
	tr, err := New(m, largeBound(), WithConfig(configWith(Base)), WithListener(ListenerFuncs{
		SplitTriangle: func(mesh.FaceIndex, [3]mesh.FaceIndex, mesh.VertexIndex) { log = append(log, "listener split-triangle") },
		SplitHalfEdge: func(mesh.FaceIndex, mesh.FaceIndex, mesh.FaceIndex, mesh.VertexIndex) { log = append(log, "listener split-edge") },
		FlipEdge:      func(mesh.FaceIndex, mesh.FaceIndex) { log = append(log, "listener flip") },
		Insert:        func(mesh.VertexIndex) { log = append(log, "listener insert") },
	}))
	require.NoError(t, err)
	require.NoError(t, tr.Init())
	tr.locator = recordingLocator{PointLocator: tr.locator, log: &log}

	require.NoError(t, tr.InsertAll([]r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 3, Y: 3}}))
	// The midpoint of the spoke from (0, 0) to (3, 3) splits that edge.
	_, err = tr.Insert(r2.Point{X: 1.5, Y: 1.5})
	require.NoError(t, err)

	flipped := false
	for e := range m.Edges() {
		if tr.IsFlippable(e) {
			tr.Flip(e)
			flipped = true
			break
		}
	}
	require.True(t, flipped)

	require.Zero(t, len(log)%2)
	seen := make(map[string]bool)
	for i := 0; i < len(log); i += 2 {
		kind := strings.TrimPrefix(log[i], "locator ")
		assert.Equal(t, "locator "+kind, log[i], "event %d", i)
		assert.Equal(t, "listener "+kind, log[i+1], "event %d", i+1)
		seen[kind] = true
	}
	for _, kind := range []string{"split-triangle", "split-edge", "flip", "insert"} {
		assert.True(t, seen[kind], "no %s event", kind)
	}
}

func TestFixtures(t *testing.T) {
	for _, name := range []string{"scatter", "star", "grid"} {
		t.Run(name, func(t *testing.T) {
			for _, legalization := range []Legalization{Recursive, Iterative} {
				points := LoadFixture(name)
				config := DefaultConfig()
				config.Legalization = legalization
				m := mesh.New()
				tr, err := NewFromPoints(m, points, WithConfig(config))
				require.NoError(t, err)
				require.NoError(t, tr.Compute())
				assertValidTriangulation(t, m, len(points))
				assert.Len(t, tr.Triangles(), m.NumberOfFaces())
			}
		})
	}
}

func TestRemove(t *testing.T) {
	points := randomPoints(8, 60, 100)
	m := mesh.New()
	tr, err := NewFromPoints(m, points, WithConfig(configWith(JumpAndWalk)))
	require.NoError(t, err)
	require.NoError(t, tr.Compute())

	t.Run("interior vertex", func(t *testing.T) {
		var v mesh.VertexIndex = mesh.NoVertex
		for u := range m.Vertices() {
			if !m.IsAtBoundaryVertex(u) {
				v = u
				break
			}
		}
		require.NotEqual(t, mesh.NoVertex, v)
		n := m.NumberOfVertices()
		require.NoError(t, tr.Remove(v))
		assertValidTriangulation(t, m, n-1)
	})

	t.Run("hull vertex", func(t *testing.T) {
		v := m.Vertex(m.Edge(mesh.Border))
		n := m.NumberOfVertices()
		require.NoError(t, tr.Remove(v))
		assertValidTriangulation(t, m, n-1)
	})

	t.Run("invalid vertex", func(t *testing.T) {
		assert.ErrorIs(t, tr.Remove(mesh.VertexIndex(m.VertexCapacity())), ErrInvalidArgument)
	})
}

func TestRecompute(t *testing.T) {
	points := randomPoints(9, 80, 100)
	m := mesh.New()
	tr, err := NewFromPoints(m, points)
	require.NoError(t, err)
	require.NoError(t, tr.Compute())
	before := edgeSet(m)

	require.NoError(t, tr.Recompute())
	assert.True(t, tr.IsFinalized())
	assertValidTriangulation(t, m, len(points))
	assert.Equal(t, before, edgeSet(m))
}

func TestAdoptMesh(t *testing.T) {
	// A square split along its longer diagonal, plus a point to insert.
	m, err := mesh.NewFromTriangles(
		[]r2.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 5, Y: 3}, {X: 0, Y: 2}},
		[][3]int{{0, 1, 3}, {1, 2, 3}},
	)
	require.NoError(t, err)
	tr, err := New(m, r2.EmptyRect(), WithConfig(configWith(JumpAndWalk)))
	require.NoError(t, err)
	require.NoError(t, tr.Init())
	assert.Empty(t, tr.VirtualVertices())
	assertDelaunay(t, m, Epsilon)
	assert.True(t, tr.Bound().ContainsPoint(r2.Point{X: 5, Y: 3}))

	_, err = tr.Insert(r2.Point{X: 2, Y: 1})
	require.NoError(t, err)
	require.NoError(t, tr.Finish())
	assertValidTriangulation(t, m, 5)
}
