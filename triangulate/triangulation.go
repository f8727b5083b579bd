// Package triangulate maintains incremental Delaunay triangulations on top of
// the half-edge mesh.
//
// Points are inserted Bowyer-Watson style into a bootstrap triangle which
// encloses the bound (or into an existing mesh, whose boundary is adopted).
// Each insertion is located by a pluggable PointLocator, splits a triangle or
// an edge, and legalizes the edges around the new vertex by flipping. Finish
// strips the bootstrap vertices again.
package triangulate

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type options struct {
	config    Config
	logger    *zap.Logger
	illegal   IllegalPredicate
	listeners []TriEventListener
}

type Option func(*options)

func WithConfig(config Config) Option {
	return func(o *options) { o.config = config }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithIllegalPredicate constrains which edges may be flipped.
func WithIllegalPredicate(predicate IllegalPredicate) Option {
	return func(o *options) { o.illegal = predicate }
}

// WithListener registers a listener for topology events. Listeners are called
// in registration order, after the point locator.
func WithListener(l TriEventListener) Option {
	return func(o *options) { o.listeners = append(o.listeners, l) }
}

// Triangulation is an incremental triangulation of a point set.
//
// Its lifecycle is: Init creates the bootstrap geometry, Insert adds points,
// Finish removes the bootstrap vertices. Compute does all three. A
// Triangulation is not safe for concurrent use.
type Triangulation struct {
	*TriConnectivity

	config      Config
	bound       r2.Rect
	initialized bool
	finalized   bool
	virtual     []mesh.VertexIndex
	locator     PointLocator
	listeners   []TriEventListener
	pending     []r2.Point
}

// New creates a triangulation over m for points within bound. If m already
// holds a mesh with at least three vertices, Init adopts it and bound is
// widened to cover it.
func New(m *mesh.Mesh, bound r2.Rect, opts ...Option) (*Triangulation, error) {
	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if bound.IsEmpty() && m.NumberOfVertices() < 3 {
		return nil, errors.Wrap(ErrInvalidArgument, "triangulation needs a non-empty bound")
	}

	t := &Triangulation{
		TriConnectivity: NewTriConnectivity(m, o.config, o.logger),
		config:          o.config,
		bound:           bound,
		listeners:       o.listeners,
	}
	t.SetIllegalPredicate(o.illegal)
	t.SetListener(t)
	return t, nil
}

// NewFromPoints creates a triangulation bounded by points. Compute inserts
// them.
func NewFromPoints(m *mesh.Mesh, points []r2.Point, opts ...Option) (*Triangulation, error) {
	if len(points) == 0 && m.NumberOfVertices() < 3 {
		return nil, errors.Wrap(ErrInvalidArgument, "triangulation needs at least one point")
	}
	t, err := New(m, r2.RectFromPoints(points...), opts...)
	if err != nil {
		return nil, err
	}
	t.pending = append(t.pending, points...)
	return t, nil
}

func (t *Triangulation) Config() Config { return t.config }
func (t *Triangulation) Bound() r2.Rect { return t.bound }
func (t *Triangulation) IsInitialized() bool { return t.initialized }
func (t *Triangulation) IsFinalized() bool { return t.finalized }
func (t *Triangulation) Locator() PointLocator { return t.locator }
func (t *Triangulation) Logger() *zap.Logger { return t.logger }
func (t *Triangulation) AddListener(l TriEventListener) {
	t.listeners = append(t.listeners, l)
}

// VirtualVertices are the bootstrap vertices still in the mesh.
func (t *Triangulation) VirtualVertices() []mesh.VertexIndex {
	return append([]mesh.VertexIndex(nil), t.virtual...)
}

func (t *Triangulation) IsVirtual(v mesh.VertexIndex) bool {
	for _, virtual := range t.virtual {
		if v == virtual {
			return true
		}
	}
	return false
}

// Event fan-out: the locator first, then external listeners.

func (t *Triangulation) PostSplitTriangleEvent(original mesh.FaceIndex, faces [3]mesh.FaceIndex, v mesh.VertexIndex) {
	if t.locator != nil {
		t.locator.PostSplitTriangleEvent(original, faces, v)
	}
	listeners(t.listeners).PostSplitTriangleEvent(original, faces, v)
}

func (t *Triangulation) PostSplitHalfEdgeEvent(original, f1, f2 mesh.FaceIndex, v mesh.VertexIndex) {
	if t.locator != nil {
		t.locator.PostSplitHalfEdgeEvent(original, f1, f2, v)
	}
	listeners(t.listeners).PostSplitHalfEdgeEvent(original, f1, f2, v)
}

func (t *Triangulation) PostFlipEdgeEvent(f1, f2 mesh.FaceIndex) {
	if t.locator != nil {
		t.locator.PostFlipEdgeEvent(f1, f2)
	}
	listeners(t.listeners).PostFlipEdgeEvent(f1, f2)
}

func (t *Triangulation) PostInsertEvent(v mesh.VertexIndex) {
	if t.locator != nil {
		t.locator.PostInsertEvent(v)
	}
	listeners(t.listeners).PostInsertEvent(v)
}

// recoverInto converts a TriangulateError panic into *err.
func recoverInto(err *error) {
	if recovered := HandlePanicRecover(recover()); recovered != nil {
		*err = recovered
	}
}

// Init creates the bootstrap geometry and the point locator. It is called
// implicitly by the other operations.
func (t *Triangulation) Init() (err error) {
	defer recoverInto(&err)
	if t.initialized {
		return nil
	}
	m := t.mesh
	if m.NumberOfVertices() >= 3 && m.NumberOfFaces() > 0 {
		if err := t.adopt(); err != nil {
			return err
		}
	} else {
		// Loose vertices are replayed as points.
		var loose []r2.Point
		for v := range m.Vertices() {
			loose = append(loose, m.Point(v))
		}
		t.pending = append(loose, t.pending...)
		m.Clear()
		t.createSuperTriangle()
	}

	locator, err := t.newLocator()
	if err != nil {
		return err
	}
	t.locator = locator
	t.initialized = true
	t.logger.Debug("triangulation initialized",
		zap.Stringer("locator", t.config.Locator),
		zap.Int("virtualVertices", len(t.virtual)),
		zap.Int("faces", m.NumberOfFaces()))
	return nil
}

// adopt prepares a pre-populated mesh: polygon faces are cut into triangles
// and the result is legalized.
func (t *Triangulation) adopt() error {
	m := t.mesh
	var polygons []mesh.FaceIndex
	for f := range m.Faces() {
		if !m.IsTriangle(f) {
			polygons = append(polygons, f)
		}
	}
	for _, f := range polygons {
		if _, err := t.TriangulateFace(f); err != nil {
			return err
		}
	}
	t.LegalizeAll()
	t.bound = t.bound.Union(m.Bound())
	return nil
}

// createSuperTriangle adds a triangle far enough around the bound that the
// circumcircles of its corners never matter for real points.
func (t *Triangulation) createSuperTriangle() {
	m := t.mesh
	b := t.bound
	size := math.Max(b.X.Length(), b.Y.Length()) + 1
	center := b.Center()

	v0 := m.CreateVertex(r2.Point{X: b.X.Lo - 3*size, Y: b.Y.Lo - size})
	v1 := m.CreateVertex(r2.Point{X: b.X.Hi + 3*size, Y: b.Y.Lo - size})
	v2 := m.CreateVertex(r2.Point{X: center.X, Y: b.Y.Hi + 3*size})

	f := m.CreateFace(false)
	inner := [3]mesh.EdgeIndex{m.CreateEdge(v1, f), m.CreateEdge(v2, f), m.CreateEdge(v0, f)}
	outer := [3]mesh.EdgeIndex{m.CreateEdge(v0, mesh.Border), m.CreateEdge(v1, mesh.Border), m.CreateEdge(v2, mesh.Border)}
	for i := 0; i < 3; i++ {
		m.SetTwin(inner[i], outer[i])
		m.SetNext(inner[i], inner[(i+1)%3])
		// The border runs the other way round.
		m.SetNext(outer[(i+1)%3], outer[i])
		m.SetVertexEdge(m.Vertex(inner[i]), inner[i])
	}
	m.SetEdge(f, inner[0])
	m.SetEdge(mesh.Border, outer[0])
	t.virtual = []mesh.VertexIndex{v0, v1, v2}
}

func (t *Triangulation) newLocator() (PointLocator, error) {
	switch t.config.Locator {
	case Base:
		return NewBasePointLocator(t.TriConnectivity), nil
	case JumpAndWalk:
		return NewJumpAndWalkLocator(t.TriConnectivity, t.config.JumpAndWalkThreshold), nil
	case DelaunayHierarchy:
		return NewDelaunayHierarchyLocator(t), nil
	case DelaunayTree:
		return NewDelaunayTreeLocator(t.TriConnectivity)
	}
	return nil, errors.Wrapf(ErrUnsupportedConfiguration, "unknown locator %v", t.config.Locator)
}

// Insert adds p and returns its vertex. A point coinciding with an existing
// vertex returns that vertex.
func (t *Triangulation) Insert(p r2.Point) (v mesh.VertexIndex, err error) {
	defer recoverInto(&err)
	if err := t.Init(); err != nil {
		return mesh.NoVertex, err
	}
	return t.insert(p)
}

func (t *Triangulation) insert(p r2.Point) (mesh.VertexIndex, error) {
	if !t.bound.ContainsPoint(p) {
		return mesh.NoVertex, errors.Wrapf(ErrInvalidArgument, "point (%g, %g) lies outside the bound %v", p.X, p.Y, t.bound)
	}
	f, err := t.locator.LocatePoint(p)
	if err != nil {
		return mesh.NoVertex, err
	}
	return t.insertAt(p, f)
}

// insertAt inserts p into the face it was located in.
func (t *Triangulation) insertAt(p r2.Point, f mesh.FaceIndex) (mesh.VertexIndex, error) {
	e, inserted, err := t.TriConnectivity.Insert(p, f)
	if err != nil {
		return mesh.NoVertex, err
	}
	v := t.mesh.Vertex(e)
	if inserted {
		t.PostInsertEvent(v)
	}
	return v, nil
}

// InsertAll inserts points in order, stopping at the first error.
func (t *Triangulation) InsertAll(points []r2.Point) (err error) {
	defer recoverInto(&err)
	if err := t.Init(); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := t.insert(p); err != nil {
			return err
		}
	}
	return nil
}

// Compute inserts every pending point and finishes the triangulation.
func (t *Triangulation) Compute() error {
	if err := t.Init(); err != nil {
		return err
	}
	pending := t.pending
	t.pending = nil
	if err := t.InsertAll(pending); err != nil {
		return err
	}
	return t.Finish()
}

// Finish removes the bootstrap vertices together with their faces. The
// remaining faces triangulate the convex hull of the inserted points.
func (t *Triangulation) Finish() (err error) {
	defer recoverInto(&err)
	if err := t.Init(); err != nil {
		return err
	}
	if t.finalized {
		return nil
	}
	if len(t.virtual) > 0 {
		flips := t.flipVirtualLinks()
		t.removeVirtualFaces()
		for _, v := range t.virtual {
			if t.mesh.VertexEdge(v) != mesh.NoEdge {
				fatalf("bootstrap vertex %d still has edges", v)
			}
			t.mesh.DestroyVertex(v)
		}
		t.virtual = nil
		filled := t.fillConcavities()
		t.logger.Debug("removed bootstrap vertices",
			zap.Int("flips", flips), zap.Int("filledConcavities", filled))
	}
	flips := t.LegalizeAll()
	t.finalized = true
	t.logger.Debug("triangulation finished",
		zap.Int("vertices", t.mesh.NumberOfVertices()),
		zap.Int("faces", t.mesh.NumberOfFaces()),
		zap.Int("legalizingFlips", flips))
	return nil
}

// flipVirtualLinks flips spokes of the bootstrap vertices wherever the two
// real vertices around a real neighbour turn left, so that the triangle
// between them exists once the bootstrap faces are gone.
func (t *Triangulation) flipVirtualLinks() int {
	m := t.mesh
	flips := 0
	for changed := true; changed; {
		changed = false
		for _, v := range t.virtual {
			var spokes []mesh.EdgeIndex
			for e := range m.EdgesOfVertex(v) {
				spokes = append(spokes, m.Twin(e))
			}
			for _, h := range spokes {
				if m.IsDestroyedEdge(h) || m.Start(h) != v || m.IsAtBoundary(h) {
					continue
				}
				u := m.Vertex(h)
				w := m.Vertex(m.Next(h))
				x := m.Vertex(m.Next(m.Twin(h)))
				if t.IsVirtual(u) || t.IsVirtual(w) || t.IsVirtual(x) {
					continue
				}
				if IsCCW(m.Point(x), m.Point(u), m.Point(w), t.eps) && IsCCW(m.Point(v), m.Point(x), m.Point(w), t.eps) {
					t.Flip(h)
					flips++
					changed = true
				}
			}
		}
	}
	return flips
}

// removeVirtualFaces peels the faces touching bootstrap vertices off the
// border until none remain.
func (t *Triangulation) removeVirtualFaces() {
	m := t.mesh
	isVirtualFace := func(f mesh.FaceIndex) bool {
		for v := range m.VerticesOfFace(f) {
			if t.IsVirtual(v) {
				return true
			}
		}
		return false
	}
	for {
		var faces []mesh.FaceIndex
		for f := range m.Faces() {
			if isVirtualFace(f) {
				faces = append(faces, f)
			}
		}
		if len(faces) == 0 {
			return
		}
		progress := false
		for _, f := range faces {
			if m.IsDestroyedFace(f) {
				continue
			}
			atBorder := false
			for g := range m.NeighbouringFaces(f) {
				if g == mesh.Border {
					atBorder = true
					break
				}
			}
			if !atBorder {
				continue
			}
			if err := t.RemoveFaceAtBoundary(f, mesh.Border, false); err != nil {
				fatal(err)
			}
			progress = true
		}
		if !progress {
			fatalf("%d bootstrap faces are not connected to the border", len(faces))
		}
	}
}

// fillConcavities closes left turns of the border with new triangles, as
// long as no border vertex lies inside them. It returns the number of faces
// added.
func (t *Triangulation) fillConcavities() int {
	m := t.mesh
	filled := 0
	for changed := true; changed; {
		changed = false
		border := edgesOf(m, mesh.Border)
		for _, e := range border {
			n := m.Next(e)
			a, b, c := m.Start(e), m.Vertex(e), m.Vertex(n)
			if a == c || m.Next(n) == e {
				continue
			}
			pa, pb, pc := m.Point(a), m.Point(b), m.Point(c)
			if !IsCCW(pa, pb, pc, t.eps) {
				continue
			}
			blocked := false
			for _, o := range border {
				if v := m.Vertex(o); v != a && v != b && v != c && IsInsideTriangle(m.Point(v), pa, pb, pc, t.eps) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			t.closeEar(e, n)
			filled++
			changed = true
			break
		}
	}
	return filled
}

// closeEar turns the border edges e: a->b and n: b->c into a new interior
// triangle, leaving a->c on the border.
func (t *Triangulation) closeEar(e, n mesh.EdgeIndex) {
	m := t.mesh
	a, c := m.Start(e), m.Vertex(n)
	before, after := m.Prev(e), m.Next(n)

	f := m.CreateFace(false)
	d := m.CreateEdge(a, f)
	dt := m.CreateEdge(c, mesh.Border)
	m.SetTwin(d, dt)

	m.SetFace(e, f)
	m.SetFace(n, f)
	m.SetNext(n, d)
	m.SetNext(d, e)
	m.SetNext(before, dt)
	m.SetNext(dt, after)
	m.SetEdge(f, e)
	if anchor := m.Edge(mesh.Border); anchor == e || anchor == n {
		m.SetEdge(mesh.Border, dt)
	}
}

// Recompute throws away the mesh and triangulates its points again.
func (t *Triangulation) Recompute() error {
	m := t.mesh
	var points []r2.Point
	for v := range m.Vertices() {
		if !t.IsVirtual(v) {
			points = append(points, m.Point(v))
		}
	}
	m.Clear()
	t.initialized = false
	t.finalized = false
	t.virtual = nil
	t.locator = nil
	t.pending = append(points, t.pending...)
	t.logger.Debug("recomputing triangulation", zap.Int("points", len(points)))
	return t.Compute()
}

// Remove deletes the real vertex v and retriangulates around it.
func (t *Triangulation) Remove(v mesh.VertexIndex) (err error) {
	defer recoverInto(&err)
	if err := t.Init(); err != nil {
		return err
	}
	m := t.mesh
	switch {
	case t.locator.Type() == DelaunayTree:
		return errors.Wrap(ErrUnsupportedConfiguration, "the delaunay tree does not support removal")
	case int(v) < 0 || int(v) >= m.VertexCapacity() || m.IsDestroyedVertex(v):
		return errors.Wrapf(ErrInvalidArgument, "vertex %d does not exist", v)
	case t.IsVirtual(v):
		return errors.Wrapf(ErrInvalidArgument, "vertex %d is a bootstrap vertex", v)
	}
	atBorder := false
	for e := range m.EdgesOfVertex(v) {
		if m.Face(e) == mesh.Border || m.TwinFace(e) == mesh.Border {
			atBorder = true
			break
		}
	}
	if err := t.RemoveVertex(v); err != nil {
		return err
	}
	if atBorder {
		t.fillConcavities()
	}
	t.LegalizeAll()
	return nil
}

// LocatePoint returns the face containing p.
func (t *Triangulation) LocatePoint(p r2.Point) (f mesh.FaceIndex, err error) {
	defer recoverInto(&err)
	if err := t.Init(); err != nil {
		return mesh.NoFace, err
	}
	return t.locator.LocatePoint(p)
}

func (t *Triangulation) Locate(p r2.Point) (mesh.FaceIndex, bool) {
	f, err := t.LocatePoint(p)
	return f, err == nil
}

// Triangles returns the corners of every interior face, counter-clockwise.
func (t *Triangulation) Triangles() [][3]r2.Point {
	m := t.mesh
	triangles := make([][3]r2.Point, 0, m.NumberOfFaces())
	for f := range m.Faces() {
		if !m.IsTriangle(f) {
			continue
		}
		var triangle [3]r2.Point
		i := 0
		for e := range m.EdgesOfFace(f) {
			triangle[i] = m.EdgePoint(e)
			i++
		}
		triangles = append(triangles, triangle)
	}
	return triangles
}
