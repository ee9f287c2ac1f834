// Package graph holds the node/edge layer drawn over the globe: loading it
// from payloads, laying it out through a projection, and editing edge
// curves.
package graph

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"globe-graph/internal/debug"
	"globe-graph/internal/projection"
	"globe-graph/internal/surface"
)

// Projector maps between the globe and the drawing surface. The owning map
// implements it with the current viewport.
type Projector interface {
	Project(p projection.GeoPoint) (projection.Point, bool)
	Unproject(pt projection.Point) projection.GeoPoint
}

// Locator resolves a node given by IP address instead of coordinates.
type Locator interface {
	Locate(ip string) (projection.GeoPoint, error)
}

// Graph owns the nodes and edges and the one edit session.
type Graph struct {
	Name string

	nodes []*Node
	byID  map[string]*Node
	edges []*Edge

	style   Style
	marker  Marker
	session Session

	projector Projector
	locator   Locator
	onChange  func()

	// pickRadius widens pointer hits on coarse surfaces.
	pickRadius float64
}

// New creates an empty graph laid out through p. onChange, if not nil, is
// called after every change that needs a repaint.
func New(p Projector, onChange func()) *Graph {
	return &Graph{
		byID:      make(map[string]*Node),
		style:     defaultStyle(),
		projector: p,
		onChange:  onChange,
	}
}

// SetLocator sets the resolver for nodes given by IP.
func (g *Graph) SetLocator(l Locator) { g.locator = l }

// Session returns the edit session.
func (g *Graph) Session() *Session { return &g.session }

// Marker returns the current node marker.
func (g *Graph) Marker() Marker { return g.marker }

// Style returns the current graph-level style.
func (g *Graph) Style() Style { return g.style }

func (g *Graph) changed() {
	if g.onChange != nil {
		g.onChange()
	}
}

// SetData replaces the graph with the payload. The payload is validated in
// full first; on error the graph is left untouched.
func (g *Graph) SetData(p *Payload) error {
	if p == nil {
		return malformed("no payload")
	}
	nodes, byID, edges, err := g.build(p)
	if err != nil {
		debug.Log("graph: load rejected: %v", err)
		return err
	}

	if len(g.nodes) > 0 || len(g.edges) > 0 {
		g.reset()
	}
	g.Name = p.Name
	g.nodes, g.byID, g.edges = nodes, byID, edges
	debug.Log("graph: loaded %q with %d nodes and %d edges", p.Name, len(nodes), len(edges))

	g.changed()
	return nil
}

func (g *Graph) build(p *Payload) ([]*Node, map[string]*Node, []*Edge, error) {
	nodes := make([]*Node, 0, len(p.Nodes))
	byID := make(map[string]*Node, len(p.Nodes))

	for _, spec := range p.Nodes {
		if spec.ID == "" {
			return nil, nil, nil, malformed("node with empty id")
		}
		if _, dup := byID[spec.ID]; dup {
			return nil, nil, nil, loadErrorf(ErrDuplicateNode, "node %q", spec.ID)
		}
		n, err := g.buildNode(spec)
		if err != nil {
			return nil, nil, nil, err
		}
		nodes = append(nodes, n)
		byID[n.ID] = n
	}

	edges := make([]*Edge, 0, len(p.Edges))
	for i, spec := range p.Edges {
		head, ok := byID[spec.Head]
		if !ok {
			return nil, nil, nil, loadErrorf(ErrUnknownNode, "edge %d head %q", i, spec.Head)
		}
		tail, ok := byID[spec.Tail]
		if !ok {
			return nil, nil, nil, loadErrorf(ErrUnknownNode, "edge %d tail %q", i, spec.Tail)
		}
		e, err := buildEdge(i, spec, head, tail)
		if err != nil {
			return nil, nil, nil, err
		}
		edges = append(edges, e)
	}
	return nodes, byID, edges, nil
}

func (g *Graph) buildNode(spec NodeSpec) (*Node, error) {
	var pos projection.GeoPoint
	switch {
	case spec.Latitude != nil && spec.Longitude != nil:
		pos = projection.GeoPoint{Latitude: *spec.Latitude, Longitude: *spec.Longitude}
	case spec.IP != "" && g.locator != nil:
		var err error
		if pos, err = g.locator.Locate(spec.IP); err != nil {
			return nil, &LoadError{Reason: fmt.Sprintf("node %q: locate %s", spec.ID, spec.IP), Err: err}
		}
	default:
		return nil, malformed("node %q: missing latitude/longitude", spec.ID)
	}
	if err := pos.Validate(); err != nil {
		return nil, malformed("node %q: %v", spec.ID, err)
	}

	n := &Node{ID: spec.ID, Position: pos.Normalized(), Opacity: 1}
	if spec.Opacity != nil {
		o := *spec.Opacity
		if !isFinite(o) || o < 0 || o > 1 {
			return nil, malformed("node %q: opacity %v out of range [0, 1]", spec.ID, o)
		}
		n.Opacity = o
	}

	var err error
	if n.Colour, err = optionalColour(spec.Colour); err != nil {
		return nil, malformed("node %q: %v", spec.ID, err)
	}
	if n.FontColour, err = optionalColour(spec.FontColour); err != nil {
		return nil, malformed("node %q: %v", spec.ID, err)
	}
	if n.StrokeColour, err = optionalColour(spec.StrokeColour); err != nil {
		return nil, malformed("node %q: %v", spec.ID, err)
	}
	return n, nil
}

func buildEdge(i int, spec EdgeSpec, head, tail *Node) (*Edge, error) {
	e := &Edge{Head: head, Tail: tail, Directed: spec.Directed, Weight: 1}
	if spec.Weight != nil && *spec.Weight != 0 {
		w := *spec.Weight
		if !isFinite(w) || w < 0 {
			return nil, malformed("edge %d: weight %v must be positive", i, w)
		}
		e.Weight = w
	}

	e.Opacity = DefaultOpacity(e.Weight)
	if spec.Opacity != nil {
		o := *spec.Opacity
		if !isFinite(o) || o < 0 || o > 1 {
			return nil, malformed("edge %d: opacity %v out of range [0, 1]", i, o)
		}
		e.Opacity = o
	}

	var err error
	if e.Colour, err = optionalColour(spec.Colour); err != nil {
		return nil, malformed("edge %d: %v", i, err)
	}
	return e, nil
}

// Reset ends any edit session and empties the graph.
func (g *Graph) Reset() {
	g.reset()
	g.changed()
}

func (g *Graph) reset() {
	g.session.End()
	for _, e := range g.edges {
		e.remove()
	}
	for _, n := range g.nodes {
		n.remove()
	}
	g.Name = ""
	g.nodes = nil
	g.edges = nil
	g.byID = make(map[string]*Node)
}

// GetNode looks a node up by id.
func (g *Graph) GetNode(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns the nodes in load order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns the edges in load order.
func (g *Graph) Edges() []*Edge { return g.edges }

// Empty reports whether no graph is loaded.
func (g *Graph) Empty() bool { return len(g.nodes) == 0 && len(g.edges) == 0 }

// Layout re-projects every node and rebuilds every edge curve. An edge is
// visible only when both of its endpoints are.
func (g *Graph) Layout() {
	for _, n := range g.nodes {
		n.layout(g.projector)
	}
	for _, e := range g.edges {
		e.layout(g.projector, g.marker)
	}
}

// Draw paints the current layout: edges, then node markers, then labels.
func (g *Graph) Draw(f surface.Frame) {
	for _, e := range g.edges {
		e.draw(f, g.style)
	}
	if e := g.session.Edge(); e != nil {
		e.drawSelection(f, g.style, g.session.Handle())
	}
	for _, n := range g.nodes {
		n.draw(f, g.marker, g.style)
	}
	for _, n := range g.nodes {
		n.drawLabel(f, g.style)
	}
}

// Redraw lays the graph out and paints it onto f.
func (g *Graph) Redraw(f surface.Frame) {
	g.Layout()
	g.Draw(f)
}

// ChangeNodeShape swaps every node's marker. It has no geometric effect
// beyond where arrowheads meet the new outline.
func (g *Graph) ChangeNodeShape(shape Shape, stroke bool) {
	g.marker = Marker{Shape: shape, Stroke: stroke}
	g.changed()
}

// Beautify bends edges around the nodes they run through, then repaints.
func (g *Graph) Beautify() {
	g.Layout()
	for _, e := range g.edges {
		if e.Visible {
			e.beautify(g.nodes, g.marker, g.projector)
		}
	}
	debug.Log("graph: beautified %d edges", len(g.edges))
	g.changed()
}

func (g *Graph) setColour(dst *colorful.Color, s string) error {
	c, err := ParseColour(s)
	if err != nil {
		return err
	}
	*dst = c
	g.changed()
	return nil
}

// SetEdgeColour sets the default edge colour.
func (g *Graph) SetEdgeColour(s string) error { return g.setColour(&g.style.EdgeColour, s) }

// SetNodeColour sets the default node colour.
func (g *Graph) SetNodeColour(s string) error { return g.setColour(&g.style.NodeColour, s) }

// SetFontColour sets the default label colour.
func (g *Graph) SetFontColour(s string) error { return g.setColour(&g.style.FontColour, s) }

// HandleInfo is the stored bend of one edge.
type HandleInfo struct {
	Head       string               `json:"head"`
	Tail       string               `json:"tail"`
	HeadHandle *projection.GeoPoint `json:"head_handle,omitempty"`
	TailHandle *projection.GeoPoint `json:"tail_handle,omitempty"`
}

// Handles snapshots the handles of every edge.
func (g *Graph) Handles() []HandleInfo {
	out := make([]HandleInfo, 0, len(g.edges))
	for _, e := range g.edges {
		info := HandleInfo{Head: e.Head.ID, Tail: e.Tail.ID}
		if e.HeadHandle != nil {
			h := *e.HeadHandle
			info.HeadHandle = &h
		}
		if e.TailHandle != nil {
			h := *e.TailHandle
			info.TailHandle = &h
		}
		out = append(out, info)
	}
	return out
}

// SetPickRadius sets how far from a press an edge or handle still counts as
// hit. The fixed tolerances apply when r is smaller.
func (g *Graph) SetPickRadius(r float64) {
	if r < 0 || !isFinite(r) {
		r = 0
	}
	g.pickRadius = r
}

func (g *Graph) curveTolerance() float64 {
	return math.Max(curveHitTolerance, g.pickRadius)
}

func (g *Graph) handleTolerance() float64 {
	return math.Max(handleHitTolerance, g.pickRadius)
}

// edgeAt returns the topmost visible edge whose curve passes under pt.
func (g *Graph) edgeAt(pt projection.Point) (*Edge, float64) {
	for i := len(g.edges) - 1; i >= 0; i-- {
		if hit, t := g.edges[i].HitCurve(pt, g.curveTolerance()); hit {
			return g.edges[i], t
		}
	}
	return nil, 0
}

// PointerDown routes a press to the edit session and reports whether the
// graph consumed it. While idle, only a press on an edge is consumed.
func (g *Graph) PointerDown(pt projection.Point) bool {
	if active := g.session.Edge(); active != nil {
		if h := active.HitHandle(pt, g.handleTolerance()); h != NoHandle {
			g.session.Grab(h)
			return true
		}
		if hit, t := active.HitCurve(pt, g.curveTolerance()); hit {
			// the half of the curve that was hit picks the handle
			if t < 0.5 {
				g.session.Grab(HeadHandle)
			} else {
				g.session.Grab(TailHandle)
			}
			return true
		}
		if e, _ := g.edgeAt(pt); e != nil {
			g.session.Start(e)
			return true
		}
		g.session.End()
		return true
	}

	if e, _ := g.edgeAt(pt); e != nil {
		g.session.Start(e)
		return true
	}
	return false
}

// PointerMove drags the grabbed handle by delta. Without a grabbed handle
// it does nothing and reports false.
func (g *Graph) PointerMove(delta projection.Point) bool {
	if g.session.State() != Dragging {
		return false
	}
	return g.session.Edge().MoveHandle(g.session.Handle(), delta, g.projector, g.marker)
}

// PointerUp ends a handle drag.
func (g *Graph) PointerUp() bool {
	if g.session.State() != Dragging {
		return false
	}
	g.session.Release()
	return true
}
