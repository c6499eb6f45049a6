// Package layout projects a den tree onto a plane as a radial graph.
//
// Nodes are placed depth-first, pre-order. Each child sits at a distance
// from its parent that grows with depth and with the child's own family
// size and shrinks with its relevance to the root query. Children fan out
// from the direction their parent was placed in, most relevant first.
// A candidate position closer than the overlap threshold to any placed node
// is pushed outward along a spiral for a bounded number of attempts, after
// which the last candidate is kept and flagged as overlapping.
//
// Layout is deterministic for a given tree and never mutates it.
package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/isaacchacko/den"
)

// Layouter lays out den trees with a fixed Config.
type Layouter struct {
	cfg Config
}

// New returns a Layouter using DefaultConfig modified by opts.
func New(opts ...Option) *Layouter {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Layouter{cfg: cfg}
}

// Config returns the layout geometry.
func (l *Layouter) Config() Config { return l.cfg }

// Layout lays out root with the default configuration.
func Layout(root *den.RootNode) *den.Graph {
	return New().Layout(root)
}

// Preview lays out root truncated at maxDepth with the default configuration.
func Preview(root *den.RootNode, maxDepth int) *den.Graph {
	return New().Preview(root, maxDepth)
}

// Layout lays out the whole tree under root. A nil root yields an empty graph.
func (l *Layouter) Layout(root *den.RootNode) *den.Graph {
	return l.run(newView(root, -1))
}

// Preview lays out the tree under root as if every node at maxDepth had no
// children. A negative maxDepth is treated as 0.
func (l *Layouter) Preview(root *den.RootNode, maxDepth int) *den.Graph {
	return l.run(newView(root, max(maxDepth, 0)))
}

type placer struct {
	cfg      Config
	graph    *den.Graph
	placed   []den.Position
	scoreSum float64
}

func (l *Layouter) run(root *view) *den.Graph {
	g := &den.Graph{Nodes: []den.GraphNode{}, Edges: []den.GraphEdge{}}
	if root == nil {
		return g
	}

	p := &placer{cfg: l.cfg, graph: g}
	center := den.Position{X: l.cfg.CenterX, Y: l.cfg.CenterY}
	p.addNode(root, center, false)
	p.placeChildren(root, center, 0)

	g.Stats.TotalNodes = len(g.Nodes)
	g.Stats.TotalEdges = len(g.Edges)
	if n := len(g.Nodes) - 1; n > 0 {
		g.Stats.AverageScore = p.scoreSum / float64(n)
	}
	return g
}

// placeChildren places the children of parent, located at at, and recurses.
// incoming is the angle at which parent was placed from its own parent.
func (p *placer) placeChildren(parent *view, at den.Position, incoming float64) {
	kids := slices.Clone(parent.children)
	slices.SortStableFunc(kids, func(a, b *view) int {
		return cmp.Compare(b.originScore(), a.originScore())
	})

	for i, kid := range kids {
		angle := p.slotAngle(i, len(kids), incoming, parent.depth == 0)
		pos, angle, overlapping := p.resolve(at, angle, p.distance(kid))
		p.addNode(kid, pos, overlapping)
		p.addEdge(parent, kid)
		p.placeChildren(kid, pos, angle)
	}
}

// slotAngle is the candidate angle of the i-th most relevant of n siblings.
// Root children share the full circle starting at the top. Other children
// alternate around the incoming angle, closest slots first.
func (p *placer) slotAngle(i, n int, incoming float64, fromRoot bool) float64 {
	if fromRoot {
		return -math.Pi/2 + float64(i)*2*math.Pi/float64(n)
	}

	step := p.cfg.EvenStep
	if n > p.cfg.CompressAbove {
		step = p.cfg.CompressedArc / float64(n-1)
	}
	offset := (i + 1) / 2
	if i%2 == 0 {
		offset = -offset
	}
	return incoming + float64(offset)*step
}

// distance is the target parent to child distance for v.
func (p *placer) distance(v *view) float64 {
	base := p.cfg.CenterRadius + float64(v.depth)*p.cfg.LevelSpacing
	return clamp(base*childCountFactor(len(v.children))*relevanceFactor(v.originScore()),
		p.cfg.MinDistance, p.cfg.MaxDistance)
}

// childCountFactor pushes nodes with many children farther out, up to 2x.
func childCountFactor(children int) float64 {
	return 1 + 0.1*float64(min(children, 10))
}

// relevanceFactor pulls relevant nodes closer: 1.5 at score 0, 0.5 at score 1.
func relevanceFactor(score float64) float64 {
	return 1.5 - den.ScoreClamp(score)
}

// resolve finds a position at dist and angle from at that clears every
// placed node, spiralling outward on collision. It returns the final
// position and angle, and whether the position still overlaps.
func (p *placer) resolve(at den.Position, angle, dist float64) (den.Position, float64, bool) {
	pos := polar(at, angle, dist)
	for attempt := 0; attempt < p.cfg.MaxAttempts && p.collides(pos); attempt++ {
		dist += p.cfg.SpiralStep
		angle += p.cfg.SpiralAngle
		pos = polar(at, angle, dist)
	}
	return pos, angle, p.collides(pos)
}

func (p *placer) collides(pos den.Position) bool {
	for _, q := range p.placed {
		if math.Hypot(pos.X-q.X, pos.Y-q.Y) < p.cfg.OverlapThreshold {
			return true
		}
	}
	return false
}

func (p *placer) addNode(v *view, pos den.Position, overlapping bool) {
	p.placed = append(p.placed, pos)

	n := den.GraphNode{
		ID:          v.id,
		Label:       v.node.Identity(),
		Depth:       v.depth,
		PageCount:   len(v.node.Pages()),
		ChildCount:  len(v.children),
		Position:    pos,
		Overlapping: overlapping,
	}
	switch node := v.node.(type) {
	case *den.RootNode:
		n.Type = den.RefRoot
		n.Score = 1
		n.OriginScore = 1
		n.Tier = den.TierRoot
	case *den.ChildNode:
		n.Type = den.RefChild
		n.Score = node.ComparisonScore()
		n.OriginScore = node.ComparisonScoreToOrigin()
		n.IsDen = node.IsDen()
		n.Tier = den.ScoreTier(n.OriginScore)
		p.scoreSum += n.Score
	}
	n.Style = NodeStyle(n.Tier)

	p.graph.Nodes = append(p.graph.Nodes, n)
	p.graph.Stats.MaxDepth = max(p.graph.Stats.MaxDepth, v.depth)
}

func (p *placer) addEdge(parent, child *view) {
	c := child.node.(*den.ChildNode)
	tier := den.ScoreTier(c.ComparisonScore())
	p.graph.Edges = append(p.graph.Edges, den.GraphEdge{
		ID:     parent.id + "->" + child.id,
		Source: parent.id,
		Target: child.id,
		Score:  c.ComparisonScore(),
		Label:  PercentLabel(c.ComparisonScore()),
		Tier:   tier,
		Style:  EdgeStyle(tier),
	})
}

func polar(at den.Position, angle, dist float64) den.Position {
	return den.Position{
		X: at.X + dist*math.Cos(angle),
		Y: at.Y + dist*math.Sin(angle),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
