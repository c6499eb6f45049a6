package den

import (
	"encoding/json"
	"slices"
)

// Node is a position in a den tree: either a *RootNode or a *ChildNode.
// Both variants carry pages, concepts and children; the accessors below let
// callers treat them uniformly.
type Node interface {
	// Identity is the string new children are scored against:
	// the query of a root, the title of a child.
	Identity() string

	Pages() []string
	HasPage(url string) bool
	// AddPage appends url unless already present and reports whether it was added.
	AddPage(url string) bool

	Concepts() []Concept
	SetConcepts(concepts []Concept)

	Children() []*ChildNode
	// AppendChildren appends children and then points each one back at this node.
	AppendChildren(children ...*ChildNode)

	// Ref is the non-cyclic stand-in used when this node is referenced
	// as a parent in serialized form.
	Ref() ParentRef

	isNode()
}

// Parent reference types.
const (
	RefRoot  = "root"
	RefChild = "child"
)

// ParentRef identifies a parent node without pointing at it.
type ParentRef struct {
	RefType       string `json:"refType"`
	RefIdentifier string `json:"refIdentifier"`
}

// branch holds the state shared by both node variants.
type branch struct {
	pages    []string
	pageSet  map[string]struct{}
	concepts []Concept
	children []*ChildNode
}

func (b *branch) Pages() []string { return slices.Clone(b.pages) }

func (b *branch) HasPage(url string) bool {
	_, ok := b.pageSet[url]
	return ok
}

func (b *branch) AddPage(url string) bool {
	if b.HasPage(url) {
		return false
	}
	if b.pageSet == nil {
		b.pageSet = make(map[string]struct{})
	}
	b.pageSet[url] = struct{}{}
	b.pages = append(b.pages, url)
	return true
}

func (b *branch) Concepts() []Concept { return slices.Clone(b.concepts) }

func (b *branch) SetConcepts(concepts []Concept) { b.concepts = slices.Clone(concepts) }

func (b *branch) Children() []*ChildNode { return slices.Clone(b.children) }

func (b *branch) appendChildren(parent Node, children []*ChildNode) {
	b.children = append(b.children, children...)
	for _, c := range children {
		c.parent = parent
	}
}

// RootNode represents the original search query.
type RootNode struct {
	branch

	query       string
	denPages    []string
	answer      string
	shortAnswer string
}

var _ Node = (*RootNode)(nil)

// NewRootNode returns an empty root for query.
func NewRootNode(query string) *RootNode {
	return &RootNode{query: query}
}

func (*RootNode) isNode() {}

// Query returns the original search query.
func (r *RootNode) Query() string { return r.query }

// Identity returns the query.
func (r *RootNode) Identity() string { return r.query }

// AppendChildren appends children and sets their parent to r.
func (r *RootNode) AppendChildren(children ...*ChildNode) { r.appendChildren(r, children) }

// Ref returns the root's parent reference.
func (r *RootNode) Ref() ParentRef {
	return ParentRef{RefType: RefRoot, RefIdentifier: r.query}
}

// DenPages returns the URLs explicitly sent to the den, in insertion order.
func (r *RootNode) DenPages() []string { return slices.Clone(r.denPages) }

// AddDenPage records url as sent to the den and reports whether it was new.
func (r *RootNode) AddDenPage(url string) bool {
	if slices.Contains(r.denPages, url) {
		return false
	}
	r.denPages = append(r.denPages, url)
	return true
}

// Answer returns the long-form summary.
func (r *RootNode) Answer() string { return r.answer }

// ShortAnswer returns the short summary of at most MaxShortAnswerWords words.
func (r *RootNode) ShortAnswer() string { return r.shortAnswer }

// SetSummary replaces the answer and short answer.
func (r *RootNode) SetSummary(s *Summary) {
	r.answer = s.Answer
	r.shortAnswer = ShortAnswer(s.Answer, s.ShortAnswer)
}

// MarshalJSON implements json.Marshaler.
func (r *RootNode) MarshalJSON() ([]byte, error) {
	out := struct {
		Type        string       `json:"type"`
		Query       string       `json:"query"`
		Pages       []string     `json:"pages"`
		DenPages    []string     `json:"denPages"`
		Concepts    []Concept    `json:"concepts"`
		Children    []*ChildNode `json:"children"`
		Answer      string       `json:"answer"`
		ShortAnswer string       `json:"shortAnswer,omitempty"`
	}{
		Type:        RefRoot,
		Query:       r.query,
		Pages:       nonNil(r.pages),
		DenPages:    nonNil(r.denPages),
		Concepts:    nonNil(r.concepts),
		Children:    nonNil(r.children),
		Answer:      r.answer,
		ShortAnswer: r.shortAnswer,
	}
	return json.Marshal(out)
}

// ChildNode represents one concept promoted to a sub-topic.
type ChildNode struct {
	branch

	title       string
	isDen       bool
	score       float64
	originScore float64

	// parent is a lookup reference only; ownership runs root to leaves.
	parent Node
}

var _ Node = (*ChildNode)(nil)

// NewChildNode returns a child for concept c discovered on url, scored
// against its parent's identity. Children are attached with AppendChildren.
func NewChildNode(c Concept, url string, score float64) *ChildNode {
	n := &ChildNode{title: c.Title, score: ScoreClamp(score)}
	n.AddPage(url)
	n.concepts = []Concept{c}
	return n
}

func (*ChildNode) isNode() {}

// Title returns the title of the originating concept.
func (c *ChildNode) Title() string { return c.title }

// Identity returns the title.
func (c *ChildNode) Identity() string { return c.title }

// AppendChildren appends children and sets their parent to c.
func (c *ChildNode) AppendChildren(children ...*ChildNode) { c.appendChildren(c, children) }

// Ref returns the child's parent reference.
func (c *ChildNode) Ref() ParentRef {
	return ParentRef{RefType: RefChild, RefIdentifier: c.title}
}

// IsDen reports whether pages have been burrowed into this child.
func (c *ChildNode) IsDen() bool { return c.isDen }

// MarkDen flags the child as entered.
func (c *ChildNode) MarkDen() { c.isDen = true }

// ComparisonScore is the similarity to the immediate parent, fixed at creation.
func (c *ChildNode) ComparisonScore() float64 { return c.score }

// ComparisonScoreToOrigin is the similarity to the root query.
func (c *ChildNode) ComparisonScoreToOrigin() float64 { return c.originScore }

// SetComparisonScoreToOrigin sets the origin score, clamped to [0,1].
func (c *ChildNode) SetComparisonScoreToOrigin(score float64) {
	c.originScore = ScoreClamp(score)
}

// Parent returns the node that created this child, or nil if detached.
func (c *ChildNode) Parent() Node { return c.parent }

// Root follows parent references up to the root. Returns nil for a detached child.
func (c *ChildNode) Root() *RootNode {
	var n Node = c
	for {
		switch v := n.(type) {
		case *RootNode:
			return v
		case *ChildNode:
			if v.parent == nil {
				return nil
			}
			n = v.parent
		default:
			return nil
		}
	}
}

// MarshalJSON implements json.Marshaler. The parent is written as a ParentRef.
func (c *ChildNode) MarshalJSON() ([]byte, error) {
	var parent *ParentRef
	if c.parent != nil {
		ref := c.parent.Ref()
		parent = &ref
	}
	out := struct {
		Type                    string       `json:"type"`
		Title                   string       `json:"title"`
		Pages                   []string     `json:"pages"`
		Concepts                []Concept    `json:"concepts"`
		IsDen                   bool         `json:"isDen"`
		ComparisonScore         float64      `json:"comparisonScore"`
		ComparisonScoreToOrigin float64      `json:"comparisonScoreToOrigin"`
		Parent                  *ParentRef   `json:"parent"`
		Children                []*ChildNode `json:"children"`
	}{
		Type:                    RefChild,
		Title:                   c.title,
		Pages:                   nonNil(c.pages),
		Concepts:                nonNil(c.concepts),
		IsDen:                   c.isDen,
		ComparisonScore:         c.score,
		ComparisonScoreToOrigin: c.originScore,
		Parent:                  parent,
		Children:                nonNil(c.children),
	}
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
