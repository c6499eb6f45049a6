package den

// Position is a point in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tier buckets a node or edge by score for visual encoding.
type Tier string

// Tier constants.
const (
	TierRoot   Tier = "root"
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// ScoreTier buckets score: above 0.7 is high, 0.4 to 0.7 is medium,
// below 0.4 is low.
func ScoreTier(score float64) Tier {
	switch {
	case score > 0.7:
		return TierHigh
	case score >= 0.4:
		return TierMedium
	default:
		return TierLow
	}
}

// NodeStyle is the visual encoding of a graph node.
type NodeStyle struct {
	Size        float64 `json:"size"`
	Color       string  `json:"color"`
	BorderColor string  `json:"borderColor"`
	FontSize    float64 `json:"fontSize"`
}

// EdgeStyle is the visual encoding of a graph edge.
type EdgeStyle struct {
	Width  float64 `json:"width"`
	Color  string  `json:"color"`
	Dashed bool    `json:"dashed"`
}

// GraphNode is a positioned, styled den node.
type GraphNode struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        string    `json:"type"` // RefRoot or RefChild
	Depth       int       `json:"depth"`
	Score       float64   `json:"score"`
	OriginScore float64   `json:"originScore"`
	IsDen       bool      `json:"isDen"`
	PageCount   int       `json:"pageCount"`
	ChildCount  int       `json:"childCount"`
	Tier        Tier      `json:"tier"`
	Position    Position  `json:"position"`
	Style       NodeStyle `json:"style"`

	// Overlapping is set when collision avoidance ran out of attempts and
	// the node was placed within the overlap threshold of another node.
	Overlapping bool `json:"overlapping,omitempty"`
}

// GraphEdge links a parent node to one of its children.
type GraphEdge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Score  float64   `json:"score"`
	Label  string    `json:"label"`
	Tier   Tier      `json:"tier"`
	Style  EdgeStyle `json:"style"`
}

// GraphStats summarizes a laid-out graph.
type GraphStats struct {
	TotalNodes   int     `json:"totalNodes"`
	TotalEdges   int     `json:"totalEdges"`
	MaxDepth     int     `json:"maxDepth"`
	AverageScore float64 `json:"averageScore"`
}

// Graph is the drawable projection of a den tree.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
	Stats GraphStats  `json:"stats"`
}
