package layout

import (
	"fmt"
	"math"

	"github.com/isaacchacko/den"
)

var nodeStyles = map[den.Tier]den.NodeStyle{
	den.TierRoot:   {Size: 64, Color: "#6366f1", BorderColor: "#4338ca", FontSize: 16},
	den.TierHigh:   {Size: 44, Color: "#10b981", BorderColor: "#047857", FontSize: 14},
	den.TierMedium: {Size: 34, Color: "#f59e0b", BorderColor: "#b45309", FontSize: 12},
	den.TierLow:    {Size: 26, Color: "#ef4444", BorderColor: "#b91c1c", FontSize: 10},
}

var edgeStyles = map[den.Tier]den.EdgeStyle{
	den.TierHigh:   {Width: 3, Color: "#10b981"},
	den.TierMedium: {Width: 2, Color: "#f59e0b"},
	den.TierLow:    {Width: 1, Color: "#ef4444", Dashed: true},
}

// NodeStyle returns the style for tier.
func NodeStyle(tier den.Tier) den.NodeStyle {
	return nodeStyles[tier]
}

// EdgeStyle returns the style for tier. The root tier has no edge style.
func EdgeStyle(tier den.Tier) den.EdgeStyle {
	return edgeStyles[tier]
}

// PercentLabel formats a score in [0,1] as a whole percentage.
func PercentLabel(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(den.ScoreClamp(score)*100)))
}
