package layout

import (
	"github.com/penwyp/go-start-clock/internal/core/model"
)

// Layout styles, cycled with the 't' key
const (
	StyleFull = iota
	StyleCompact

	styleCount
)

// LayoutStrategy renders one frame of the clock as screen lines
type LayoutStrategy interface {
	Render(view *model.ClockView, param model.LayoutParam) []string
	GetName() string
}

// GetLayoutStrategy returns the appropriate layout strategy based on the style
func GetLayoutStrategy(layoutStyle int) LayoutStrategy {
	strategies := map[int]LayoutStrategy{
		StyleFull:    &FullLayoutStrategy{},
		StyleCompact: &CompactLayoutStrategy{},
	}

	if strategy, exists := strategies[layoutStyle]; exists {
		return strategy
	}

	// Default to the full clock if invalid style
	return &FullLayoutStrategy{}
}

// NextStyle cycles Full → Compact → Full
func NextStyle(style int) int {
	return (style + 1) % styleCount
}
