package graph

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultEdgeColour = "#F44A07"
	DefaultNodeColour = "#1D1E21"
	DefaultFontColour = "#FFFFFF"
)

var namedColours = map[string]string{
	"white":  "#FFFFFF",
	"black":  "#000000",
	"red":    "#FF0000",
	"green":  "#008000",
	"blue":   "#0000FF",
	"yellow": "#FFFF00",
	"orange": "#FFA500",
	"grey":   "#808080",
	"gray":   "#808080",
}

// ParseColour accepts #rgb, #rrggbb and a handful of CSS colour names.
func ParseColour(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if hex, ok := namedColours[strings.ToLower(s)]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid colour %q", s)
	}
	return c, nil
}

func optionalColour(s string) (*colorful.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := ParseColour(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Style is the graph-level look every node and edge falls back to.
type Style struct {
	EdgeColour colorful.Color
	NodeColour colorful.Color
	FontColour colorful.Color
	Highlight  colorful.Color
}

func defaultStyle() Style {
	edge, _ := ParseColour(DefaultEdgeColour)
	node, _ := ParseColour(DefaultNodeColour)
	font, _ := ParseColour(DefaultFontColour)
	hl, _ := ParseColour("#4FC3F7")
	return Style{EdgeColour: edge, NodeColour: node, FontColour: font, Highlight: hl}
}
