package render

import (
	"image/color"
)

// PlayerColors maps the colour names handed out to players onto RGB values
var PlayerColors = map[string]color.RGBA{
	"red":    {200, 0, 0, 255},
	"blue":   {0, 0, 128, 255},
	"yellow": {255, 245, 0, 255},
	"green":  {0, 128, 0, 255},
	"brown":  {110, 38, 10, 255},
	"black":  {0, 0, 0, 255},
}

// Board colours
var (
	NeutralColor    = color.RGBA{128, 128, 128, 255}
	BackgroundColor = color.RGBA{20, 40, 70, 255}
	BorderColor     = color.RGBA{200, 200, 200, 120}
	LegendTextColor = color.RGBA{230, 230, 230, 255}
)

// colorFor returns the fill colour of a territory held by a player of the
// named colour. Unknown names render as neutral.
func colorFor(name string, neutral color.RGBA) color.RGBA {
	if c, ok := PlayerColors[name]; ok {
		return c
	}
	return neutral
}

// textColorOn picks black or white text for legibility on fill.
func textColorOn(fill color.RGBA) color.RGBA {
	// Rec. 601 luma
	luma := (299*int(fill.R) + 587*int(fill.G) + 114*int(fill.B)) / 1000
	if luma > 160 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

// RGB converts a configured [r, g, b] triple
func RGB(v [3]int) color.RGBA {
	return color.RGBA{uint8(v[0]), uint8(v[1]), uint8(v[2]), 255}
}
