package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/mitchelldurbincs/conquest/internal/game"
	"github.com/mitchelldurbincs/conquest/internal/game/core"
)

const (
	markerRadius = 9.0
	borderWidth  = 1.5
	circleSides  = 24
	legendRow    = 16
)

// Options controls the size and palette of rendered maps
type Options struct {
	Width      int
	Height     int
	Background color.RGBA
	Neutral    color.RGBA
	// Legend lists the players and their holdings in the corner
	Legend bool
}

// DefaultOptions returns the reference canvas size with a legend
func DefaultOptions() Options {
	return Options{
		Width:      baseWidth,
		Height:     baseHeight,
		Background: BackgroundColor,
		Neutral:    NeutralColor,
		Legend:     true,
	}
}

// Renderer draws game states as PNG maps. It is safe for concurrent use.
type Renderer struct {
	opts      Options
	world     *core.World
	positions map[string]point
	face      font.Face
	logger    zerolog.Logger
}

// New creates a renderer for games played on world
func New(world *core.World, opts Options, logger zerolog.Logger) (*Renderer, error) {
	if world == nil {
		return nil, errors.New("renderer requires a world")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	return &Renderer{
		opts:      opts,
		world:     world,
		positions: layout(world),
		face:      basicfont.Face7x13,
		logger:    logger.With().Str("component", "MapRenderer").Logger(),
	}, nil
}

// Render writes gs as a PNG to w
func (r *Renderer) Render(w io.Writer, gs *game.GameState) error {
	img := r.Image(gs)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode map: %w", err)
	}
	r.logger.Debug().Str("game_id", gs.ID).Int("turn", gs.TurnCount).Msg("Rendered map")
	return nil
}

// Image draws gs onto a new image
func (r *Renderer) Image(gs *game.GameState) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)

	r.drawBorders(img)
	for _, name := range r.world.TerritoryNames() {
		r.drawTerritory(img, gs, name)
	}
	if r.opts.Legend {
		r.drawLegend(img, gs)
	}
	return img
}

// scale maps a reference-canvas point onto the output image.
func (r *Renderer) scale(p point) (float32, float32) {
	return float32(p.X * float64(r.opts.Width) / baseWidth),
		float32(p.Y * float64(r.opts.Height) / baseHeight)
}

func (r *Renderer) drawBorders(img *image.RGBA) {
	width := float32(r.opts.Width)
	for _, name := range r.world.TerritoryNames() {
		ax, ay := r.scale(r.positions[name])
		for _, n := range r.world.Neighbours(name) {
			if n < name {
				continue
			}
			bx, by := r.scale(r.positions[n])
			if math.Abs(float64(bx-ax)) <= float64(width)/2 {
				r.line(img, ax, ay, bx, by, BorderColor)
				continue
			}
			// The border wraps around the edge of the map.
			left, right := [2]float32{ax, ay}, [2]float32{bx, by}
			if ax > bx {
				left, right = right, left
			}
			midY := (left[1] + right[1]) / 2
			r.line(img, left[0], left[1], 0, midY, BorderColor)
			r.line(img, right[0], right[1], width, midY, BorderColor)
		}
	}
}

func (r *Renderer) drawTerritory(img *image.RGBA, gs *game.GameState, name string) {
	fill := r.opts.Neutral
	troops := 0
	if t, ok := gs.Territories[name]; ok {
		troops = t.Troops
		if p, ok := gs.Players[t.Owner]; ok {
			fill = colorFor(p.Colour, r.opts.Neutral)
		}
	}
	x, y := r.scale(r.positions[name])
	r.circle(img, x, y, markerRadius, fill)
	if troops > 0 {
		r.text(img, strconv.Itoa(troops), int(x), int(y), textColorOn(fill), true)
	}
}

func (r *Renderer) drawLegend(img *image.RGBA, gs *game.GameState) {
	y := r.opts.Height - legendRow*len(gs.TurnOrder)
	for _, p := range gs.OrderedPlayers() {
		label := fmt.Sprintf("%s (%d)", p.ID, len(p.Territories))
		switch {
		case p.ID == gs.Winner:
			label += " winner"
		case p.Resigned:
			label += " resigned"
		case p.Eliminated:
			label += " out"
		}
		r.circle(img, 10, float32(y), 5, colorFor(p.Colour, r.opts.Neutral))
		r.text(img, label, 20, y, LegendTextColor, false)
		y += legendRow
	}
}

// circle fills a polygonal disc centred on (cx, cy).
func (r *Renderer) circle(img *image.RGBA, cx, cy, radius float32, c color.RGBA) {
	z := vector.NewRasterizer(r.opts.Width, r.opts.Height)
	z.DrawOp = draw.Over
	for i := 0; i < circleSides; i++ {
		theta := 2 * math.Pi * float64(i) / circleSides
		px := cx + radius*float32(math.Cos(theta))
		py := cy + radius*float32(math.Sin(theta))
		if i == 0 {
			z.MoveTo(px, py)
		} else {
			z.LineTo(px, py)
		}
	}
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

// line strokes a segment as a thin quadrilateral.
func (r *Renderer) line(img *image.RGBA, x0, y0, x1, y1 float32, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*borderWidth/2, dx/length*borderWidth/2

	z := vector.NewRasterizer(r.opts.Width, r.opts.Height)
	z.DrawOp = draw.Over
	z.MoveTo(x0+nx, y0+ny)
	z.LineTo(x1+nx, y1+ny)
	z.LineTo(x1-nx, y1-ny)
	z.LineTo(x0-nx, y0-ny)
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

// text draws s with its baseline near y, centred on x when centred is set.
func (r *Renderer) text(img *image.RGBA, s string, x, y int, c color.RGBA, centred bool) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
	}
	if centred {
		x -= d.MeasureString(s).Ceil() / 2
	}
	ascent := r.face.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(x, y+ascent/2-1)
	d.DrawString(s)
}
