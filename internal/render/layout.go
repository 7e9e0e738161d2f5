package render

import (
	"math"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
)

// Reference canvas the classic positions are measured on.
const (
	baseWidth  = 800
	baseHeight = 520
)

type point struct{ X, Y float64 }

var classicPositions = map[string]point{
	"Alaska":                {44, 94},
	"North West Territory":  {125, 86},
	"Greenland":             {268, 59},
	"Alberta":               {112, 136},
	"Ontario":               {155, 122},
	"Quebec":                {206, 151},
	"Western United States": {109, 199},
	"Eastern United States": {195, 188},
	"Central America":       {135, 253},
	"Venezuela":             {170, 288},
	"Peru":                  {172, 371},
	"Brazil":                {243, 375},
	"Argentina":             {190, 457},
	"Iceland":               {329, 114},
	"Scandinavia":           {393, 122},
	"Ukraine":               {457, 164},
	"Great Britain":         {326, 179},
	"Northern Europe":       {371, 194},
	"Western Europe":        {340, 260},
	"Southern Europe":       {380, 234},
	"North Africa":          {359, 316},
	"Egypt":                 {425, 326},
	"East Africa":           {452, 351},
	"Congo":                 {431, 421},
	"South Africa":          {429, 498},
	"Madagascar":            {493, 475},
	"Ural":                  {553, 145},
	"Siberia":               {597, 101},
	"Yakutsk":               {644, 77},
	"Kamchatka":             {702, 82},
	"Irkutsk":               {635, 145},
	"Mongolia":              {648, 197},
	"Japan":                 {723, 207},
	"Afghanistan":           {536, 214},
	"China":                 {644, 252},
	"Middle East":           {489, 305},
	"India":                 {583, 302},
	"Siam":                  {661, 317},
	"Indonesia":             {656, 414},
	"New Guinea":            {733, 392},
	"Western Australia":     {689, 452},
	"Eastern Australia":     {762, 485},
}

// layout places every territory of w on the reference canvas. Territories
// without a known position are spread around an ellipse in board order.
func layout(w *core.World) map[string]point {
	names := w.TerritoryNames()
	out := make(map[string]point, len(names))
	var unplaced []string
	for _, name := range names {
		if p, ok := classicPositions[name]; ok {
			out[name] = p
		} else {
			unplaced = append(unplaced, name)
		}
	}
	for i, name := range unplaced {
		theta := 2 * math.Pi * float64(i) / float64(len(unplaced))
		out[name] = point{
			X: baseWidth/2 + 0.4*baseWidth*math.Cos(theta),
			Y: baseHeight/2 + 0.4*baseHeight*math.Sin(theta),
		}
	}
	return out
}
