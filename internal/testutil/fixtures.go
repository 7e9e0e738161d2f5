package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
)

// ClassicWorld loads the embedded 42-territory board or fails the test.
func ClassicWorld(t testing.TB) *core.World {
	t.Helper()
	w, err := core.ClassicWorld()
	require.NoError(t, err)
	return w
}

// TinyMap is a four-territory board: a square of borders North-East-South-West
// with two continents.
const TinyMap = `
>Upland 2
North - East, West
East - North, South
>Lowland 1
South - East, West
West - North, South
`

// TinyWorld loads TinyMap or fails the test.
func TinyWorld(t testing.TB) *core.World {
	t.Helper()
	w, err := core.LoadWorld(strings.NewReader(TinyMap))
	require.NoError(t, err)
	return w
}
