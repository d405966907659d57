package hierarchy

import (
	"fmt"
	"strings"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/golang/geo/r3"
)

var testAoi = geometry.CullingAoi{
	CenterLatDeg: 35.6581,
	CenterLonDeg: 139.7017,
	RadiusMeters: 500,
}

// aoiEcef is the center of testAoi in the tile frame
func aoiEcef() r3.Vector {
	return converters.EcefFromGeodetic(testAoi.Center())
}

// boxJSON returns a cube bounding volume centered at c in the tile frame
func boxJSON(c r3.Vector, half float64) string {
	return fmt.Sprintf(`{"box": [%f, %f, %f, %f, 0, 0, 0, %f, 0, 0, 0, %f]}`, c.X, c.Y, c.Z, half, half, half)
}

type testTile struct {
	volume   string
	content  string
	children []testTile
}

func (t testTile) json() string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"boundingVolume": %s, "geometricError": 10`, t.volume)
	if t.content != "" {
		fmt.Fprintf(&b, `, "content": {"uri": %q}`, t.content)
	}
	if len(t.children) > 0 {
		children := make([]string, len(t.children))
		for i, c := range t.children {
			children[i] = c.json()
		}
		fmt.Fprintf(&b, `, "children": [%s]`, strings.Join(children, ","))
	}
	b.WriteString("}")
	return b.String()
}

func manifestJSON(root testTile) []byte {
	return []byte(fmt.Sprintf(`{"asset": {"version": "1.0"}, "geometricError": 100, "root": %s}`, root.json()))
}

func insideTile(content string, children ...testTile) testTile {
	return testTile{volume: boxJSON(aoiEcef(), 100), content: content, children: children}
}

func outsideTile(content string) testTile {
	far := aoiEcef().Add(r3.Vector{X: 100000})
	return testTile{volume: boxJSON(far, 100), content: content}
}
