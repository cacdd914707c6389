package tiles

import (
	"fmt"
	"math"

	"github.com/echoflaresat/chartview/earth"
)

// DefaultZoom is the photo zoom level requested for terrain tiles.
const DefaultZoom = 13

// Key identifies a 1°×1° terrain tile by the integer latitude and
// longitude of its south-west corner.
type Key struct {
	Lat, Lon int
}

func (k Key) String() string {
	return fmt.Sprintf("%d,%d", k.Lat, k.Lon)
}

// PhotoPath is the path of the tile's photo texture at the given zoom.
func (k Key) PhotoPath(zoom int) string {
	return fmt.Sprintf("photo/%d/%d/%d.jpg", k.Lat, k.Lon, zoom)
}

// TerrainPath is the path of the tile's terrain mesh.
func (k Key) TerrainPath() string {
	return fmt.Sprintf("terrain/%d/%d.obj", k.Lat, k.Lon)
}

// KeyAt returns the tile containing g.
func KeyAt(g earth.Geodetic) Key {
	lat, lon := g.Degrees()
	return Key{Lat: int(math.Floor(lat)), Lon: wrapLon(int(math.Floor(lon)))}
}

// Around returns the tiles within radius tiles of the one containing g,
// ordered by latitude then longitude. Rows beyond the poles are dropped
// and longitudes wrap at the antimeridian.
func Around(g earth.Geodetic, radius int) []Key {
	center := KeyAt(g)
	keys := make([]Key, 0, (2*radius+1)*(2*radius+1))
	for lat := center.Lat - radius; lat <= center.Lat+radius; lat++ {
		if lat < -90 || lat > 89 {
			continue
		}
		for lon := center.Lon - radius; lon <= center.Lon+radius; lon++ {
			keys = append(keys, Key{Lat: lat, Lon: wrapLon(lon)})
		}
	}
	return keys
}

// wrapLon maps a whole-degree longitude into [-180, 180).
func wrapLon(lon int) int {
	lon = (lon + 180) % 360
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// Mercator is a web-mercator (EPSG:3857) slippy map tile.
type Mercator struct {
	X, Y, Zoom int
}

// WGSTo3857 returns the slippy map tile containing the given position.
// https://wiki.openstreetmap.org/wiki/Slippy_map_tilenames
func WGSTo3857(latDeg, lonDeg float64, zoom int) Mercator {
	lat := latDeg * earth.DegToRad
	lon := lonDeg * earth.DegToRad
	n := float64(int(1) << zoom)

	x := n / (2 * math.Pi) * (math.Pi + lon)
	y := n / (2 * math.Pi) * (math.Pi - math.Log(math.Tan(math.Pi/4+lat/2)))

	hi := float64(int(1)<<zoom - 1)
	clamp := func(v float64) int {
		return int(math.Max(0, math.Min(hi, math.Floor(v))))
	}
	return Mercator{X: clamp(x), Y: clamp(y), Zoom: zoom}
}

// CacheName is the file name a downloaded slippy map tile is stored under.
func (m Mercator) CacheName() string {
	return fmt.Sprintf("Z%d-%d-%d.jpg", m.Zoom, m.X, m.Y)
}

// Required3857 returns the slippy map tiles covering k, row by row from
// the north-west corner.
func Required3857(k Key, zoom int) []Mercator {
	nw := WGSTo3857(float64(k.Lat+1), float64(k.Lon), zoom)
	se := WGSTo3857(float64(k.Lat), float64(k.Lon+1), zoom)

	var out []Mercator
	for y := nw.Y; y <= se.Y; y++ {
		for x := nw.X; x <= se.X; x++ {
			out = append(out, Mercator{X: x, Y: y, Zoom: zoom})
		}
	}
	return out
}
