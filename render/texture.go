package render

import (
	"image"
	"math"

	"github.com/echoflaresat/chartview/colors"
	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/tiles"
)

// Texture is a tile's photo, north up, spanning one degree of latitude
// and longitude.
type Texture struct {
	Width  int
	Height int
	img    image.Image
}

func NewTexture(img image.Image) Texture {
	b := img.Bounds()
	return Texture{Width: b.Dx(), Height: b.Dy(), img: img}
}

// Sample returns the texel of tile k under g, without interpolation.
// Positions outside the tile clamp to its edge.
func (t Texture) Sample(k tiles.Key, g earth.Geodetic) colors.Color4 {
	return t.getColorAtXY(t.getXY(k, g))
}

func (t Texture) getColorAtXY(x, y int) colors.Color4 {
	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}

	b := t.img.Bounds()
	return colors.FromStandardColor(t.img.At(b.Min.X+x, b.Min.Y+y))
}

func (t Texture) getXY(k tiles.Key, g earth.Geodetic) (int, int) {
	lat, lon := g.Degrees()

	du := math.Mod(lon-float64(k.Lon), 360)
	if du < -180 {
		du += 360
	} else if du >= 180 {
		du -= 360
	}
	dv := lat - float64(k.Lat)

	x := int(math.Floor(du * float64(t.Width)))
	y := int(math.Floor((1 - dv) * float64(t.Height)))
	return x, y
}
