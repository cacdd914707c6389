// Command stitch pastes the downloaded slippy map tiles covering one
// terrain tile into the single photo the viewer drapes over its mesh.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/echoflaresat/chartview/tiles"
	"golang.org/x/sync/errgroup"
)

func main() {
	cache := flag.String("cache", "cache/images", "Directory holding downloaded Z{zoom}-{x}-{y}.jpg tiles")
	lat := flag.Int("lat", 0, "Latitude of the terrain tile's south-west corner")
	lon := flag.Int("lon", 0, "Longitude of the terrain tile's south-west corner")
	zoom := flag.Int("zoom", tiles.DefaultZoom, "Zoom level of the downloaded tiles")
	tileDir := flag.String("tiles", "", "Store the result as photo/{lat}/{lon}/{zoom}.jpg under this directory")
	out := flag.String("out", "", "Write the result to this .png or .jpg file instead")
	flag.Parse()

	lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *tileDir == "" && *out == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -lat N -lon N (-tiles dir | -out file)\n", os.Args[0])
		os.Exit(1)
	}

	k := tiles.Key{Lat: *lat, Lon: *lon}
	canvas, err := stitch(context.Background(), tiles.DirSource{Root: *cache}, k, *zoom)
	if err != nil {
		lg.Error("stitch failed", "tile", k.String(), "error", err)
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = k.PhotoPath(*zoom)
	}
	data, err := encode(path, canvas)
	if err != nil {
		lg.Error("encode failed", "path", path, "error", err)
		os.Exit(1)
	}

	if *out != "" {
		err = os.WriteFile(*out, data, 0o644)
	} else {
		err = tiles.DirSource{Root: *tileDir}.WriteAsset(path, data)
	}
	if err != nil {
		lg.Error("write failed", "path", path, "error", err)
		os.Exit(1)
	}
	lg.Info("stitched", "tile", k.String(), "size", canvas.Bounds().Size().String(), "path", path)
}

// stitch decodes every slippy map tile covering k and draws them into one
// image, north-west tile at the origin.
func stitch(ctx context.Context, src tiles.Source, k tiles.Key, zoom int) (*image.NRGBA, error) {
	required := tiles.Required3857(k, zoom)
	first, last := required[0], required[len(required)-1]
	cols := last.X - first.X + 1
	rows := last.Y - first.Y + 1

	decoded := make([]image.Image, len(required))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i, m := range required {
		eg.Go(func() error {
			data, err := src.Await(ctx, m.CacheName())
			if err != nil {
				return err
			}
			img, err := tiles.DecodeTexture(data)
			if err != nil {
				return fmt.Errorf("%s: %w", m.CacheName(), err)
			}
			decoded[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	tileW := decoded[0].Bounds().Dx()
	tileH := decoded[0].Bounds().Dy()
	canvas := image.NewNRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
	for i, img := range decoded {
		if img.Bounds().Dx() != tileW || img.Bounds().Dy() != tileH {
			return nil, fmt.Errorf("tile size mismatch for %s: expected %dx%d, got %dx%d",
				required[i].CacheName(), tileW, tileH, img.Bounds().Dx(), img.Bounds().Dy())
		}
		x := (required[i].X - first.X) * tileW
		y := (required[i].Y - first.Y) * tileH
		draw.Draw(canvas, image.Rect(x, y, x+tileW, y+tileH), img, img.Bounds().Min, draw.Over)
	}
	return canvas, nil
}

// encode picks the output format from path's extension.
func encode(path string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported output format: %s", ext)
	}
	return buf.Bytes(), nil
}
