package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/echoflaresat/chartview/nav"
	"github.com/echoflaresat/chartview/render"
	"github.com/echoflaresat/chartview/tiles"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseFlight() flight {
	return flight{
		lat: 47.43, lon: 19.26, alt: 3000,
		fps:      60,
		duration: time.Second,
		width:    1270,
		height:   720,
		radius:   1,
		zoom:     tiles.DefaultZoom,
		light:    render.LightOffset,
	}
}

func reportLine(t *testing.T, out, key string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, key+" ") {
			return strings.TrimSpace(strings.TrimPrefix(line, key))
		}
	}
	t.Fatalf("no %q line in output:\n%s", key, out)
	return ""
}

func TestParseKeys(t *testing.T) {
	keys, err := parseKeys("MoveForward, FastToggle")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != nav.MoveForward || keys[1] != nav.FastToggle {
		t.Errorf("parseKeys = %v", keys)
	}
	if keys, err := parseKeys(""); err != nil || keys != nil {
		t.Errorf("empty: %v, %v", keys, err)
	}
	if _, err := parseKeys("Jump"); err == nil {
		t.Errorf("expected an error for an unknown key")
	}
}

func TestParseFixes(t *testing.T) {
	fixes, err := parseFixes("-12.02,-77.11,1500; -12.1, -77.0, 3000")
	if err != nil {
		t.Fatal(err)
	}
	want := []nav.Fix{{Lat: -12.02, Lon: -77.11, AltFeet: 1500}, {Lat: -12.1, Lon: -77.0, AltFeet: 3000}}
	if len(fixes) != len(want) || fixes[0] != want[0] || fixes[1] != want[1] {
		t.Errorf("parseFixes = %v, want %v", fixes, want)
	}
	for _, bad := range []string{"1,2", "1,2,x", "1,2,3;"} {
		if _, err := parseFixes(bad); err == nil {
			t.Errorf("parseFixes(%q): expected an error", bad)
		}
	}
}

func TestParseDrag(t *testing.T) {
	cases := []struct {
		in      string
		dx, dy  float64
		wantErr bool
	}{
		{"", 0, 0, false},
		{"3,-2", 3, -2, false},
		{" 1.5 , 0 ", 1.5, 0, false},
		{"3", 0, 0, true},
		{"a,b", 0, 0, true},
	}
	for _, c := range cases {
		dx, dy, err := parseDrag(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("parseDrag(%q) error = %v", c.in, err)
			continue
		}
		if dx != c.dx || dy != c.dy {
			t.Errorf("parseDrag(%q) = %v, %v", c.in, dx, dy)
		}
	}
}

func TestNewLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chartview.slog")
	lg, closer, err := newLogger(path, "debug")
	if err != nil {
		t.Fatal(err)
	}
	lg.Debug("tile neighbourhood changed", "tiles", 9)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte(`"msg":"tile neighbourhood changed"`)) || !bytes.Contains(b, []byte(`"tiles":9`)) {
		t.Errorf("log file = %s", b)
	}

	if _, _, err := newLogger("", "loud"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}

func TestNewLoggerStderrCloser(t *testing.T) {
	_, closer, err := newLogger("", "warn")
	if err != nil {
		t.Fatal(err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestRunHoldsPosition(t *testing.T) {
	var out bytes.Buffer
	if err := run(baseFlight(), &out, quietLogger()); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if got := reportLine(t, s, "position"); got != "47.430000 19.260000" {
		t.Errorf("position = %q", got)
	}
	if got := reportLine(t, s, "altitude"); got != "3000.0 ft" {
		t.Errorf("altitude = %q", got)
	}
	// one pose for the jump, one per frame
	if got := reportLine(t, s, "frames"); got != "61" {
		t.Errorf("frames = %q", got)
	}
	if got := reportLine(t, s, "ground"); !strings.HasPrefix(got, "none") {
		t.Errorf("ground = %q, want none without tiles", got)
	}
	// a level gaze never meets the ground
	if got := reportLine(t, s, "target"); got != "none" {
		t.Errorf("target = %q, want none", got)
	}
}

func TestRunLooksDown(t *testing.T) {
	f := baseFlight()
	f.dragY = 10

	var out bytes.Buffer
	if err := run(f, &out, quietLogger()); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if got := reportLine(t, s, "pitch"); got != "-59.000 deg" {
		t.Errorf("pitch = %q", got)
	}
	// 3000 ft up, looking 59 degrees down: the ground just north of the camera
	if got := reportLine(t, s, "target"); !strings.HasPrefix(got, "47.43") || !strings.HasSuffix(got, "nm") {
		t.Errorf("target = %q", got)
	}
}

func TestRunFliesToFixes(t *testing.T) {
	f := baseFlight()
	f.fixes = []nav.Fix{{Lat: 0, Lon: 0, AltFeet: 0}, {Lat: 0, Lon: 1, AltFeet: 0}}
	f.duration = 0

	var out bytes.Buffer
	if err := run(f, &out, quietLogger()); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if got := reportLine(t, s, "position"); got != "-0.100000 0.000000" {
		t.Errorf("position = %q", got)
	}
	if got := reportLine(t, s, "altitude"); got != "4000.0 ft" {
		t.Errorf("altitude = %q", got)
	}
	if got := reportLine(t, s, "path"); got != "62 points 60.1 nm" {
		t.Errorf("path = %q", got)
	}
}

func TestRunClimbsAndTurns(t *testing.T) {
	f := baseFlight()
	f.keys = []nav.Key{nav.MoveUp}
	f.dragX = 10

	var out bytes.Buffer
	if err := run(f, &out, quietLogger()); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if got := reportLine(t, s, "altitude"); got == "3000.0 ft" {
		t.Errorf("altitude unchanged while climbing")
	}
	// 59 frames of 10 px at 10 px per degree
	if got := reportLine(t, s, "heading"); got != "59.000 deg" {
		t.Errorf("heading = %q", got)
	}
}

func writeTile(t *testing.T, src tiles.DirSource, k tiles.Key) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{G: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := src.WriteAsset(k.PhotoPath(tiles.DefaultZoom), buf.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := src.WriteAsset(k.TerrainPath(), []byte("v 0 0 0\n")); err != nil {
		t.Fatal(err)
	}
}

func TestRunLoadsTiles(t *testing.T) {
	src := tiles.DirSource{Root: t.TempDir()}
	center := tiles.Key{Lat: 47, Lon: 19}
	writeTile(t, src, center)

	f := baseFlight()
	f.tileDir = src.Root
	f.duration = 100 * time.Millisecond

	var out bytes.Buffer
	if err := run(f, &out, quietLogger()); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	// the eight neighbours have no assets and fail to load
	if got := reportLine(t, s, "tiles"); got != "1" {
		t.Errorf("tiles = %q, want 1", got)
	}
	if got := reportLine(t, s, "ground"); !strings.HasPrefix(got, "#") {
		t.Errorf("ground = %q, want a color", got)
	}
}
