package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/echoflaresat/chartview/earth"
	"github.com/echoflaresat/chartview/nav"
	"github.com/echoflaresat/chartview/render"
	"github.com/echoflaresat/chartview/tiles"
	"gopkg.in/natefinch/lumberjack.v2"
)

type config struct {
	lat, lon, alt  *float64
	proc           *bool
	fixes          *string
	keys, drag     *string
	fps            *int
	duration       *time.Duration
	width, height  *int
	tileDir        *string
	radius, zoom   *int
	light, timeStr *string
	logFile        *string
	logLevel       *string
	showHelp       *bool
}

func defineFlags() config {
	return config{
		lat:   flag.Float64("lat", 0.0, "Start latitude in degrees"),
		lon:   flag.Float64("lon", 0.0, "Start longitude in degrees"),
		alt:   flag.Float64("alt", 5000.0, "Start altitude in feet"),
		proc:  flag.Bool("proc", false, "Treat the position as a procedure's first fix and fly to its vantage point"),
		fixes: flag.String("fixes", "", "Procedure fixes as lat,lon,alt;... (degrees, feet); flies to the first one's vantage point"),

		keys:     flag.String("keys", "", "Comma-separated keys held for the whole flight (MoveForward, MoveLeft, FastToggle, ...)"),
		drag:     flag.String("drag", "", "Pointer drag per frame as dx,dy pixels"),
		fps:      flag.Int("fps", 60, "Frames per second"),
		duration: flag.Duration("duration", 5*time.Second, "Flight duration"),
		width:    flag.Int("width", 1270, "Window width in pixels, including the side panel"),
		height:   flag.Int("height", 720, "Window height in pixels"),

		tileDir: flag.String("tiles", "", "Directory holding photo/ and terrain/ tiles; empty disables terrain"),
		radius:  flag.Int("radius", 1, "Tiles loaded around the camera in each direction"),
		zoom:    flag.Int("zoom", tiles.DefaultZoom, "Photo zoom level"),

		light:   flag.String("light", "offset", "Light placement: offset or sun"),
		timeStr: flag.String("time", "", "Time for sun lighting in RFC3339 format; defaults to now"),

		logFile:  flag.String("log-file", "", "Write JSON logs to this file (rotated); default is text on stderr"),
		logLevel: flag.String("log-level", "info", "Log level: debug, info, warn or error"),

		showHelp: flag.Bool("h", false, "Show this help message"),
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `chartview - headless flight over procedure chart terrain

Usage:
  %[1]s [options]

`, os.Args[0])

	printGroup("Position", []string{"lat", "lon", "alt", "proc", "fixes"})
	printGroup("Flight", []string{"keys", "drag", "fps", "duration", "width", "height"})
	printGroup("Terrain", []string{"tiles", "radius", "zoom"})
	printGroup("Lighting", []string{"light", "time"})
	printGroup("Logging", []string{"log-file", "log-level"})
	printGroup("Misc", []string{"h"})
}

func printGroup(title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := flag.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-10s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

// flight is everything run needs, resolved from the command line.
type flight struct {
	lat, lon, alt float64
	proc          bool
	fixes         []nav.Fix
	keys          []nav.Key
	dragX, dragY  float64
	fps           int
	duration      time.Duration
	width, height int
	tileDir       string
	radius, zoom  int
	light         render.LightMode
	at            time.Time
}

func (c config) flight() (flight, error) {
	f := flight{
		lat: *c.lat, lon: *c.lon, alt: *c.alt,
		proc:     *c.proc,
		fps:      *c.fps,
		duration: *c.duration,
		width:    *c.width,
		height:   *c.height,
		tileDir:  *c.tileDir,
		radius:   *c.radius,
		zoom:     *c.zoom,
	}
	var err error
	if f.fixes, err = parseFixes(*c.fixes); err != nil {
		return f, err
	}
	if f.keys, err = parseKeys(*c.keys); err != nil {
		return f, err
	}
	if f.dragX, f.dragY, err = parseDrag(*c.drag); err != nil {
		return f, err
	}
	if f.light, err = render.ParseLightMode(*c.light); err != nil {
		return f, err
	}
	if *c.timeStr != "" {
		if f.at, err = time.Parse(time.RFC3339, *c.timeStr); err != nil {
			return f, fmt.Errorf("invalid time: %w", err)
		}
	}
	if f.fps <= 0 {
		return f, fmt.Errorf("fps must be positive, got %d", f.fps)
	}
	return f, nil
}

func parseKeys(s string) ([]nav.Key, error) {
	if s == "" {
		return nil, nil
	}
	var keys []nav.Key
	for _, name := range strings.Split(s, ",") {
		k, err := nav.ParseKey(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func parseFixes(s string) ([]nav.Fix, error) {
	if s == "" {
		return nil, nil
	}
	var fixes []nav.Fix
	for _, item := range strings.Split(s, ";") {
		parts := strings.Split(item, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid fix %q (expected lat,lon,alt)", item)
		}
		var v [3]float64
		for i, p := range parts {
			x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid fix %q: %w", item, err)
			}
			v[i] = x
		}
		fixes = append(fixes, nav.Fix{Lat: v[0], Lon: v[1], AltFeet: v[2]})
	}
	return fixes, nil
}

func parseDrag(s string) (dx, dy float64, err error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid drag %q (expected dx,dy)", s)
	}
	if dx, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid drag dx: %w", err)
	}
	if dy, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid drag dy: %w", err)
	}
	return dx, dy, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger logs JSON to a rotated file when path is set, text to stderr
// otherwise. The closer is always non-nil.
func newLogger(path, level string) (*slog.Logger, io.Closer, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nopCloser{}, nil
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if lvl <= slog.LevelDebug {
		w.MaxSize = 512
	}
	return slog.New(slog.NewJSONHandler(w, opts)), w, nil
}

func main() {
	cfg := defineFlags()
	flag.Usage = printHelp
	flag.Parse()

	if *cfg.showHelp {
		printHelp()
		return
	}

	lg, closer, err := newLogger(*cfg.logFile, *cfg.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closer.Close()

	f, err := cfg.flight()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(f, os.Stdout, lg); err != nil {
		lg.Error("flight failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

// run flies the camera for f.duration and prints where it ended up.
func run(f flight, out io.Writer, lg *slog.Logger) error {
	scene := render.NewScene(render.NewLighting(f.light, f.at), lg)
	scene.Resize(f.width, f.height)

	navCfg := nav.DefaultConfig()
	var (
		tr  nav.TileRequester
		mgr *tiles.Manager
	)
	if f.tileDir != "" {
		var err error
		mgr, err = tiles.NewManager(tiles.DirSource{Root: f.tileDir}, tiles.Options{Zoom: f.zoom, Logger: lg})
		if err != nil {
			return err
		}
		defer func() {
			if err := mgr.Close(); err != nil && !errors.Is(err, tiles.ErrClosed) {
				lg.Warn("closing tile manager", "error", err)
			}
		}()
		navCfg.TileRadius = f.radius
		tr = mgr
	}

	core := nav.NewCore(navCfg, scene, tr, lg)
	switch {
	case len(f.fixes) > 0:
		first := f.fixes[0]
		scene.SetProcedure(nav.ProcedurePath(f.fixes, navCfg.Radius, nav.PathSpacing))
		core.FlyToProcedure(first.Lat, first.Lon, first.AltFeet)
	case f.proc:
		core.FlyToProcedure(f.lat, f.lon, f.alt)
	default:
		core.JumpTo(f.lat, f.lon, f.alt)
	}

	for _, k := range f.keys {
		core.KeyDown(k)
	}
	dragging := f.dragX != 0 || f.dragY != 0
	if dragging {
		core.PointerDown(0, 0)
	}

	dt := time.Second / time.Duration(f.fps)
	frames := int(f.duration / dt)
	start := time.Now()
	for i := 1; i <= frames; i++ {
		if dragging {
			core.PointerMove(float64(i)*f.dragX, float64(i)*f.dragY)
		}
		core.Tick(dt)
		if mgr != nil {
			pollEvents(scene, mgr.Events())
		}
	}
	if dragging {
		core.PointerUp()
	}
	if mgr != nil {
		mgr.Wait()
		settleEvents(scene, mgr.Events(), 100*time.Millisecond)
	}
	lg.Info("flight finished", "frames", frames, "elapsed", time.Since(start))

	report(out, core, scene)
	return nil
}

// pollEvents applies the tile events that are ready without waiting.
func pollEvents(scene *render.Scene, events <-chan tiles.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			scene.Apply(ev)
		default:
			return
		}
	}
}

// settleEvents applies events until none arrive for quiet.
func settleEvents(scene *render.Scene, events <-chan tiles.Event, quiet time.Duration) {
	timer := time.NewTimer(quiet)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			scene.Apply(ev)
			timer.Reset(quiet)
		case <-timer.C:
			return
		}
	}
}

func report(out io.Writer, core *nav.Core, scene *render.Scene) {
	lat, lon := core.Geodetic().Degrees()
	a := core.Angles()
	gaze := core.Gaze()

	fmt.Fprintf(out, "position  %.6f %.6f\n", lat, lon)
	fmt.Fprintf(out, "altitude  %.1f ft\n", core.Altitude())
	fmt.Fprintf(out, "heading   %.3f deg\n", a.Heading*earth.RadToDeg)
	fmt.Fprintf(out, "pitch     %.3f deg\n", a.Pitch*earth.RadToDeg)
	fmt.Fprintf(out, "gaze      %.6f %.6f %.6f\n", gaze.X, gaze.Y, gaze.Z)
	fmt.Fprintf(out, "frames    %d\n", scene.Frames())
	fmt.Fprintf(out, "tiles     %d\n", len(scene.Tiles()))
	if c, ok := scene.Ground(core.Geodetic()); ok {
		fmt.Fprintf(out, "ground    %s\n", c)
	} else {
		fmt.Fprintf(out, "ground    none (sky %s)\n", scene.Clear())
	}
	if h, ok := scene.PickCenter(); ok {
		tlat, tlon := h.Geodetic.Degrees()
		fmt.Fprintf(out, "target    %.6f %.6f at %.3f nm\n", tlat, tlon, h.Range)
	} else {
		fmt.Fprintf(out, "target    none\n")
	}
	if path := scene.Procedure(); len(path) > 0 {
		fmt.Fprintf(out, "path      %d points %.1f nm\n", len(path), nav.PathLength(path))
	}
	fmt.Fprintf(out, "view\n%s", scene.View())
}
