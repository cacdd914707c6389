package tiles

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
)

// Event reports a change in a tile's state to the scene.
type Event interface {
	TileKey() Key
}

// MeshReady carries a tile's terrain mesh (OBJ text).
type MeshReady struct {
	Key  Key
	Mesh []byte
}

// TextureReady carries a tile's decoded photo texture.
type TextureReady struct {
	Key     Key
	Texture image.Image
}

// Unloaded tells the scene to drop a tile.
type Unloaded struct {
	Key Key
}

type LoadFailed struct {
	Key Key
	Err error
}

func (e MeshReady) TileKey() Key    { return e.Key }
func (e TextureReady) TileKey() Key { return e.Key }
func (e Unloaded) TileKey() Key     { return e.Key }
func (e LoadFailed) TileKey() Key   { return e.Key }

type Options struct {
	// Zoom is the photo zoom level; DefaultZoom if zero.
	Zoom int
	// CacheSize is the number of raw assets kept after their tile is
	// unloaded; 64 if zero.
	CacheSize int
	Logger    *slog.Logger
}

// Manager tracks which tiles are loading and loaded, and loads them in
// the background. Completions are delivered in order on Events.
//
// A load cannot be cancelled once started: a tile that stops being wanted
// while it loads is still reported ready, and is unloaded by the next Sync
// that does not want it.
type Manager struct {
	src   Source
	zoom  int
	cache *lru.Cache // path -> []byte
	lg    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	loading map[Key]struct{}
	loaded  map[Key]struct{}
	pending []Event

	wake   chan struct{}
	events chan Event
	done   chan struct{}
}

func NewManager(src Source, opts Options) (*Manager, error) {
	if opts.Zoom == 0 {
		opts.Zoom = DefaultZoom
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = 64
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("tile cache: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		src:     src,
		zoom:    opts.Zoom,
		cache:   cache,
		lg:      opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
		loading: make(map[Key]struct{}),
		loaded:  make(map[Key]struct{}),
		wake:    make(chan struct{}, 1),
		events:  make(chan Event),
		done:    make(chan struct{}),
	}
	go m.pump()
	return m, nil
}

// Events returns the channel completions are delivered on. It is closed
// by Close.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Sync makes want the set of tiles that should be loaded: loaded tiles
// not in want are unloaded unless they are still loading, and wanted
// tiles that are neither loading nor loaded start loading. Sync does not
// block.
func (m *Manager) Sync(want []Key) {
	wanted := make(map[Key]struct{}, len(want))
	for _, k := range want {
		wanted[k] = struct{}{}
	}

	m.mu.Lock()
	var stale []Key
	for k := range m.loaded {
		if _, ok := wanted[k]; !ok {
			stale = append(stale, k)
		}
	}
	m.mu.Unlock()

	for _, k := range stale {
		m.Unload(k)
	}
	for _, k := range want {
		m.Load(k)
	}
}

// Load starts loading k in the background unless it is already loading
// or loaded.
func (m *Manager) Load(k Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.lg.Warn("tile load after close", "tile", k.String())
		return
	}
	if _, ok := m.loading[k]; ok {
		return
	}
	if _, ok := m.loaded[k]; ok {
		return
	}
	m.loading[k] = struct{}{}

	m.wg.Add(1)
	go m.load(k)
}

// Unload drops a loaded tile. Tiles that are still loading are left
// alone.
func (m *Manager) Unload(k Key) {
	m.mu.Lock()
	if _, ok := m.loading[k]; ok {
		m.mu.Unlock()
		return
	}
	if _, ok := m.loaded[k]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.loaded, k)
	m.mu.Unlock()

	m.lg.Debug("tile unloaded", "tile", k.String())
	m.emit(Unloaded{Key: k})
}

// Loaded reports whether k has finished loading and not been unloaded.
func (m *Manager) Loaded(k Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loaded[k]
	return ok
}

// Wait blocks until every load started so far has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close stops in-flight loads, waits for them and closes Events.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	<-m.done
	return nil
}

func (m *Manager) load(k Key) {
	defer m.wg.Done()

	m.lg.Debug("loading tile", "tile", k.String())

	var photo, mesh []byte
	eg, ctx := errgroup.WithContext(m.ctx)
	eg.Go(func() error {
		var err error
		photo, err = m.fetch(ctx, k.PhotoPath(m.zoom))
		return err
	})
	eg.Go(func() error {
		var err error
		mesh, err = m.fetch(ctx, k.TerrainPath())
		return err
	})

	err := eg.Wait()
	var tex image.Image
	if err == nil {
		tex, err = DecodeTexture(photo)
		if err != nil {
			err = fmt.Errorf("%s: %w", k.PhotoPath(m.zoom), err)
		}
	}

	m.mu.Lock()
	delete(m.loading, k)
	if err == nil {
		m.loaded[k] = struct{}{}
	}
	m.mu.Unlock()

	if err != nil {
		m.lg.Warn("tile load failed", "tile", k.String(), "error", err)
		m.emit(LoadFailed{Key: k, Err: err})
		return
	}
	m.emit(MeshReady{Key: k, Mesh: mesh})
	m.emit(TextureReady{Key: k, Texture: tex})
}

func (m *Manager) fetch(ctx context.Context, path string) ([]byte, error) {
	if v, ok := m.cache.Get(path); ok {
		return v.([]byte), nil
	}
	b, err := m.src.Await(ctx, path)
	if err != nil {
		return nil, err
	}
	m.cache.Add(path, b)
	return b, nil
}

// emit queues ev for delivery without blocking the caller.
func (m *Manager) emit(ev Event) {
	m.mu.Lock()
	m.pending = append(m.pending, ev)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// pump forwards queued events to the events channel in order.
func (m *Manager) pump() {
	defer close(m.done)
	defer close(m.events)
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.mu.Unlock()
			select {
			case <-m.wake:
				continue
			case <-m.ctx.Done():
				return
			}
		}
		ev := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		select {
		case m.events <- ev:
		case <-m.ctx.Done():
			return
		}
	}
}
