// Package asset drives the lifecycle of procedural asset instances: library
// load, instantiation, cooking, parameter fetch and geometry refresh. A
// Session carries the configuration and shared services every instance
// needs; nothing in this package reaches for globals.
package asset

import (
	"sync"

	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/attrib"
	"github.com/otl-tools/otlbridge/pkg/geo"
	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// Event is a lifecycle notification delivered to session observers.
type Event int

const (
	// EventBuilt fires after a full build, including the first.
	EventBuilt Event = iota
	// EventCooked fires after an incremental recook refresh.
	EventCooked
	// EventDestroyed fires when an asset is torn down.
	EventDestroyed
)

func (e Event) String() string {
	switch e {
	case EventBuilt:
		return "built"
	case EventCooked:
		return "cooked"
	case EventDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Observer receives asset lifecycle events. Called synchronously from the
// session goroutine performing the operation.
type Observer func(a *Asset, ev Event)

// Options are the per-session behaviour switches.
type Options struct {
	// BrushRate seeds new paint attributes. Zero or negative falls back
	// to the stock rate.
	BrushRate float64

	// PaintFirstVertex includes vertex 0 in paint strokes.
	PaintFirstVertex bool

	// ImportTemplatedGeos imports templated geos instead of skipping them.
	ImportTemplatedGeos bool

	// EnableCooking gates all engine cooks. With cooking disabled an
	// asset builds its node tree from whatever the engine last cooked.
	EnableCooking bool
}

// DefaultOptions returns the stock session behaviour.
func DefaultOptions() Options {
	return Options{
		BrushRate:     attrib.DefaultBrushRate,
		EnableCooking: true,
	}
}

// Session owns a set of asset instances sharing one engine, logger and
// preset store.
type Session struct {
	eng     hapi.Engine
	log     *zap.Logger
	presets geo.PresetStore
	opts    Options

	mu        sync.Mutex
	assets    []*Asset
	observers map[int]Observer
	nextObs   int
}

// NewSession creates a session. A nil logger is replaced with a no-op one;
// a nil preset store disables preset persistence.
func NewSession(eng hapi.Engine, log *zap.Logger, presets geo.PresetStore, opts Options) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.BrushRate <= 0 {
		opts.BrushRate = attrib.DefaultBrushRate
	}
	if presets == nil {
		presets = nopPresets{}
	}
	return &Session{
		eng:       eng,
		log:       log,
		presets:   presets,
		opts:      opts,
		observers: make(map[int]Observer),
	}
}

// Options returns the session's behaviour switches.
func (s *Session) Options() Options { return s.opts }

// Assets returns the live assets in load order.
func (s *Session) Assets() []*Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Subscribe registers an observer and returns a token for Unsubscribe.
func (s *Session) Subscribe(obs Observer) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextObs++
	s.observers[s.nextObs] = obs
	return s.nextObs
}

// Unsubscribe removes a previously registered observer.
func (s *Session) Unsubscribe(token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, token)
}

func (s *Session) notify(a *Asset, ev Event) {
	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()
	for _, obs := range observers {
		obs(a, ev)
	}
}

func (s *Session) track(a *Asset) {
	s.mu.Lock()
	s.assets = append(s.assets, a)
	s.mu.Unlock()
}

func (s *Session) untrack(a *Asset) {
	s.mu.Lock()
	for i, other := range s.assets {
		if other == a {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

// nopPresets is the disabled preset store.
type nopPresets struct{}

func (nopPresets) Get(string) ([]byte, bool) { return nil, false }
func (nopPresets) Set(string, []byte) error  { return nil }

// geoConfig projects session options onto the geo layer's config.
func (s *Session) geoConfig() geo.Config {
	return geo.Config{
		ImportTemplatedGeos: s.opts.ImportTemplatedGeos,
		BrushRate:           s.opts.BrushRate,
		PaintFirstVertex:    s.opts.PaintFirstVertex,
	}
}
