// Package session drives one player's run through the levels: it owns the
// world, tracks progress and serializes player input against the fixed-rate
// simulation loop.
package session

import (
	"math/rand"
	"sync"

	"github.com/jakecoffman/cp/v2"
	"github.com/pkg/errors"

	"github.com/zeusync/shatter/internal/core/catalog"
	"github.com/zeusync/shatter/internal/core/events/bus"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/core/schedule"
	"github.com/zeusync/shatter/internal/core/world"
)

// LevelInfo is published when a level is loaded.
type LevelInfo struct {
	ID        int                 `json:"id"`
	Key       string              `json:"key"`
	Name      string              `json:"name"`
	Repulsion bool                `json:"repulsion"`
	Pieces    []catalog.PieceSpec `json:"pieces"`
	Viewport  world.Viewport      `json:"viewport"`
}

type Session struct {
	id      string
	cfg     Config
	catalog *catalog.Catalog
	bus     bus.EventBus
	logger  log.Log

	mu        sync.Mutex
	world     *world.World
	level     catalog.Level
	loaded    bool
	progress  progress
	autoBreak *schedule.Task
	closed    bool
}

type Option func(*options)

type options struct {
	bus      bus.EventBus
	logger   log.Log
	rng      *rand.Rand
	listener world.Listener
}

// WithBus publishes the session's events on the bus under the session id.
func WithBus(b bus.EventBus) Option {
	return func(o *options) { o.bus = b }
}

func WithLogger(l log.Log) Option {
	return func(o *options) { o.logger = l }
}

func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithListener adds a listener next to the bus. It is called with the
// session lock held and must not call back into the session.
func WithListener(l world.Listener) Option {
	return func(o *options) { o.listener = l }
}

// New creates a session and loads cfg.Level.
func New(id string, cfg Config, worldCfg world.Config, cat *catalog.Catalog, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil catalog")
	}
	o := options{logger: log.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Nop()
	}

	s := &Session{
		id:      id,
		cfg:     cfg,
		catalog: cat,
		bus:     o.bus,
		logger:  o.logger.With(log.Component("session"), log.Session(id)),
	}

	// hook goes last so a piece's own events reach subscribers before the
	// completion it causes.
	listeners := []world.Listener{o.listener}
	if s.bus != nil {
		if err := s.bus.CreateTopic(id); err != nil {
			return nil, errors.Wrap(err, "create session topic")
		}
		listeners = append(listeners, bus.NewWorldListener(s.bus, id, s.logger))
	}
	listeners = append(listeners, hook{s})

	worldOpts := []world.Option{
		world.WithLogger(s.logger),
		world.WithListener(world.Listeners(listeners...)),
	}
	if o.rng != nil {
		worldOpts = append(worldOpts, world.WithRand(o.rng))
	}
	w, err := world.New(worldCfg, cfg.Viewport, worldOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create world")
	}
	s.world = w

	if cfg.Level != "" {
		if err := s.LoadLevel(cfg.Level); err != nil {
			w.Teardown()
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// LoadLevel replaces the running level with the catalog level key. Progress
// starts over.
func (s *Session) LoadLevel(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	level, err := s.catalog.Level(key)
	if err != nil {
		return err
	}
	return s.loadLocked(level)
}

// LoadLevelByID is LoadLevel addressed by the level's numeric id.
func (s *Session) LoadLevelByID(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	level, err := s.catalog.LevelByID(id)
	if err != nil {
		return err
	}
	return s.loadLocked(level)
}

// NextLevel loads the level after the current one. It reports false on the
// last level.
func (s *Session) NextLevel() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return false, err
	}
	next, ok := s.catalog.Next(s.level.Key)
	if !ok {
		return false, nil
	}
	return true, s.loadLocked(next)
}

// Reset restarts the current level.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return err
	}
	return s.loadLocked(s.level)
}

func (s *Session) loadLocked(level catalog.Level) error {
	s.autoBreak = nil
	if err := s.world.InitializeLevel(level); err != nil {
		return errors.Wrapf(err, "load level %q", level.Key)
	}
	s.level = level
	s.loaded = true
	s.progress = newProgress(level.Key, len(level.Pieces))

	s.logger.Info("Level loaded",
		log.String("level", level.Key),
		log.Int("pieces", len(level.Pieces)))
	s.publish(bus.EventLevel, LevelInfo{
		ID:        level.ID,
		Key:       level.Key,
		Name:      level.Name,
		Repulsion: level.Repulsion,
		Pieces:    level.Pieces,
		Viewport:  s.world.Viewport(),
	})
	return nil
}

// Start begins the timer and schedules the automatic break. Repeated calls
// are no-ops.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return err
	}
	if !s.progress.start(s.world.Elapsed()) {
		return nil
	}
	if s.cfg.AutoBreak > 0 && !s.progress.broken {
		s.autoBreak = s.world.After("auto-break", s.cfg.AutoBreak, func() {
			s.autoBreak = nil
			s.breakLocked()
		})
	}
	s.logger.Debug("Level started", log.String("level", s.level.Key))
	return nil
}

// Break shatters the level now. Breaking an unstarted level starts it. It
// returns the number of pieces scheduled to fall.
func (s *Session) Break() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return 0, err
	}
	s.progress.start(s.world.Elapsed())
	return s.breakLocked(), nil
}

func (s *Session) breakLocked() int {
	if s.autoBreak != nil {
		s.autoBreak.Cancel()
		s.autoBreak = nil
	}
	if s.progress.broken {
		return 0
	}
	n := s.world.Break()
	s.progress.broken = true
	s.publish(bus.EventBroken, s.progress.view(s.world.Elapsed()))
	return n
}

// PointerDown grabs the piece under (x, y). Input is ignored until the
// level is broken.
func (s *Session) PointerDown(x, y float64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usableLocked() != nil || !s.progress.broken {
		return "", false
	}
	return s.world.PointerDown(cp.Vector{X: x, Y: y})
}

func (s *Session) PointerMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usableLocked() != nil {
		return
	}
	s.world.PointerMove(cp.Vector{X: x, Y: y})
}

// PointerUp drops the held piece and reports whether it snapped home.
func (s *Session) PointerUp() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usableLocked() != nil {
		return "", false
	}
	return s.world.PointerUp()
}

func (s *Session) PressKey(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usableLocked() != nil {
		return false
	}
	return s.world.PressKey(code)
}

// Progress returns the current state of the level run.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.view(s.world.Elapsed())
}

// Level returns the loaded level.
func (s *Session) Level() (catalog.Level, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, s.loaded
}

func (s *Session) Viewport() world.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Viewport()
}

func (s *Session) Snapshot() world.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Snapshot()
}

// Close tears the world down and drops the session's bus topic. It is safe
// to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.world.Teardown()
	if s.bus != nil {
		s.bus.RemoveTopic(s.id)
	}
	s.logger.Info("Session closed")
}

func (s *Session) usableLocked() error {
	if s.closed {
		return ErrClosed
	}
	if !s.loaded {
		return ErrNoLevel
	}
	return nil
}

func (s *Session) publish(typ string, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(s.id, bus.NewEvent(typ, s.id, data)); err != nil {
		s.logger.Warn("Event handler failed", log.String("event", typ), log.Error(err))
	}
}

// hook feeds world callbacks into the session's progress. It runs with the
// session lock held.
type hook struct {
	s *Session
}

func (hook) PositionsUpdated(world.Snapshot) {}
func (hook) DragStarted(string)              {}
func (hook) PiecePinned(string)              {}

func (h hook) PieceSnapped(id string) {
	s := h.s
	if !s.progress.snap(id, s.world.Elapsed()) {
		return
	}
	view := s.progress.view(s.world.Elapsed())
	s.logger.Info("Level complete",
		log.String("level", s.level.Key),
		log.Duration("completion_time", view.CompletionTime))
	s.publish(bus.EventComplete, view)
}
