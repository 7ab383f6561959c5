// Package world runs the physics of one puzzle level: pieces hang from pins,
// break loose on cue, get dragged around by the player and snap back when
// released close to where they started.
//
// A World is not safe for concurrent use. The owner drives it from a single
// goroutine: input calls and Step must not overlap.
package world

import (
	"math/rand"
	"time"

	"github.com/jakecoffman/cp/v2"
	"github.com/pkg/errors"

	"github.com/zeusync/shatter/internal/core/catalog"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/core/schedule"
)

type World struct {
	cfg      Config
	viewport Viewport
	listener Listener
	logger   log.Log
	rng      *rand.Rand
	modal    map[string]struct{}

	// repulsion applies to the next Initialize.
	repulsion bool

	space  *cp.Space
	walls  []*cp.Shape
	pieces []*piece
	byID   map[string]*piece
	grab   *grabber
	tasks  *schedule.Scheduler

	level   string
	active  bool // repulsion flag of the running level
	broken  bool
	elapsed time.Duration
	frame   uint64
}

type Option func(*World)

func WithListener(l Listener) Option {
	return func(w *World) {
		if l != nil {
			w.listener = l
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRand sets the source of break kicks.
func WithRand(r *rand.Rand) Option {
	return func(w *World) {
		if r != nil {
			w.rng = r
		}
	}
}

// WithRepulsion enables repulsion fields for levels started with Initialize.
func WithRepulsion(enabled bool) Option {
	return func(w *World) {
		w.repulsion = enabled
	}
}

// New validates the configuration and viewport. The physics space is built
// by Initialize.
func New(cfg Config, viewport Viewport, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !viewport.valid() {
		return nil, errors.Wrapf(ErrInvalidViewport, "%gx%g", viewport.Width, viewport.Height)
	}

	w := &World{
		cfg:      cfg,
		viewport: viewport,
		listener: NopListener{},
		logger:   log.Nop(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		modal:    make(map[string]struct{}, len(cfg.Break.ModalPieces)),
	}
	for _, id := range cfg.Break.ModalPieces {
		w.modal[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(log.Component("world"))
	return w, nil
}

// SetListener replaces the listener. A nil listener restores the no-op one.
func (w *World) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	w.listener = l
}

// Resize changes the viewport used by the next Initialize.
func (w *World) Resize(v Viewport) error {
	if !v.valid() {
		return errors.Wrapf(ErrInvalidViewport, "%gx%g", v.Width, v.Height)
	}
	w.viewport = v
	return nil
}

// InitializeLevel builds the world for level, taking its repulsion flag.
func (w *World) InitializeLevel(level catalog.Level) error {
	w.repulsion = level.Repulsion
	if err := w.Initialize(level.Pieces); err != nil {
		return err
	}
	w.level = level.Key
	return nil
}

// Initialize replaces the current level, if any, with pieces. Every piece is
// pinned at its rectangle's center. Invalid input is rejected before the
// previous level is touched.
func (w *World) Initialize(pieces []catalog.PieceSpec) error {
	if !w.viewport.valid() {
		return errors.Wrapf(ErrInvalidViewport, "%gx%g", w.viewport.Width, w.viewport.Height)
	}
	seen := make(map[string]struct{}, len(pieces))
	for _, spec := range pieces {
		if err := spec.Validate(); err != nil {
			return errors.Wrap(ErrInvalidPiece, err.Error())
		}
		if _, dup := seen[spec.ID]; dup {
			return errors.Wrapf(ErrDuplicatePiece, "%q", spec.ID)
		}
		seen[spec.ID] = struct{}{}
	}

	w.Teardown()

	w.space = cp.NewSpace()
	w.space.Iterations = uint(w.cfg.Iterations)
	w.space.SetGravity(cp.Vector{X: 0, Y: w.cfg.Gravity})

	w.tasks = schedule.New()
	w.elapsed = 0
	w.frame = 0
	w.broken = false
	w.active = w.repulsion
	w.level = ""

	w.addBoundary()
	w.grab = newGrabber(w.cfg.Grab)

	w.pieces = make([]*piece, 0, len(pieces))
	w.byID = make(map[string]*piece, len(pieces))
	for _, spec := range pieces {
		p := w.newPiece(spec)
		w.pieces = append(w.pieces, p)
		w.byID[spec.ID] = p
	}

	w.logger.Info("World initialized",
		log.Int("pieces", len(w.pieces)),
		log.Bool("repulsion", w.active),
		log.Float64("width", w.viewport.Width),
		log.Float64("height", w.viewport.Height))
	return nil
}

// Initialized reports whether a level is loaded.
func (w *World) Initialized() bool {
	return w.space != nil
}

// Step advances the level by dt: due break stages run first, then the grab
// point follows the pointer, repulsion fields push, the space integrates and
// finally the listener receives the new positions. Step does nothing on a
// world that is not initialized.
func (w *World) Step(dt time.Duration) {
	if w.space == nil || dt <= 0 {
		return
	}
	w.elapsed += dt
	w.tasks.RunDue(w.elapsed)

	seconds := dt.Seconds()
	w.grab.follow(seconds)
	w.applyRepulsion()
	w.space.Step(seconds)
	w.frame++

	w.broadcast()
}

// Teardown cancels pending break stages, lets go of the pointer and removes
// every constraint, shape and body. It is safe to call on a world that was
// never initialized or is already torn down.
func (w *World) Teardown() {
	if w.space == nil {
		return
	}
	cancelled := w.tasks.CancelAll()
	w.grab.release(w.space)

	for _, p := range w.pieces {
		p.remove(w.space)
	}
	w.removeBoundary()

	w.logger.Info("World torn down",
		log.Int("pieces", len(w.pieces)),
		log.Int("cancelled_tasks", cancelled),
		log.Uint64("frames", w.frame))

	w.pieces = nil
	w.byID = nil
	w.grab = nil
	w.space = nil
}

// After runs fn once the level clock has advanced by d. The task is cancelled
// by Teardown. It returns nil when no level is loaded.
func (w *World) After(name string, d time.Duration, fn func()) *schedule.Task {
	if w.tasks == nil || w.space == nil {
		return nil
	}
	return w.tasks.After(name, d, fn)
}

// Elapsed is the simulated time since Initialize.
func (w *World) Elapsed() time.Duration {
	return w.elapsed
}

// Frame counts steps since Initialize.
func (w *World) Frame() uint64 {
	return w.frame
}

// PendingTasks counts scheduled break stages and other delayed work.
func (w *World) PendingTasks() int {
	if w.tasks == nil || w.space == nil {
		return 0
	}
	return w.tasks.Len()
}

// Level is the key passed to InitializeLevel, empty otherwise.
func (w *World) Level() string {
	return w.level
}

// Broken reports whether Break has been triggered since Initialize.
func (w *World) Broken() bool {
	return w.broken
}

// Viewport returns the current viewport.
func (w *World) Viewport() Viewport {
	return w.viewport
}

// PieceIDs lists pieces in declaration order.
func (w *World) PieceIDs() []string {
	ids := make([]string, len(w.pieces))
	for i, p := range w.pieces {
		ids[i] = p.spec.ID
	}
	return ids
}

// PinCount reports how many pins hold the piece: 3, 1 or 0.
func (w *World) PinCount(id string) (int, bool) {
	p, ok := w.byID[id]
	if !ok {
		return 0, false
	}
	return p.pinCount(), true
}

// PinAnchor is where the piece's center pin is fixed, if it has one.
func (w *World) PinAnchor(id string) (cp.Vector, bool) {
	p, ok := w.byID[id]
	if !ok || p.pins == nil || p.pins.Active() == 0 {
		return cp.Vector{}, false
	}
	return p.pins.Anchor(), true
}

// Origin is the center the piece was created at.
func (w *World) Origin(id string) (cp.Vector, bool) {
	p, ok := w.byID[id]
	if !ok {
		return cp.Vector{}, false
	}
	return p.origin, true
}

// Pose returns the piece's current center and angle.
func (w *World) Pose(id string) (Pose, bool) {
	p, ok := w.byID[id]
	if !ok || p.body == nil {
		return Pose{}, false
	}
	pos := p.body.Position()
	return Pose{X: pos.X, Y: pos.Y, Angle: p.body.Angle()}, true
}

// Velocity returns the piece's linear and angular velocity.
func (w *World) Velocity(id string) (cp.Vector, float64, bool) {
	p, ok := w.byID[id]
	if !ok || p.body == nil {
		return cp.Vector{}, 0, false
	}
	return p.body.Velocity(), p.body.AngularVelocity(), true
}

// HasField reports whether a repulsion field guards the piece's origin.
func (w *World) HasField(id string) bool {
	p, ok := w.byID[id]
	return ok && p.field != nil
}
