package session

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/shatter/internal/core/catalog"
	"github.com/zeusync/shatter/internal/core/events/bus"
	"github.com/zeusync/shatter/internal/core/world"
)

const tick = time.Second / 60

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		catalog.Level{
			ID:   1,
			Key:  "pair",
			Name: "Pair",
			Pieces: []catalog.PieceSpec{
				{ID: "a", X: 100, Y: 100, W: 100, H: 40},
				{ID: "b", X: 500, Y: 100, W: 100, H: 40},
			},
		},
		catalog.Level{ID: 2, Key: "empty", Name: "Empty"},
	)
	require.NoError(t, err)
	return c
}

type events struct {
	mu  sync.Mutex
	all []bus.Event
}

func (e *events) handle(ev bus.Event) error {
	e.mu.Lock()
	e.all = append(e.all, ev)
	e.mu.Unlock()
	return nil
}

func (e *events) of(typ string) []bus.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []bus.Event
	for _, ev := range e.all {
		if ev.Type() == typ {
			out = append(out, ev)
		}
	}
	return out
}

func newTestSession(t *testing.T, mutate ...func(*Config)) (*Session, bus.EventBus, *events) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Level = "pair"
	for _, m := range mutate {
		m(&cfg)
	}
	b := bus.New()
	s, err := New("s-1", cfg, world.DefaultConfig(), testCatalog(t),
		WithBus(b), WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rec := &events{}
	_, err = b.Subscribe(s.ID(), bus.AnyEvent, rec.handle)
	require.NoError(t, err)
	return s, b, rec
}

func tickFor(s *Session, d time.Duration) {
	for i := time.Duration(0); i < d; i += tick {
		s.Tick(tick)
	}
}

// dragHome carries the piece from wherever it lies back to its origin.
func dragHome(t *testing.T, s *Session, spec catalog.PieceSpec) bool {
	t.Helper()
	pose, ok := s.Snapshot()[spec.ID]
	require.True(t, ok)
	got, ok := s.PointerDown(pose.X, pose.Y)
	require.True(t, ok)
	require.Equal(t, spec.ID, got)

	cx, cy := spec.Center()
	s.PointerMove(cx, cy)
	tickFor(s, 2*time.Second)
	id, snapped := s.PointerUp()
	require.Equal(t, spec.ID, id)
	return snapped
}

func TestNewValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickRate = 0
	_, err := New("x", cfg, world.DefaultConfig(), testCatalog(t))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New("x", DefaultConfig(), world.DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Level = "missing"
	_, err = New("x", cfg, world.DefaultConfig(), testCatalog(t))
	assert.ErrorIs(t, err, catalog.ErrUnknownLevel)
}

func TestNewWithoutLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = ""
	s, err := New("x", cfg, world.DefaultConfig(), testCatalog(t))
	require.NoError(t, err)
	defer s.Close()

	assert.ErrorIs(t, s.Start(), ErrNoLevel)
	_, err = s.Break()
	assert.ErrorIs(t, err, ErrNoLevel)
	require.NoError(t, s.LoadLevel("pair"))
	assert.NoError(t, s.Start())
}

func TestLoadLevelPublishesLevelInfo(t *testing.T) {
	s, _, rec := newTestSession(t)

	require.NoError(t, s.LoadLevel("pair"))
	got := rec.of(bus.EventLevel)
	require.Len(t, got, 1)
	info, ok := got[0].Data().(LevelInfo)
	require.True(t, ok)
	assert.Equal(t, "pair", info.Key)
	assert.Len(t, info.Pieces, 2)
	assert.Equal(t, DefaultConfig().Viewport, info.Viewport)

	p := s.Progress()
	assert.Equal(t, "pair", p.Level)
	assert.Equal(t, 2, p.Total)
	assert.False(t, p.Started)

	assert.ErrorIs(t, s.LoadLevel("nope"), catalog.ErrUnknownLevel)
}

func TestPointerIgnoredBeforeBreak(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, ok := s.PointerDown(150, 120)
	assert.False(t, ok)

	_, err := s.Break()
	require.NoError(t, err)
	id, ok := s.PointerDown(150, 120)
	assert.True(t, ok)
	assert.Equal(t, "a", id)
}

func TestStartSchedulesAutoBreak(t *testing.T) {
	s, _, rec := newTestSession(t)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	tickFor(s, 1400*time.Millisecond)
	assert.False(t, s.Progress().Broken)

	tickFor(s, 200*time.Millisecond)
	p := s.Progress()
	assert.True(t, p.Broken)
	assert.True(t, p.Started)
	assert.Len(t, rec.of(bus.EventBroken), 1)
}

func TestAutoBreakDisabled(t *testing.T) {
	s, _, _ := newTestSession(t, func(c *Config) { c.AutoBreak = 0 })

	require.NoError(t, s.Start())
	tickFor(s, 3*time.Second)
	assert.False(t, s.Progress().Broken)
}

func TestManualBreakCancelsAutoBreak(t *testing.T) {
	s, _, rec := newTestSession(t)

	require.NoError(t, s.Start())
	n, err := s.Break()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tickFor(s, 2*time.Second)
	assert.Len(t, rec.of(bus.EventBroken), 1)

	n, err = s.Break()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBreakStartsTimer(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Break()
	require.NoError(t, err)
	tickFor(s, 500*time.Millisecond)

	p := s.Progress()
	assert.True(t, p.Started)
	assert.InDelta(t, 500*time.Millisecond, p.Elapsed, float64(2*tick))
}

func TestFullRunCompletesLevel(t *testing.T) {
	s, _, rec := newTestSession(t)

	_, err := s.Layout()
	assert.ErrorIs(t, err, ErrNotComplete)

	require.NoError(t, s.Start())
	_, err = s.Break()
	require.NoError(t, err)
	tickFor(s, 3*time.Second)

	level, ok := s.Level()
	require.True(t, ok)
	for _, spec := range level.Pieces {
		require.True(t, dragHome(t, s, spec), spec.ID)
	}

	p := s.Progress()
	assert.True(t, p.Complete)
	assert.Equal(t, []string{"a", "b"}, p.Snapped)
	assert.Positive(t, p.CompletionTime)
	assert.Equal(t, p.CompletionTime, p.Elapsed)

	tickFor(s, time.Second)
	assert.Equal(t, p.CompletionTime, s.Progress().Elapsed, "timer stops at completion")

	assert.Len(t, rec.of(bus.EventSnapped), 2)
	assert.Len(t, rec.of(bus.EventDragStart), 2)
	complete := rec.of(bus.EventComplete)
	require.Len(t, complete, 1)
	assert.True(t, complete[0].Data().(Progress).Complete)

	rec.mu.Lock()
	var order []string
	for _, ev := range rec.all {
		if ev.Type() == bus.EventSnapped || ev.Type() == bus.EventComplete {
			order = append(order, ev.Type())
		}
	}
	rec.mu.Unlock()
	assert.Equal(t, []string{bus.EventSnapped, bus.EventSnapped, bus.EventComplete}, order,
		"completion follows the last snap")

	layout, err := s.Layout()
	require.NoError(t, err)
	assert.Equal(t, 1, layout.LevelID)
	assert.Equal(t, "Pair", layout.LevelName)
	assert.Equal(t, p.CompletionTime.Milliseconds(), layout.CompletionTime)
	require.Len(t, layout.Positions, 2)
	for _, spec := range level.Pieces {
		cx, cy := spec.Center()
		assert.InDelta(t, cx, layout.Positions[spec.ID].X, 1)
		assert.InDelta(t, cy, layout.Positions[spec.ID].Y, 1)
	}
}

func TestKeyPinDoesNotCount(t *testing.T) {
	s, _, rec := newTestSession(t)
	_, err := s.Break()
	require.NoError(t, err)
	tickFor(s, 3*time.Second)

	pose := s.Snapshot()["a"]
	_, ok := s.PointerDown(pose.X, pose.Y)
	require.True(t, ok)
	assert.True(t, s.PressKey(world.KeySpace))

	assert.Empty(t, s.Progress().Snapped)
	assert.Len(t, rec.of(bus.EventPinned), 1)
	assert.Empty(t, rec.of(bus.EventSnapped))
}

func TestResetStartsOver(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.NoError(t, s.Start())
	_, err := s.Break()
	require.NoError(t, err)
	tickFor(s, time.Second)

	require.NoError(t, s.Reset())
	p := s.Progress()
	assert.False(t, p.Started)
	assert.False(t, p.Broken)
	assert.Zero(t, p.Elapsed)
	assert.Empty(t, p.Snapped)

	level, _ := s.Level()
	for _, spec := range level.Pieces {
		cx, cy := spec.Center()
		pose := s.Snapshot()[spec.ID]
		assert.Equal(t, cx, pose.X)
		assert.Equal(t, cy, pose.Y)
	}
}

func TestNextLevel(t *testing.T) {
	s, _, _ := newTestSession(t)

	ok, err := s.NextLevel()
	require.NoError(t, err)
	assert.True(t, ok)
	level, _ := s.Level()
	assert.Equal(t, "empty", level.Key)

	ok, err = s.NextLevel()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyLevelNeverCompletes(t *testing.T) {
	s, _, rec := newTestSession(t, func(c *Config) { c.Level = "empty" })

	require.NoError(t, s.Start())
	_, err := s.Break()
	require.NoError(t, err)
	tickFor(s, 3*time.Second)

	assert.False(t, s.Progress().Complete)
	assert.Empty(t, rec.of(bus.EventComplete))
	assert.GreaterOrEqual(t, len(rec.of(bus.EventPositions)), 180)
}

func TestCloseIsFinal(t *testing.T) {
	s, b, _ := newTestSession(t)
	require.NoError(t, s.Start())

	s.Close()
	s.Close()

	assert.ErrorIs(t, s.Start(), ErrClosed)
	assert.ErrorIs(t, s.LoadLevel("pair"), ErrClosed)
	assert.ErrorIs(t, s.Reset(), ErrClosed)
	_, err := s.Layout()
	assert.ErrorIs(t, err, ErrClosed)
	_, ok := s.PointerDown(150, 120)
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot())
	assert.NotPanics(t, func() { s.Tick(tick) })

	for _, topic := range b.Topics() {
		assert.NotEqual(t, s.ID(), topic.Name)
	}
	assert.ErrorIs(t, s.Run(context.Background()), ErrClosed)
}

func TestRunStepsUntilCancelled(t *testing.T) {
	s, _, rec := newTestSession(t)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	assert.Positive(t, s.Progress().Elapsed)
	assert.NotEmpty(t, rec.of(bus.EventPositions))
}

func TestConcurrentInputAndTicks(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Break()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tickFor(s, time.Second)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.PointerDown(150, 120)
			s.PointerMove(300, 300)
			s.PointerUp()
			_ = s.Progress()
		}
	}()
	wg.Wait()
}

func TestProgressCountsEachPieceOnce(t *testing.T) {
	p := newProgress("lvl", 2)
	p.start(time.Second)

	assert.False(t, p.snap("a", 2*time.Second))
	assert.False(t, p.snap("a", 3*time.Second))
	assert.True(t, p.snap("b", 4*time.Second))
	assert.False(t, p.snap("b", 5*time.Second), "already complete")

	v := p.view(10 * time.Second)
	assert.True(t, v.Complete)
	assert.Equal(t, 3*time.Second, v.CompletionTime)
	assert.Equal(t, 3*time.Second, v.Elapsed)
	assert.Equal(t, []string{"a", "b"}, v.Snapped)
}

func TestConfigTick(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Second/60, cfg.Tick())
	require.NoError(t, cfg.Validate())

	cfg.Viewport.Height = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestLoadLevelByID(t *testing.T) {
	s, _, rec := newTestSession(t)

	require.NoError(t, s.LoadLevelByID(2))
	level, ok := s.Level()
	require.True(t, ok)
	assert.Equal(t, "empty", level.Key)
	assert.Len(t, rec.of(bus.EventLevel), 1)

	assert.ErrorIs(t, s.LoadLevelByID(99), catalog.ErrUnknownLevel)
	level, _ = s.Level()
	assert.Equal(t, "empty", level.Key, "unknown id keeps the running level")

	s.Close()
	assert.ErrorIs(t, s.LoadLevelByID(1), ErrClosed)
}
