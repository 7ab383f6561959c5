package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/shatter/internal/core/session"
	"github.com/zeusync/shatter/internal/core/world"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDecodeOverridesDefaults(t *testing.T) {
	doc := `
server:
  addr: 0.0.0.0:9000
log:
  level: debug
  encoding: console
world:
  gravity: 500
  break:
    stagger: 150ms
    modal_pieces: [overlay]
  snap:
    threshold: 60
session:
  tick_rate: 120
  auto_break: 2s
  viewport: {width: 800, height: 600}
levels: levels.yaml
`
	cfg, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding)
	assert.Equal(t, 500.0, cfg.World.Gravity)
	assert.Equal(t, 150*time.Millisecond, cfg.World.Break.Stagger)
	assert.Equal(t, []string{"overlay"}, cfg.World.Break.ModalPieces)
	assert.Equal(t, 60.0, cfg.World.Snap.Threshold)
	assert.Equal(t, 120, cfg.Session.TickRate)
	assert.Equal(t, 2*time.Second, cfg.Session.AutoBreak)
	assert.Equal(t, world.Viewport{Width: 800, Height: 600}, cfg.Session.Viewport)
	assert.Equal(t, "levels.yaml", cfg.Levels)

	def := world.DefaultConfig()
	assert.Equal(t, def.Break.Hold, cfg.World.Break.Hold, "untouched keys keep defaults")
	assert.Equal(t, def.Repulsion, cfg.World.Repulsion)
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("world:\n  gravty: 10\n"))
	assert.Error(t, err)
}

func TestDecodeValidates(t *testing.T) {
	_, err := Decode(strings.NewReader("session:\n  tick_rate: 0\n"))
	assert.ErrorIs(t, err, session.ErrInvalidConfig)

	_, err = Decode(strings.NewReader("world:\n  snap:\n    threshold: -1\n"))
	assert.ErrorIs(t, err, world.ErrInvalidConfig)

	_, err = Decode(strings.NewReader("log:\n  level: loud\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "shatter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  level: newsletter\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "newsletter", cfg.Session.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
