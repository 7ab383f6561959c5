package log

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopLoggerAcceptsAllFieldTypes(t *testing.T) {
	l := Nop()
	scoped := l.With(Component("test")).WithContext(ContextWithSession(context.Background(), "abc"))
	assert.NotPanics(t, func() {
		scoped.Info("fields",
			Bool("b", true),
			Float64("f", 1.5),
			Int("i", 1),
			Int64("i64", 2),
			Uint64("u64", 3),
			Strings("ss", []string{"a"}),
			Error(nil),
			Any("any", struct{}{}),
			Piece("title"),
			Duration("d", time.Second),
		)
		scoped.Log(LevelDebug, "debug")
	})
}

func TestDomainFields(t *testing.T) {
	assert.Equal(t, Field{Key: "piece", Type: StringType, Value: "cta"}, Piece("cta"))
	assert.Equal(t, Field{Key: "session", Type: StringType, Value: "s1"}, Session("s1"))
	assert.Equal(t, "component", Component("world").Key)
}
