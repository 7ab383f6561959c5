package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLevelsAreValid(t *testing.T) {
	c := Builtin()
	levels := c.Levels()
	require.NotEmpty(t, levels)
	for i, l := range levels {
		assert.NoError(t, l.Validate(), l.Key)
		if i > 0 {
			assert.Less(t, levels[i-1].ID, l.ID)
		}
	}

	ag, err := c.Level(KeyAntiGravity)
	require.NoError(t, err)
	assert.True(t, ag.Repulsion)

	byID, err := c.LevelByID(1)
	require.NoError(t, err)
	assert.Equal(t, KeyNewsletter, byID.Key)

	next, ok := c.Next(KeyTutorial)
	require.True(t, ok)
	assert.Equal(t, KeyNewsletter, next.Key)
	_, ok = c.Next(KeyAntiGravity)
	assert.False(t, ok)
}

func TestPieceCenter(t *testing.T) {
	x, y := PieceSpec{ID: "a", X: 10, Y: 20, W: 100, H: 40}.Center()
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 40.0, y)
}

func TestLevelValidate(t *testing.T) {
	base := Level{ID: 9, Key: "k"}
	assert.NoError(t, base.Validate(), "empty piece list is valid")

	bad := base
	bad.Pieces = []PieceSpec{{ID: "a", W: 0, H: 10}}
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidSize))

	neg := base
	neg.Pieces = []PieceSpec{{ID: "a", W: 10, H: -1}}
	assert.True(t, errors.Is(neg.Validate(), ErrInvalidSize))

	dup := base
	dup.Pieces = []PieceSpec{{ID: "a", W: 1, H: 1}, {ID: "a", W: 2, H: 2}}
	assert.True(t, errors.Is(dup.Validate(), ErrDuplicatePiece))

	noID := base
	noID.Pieces = []PieceSpec{{W: 1, H: 1}}
	assert.True(t, errors.Is(noID.Validate(), ErrEmptyPieceID))
}

func TestUnknownLevel(t *testing.T) {
	_, err := Builtin().Level("nope")
	assert.True(t, errors.Is(err, ErrUnknownLevel))
	_, err = Builtin().LevelByID(99)
	assert.True(t, errors.Is(err, ErrUnknownLevel))
}

func TestLoadYAML(t *testing.T) {
	doc := `
levels:
  - id: 2
    key: second
    name: Second
    pieces:
      - {id: b, x: 0, y: 0, w: 10, h: 10}
  - id: 1
    key: first
    repulsion: true
    pieces:
      - {id: a, x: 5, y: 5, w: 20, h: 30}
`
	c, err := LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)

	levels := c.Levels()
	require.Len(t, levels, 2)
	assert.Equal(t, "first", levels[0].Key)
	assert.True(t, levels[0].Repulsion)

	p, ok := levels[0].Piece("a")
	require.True(t, ok)
	assert.Equal(t, PieceSpec{ID: "a", X: 5, Y: 5, W: 20, H: 30}, p)

	_, err = LoadYAML(strings.NewReader("levels: []\n"))
	assert.True(t, errors.Is(err, ErrNoLevels))
	assert.Contains(t, err.Error(), "level catalog")

	_, err = LoadYAML(strings.NewReader("levels:\n  - {id: 1, key: x, pieces: [{id: a, w: 0, h: 1}]}\n"))
	assert.True(t, errors.Is(err, ErrInvalidSize))
}
