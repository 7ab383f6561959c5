package catalog

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PieceSpec is a named rectangle in a level's coordinate space. X and Y
// address the top-left corner.
type PieceSpec struct {
	ID string  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
	W  float64 `json:"w" yaml:"w"`
	H  float64 `json:"h" yaml:"h"`
}

// Center returns the rectangle center.
func (p PieceSpec) Center() (x, y float64) {
	return p.X + p.W/2, p.Y + p.H/2
}

func (p PieceSpec) Validate() error {
	if p.ID == "" {
		return ErrEmptyPieceID
	}
	if !(p.W > 0) || !(p.H > 0) {
		return errors.Wrapf(ErrInvalidSize, "piece %q is %gx%g", p.ID, p.W, p.H)
	}
	return nil
}

// Level is one puzzle: the pieces that shatter and the mechanics in play.
type Level struct {
	ID        int         `json:"id" yaml:"id"`
	Key       string      `json:"key" yaml:"key"`
	Name      string      `json:"name" yaml:"name"`
	Repulsion bool        `json:"repulsion,omitempty" yaml:"repulsion,omitempty"`
	Pieces    []PieceSpec `json:"pieces" yaml:"pieces"`
}

// Validate checks every piece and id uniqueness. An empty piece list is valid.
func (l Level) Validate() error {
	if l.Key == "" {
		return errors.Wrapf(ErrInvalidLevel, "level %d has no key", l.ID)
	}
	seen := make(map[string]struct{}, len(l.Pieces))
	for _, p := range l.Pieces {
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "level %q", l.Key)
		}
		if _, dup := seen[p.ID]; dup {
			return errors.Wrapf(ErrDuplicatePiece, "level %q piece %q", l.Key, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Piece looks a piece up by id.
func (l Level) Piece(id string) (PieceSpec, bool) {
	for _, p := range l.Pieces {
		if p.ID == id {
			return p, true
		}
	}
	return PieceSpec{}, false
}

// Catalog is an immutable set of levels addressable by key or numeric id.
type Catalog struct {
	levels []Level
	byKey  map[string]int
	byID   map[int]int
}

func New(levels ...Level) (*Catalog, error) {
	c := &Catalog{
		levels: make([]Level, 0, len(levels)),
		byKey:  make(map[string]int, len(levels)),
		byID:   make(map[int]int, len(levels)),
	}
	for _, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byKey[l.Key]; dup {
			return nil, errors.Wrapf(ErrInvalidLevel, "duplicate level key %q", l.Key)
		}
		if _, dup := c.byID[l.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidLevel, "duplicate level id %d", l.ID)
		}
		c.byKey[l.Key] = len(c.levels)
		c.byID[l.ID] = len(c.levels)
		c.levels = append(c.levels, l)
	}
	sort.SliceStable(c.levels, func(i, j int) bool { return c.levels[i].ID < c.levels[j].ID })
	for i, l := range c.levels {
		c.byKey[l.Key] = i
		c.byID[l.ID] = i
	}
	return c, nil
}

func (c *Catalog) Level(key string) (Level, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Level{}, errors.Wrapf(ErrUnknownLevel, "key %q", key)
	}
	return c.levels[i], nil
}

func (c *Catalog) LevelByID(id int) (Level, error) {
	i, ok := c.byID[id]
	if !ok {
		return Level{}, errors.Wrapf(ErrUnknownLevel, "id %d", id)
	}
	return c.levels[i], nil
}

// Levels returns the levels ordered by id.
func (c *Catalog) Levels() []Level {
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

// Next returns the level following key, if any.
func (c *Catalog) Next(key string) (Level, bool) {
	i, ok := c.byKey[key]
	if !ok || i+1 >= len(c.levels) {
		return Level{}, false
	}
	return c.levels[i+1], true
}

type file struct {
	Levels []Level `yaml:"levels"`
}

// LoadYAML reads a catalog document:
//
//	levels:
//	  - id: 1
//	    key: newsletter
//	    pieces:
//	      - {id: title, x: 320, y: 240, w: 360, h: 60}
func LoadYAML(r io.Reader) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode level catalog")
	}
	if len(f.Levels) == 0 {
		return nil, errors.Wrap(ErrNoLevels, "level catalog")
	}
	return New(f.Levels...)
}
