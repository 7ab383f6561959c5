package session

import (
	"sort"
	"time"
)

// Progress is a point-in-time view of a level run. Times are measured on
// the simulation clock.
type Progress struct {
	Level    string   `json:"level"`
	Started  bool     `json:"started"`
	Broken   bool     `json:"broken"`
	Snapped  []string `json:"snapped"`
	Total    int      `json:"total"`
	Complete bool     `json:"complete"`
	// Elapsed counts from Start and stops at completion.
	Elapsed        time.Duration `json:"elapsed"`
	CompletionTime time.Duration `json:"completion_time,omitempty"`
}

type progress struct {
	level     string
	started   bool
	startedAt time.Duration
	broken    bool
	snapped   map[string]struct{}
	total     int
	complete  bool
	doneIn    time.Duration
}

func newProgress(level string, total int) progress {
	return progress{
		level:   level,
		snapped: make(map[string]struct{}, total),
		total:   total,
	}
}

func (p *progress) start(now time.Duration) bool {
	if p.started {
		return false
	}
	p.started = true
	p.startedAt = now
	return true
}

// snap records id and reports whether it completed the level. Pieces snapped
// more than once count once. A level without pieces never completes.
func (p *progress) snap(id string, now time.Duration) bool {
	if p.complete {
		return false
	}
	p.snapped[id] = struct{}{}
	if p.total == 0 || len(p.snapped) < p.total {
		return false
	}
	p.complete = true
	p.doneIn = p.elapsed(now)
	return true
}

func (p *progress) elapsed(now time.Duration) time.Duration {
	switch {
	case !p.started:
		return 0
	case p.complete:
		return p.doneIn
	default:
		return now - p.startedAt
	}
}

func (p *progress) view(now time.Duration) Progress {
	snapped := make([]string, 0, len(p.snapped))
	for id := range p.snapped {
		snapped = append(snapped, id)
	}
	sort.Strings(snapped)

	v := Progress{
		Level:    p.level,
		Started:  p.started,
		Broken:   p.broken,
		Snapped:  snapped,
		Total:    p.total,
		Complete: p.complete,
		Elapsed:  p.elapsed(now),
	}
	if p.complete {
		v.CompletionTime = p.doneIn
	}
	return v
}
