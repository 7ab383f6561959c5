package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/shatter/internal/core/catalog"
	"github.com/zeusync/shatter/internal/core/session"
	"github.com/zeusync/shatter/internal/core/world"
)

const hudRows = 1

// view maps world coordinates onto terminal cells. The bottom row is kept
// for the status line.
type view struct {
	world          world.Viewport
	width, height  int
	scaleX, scaleY float64
}

func newView(vp world.Viewport, cols, rows int) view {
	rows -= hudRows
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return view{
		world:  vp,
		width:  cols,
		height: rows,
		scaleX: float64(cols) / vp.Width,
		scaleY: float64(rows) / vp.Height,
	}
}

func (v view) toCell(x, y float64) (int, int) {
	return int(x * v.scaleX), int(y * v.scaleY)
}

// toWorld returns the world point at the center of a cell.
func (v view) toWorld(col, row int) (float64, float64) {
	return (float64(col) + 0.5) / v.scaleX, (float64(row) + 0.5) / v.scaleY
}

// rect returns the cells covered by a w by h box centered at (cx, cy).
// Every box covers at least one cell.
func (v view) rect(cx, cy, w, h float64) (x0, y0, x1, y1 int) {
	x0, y0 = v.toCell(cx-w/2, cy-h/2)
	x1, y1 = v.toCell(cx+w/2, cy+h/2)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}

var pieceStyles = []tcell.Style{
	tcell.StyleDefault.Background(tcell.ColorTeal).Foreground(tcell.ColorWhite),
	tcell.StyleDefault.Background(tcell.ColorPurple).Foreground(tcell.ColorWhite),
	tcell.StyleDefault.Background(tcell.ColorOlive).Foreground(tcell.ColorWhite),
	tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite),
	tcell.StyleDefault.Background(tcell.ColorMaroon).Foreground(tcell.ColorWhite),
}

var (
	ghostStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	hudStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	doneStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
)

type Game struct {
	screen  tcell.Screen
	session *session.Session
	view    view

	dragging bool
	message  string
}

func NewGame(sess *session.Session) (*Game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()

	g := &Game{screen: screen, session: sess}
	g.resize()
	return g, nil
}

func (g *Game) Close() {
	g.screen.Fini()
}

func (g *Game) resize() {
	cols, rows := g.screen.Size()
	g.view = newView(g.session.Viewport(), cols, rows)
}

// Run draws at ~60 FPS and feeds terminal input to the session until the
// player quits or ctx is done.
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	eventChan := make(chan tcell.Event, 100)
	go pollEvents(g.screen.PollEvent, eventChan, done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eventChan:
			if !g.handleInput(ev) {
				return
			}
		case <-ticker.C:
			g.draw()
		}
	}
}

// pollEvents forwards terminal events until poll yields nil or done is
// closed.
func pollEvents(poll func() tcell.Event, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		g.handleRune(ev.Rune())

	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := g.view.toWorld(col, row)
		pressed := ev.Buttons()&tcell.Button1 != 0
		switch {
		case pressed && !g.dragging:
			if _, ok := g.session.PointerDown(x, y); ok {
				g.dragging = true
			}
		case pressed:
			g.session.PointerMove(x, y)
		case g.dragging:
			g.dragging = false
			if id, snapped := g.session.PointerUp(); snapped {
				g.message = id + " snapped"
			}
		}

	case *tcell.EventResize:
		g.screen.Sync()
		g.resize()
	}
	return true
}

func (g *Game) handleRune(r rune) {
	var err error
	switch r {
	case ' ':
		if g.session.PressKey(world.KeySpace) {
			g.dragging = false
			g.message = "pinned"
		}
	case 's':
		err = g.session.Start()
	case 'b':
		_, err = g.session.Break()
	case 'r':
		g.dragging = false
		err = g.session.Reset()
	case 'n':
		g.dragging = false
		var ok bool
		if ok, err = g.session.NextLevel(); err == nil && !ok {
			g.message = "last level"
		}
	}
	if err != nil {
		g.message = err.Error()
	}
}

func (g *Game) draw() {
	g.screen.Clear()

	level, ok := g.session.Level()
	if ok {
		snapshot := g.session.Snapshot()
		for _, spec := range level.Pieces {
			g.drawGhost(spec)
		}
		for i, spec := range level.Pieces {
			pose, live := snapshot[spec.ID]
			if !live {
				continue
			}
			g.drawPiece(spec, pose, pieceStyles[i%len(pieceStyles)])
		}
	}
	g.drawHUD(level)
	g.screen.Show()
}

// drawGhost outlines where the piece belongs.
func (g *Game) drawGhost(spec catalog.PieceSpec) {
	cx, cy := spec.Center()
	x0, y0, x1, y1 := g.view.rect(cx, cy, spec.W, spec.H)
	for x := x0; x < x1; x++ {
		g.screen.SetContent(x, y0, '·', nil, ghostStyle)
		g.screen.SetContent(x, y1-1, '·', nil, ghostStyle)
	}
	for y := y0; y < y1; y++ {
		g.screen.SetContent(x0, y, '·', nil, ghostStyle)
		g.screen.SetContent(x1-1, y, '·', nil, ghostStyle)
	}
}

func (g *Game) drawPiece(spec catalog.PieceSpec, pose world.Pose, style tcell.Style) {
	x0, y0, x1, y1 := g.view.rect(pose.X, pose.Y, spec.W, spec.H)
	label := []rune(spec.ID)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			ch := ' '
			if i := x - x0; y == (y0+y1)/2 && i < len(label) {
				ch = label[i]
			}
			g.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

func (g *Game) drawHUD(level catalog.Level) {
	p := g.session.Progress()
	style := hudStyle
	status := fmt.Sprintf(" %s  %d/%d  %s ", level.Name, len(p.Snapped), p.Total, p.Elapsed.Truncate(100*time.Millisecond))
	switch {
	case p.Complete:
		style = doneStyle
		status += " complete! n: next level"
	case !p.Started:
		status += " s: start  b: break"
	default:
		status += " drag pieces home  space: pin  r: reset"
	}
	if g.message != "" {
		status += "  | " + g.message
	}

	row := g.view.height
	for x := 0; x < g.view.width; x++ {
		g.screen.SetContent(x, row, ' ', nil, style)
	}
	for i, r := range []rune(status) {
		if i >= g.view.width {
			break
		}
		g.screen.SetContent(i, row, r, nil, style)
	}
}
