package preview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
)

func strandsAt(positions ...int) []ir.Strand {
	out := make([]ir.Strand, len(positions))
	for i, p := range positions {
		out[i] = ir.Strand{ID: fmt.Sprintf("t%d", i), Color: fmt.Sprintf("C%d", i), Position: p}
	}
	return out
}

func kongoPattern() ir.Pattern {
	return ir.Pattern{ID: rules.KongoGumi8, Setup: strandsAt(0, 1, 2, 3, 4, 5, 6, 7), TotalSteps: 16}
}

func kakuPattern() ir.Pattern {
	return ir.Pattern{ID: rules.KakuYatsuGumi8, Setup: strandsAt(1, 2, 5, 6, 9, 10, 13, 14), TotalSteps: 16}
}

// playLog runs the rule engine through a session and returns its log.
func playLog(t *testing.T, p ir.Pattern, steps int) ir.MoveLog {
	t.Helper()
	s := engine.New(engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, s.Load(p))
	n, err := engine.Autoplay(context.Background(), s, steps)
	require.NoError(t, err)
	require.Equal(t, steps, n)
	return s.Log()
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func ids(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.StrandID
	}
	return out
}

func TestLoose_ReinsertsByDestination(t *testing.T) {
	log := ir.MoveLog{
		{StrandID: "t7", From: 7, To: 15}, // second half: append
		{StrandID: "t7", From: 15, To: 7}, // first half: front
	}
	d := Loose(kongoPattern(), log)

	require.Len(t, d.Steps, 2)
	assert.Equal(t, []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7"}, ids(d.Steps[0].Order))
	assert.Equal(t, []string{"t7", "t0", "t1", "t2", "t3", "t4", "t5", "t6"}, ids(d.Steps[1].Order))

	moving := d.Steps[1].Segments[len(d.Steps[1].Segments)-1]
	assert.True(t, moving.Moving)
	assert.Equal(t, 7, moving.From)
	assert.Equal(t, 0, moving.To)
}

func TestLoose_StationarySegmentsUsePreMoveIndex(t *testing.T) {
	log := ir.MoveLog{{StrandID: "t1", From: 2, To: 15}}
	d := Loose(kakuPattern(), log)

	segs := d.Steps[0].Segments
	require.Len(t, segs, 8)
	for j, seg := range segs[:7] {
		assert.False(t, seg.Moving)
		assert.Equal(t, seg.From, seg.To)
		assert.NotEqual(t, 1, seg.From, "moving column has no stationary segment")
		if j >= 1 {
			assert.Equal(t, j+1, seg.From)
		}
	}
	assert.Equal(t, Segment{StrandID: "t1", Color: "C1", From: 1, To: 7, Moving: true}, segs[7])
}

func TestTight_ReinsertsByOrigin(t *testing.T) {
	log := ir.MoveLog{
		{StrandID: "t7", From: 7, To: 15}, // first-half origin: end
		{StrandID: "t7", From: 15, To: 7}, // second-half origin: front
	}
	d := Tight(kongoPattern(), log)

	require.Len(t, d.Rows, 2)
	// Rows are filled before reordering
	assert.Equal(t, "t0", d.Rows[0].Cells[0].StrandID)
	assert.Equal(t, "t7", d.Rows[1].Cells[7].StrandID)
	assert.Equal(t, []string{"t7", "t0", "t1", "t2", "t3", "t4", "t5", "t6"}, ids(d.Final()))
}

func TestLooseAndTightUseOppositeEdges(t *testing.T) {
	// Moves that cross halves land on the same edge in both models; a move
	// inside one half separates them.
	p := ir.Pattern{ID: "x", Setup: strandsAt(0, 1, 2), TotalSteps: 1}
	log := ir.MoveLog{{StrandID: "t1", From: 1, To: 5}}

	loose := Loose(p, log)
	tight := Tight(p, log)
	assert.Equal(t, []string{"t1", "t0", "t2"}, ids(loose.Final()))
	assert.Equal(t, []string{"t0", "t2", "t1"}, ids(tight.Final()))
}

func TestInitialOrderSortsByPosition(t *testing.T) {
	p := ir.Pattern{ID: "x", Setup: []ir.Strand{
		{ID: "late", Position: 9},
		{ID: "early", Position: 1},
		{ID: "mid", Position: 4},
	}}

	d := Loose(p, nil)
	assert.Equal(t, []string{"early", "mid", "late"}, ids(d.Initial))
	assert.Equal(t, 'a', d.Initial[0].Symbol)
	assert.Equal(t, ids(d.Initial), ids(Tight(p, nil).Final()))
}

func TestReplayFromRuleLogNeverSkips(t *testing.T) {
	for _, p := range []ir.Pattern{kongoPattern(), kakuPattern()} {
		t.Run(p.ID, func(t *testing.T) {
			log := playLog(t, p, p.TotalSteps)

			loose := Loose(p, log)
			tight := Tight(p, log)
			assert.Empty(t, loose.Skips())
			assert.Empty(t, tight.Skips())
			assert.Len(t, loose.Steps, p.TotalSteps)
			assert.Len(t, tight.Rows, p.TotalSteps)
		})
	}
}

func TestUnknownStrandIsSkipped(t *testing.T) {
	log := ir.MoveLog{
		{StrandID: "t7", From: 7, To: 15},
		{StrandID: "ghost", From: 3, To: 9},
		{StrandID: "t7", From: 15, To: 7},
	}

	loose := Loose(kongoPattern(), log)
	tight := Tight(kongoPattern(), log)
	assert.Equal(t, []int{1}, loose.Skips())
	assert.Equal(t, []int{1}, tight.Skips())
	assert.Empty(t, loose.Steps[1].Segments)
	assert.Len(t, tight.Rows[1].Cells, 8, "skipped band is still filled")
}

func TestReplayIsPure(t *testing.T) {
	p := kakuPattern()
	log := playLog(t, p, 9)
	before := log.Clone()

	a := Loose(p, log)
	b := Loose(p, log)
	assert.Equal(t, a, b)
	assert.Equal(t, Tight(p, log), Tight(p, log))
	assert.Equal(t, before, log, "log is not modified")
}

func TestLooseGeometry(t *testing.T) {
	d := Loose(kongoPattern(), playLog(t, kongoPattern(), 2))
	g := d.Geometry(900)

	assert.Equal(t, 100.0, g.ThreadWidth)
	assert.Equal(t, 15.0, g.SegmentHeight)
	assert.Equal(t, 6.0, g.LineWidth)
	assert.Equal(t, 21*15.0, g.CanvasHeight)
	assert.Equal(t, 100.0, g.X(0))

	lines := d.Lines(900)
	require.Len(t, lines, 16)
	diag := lines[15]
	assert.Equal(t, Line{X1: 800, Y1: 15, X2: 100, Y2: 30, Width: 6, Color: "C7"}, diag)
}

func TestTightGeometry(t *testing.T) {
	d := Tight(kongoPattern(), playLog(t, kongoPattern(), 1))
	g := d.Geometry(400)

	assert.Equal(t, 50.0, g.ThreadWidth)
	assert.Equal(t, 40.0, g.SegmentHeight)
	assert.Equal(t, 21*40.0, g.CanvasHeight)

	rects := d.Rects(400)
	require.Len(t, rects, 8)
	assert.Equal(t, Rect{X: 350, Y: 0, W: 50, H: 40, Color: "C7"}, rects[7])

	assert.Equal(t, TightGeometry{}, Tight(ir.Pattern{}, nil).Geometry(400))
}

func TestScrollOffset(t *testing.T) {
	tests := []struct {
		name     string
		steps    int
		seg      float64
		viewport float64
		canvas   float64
		want     float64
	}{
		{"start clamps to zero", 0, 15, 300, 315, 0},
		{"centres latest step", 20, 15, 100, 1000, 250},
		{"clamps to bottom", 70, 15, 100, 1000, 900},
		{"canvas shorter than viewport", 5, 15, 500, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrollOffset(tt.steps, tt.seg, tt.viewport, tt.canvas))
		})
	}
}

func TestRenderGolden(t *testing.T) {
	tests := []struct {
		name    string
		pattern ir.Pattern
		steps   int
	}{
		{"kongo_gumi_8", kongoPattern(), 4},
		{"kaku_yatsu_gumi_8", kakuPattern(), 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := playLog(t, tt.pattern, tt.steps)
			g := newGoldie(t)
			g.Assert(t, "loose_"+tt.name, []byte(RenderLoose(Loose(tt.pattern, log), RenderOptions{})))
			g.Assert(t, "tight_"+tt.name, []byte(RenderTight(Tight(tt.pattern, log), RenderOptions{})))
		})
	}
}

func TestRenderGoldenSkipped(t *testing.T) {
	log := ir.MoveLog{
		{StrandID: "t7", From: 7, To: 15},
		{StrandID: "ghost", From: 3, To: 9},
		{StrandID: "t7", From: 15, To: 7},
	}

	g := newGoldie(t)
	g.Assert(t, "loose_skipped", []byte(RenderLoose(Loose(kongoPattern(), log), RenderOptions{})))
	g.Assert(t, "tight_skipped", []byte(RenderTight(Tight(kongoPattern(), log), RenderOptions{})))
}

func TestRenderColorKeepsRowCount(t *testing.T) {
	p := kakuPattern()
	log := playLog(t, p, 5)

	plain := RenderLoose(Loose(p, log), RenderOptions{})
	colored := RenderLoose(Loose(p, log), RenderOptions{Color: true})
	assert.Equal(t, countLines(plain), countLines(colored))

	plain = RenderTight(Tight(p, log), RenderOptions{})
	colored = RenderTight(Tight(p, log), RenderOptions{Color: true})
	assert.Equal(t, countLines(plain), countLines(colored))
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
