package hours

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sakif/punchclock/internal/model"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func in(t time.Time) model.Punch  { return model.Punch{Type: model.PunchIn, Timestamp: t} }
func out(t time.Time) model.Punch { return model.Punch{Type: model.PunchOut, Timestamp: t} }

// =========================================================================
// COMPUTE TESTS
// =========================================================================

func TestCompute(t *testing.T) {
	now := at(12, 0) // 21:00 on the same day

	tests := []struct {
		name    string
		punches []model.Punch
		want    float64
	}{
		{
			name: "empty list is zero",
			want: 0,
		},
		{
			name:    "matched pair",
			punches: []model.Punch{in(at(0, 0)), out(at(8, 0))},
			want:    8,
		},
		{
			name:    "fractional hours",
			punches: []model.Punch{in(at(0, 0)), out(at(7, 30))},
			want:    7.5,
		},
		{
			name:    "two sessions",
			punches: []model.Punch{in(at(0, 0)), out(at(3, 0)), in(at(4, 0)), out(at(8, 0))},
			want:    7,
		},
		{
			name:    "out before any in is ignored",
			punches: []model.Punch{out(at(0, 0)), in(at(1, 0)), out(at(2, 0))},
			want:    1,
		},
		{
			name:    "lone out is zero",
			punches: []model.Punch{out(at(1, 0))},
			want:    0,
		},
		{
			name:    "duplicate in keeps only the latest",
			punches: []model.Punch{in(at(0, 0)), in(at(2, 0)), out(at(3, 0))},
			want:    1,
		},
		{
			name:    "open session accrues until now",
			punches: []model.Punch{in(at(10, 0))},
			want:    2,
		},
		{
			name:    "closed session then open session",
			punches: []model.Punch{in(at(0, 0)), out(at(1, 0)), in(at(11, 0))},
			want:    2,
		},
		{
			name:    "unsorted input",
			punches: []model.Punch{out(at(8, 0)), in(at(0, 0))},
			want:    8,
		},
		{
			name:    "in and out at the same instant",
			punches: []model.Punch{out(at(1, 0)), in(at(1, 0))},
			want:    0,
		},
		{
			name:    "open session in the future counts nothing",
			punches: []model.Punch{in(at(13, 0))},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Compute(tt.punches, now), 1e-9)
		})
	}
}

func TestCompute_MatchedPairIsExact(t *testing.T) {
	t1 := base
	t2 := base.Add(8*time.Hour + 15*time.Minute + 30*time.Second)

	got := Compute([]model.Punch{in(t1), out(t2)}, time.Now())
	if got != t2.Sub(t1).Hours() {
		t.Errorf("Compute() = %v, want exactly %v", got, t2.Sub(t1).Hours())
	}
}

func TestCompute_OpenSessionUsesWallClock(t *testing.T) {
	start := time.Now().Add(-90 * time.Minute)
	got := Compute([]model.Punch{in(start)}, time.Now())
	assert.InDelta(t, 1.5, got, 0.01)
}

func TestCompute_InvariantUnderReordering(t *testing.T) {
	now := at(15, 0)
	punches := []model.Punch{
		in(at(0, 0)), out(at(1, 0)),
		in(at(2, 0)), in(at(2, 30)), out(at(4, 0)),
		out(at(5, 0)),
		in(at(6, 0)), out(at(6, 0)),
		in(at(9, 0)),
	}
	want := Compute(punches, now)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]model.Punch(nil), punches...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.InDelta(t, want, Compute(shuffled, now), 1e-9)
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	punches := []model.Punch{out(at(8, 0)), in(at(0, 0))}
	Compute(punches, at(9, 0))

	assert.Equal(t, model.PunchOut, punches[0].Type, "input order must be preserved")
}

// =========================================================================
// BETWEEN TESTS
// =========================================================================

func TestBetween_HalfOpen(t *testing.T) {
	punches := []model.Punch{in(at(0, 0)), out(at(1, 0)), in(at(2, 0))}

	got := Between(punches, at(0, 0), at(2, 0))

	if assert.Len(t, got, 2) {
		assert.Equal(t, at(0, 0), got[0].Timestamp)
		assert.Equal(t, at(1, 0), got[1].Timestamp)
	}
}
