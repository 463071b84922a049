package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/hours"
	"github.com/sakif/punchclock/internal/model"
)

func day(d, h, m int) time.Time {
	return time.Date(2026, 3, d, h, m, 0, 0, time.UTC)
}

func punch(user string, typ model.PunchType, at time.Time) model.Punch {
	return model.Punch{
		ID:        user + "-" + at.Format(time.RFC3339),
		UserID:    user,
		UserName:  user,
		UserEmail: user + "@example.com",
		Type:      typ,
		Timestamp: at,
	}
}

// =========================================================================
// REDUCERS
// =========================================================================

func TestStatusByUser(t *testing.T) {
	newestFirst := []model.Punch{
		punch("bob", model.PunchIn, day(10, 9, 0)),
		punch("ada", model.PunchOut, day(10, 8, 0)),
		punch("bob", model.PunchOut, day(9, 17, 0)),
		punch("ada", model.PunchIn, day(10, 7, 0)),
	}

	got := statusByUser(newestFirst)

	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].UserID)
	assert.True(t, got[0].IsClockedIn)
	assert.Equal(t, day(10, 9, 0), got[0].LastPunchTime)
	assert.Equal(t, "ada", got[1].UserID)
	assert.False(t, got[1].IsClockedIn)

	assert.Empty(t, statusByUser(nil))
	assert.NotNil(t, statusByUser(nil), "empty list, not null")
}

func TestMonthlyStats_SingleDay(t *testing.T) {
	punches := []model.Punch{
		punch("ada", model.PunchIn, day(10, 9, 0)),
		punch("ada", model.PunchOut, day(10, 17, 0)),
	}

	got := monthlyStats(punches, hours.DefaultCalendar(), fixedNow)

	require.Len(t, got, 1)
	assert.Equal(t, 8.0, got[0].TotalHours)
	assert.Equal(t, 1, got[0].DaysWorked)
	assert.Equal(t, 2, got[0].PunchCount)
	assert.Equal(t, 8.0, got[0].AvgHoursPerDay)
}

func TestMonthlyStats_OrderingAndTotals(t *testing.T) {
	punches := []model.Punch{
		punch("ada", model.PunchIn, day(2, 9, 0)),
		punch("ada", model.PunchOut, day(2, 11, 0)),
		punch("bob", model.PunchIn, day(3, 9, 0)),
		punch("bob", model.PunchOut, day(3, 15, 0)),
		punch("bob", model.PunchIn, day(4, 9, 0)),
		punch("bob", model.PunchOut, day(4, 10, 0)),
		punch("cy", model.PunchIn, day(5, 9, 0)),
		punch("cy", model.PunchOut, day(5, 11, 0)),
	}

	got := monthlyStats(punches, hours.DefaultCalendar(), fixedNow)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"bob", "ada", "cy"}, []string{got[0].UserID, got[1].UserID, got[2].UserID},
		"most hours first, ties by user id")
	assert.Equal(t, 2, got[0].DaysWorked)
	assert.Equal(t, 3.5, got[0].AvgHoursPerDay)

	var sum float64
	for _, s := range got {
		sum += s.TotalHours
	}
	assert.Equal(t, hours.Compute(punches[0:2], fixedNow)+hours.Compute(punches[2:6], fixedNow)+hours.Compute(punches[6:8], fixedNow), sum)
}

func TestMonthlyStats_LatestSnapshotWins(t *testing.T) {
	renamed := punch("ada", model.PunchOut, day(10, 17, 0))
	renamed.UserName = "Ada Lovelace"
	punches := []model.Punch{renamed, punch("ada", model.PunchIn, day(10, 9, 0))}

	got := monthlyStats(punches, hours.DefaultCalendar(), fixedNow)

	require.Len(t, got, 1)
	assert.Equal(t, "Ada Lovelace", got[0].UserName)
}

func TestWeeklySummary(t *testing.T) {
	cal := hours.DefaultCalendar()
	start := day(15, 0, 0) // Sunday
	punches := []model.Punch{
		punch("ada", model.PunchIn, day(16, 9, 0)),
		punch("ada", model.PunchOut, day(16, 12, 30)),
		punch("ada", model.PunchIn, day(18, 22, 0)),
		punch("ada", model.PunchOut, day(18, 23, 0)),
	}

	got := weeklySummary(punches, cal, start, fixedNow)

	require.Len(t, got, 7)
	assert.Equal(t, "2026-03-15", got[0].Date)
	assert.Equal(t, "2026-03-21", got[6].Date)
	assert.Equal(t, 0.0, got[0].Hours)
	assert.Equal(t, 3.5, got[1].Hours)
	assert.Equal(t, 1.0, got[3].Hours)
}

func TestMonthlyBreakdown_April2026(t *testing.T) {
	cal := hours.DefaultCalendar()
	from, to := cal.MonthRange(2026, time.April)
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	empty := monthlyBreakdown(nil, cal, from, to, now)
	require.Len(t, empty, 4, "the week of Mar 29 has no hours and is skipped")
	assert.Equal(t, "2026-04-05", empty[0].WeekStart)
	assert.Equal(t, "2026-04-26", empty[3].WeekStart)
	assert.Equal(t, "2026-05-02", empty[3].WeekEnd)

	punches := []model.Punch{
		punch("ada", model.PunchIn, time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)),
		punch("ada", model.PunchOut, time.Date(2026, 4, 2, 13, 0, 0, 0, time.UTC)),
	}
	got := monthlyBreakdown(punches, cal, from, to, now)
	require.Len(t, got, 5)
	assert.Equal(t, "2026-03-29", got[0].WeekStart)
	assert.Equal(t, 4.0, got[0].Hours)
	assert.Equal(t, 1, got[0].Days)
}

// =========================================================================
// SERVICE
// =========================================================================

func TestReports_AdminViews(t *testing.T) {
	f := newPunchFixture(t)
	f.addPunch(t, f.admin, f.board, f.bob, model.PunchIn, day(18, 9, 0))
	f.addPunch(t, f.admin, f.board, f.bob, model.PunchOut, day(18, 17, 0))
	f.addPunch(t, f.admin, f.board, f.carol, model.PunchIn, day(20, 8, 0))

	status, err := f.reports.AllUsersStatus(f.ctx, f.admin.ID, f.board.ID)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, f.carol.ID, status[0].UserID)
	assert.True(t, status[0].IsClockedIn)
	assert.False(t, status[1].IsClockedIn)

	stats, err := f.reports.MonthlyStats(f.ctx, f.admin.ID, f.board.ID, "2026-03")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, f.bob.ID, stats[0].UserID)
	assert.Equal(t, 8.0, stats[0].TotalHours)
	assert.Equal(t, 4.0, stats[1].TotalHours, "open session counts up to now")

	_, err = f.reports.MonthlyStats(f.ctx, f.admin.ID, f.board.ID, "2026-13")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestReports_MembersAreLimited(t *testing.T) {
	f := newPunchFixture(t)

	_, err := f.reports.AllUsersStatus(f.ctx, f.bob.ID, f.board.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.reports.MonthlyStats(f.ctx, f.bob.ID, f.board.ID, "2026-03")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.reports.WeeklySummary(f.ctx, f.bob.ID, f.board.ID, f.carol.ID, "2026-03-15")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.reports.MonthlyBreakdown(f.ctx, f.bob.ID, f.board.ID, f.carol.ID, "2026-03")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestWeeklySummary_Self(t *testing.T) {
	f := newPunchFixture(t)
	f.addPunch(t, f.admin, f.board, f.bob, model.PunchIn, day(16, 9, 0))
	f.addPunch(t, f.admin, f.board, f.bob, model.PunchOut, day(16, 11, 0))

	week, err := f.reports.WeeklySummary(f.ctx, f.bob.ID, f.board.ID, f.bob.ID, "2026-03-15")
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.Equal(t, 2.0, week[1].Hours)

	_, err = f.reports.WeeklySummary(f.ctx, f.bob.ID, f.board.ID, f.bob.ID, "2026-03-16")
	assert.True(t, errors.Is(err, apperror.ErrValidation), "Monday is not a week start")

	months, err := f.reports.MonthlyBreakdown(f.ctx, f.bob.ID, f.board.ID, f.bob.ID, "2026-03")
	require.NoError(t, err)
	require.NotEmpty(t, months)
	assert.Equal(t, "2026-03-01", months[0].WeekStart, "March 2026 starts on a Sunday")

	var total float64
	for _, w := range months {
		total += w.Hours
	}
	assert.Equal(t, 2.0, total)
}
