package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/hours"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

// ReportService aggregates punches into status snapshots and day, week
// and month totals.
//
// Every call re-reads the raw punch rows and reduces them with
// hours.Compute; there is no cache. A session still open at evaluation
// time counts up to now, so a report over an earlier window that is
// missing its closing "out" keeps growing until the punch is fixed.
//
// The reducers (statusByUser, monthlyStats, weeklySummary,
// monthlyBreakdown) are pure functions over a punch slice and are tested
// on their own.
type ReportService struct {
	store    repository.Store
	access   *AccessService
	calendar hours.Calendar
	logger   *slog.Logger
	now      func() time.Time
}

func NewReportService(store repository.Store, access *AccessService, cal hours.Calendar, logger *slog.Logger) *ReportService {
	return &ReportService{store: store, access: access, calendar: cal, logger: logger, now: time.Now}
}

// boardForSubject authorizes reading userID's reports on boardID: admins
// may read anyone, members only themselves.
func (s *ReportService) boardForSubject(ctx context.Context, actorID, boardID, userID string) error {
	_, role, err := s.access.BoardForMember(ctx, actorID, boardID)
	if err != nil {
		return err
	}
	if userID != actorID && role != model.OrgRoleAdmin {
		return apperror.Forbidden("only organization admins can view other users' reports")
	}
	return nil
}

// AllUsersStatus reports, for every user who ever punched on the board,
// whether their latest punch is an "in". Admin only.
func (s *ReportService) AllUsersStatus(ctx context.Context, actorID, boardID string) ([]model.UserStatus, error) {
	if _, err := s.access.BoardForAdmin(ctx, actorID, boardID, "view board status"); err != nil {
		return nil, err
	}

	punches, err := s.store.ListPunches(ctx, repository.PunchFilter{BoardID: boardID, Order: repository.Descending})
	if err != nil {
		return nil, fmt.Errorf("service/report: punches of %s: %w", boardID, err)
	}
	return statusByUser(punches), nil
}

// MonthlyStats totals every user's month on the board, most hours first.
// month is YYYY-MM. Admin only.
func (s *ReportService) MonthlyStats(ctx context.Context, actorID, boardID, month string) ([]model.UserMonthlyStats, error) {
	if _, err := s.access.BoardForAdmin(ctx, actorID, boardID, "view monthly reports"); err != nil {
		return nil, err
	}
	from, to, err := s.monthWindow(month)
	if err != nil {
		return nil, err
	}

	punches, err := s.store.ListPunches(ctx, repository.PunchFilter{BoardID: boardID, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("service/report: punches of %s for %s: %w", boardID, month, err)
	}
	return monthlyStats(punches, s.calendar, s.now()), nil
}

// WeeklySummary returns seven days of hours starting at weekStart
// (YYYY-MM-DD), which must fall on the calendar's first weekday.
func (s *ReportService) WeeklySummary(ctx context.Context, actorID, boardID, userID, weekStart string) ([]model.DailyHours, error) {
	if err := s.boardForSubject(ctx, actorID, boardID, userID); err != nil {
		return nil, err
	}

	start, err := s.calendar.ParseDate(weekStart)
	if err != nil {
		return nil, apperror.ValidationFailed("weekStart", err.Error())
	}
	if !s.calendar.IsWeekStart(start) {
		return nil, apperror.ValidationFailed("weekStart",
			fmt.Sprintf("weekStart must be a %s", s.calendar.WeekStart))
	}

	punches, err := s.store.ListPunches(ctx, repository.PunchFilter{
		BoardID: boardID, UserID: userID, From: start, To: start.AddDate(0, 0, 7),
	})
	if err != nil {
		return nil, fmt.Errorf("service/report: week of %s: %w", userID, err)
	}
	return weeklySummary(punches, s.calendar, start, s.now()), nil
}

// MonthlyBreakdown splits a user's month into calendar weeks.
func (s *ReportService) MonthlyBreakdown(ctx context.Context, actorID, boardID, userID, month string) ([]model.WeeklyBucket, error) {
	if err := s.boardForSubject(ctx, actorID, boardID, userID); err != nil {
		return nil, err
	}
	from, to, err := s.monthWindow(month)
	if err != nil {
		return nil, err
	}

	punches, err := s.store.ListPunches(ctx, repository.PunchFilter{
		BoardID: boardID, UserID: userID, From: from, To: to,
	})
	if err != nil {
		return nil, fmt.Errorf("service/report: month of %s: %w", userID, err)
	}
	return monthlyBreakdown(punches, s.calendar, from, to, s.now()), nil
}

func (s *ReportService) monthWindow(month string) (time.Time, time.Time, error) {
	y, m, err := hours.ParseMonth(month)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.ValidationFailed("month", err.Error())
	}
	from, to := s.calendar.MonthRange(y, m)
	return from, to, nil
}

// =========================================================================
// REDUCERS
// =========================================================================

// statusByUser keeps the first punch seen per user from a newest-first
// list, preserving that order.
func statusByUser(newestFirst []model.Punch) []model.UserStatus {
	seen := make(map[string]bool)
	out := []model.UserStatus{}
	for _, p := range newestFirst {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		out = append(out, model.UserStatus{
			UserID:        p.UserID,
			UserName:      p.UserName,
			UserEmail:     p.UserEmail,
			IsClockedIn:   p.Type == model.PunchIn,
			LastPunchTime: p.Timestamp,
		})
	}
	return out
}

// groupByUser keeps users in order of first appearance.
func groupByUser(punches []model.Punch) ([]string, map[string][]model.Punch) {
	var order []string
	groups := make(map[string][]model.Punch)
	for _, p := range punches {
		if _, ok := groups[p.UserID]; !ok {
			order = append(order, p.UserID)
		}
		groups[p.UserID] = append(groups[p.UserID], p)
	}
	return order, groups
}

// monthlyStats expects the punches already limited to the month. Name and
// email come from the user's most recent punch snapshot.
func monthlyStats(punches []model.Punch, cal hours.Calendar, now time.Time) []model.UserMonthlyStats {
	order, groups := groupByUser(punches)

	out := make([]model.UserMonthlyStats, 0, len(order))
	for _, userID := range order {
		group := groups[userID]
		latest := slices.MaxFunc(group, func(a, b model.Punch) int { return a.Timestamp.Compare(b.Timestamp) })

		total := hours.Compute(group, now)
		days := cal.DistinctDays(group)
		avg := 0.0
		if days > 0 {
			avg = total / float64(days)
		}

		out = append(out, model.UserMonthlyStats{
			UserID:         userID,
			UserName:       latest.UserName,
			UserEmail:      latest.UserEmail,
			TotalHours:     total,
			DaysWorked:     days,
			PunchCount:     len(group),
			AvgHoursPerDay: avg,
		})
	}

	slices.SortStableFunc(out, func(a, b model.UserMonthlyStats) int {
		if c := cmp.Compare(b.TotalHours, a.TotalHours); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out
}

// weeklySummary returns one entry per day for the seven days from start.
func weeklySummary(punches []model.Punch, cal hours.Calendar, start time.Time, now time.Time) []model.DailyHours {
	out := make([]model.DailyHours, 0, 7)
	for i := 0; i < 7; i++ {
		dayStart := start.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		out = append(out, model.DailyHours{
			Date:  cal.DateKey(dayStart),
			Hours: hours.Compute(hours.Between(punches, dayStart, dayEnd), now),
		})
	}
	return out
}

// monthlyBreakdown walks weeks from the week containing monthStart until
// a week starts at or after monthEnd. A week that starts before the month
// is only kept when it has hours; weeks starting inside the month are
// always kept.
func monthlyBreakdown(punches []model.Punch, cal hours.Calendar, monthStart, monthEnd time.Time, now time.Time) []model.WeeklyBucket {
	out := []model.WeeklyBucket{}
	for ws := cal.StartOfWeek(monthStart); ws.Before(monthEnd); ws = ws.AddDate(0, 0, 7) {
		week := hours.Between(punches, ws, ws.AddDate(0, 0, 7))
		h := hours.Compute(week, now)
		if h <= 0 && ws.Before(monthStart) {
			continue
		}
		out = append(out, model.WeeklyBucket{
			WeekStart: cal.DateKey(ws),
			WeekEnd:   cal.DateKey(ws.AddDate(0, 0, 6)),
			Hours:     h,
			Days:      cal.DistinctDays(week),
		})
	}
	return out
}
