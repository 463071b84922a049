package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/hours"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

// Punch sources, as reported to PunchRecorder.
const (
	SourceInteractive = "interactive"
	SourceManual      = "manual"
)

// PunchRecorder is notified after a punch is stored. The metrics package
// implements it with a Prometheus counter.
type PunchRecorder interface {
	PunchRecorded(punchType model.PunchType, source string)
}

// PunchService creates, edits and deletes punches.
//
// TWO WAYS IN:
//   - Punch is the interactive path used by the person clocking in/out.
//     Its timestamp must not be in the future and must come strictly after
//     that person's previous punch on the board.
//   - AddPunch / UpdatePunch by an organization admin are corrections and
//     are trusted: any time, any order.
//
// Nothing is recomputed on write. Hours are always derived from the rows
// at read time (package hours), so an edit is visible on the next report.
type PunchService struct {
	store    repository.Store
	access   *AccessService
	calendar hours.Calendar
	recorder PunchRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewPunchService(store repository.Store, access *AccessService, cal hours.Calendar, recorder PunchRecorder, logger *slog.Logger) *PunchService {
	return &PunchService{
		store:    store,
		access:   access,
		calendar: cal,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// PunchInput is an interactive punch. A nil Timestamp means now.
type PunchInput struct {
	Type      model.PunchType
	Timestamp *time.Time
	Note      string
}

// AddPunchInput is an admin's manual entry for any board member.
type AddPunchInput struct {
	UserID    string
	Type      model.PunchType
	Timestamp time.Time
	Note      string
}

// UpdatePunchInput changes only the non-nil fields.
type UpdatePunchInput struct {
	Type      *model.PunchType
	Timestamp *time.Time
	Note      *string
}

// HistoryQuery selects punches by calendar days (YYYY-MM-DD). Empty
// UserID means the actor; empty Start/End leave that side open.
type HistoryQuery struct {
	UserID string
	Start  string
	End    string
}

func validateType(t model.PunchType) error {
	if !t.Valid() {
		return apperror.ValidationFailed("type", `type must be "in" or "out"`)
	}
	return nil
}

func normalizeNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > model.MaxNoteLength {
		return "", apperror.ValidationFailed("note", fmt.Sprintf("note must be %d characters or less", model.MaxNoteLength))
	}
	return note, nil
}

// =========================================================================
// STATUS
// =========================================================================

// Status derives the actor's clock state from their latest punch.
func (s *PunchService) Status(ctx context.Context, actorID, boardID string) (*model.PunchStatus, error) {
	if _, _, err := s.access.BoardForMember(ctx, actorID, boardID); err != nil {
		return nil, err
	}
	return s.status(ctx, actorID, boardID)
}

func (s *PunchService) status(ctx context.Context, userID, boardID string) (*model.PunchStatus, error) {
	last, err := s.store.LatestPunch(ctx, userID, boardID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.PunchStatus{}, nil
		}
		return nil, fmt.Errorf("service/punch: latest punch of %s: %w", userID, err)
	}
	return &model.PunchStatus{IsClockedIn: last.Type == model.PunchIn, LastPunch: last}, nil
}

// =========================================================================
// CREATE
// =========================================================================

// Punch records an interactive punch for the actor.
func (s *PunchService) Punch(ctx context.Context, actorID, boardID string, in PunchInput) (*model.Punch, error) {
	if _, _, err := s.access.BoardForMember(ctx, actorID, boardID); err != nil {
		return nil, err
	}
	if err := validateType(in.Type); err != nil {
		return nil, err
	}
	note, err := normalizeNote(in.Note)
	if err != nil {
		return nil, err
	}

	now := s.now()
	at := now
	if in.Timestamp != nil {
		at = *in.Timestamp
	}

	if err := s.validateConfirmation(ctx, actorID, boardID, at, now); err != nil {
		return nil, err
	}

	return s.create(ctx, actorID, boardID, in.Type, at, note, SourceInteractive)
}

// validateConfirmation rejects a future time and a time at or before the
// user's previous punch on this board.
func (s *PunchService) validateConfirmation(ctx context.Context, userID, boardID string, at, now time.Time) error {
	if at.After(now) {
		return apperror.ValidationFailed("timestamp", "Cannot set punch time in the future")
	}

	last, err := s.store.LatestPunch(ctx, userID, boardID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service/punch: latest punch of %s: %w", userID, err)
	}
	if !at.After(last.Timestamp) {
		return apperror.ValidationFailed("timestamp",
			fmt.Sprintf("Time must be after your last punch (%s)", last.Timestamp.In(s.calendar.Location).Format(time.RFC3339)))
	}
	return nil
}

// AddPunch lets an organization admin record a punch for any user with
// access to the board, at any time.
func (s *PunchService) AddPunch(ctx context.Context, actorID, boardID string, in AddPunchInput) (*model.Punch, error) {
	if _, err := s.access.BoardForAdmin(ctx, actorID, boardID, "add punches for other users"); err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}
	if err := validateType(in.Type); err != nil {
		return nil, err
	}
	if in.Timestamp.IsZero() {
		return nil, apperror.ValidationFailed("timestamp", "timestamp is required")
	}
	note, err := normalizeNote(in.Note)
	if err != nil {
		return nil, err
	}

	ok, err := s.access.BoardAccess(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ValidationFailed("userId", "user does not have access to this board")
	}

	return s.create(ctx, userID, boardID, in.Type, in.Timestamp, note, SourceManual)
}

// create copies the user's current name and email onto the punch so
// reports keep showing who they were at the time.
func (s *PunchService) create(ctx context.Context, userID, boardID string, typ model.PunchType, at time.Time, note, source string) (*model.Punch, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/punch: loading user %s: %w", userID, err)
	}

	p := &model.Punch{
		UserID:    userID,
		BoardID:   boardID,
		UserName:  u.Name,
		UserEmail: u.Email,
		Type:      typ,
		Timestamp: at,
		Note:      note,
	}
	if err := s.store.CreatePunch(ctx, p); err != nil {
		return nil, fmt.Errorf("service/punch: recording punch: %w", err)
	}

	if s.recorder != nil {
		s.recorder.PunchRecorded(typ, source)
	}
	s.logger.Info("punch recorded",
		slog.String("punchID", p.ID),
		slog.String("userID", userID),
		slog.String("boardID", boardID),
		slog.String("type", string(typ)),
		slog.String("source", source),
	)
	return p, nil
}

// =========================================================================
// EDIT / DELETE
// =========================================================================

// canModify says whether actor may touch p. Admins of the board's
// organization may change anything. Everyone else may only change their
// own punches on a board they still have access to.
func (s *PunchService) canModify(ctx context.Context, actorID string, p *model.Punch) (admin bool, err error) {
	_, role, err := s.access.BoardForMember(ctx, actorID, p.BoardID)
	if err != nil {
		return false, err
	}
	if role == model.OrgRoleAdmin {
		return true, nil
	}
	if p.UserID != actorID {
		return false, apperror.Forbidden("only organization admins can change other users' punches")
	}
	return false, nil
}

func (s *PunchService) UpdatePunch(ctx context.Context, actorID, punchID string, in UpdatePunchInput) (*model.Punch, error) {
	p, err := s.store.GetPunchByID(ctx, punchID)
	if err != nil {
		return nil, fmt.Errorf("service/punch: %w", err)
	}
	admin, err := s.canModify(ctx, actorID, p)
	if err != nil {
		return nil, err
	}

	if in.Type != nil {
		if err := validateType(*in.Type); err != nil {
			return nil, err
		}
		p.Type = *in.Type
	}
	if in.Timestamp != nil {
		if in.Timestamp.IsZero() {
			return nil, apperror.ValidationFailed("timestamp", "timestamp is required")
		}
		if !admin && in.Timestamp.After(s.now()) {
			return nil, apperror.ValidationFailed("timestamp", "Cannot set punch time in the future")
		}
		p.Timestamp = *in.Timestamp
	}
	if in.Note != nil {
		note, err := normalizeNote(*in.Note)
		if err != nil {
			return nil, err
		}
		p.Note = note
	}

	if err := s.store.UpdatePunch(ctx, p); err != nil {
		return nil, fmt.Errorf("service/punch: updating %s: %w", punchID, err)
	}

	s.logger.Info("punch updated", slog.String("punchID", punchID), slog.String("by", actorID))
	return p, nil
}

func (s *PunchService) DeletePunch(ctx context.Context, actorID, punchID string) error {
	p, err := s.store.GetPunchByID(ctx, punchID)
	if err != nil {
		return fmt.Errorf("service/punch: %w", err)
	}
	if _, err := s.canModify(ctx, actorID, p); err != nil {
		return err
	}
	if err := s.store.DeletePunch(ctx, punchID); err != nil {
		return fmt.Errorf("service/punch: deleting %s: %w", punchID, err)
	}

	s.logger.Info("punch deleted", slog.String("punchID", punchID), slog.String("by", actorID))
	return nil
}

// DeletePunches removes all of ids or none. Every id must exist and be
// modifiable by the actor before anything is deleted.
func (s *PunchService) DeletePunches(ctx context.Context, actorID string, ids []string) (int, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, apperror.ValidationFailed("ids", "at least one punch id is required")
	}

	punches, err := s.store.ListPunchesByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("service/punch: loading punches: %w", err)
	}
	if len(punches) != len(ids) {
		found := make(map[string]bool, len(punches))
		for _, p := range punches {
			found[p.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return 0, apperror.NotFound("punch", id)
			}
		}
	}

	for i := range punches {
		if _, err := s.canModify(ctx, actorID, &punches[i]); err != nil {
			return 0, err
		}
	}

	if err := s.store.DeletePunches(ctx, ids); err != nil {
		return 0, fmt.Errorf("service/punch: deleting %d punches: %w", len(ids), err)
	}

	s.logger.Info("punches deleted", slog.Int("count", len(ids)), slog.String("by", actorID))
	return len(ids), nil
}

// =========================================================================
// HISTORY
// =========================================================================

// History lists punches newest first. Reading another user's history
// requires organization admin.
func (s *PunchService) History(ctx context.Context, actorID, boardID string, q HistoryQuery) ([]model.Punch, error) {
	_, role, err := s.access.BoardForMember(ctx, actorID, boardID)
	if err != nil {
		return nil, err
	}

	userID := q.UserID
	if userID == "" {
		userID = actorID
	}
	if userID != actorID && role != model.OrgRoleAdmin {
		return nil, apperror.Forbidden("only organization admins can view other users' punches")
	}

	filter := repository.PunchFilter{BoardID: boardID, UserID: userID, Order: repository.Descending}
	if q.Start != "" {
		start, err := s.calendar.ParseDate(q.Start)
		if err != nil {
			return nil, apperror.ValidationFailed("start", err.Error())
		}
		filter.From = start
	}
	if q.End != "" {
		end, err := s.calendar.ParseDate(q.End)
		if err != nil {
			return nil, apperror.ValidationFailed("end", err.Error())
		}
		filter.To = end.AddDate(0, 0, 1)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, apperror.ValidationFailed("end", "end date must not be before start date")
	}

	punches, err := s.store.ListPunches(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service/punch: history of %s: %w", userID, err)
	}
	return punches, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
