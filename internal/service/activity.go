package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/google/uuid"
)

// Activity event types.
const (
	ActivityRegister      = "REGISTER"
	ActivityLogin         = "LOGIN"
	ActivityPostCreate    = "POST_CREATE"
	ActivityPostEdit      = "POST_EDIT"
	ActivityPostDelete    = "POST_DELETE"
	ActivityProfileUpdate = "PROFILE_UPDATE"
)

// LogFilter supports activity filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "" or one of the Activity* types
}

// ActivityPublisher forwards recorded events to an external consumer.
type ActivityPublisher interface {
	Publish(ctx context.Context, e models.ActivityEvent) error
}

// activityRecorder is what mutating services need from the activity log.
type activityRecorder interface {
	Record(ctx context.Context, userID int64, typ, desc string, meta any)
}

var ErrInvalidTimeRange = fmt.Errorf("%w: invalid time range: from must be <= to", ErrValidation)

type ActivityService struct {
	repo  repository.ActivityRepo
	users repository.UserRepo
	pub   ActivityPublisher
	log   *logger.Logger
}

// NewActivityService wires the activity log. pub and log may be nil.
func NewActivityService(repo repository.ActivityRepo, users repository.UserRepo, pub ActivityPublisher, log *logger.Logger) *ActivityService {
	return &ActivityService{repo: repo, users: users, pub: pub, log: log}
}

// Record appends an event and publishes it. Failures are logged, never returned:
// the user's operation has already succeeded.
func (s *ActivityService) Record(ctx context.Context, userID int64, typ, desc string, meta any) {
	ev := models.ActivityEvent{
		EventID:     uuid.NewString(),
		UserID:      userID,
		OccurredAt:  time.Now().UTC(),
		Type:        normalizeEventType(typ),
		Description: desc,
		Metadata:    meta,
	}

	if err := s.repo.Append(ctx, ev); err != nil && s.log != nil {
		s.log.Warnw("activity_append_failed", "type", ev.Type, "user_id", userID, "err", err)
	}
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, ev); err != nil && s.log != nil {
		s.log.Warnw("activity_publish_failed", "event_id", ev.EventID, "err", err)
	}
}

// ListActivity returns the caller's own events matching f.
func (s *ActivityService) ListActivity(ctx context.Context, id Identity, f LogFilter) ([]models.ActivityEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	u, err := resolveActor(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.List(ctx, u.ID, from, to, typ)
	if err != nil {
		return nil, storeErr("list activity", err)
	}
	return events, nil
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}

	return from, to, normalizeEventType(f.Type), nil
}
