package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"eventlisting/src/core/domain"
	"eventlisting/src/core/ports"
)

// CreateEventInput is a creation request after transport decoding.
// A nil entry in Covers stands for an explicit JSON null.
type CreateEventInput struct {
	Name     string
	Start    time.Time
	End      time.Time
	Covers   []*string
	Category string
	Features []string
}

// EventListItem is the flat projection returned by List.
type EventListItem struct {
	ID        uuid.UUID `json:"id"`
	EventName string    `json:"eventName"`
	EventType string    `json:"eventType"`
	Start     time.Time `json:"eventStart"`
	End       time.Time `json:"eventEnd"`
	Covers    []string  `json:"covers"`
	Features  []string  `json:"features"`
}

// EventService creates and lists events.
type EventService struct {
	repo  ports.EventRepository
	cache ports.EventListCache
	log   *slog.Logger
}

// NewEventService wires the service. cache may be nil.
func NewEventService(repo ports.EventRepository, cache ports.EventListCache, log *slog.Logger) *EventService {
	return &EventService{repo: repo, cache: cache, log: log}
}

// Create validates in, resolves or creates the referenced category and
// features by name and stores the event, all in one unit of work.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*domain.Event, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	covers := make([]string, 0, len(in.Covers))
	for _, c := range in.Covers {
		covers = append(covers, *c)
	}

	var created *domain.Event
	err := s.repo.WithTx(ctx, func(tx ports.EventTx) error {
		category, err := resolveCategory(ctx, tx, in.Category)
		if err != nil {
			return err
		}
		features, err := resolveFeatures(ctx, tx, in.Features)
		if err != nil {
			return err
		}
		ev, err := domain.NewEvent(in.Name, in.Start, in.End, covers, category, features)
		if err != nil {
			return err
		}
		if err := tx.InsertEvent(ctx, ev); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		created = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("event created",
		"event_id", created.ID,
		"has_category", created.Category != nil,
		"features", len(created.Features),
	)
	s.invalidateList(ctx)
	return created, nil
}

// List returns every event projected for display. A cached projection is
// served when available. The list version is read before the store so a
// create committing in between keeps this read out of the cache.
func (s *EventService) List(ctx context.Context) ([]EventListItem, error) {
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		var cached []EventListItem
		found, err := s.cache.GetList(ctx, &cached)
		if err != nil {
			s.log.Warn("event list cache read failed", "error", err)
		} else if found {
			return cached, nil
		}

		version, err = s.cache.ListVersion(ctx)
		if err != nil {
			s.log.Warn("event list version read failed", "error", err)
		} else {
			cacheable = true
		}
	}

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	items := make([]EventListItem, 0, len(events))
	for i := range events {
		items = append(items, projectEvent(&events[i]))
	}

	if cacheable {
		if err := s.cache.SetList(ctx, version, items); err != nil {
			s.log.Warn("event list cache write failed", "error", err)
		}
	}
	return items, nil
}

func projectEvent(e *domain.Event) EventListItem {
	eventType := domain.DefaultCategoryName
	if e.Category != nil {
		eventType = e.Category.Name
	}
	return EventListItem{
		ID:        e.ID,
		EventName: e.Name,
		EventType: eventType,
		Start:     e.Start,
		End:       e.End,
		Covers:    e.Covers,
		Features:  e.FeatureNames(),
	}
}

func (s *EventService) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateList(ctx); err != nil {
		s.log.Warn("event list cache invalidation failed", "error", err)
	}
}

// validateCreate checks field requirements first, then the business rules
// in their reporting order.
func validateCreate(in CreateEventInput) error {
	fe := domain.FieldErrors{}
	checkName(fe, "eventName", in.Name)
	checkName(fe, "eventType", in.Category)
	if in.Start.IsZero() {
		fe.Add("dateStart", "The dateStart field is required.")
	}
	if in.End.IsZero() {
		fe.Add("dateEnd", "The dateEnd field is required.")
	}
	if len(fe) > 0 {
		return fe
	}

	if !in.End.After(in.Start) {
		return domain.NewRequestError(domain.MsgEndBeforeStart, nil)
	}
	if len(in.Covers) > domain.MaxCovers {
		return domain.NewRequestError(domain.MsgTooManyCovers, nil)
	}
	for _, c := range in.Covers {
		if c == nil || utf8.RuneCountInString(*c) > domain.MaxCoverLength {
			return domain.NewRequestError(domain.MsgInvalidCover, nil)
		}
	}
	return nil
}

func checkName(fe domain.FieldErrors, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		fe.Add(field, fmt.Sprintf("The %s field is required.", field))
	case utf8.RuneCountInString(value) > domain.MaxNameLength:
		fe.Add(field, fmt.Sprintf("The field %s must be a string with a maximum length of %d.", field, domain.MaxNameLength))
	}
}

// resolveCategory finds the category by exact name or creates it. A blank
// name yields no category.
func resolveCategory(ctx context.Context, tx ports.EventTx, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	existing, err := tx.FindCategoryByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("find category: %w", err)
	}
	c, err := tx.InsertCategory(ctx, domain.NewCategory(name))
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// resolveFeatures maps requested names to features, creating the missing
// ones. Existing features are fetched in a single call and the missing ones
// are inserted in a single call. The result keeps request order; a name
// repeated (in any casing) is associated once.
func resolveFeatures(ctx context.Context, tx ports.EventTx, names []string) ([]domain.Feature, error) {
	requested := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			requested = append(requested, n)
		}
	}
	if len(requested) == 0 {
		return []domain.Feature{}, nil
	}

	known, err := tx.FindFeaturesByNames(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("find features: %w", err)
	}

	var missing []domain.Feature
	pending := make(map[string]bool)
	for _, name := range requested {
		key := domain.FeatureKey(name)
		if _, ok := findFeature(known, name); ok || pending[key] {
			continue
		}
		pending[key] = true
		missing = append(missing, domain.NewFeature(name))
	}
	if len(missing) > 0 {
		inserted, err := tx.InsertFeatures(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("insert features: %w", err)
		}
		known = append(known, inserted...)
	}

	resolved := make([]domain.Feature, 0, len(requested))
	seen := make(map[uuid.UUID]bool, len(requested))
	for _, name := range requested {
		f, ok := findFeature(known, name)
		if !ok {
			return nil, fmt.Errorf("feature %q not stored", name)
		}
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		resolved = append(resolved, f)
	}
	return resolved, nil
}

func findFeature(features []domain.Feature, name string) (domain.Feature, bool) {
	for _, f := range features {
		if domain.SameFeatureName(f.Name, name) {
			return f, true
		}
	}
	return domain.Feature{}, false
}
