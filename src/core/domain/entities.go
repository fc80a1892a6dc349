package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups events under a display name. Names are unique and
// matched exactly.
type Category struct {
	ID   uuid.UUID
	Name string
}

// Feature is a tag attached to events. Names are matched case-insensitively.
type Feature struct {
	ID   uuid.UUID
	Name string
}

// Event is a listed event with its resolved category and features.
type Event struct {
	ID       uuid.UUID
	Name     string
	Start    time.Time
	End      time.Time
	Covers   []string
	Category *Category
	Features []Feature
}

// NewCategory creates a category with a fresh identity.
func NewCategory(name string) *Category {
	return &Category{ID: uuid.New(), Name: name}
}

// NewFeature creates a feature with a fresh identity.
func NewFeature(name string) Feature {
	return Feature{ID: uuid.New(), Name: name}
}

// NewEvent builds an event with a fresh identity and UTC instants.
// A nil covers list is stored as empty.
func NewEvent(name string, start, end time.Time, covers []string, category *Category, features []Feature) (*Event, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("eventName", "is required")
	}
	if !end.After(start) {
		return nil, NewRequestError(MsgEndBeforeStart, nil)
	}
	if covers == nil {
		covers = []string{}
	}
	return &Event{
		ID:       uuid.New(),
		Name:     name,
		Start:    start.UTC(),
		End:      end.UTC(),
		Covers:   covers,
		Category: category,
		Features: features,
	}, nil
}

// CategoryName returns the category name or nil when the event has none.
func (e *Event) CategoryName() *string {
	if e.Category == nil {
		return nil
	}
	name := e.Category.Name
	return &name
}

// FeatureNames returns feature names in association order.
func (e *Event) FeatureNames() []string {
	names := make([]string, 0, len(e.Features))
	for _, f := range e.Features {
		names = append(names, f.Name)
	}
	return names
}

// FeatureKey is the identity of a feature name: its simple lowercase
// mapping. The features table is unique on lower(name), which on a UTF-8
// database applies the same mapping; full case folding (EqualFold) is not
// used because it equates names such as "ſ" and "s" that lower() keeps apart.
func FeatureKey(name string) string {
	return strings.ToLower(name)
}

// SameFeatureName reports whether two feature names refer to the same feature.
func SameFeatureName(a, b string) bool {
	return FeatureKey(a) == FeatureKey(b)
}
