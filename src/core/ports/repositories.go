// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"eventlisting/src/core/domain"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// EventTx is the set of store operations available inside one unit of work.
// Nothing written through it is visible to other units until commit.
type EventTx interface {
	// FindCategoryByName returns the category whose name matches exactly,
	// or a not found error.
	FindCategoryByName(ctx context.Context, name string) (*domain.Category, error)

	// InsertCategory stores c. When a category with the same name already
	// exists the stored row is returned instead.
	InsertCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)

	// FindFeaturesByNames returns, in one round trip, every feature whose
	// FeatureKey matches that of one of names.
	FindFeaturesByNames(ctx context.Context, names []string) ([]domain.Feature, error)

	// InsertFeatures stores fs in one statement, taking row locks in
	// FeatureKey order so concurrent units cannot deadlock. For a name
	// that already exists the stored row is returned instead. The result
	// holds one feature per distinct key, in no particular order.
	InsertFeatures(ctx context.Context, fs []domain.Feature) ([]domain.Feature, error)

	// InsertEvent stores e together with its feature associations in order.
	InsertEvent(ctx context.Context, e *domain.Event) error
}

// EventRepository persists events with their categories and features.
type EventRepository interface {
	Repository

	// WithTx runs fn in a single unit of work. The unit is committed when
	// fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(tx EventTx) error) error

	// ListEvents returns every event with category and features loaded.
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// EventListCache stores the projected event list between writes.
type EventListCache interface {
	// GetList decodes the cached list into dest and reports whether it was present.
	GetList(ctx context.Context, dest any) (bool, error)
	// ListVersion returns the current list version. Read it before loading
	// the list from the store and hand it back to SetList.
	ListVersion(ctx context.Context) (int64, error)
	// SetList stores list only if no invalidation happened since version
	// was read.
	SetList(ctx context.Context, version int64, list any) error
	// InvalidateList drops the stored list and advances the version.
	InvalidateList(ctx context.Context) error
	Health(ctx context.Context) error
}
