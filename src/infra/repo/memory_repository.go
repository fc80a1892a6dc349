package repo

import (
	"context"
	"slices"
	"sync"

	"eventlisting/src/core/domain"
	"eventlisting/src/core/ports"
)

// MemoryRepository implements EventRepository in process memory.
// Units of work are serialized; staged rows become visible on commit only.
type MemoryRepository struct {
	mu         sync.Mutex
	categories []domain.Category
	features   []domain.Feature
	events     []domain.Event
}

var _ ports.EventRepository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Health(context.Context) error {
	return nil
}

func (r *MemoryRepository) WithTx(ctx context.Context, fn func(tx ports.EventTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memoryTx{repo: r}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.categories = append(r.categories, tx.categories...)
	r.features = append(r.features, tx.features...)
	r.events = append(r.events, tx.events...)
	return nil
}

func (r *MemoryRepository) ListEvents(context.Context) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, cloneEvent(e))
	}
	return out, nil
}

// Categories returns a snapshot of the stored categories.
func (r *MemoryRepository) Categories() []domain.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.categories)
}

// Features returns a snapshot of the stored features.
func (r *MemoryRepository) Features() []domain.Feature {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.features)
}

type memoryTx struct {
	repo       *MemoryRepository
	categories []domain.Category
	features   []domain.Feature
	events     []domain.Event
}

func (t *memoryTx) FindCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	for _, set := range [][]domain.Category{t.repo.categories, t.categories} {
		for _, c := range set {
			if c.Name == name {
				c := c
				return &c, nil
			}
		}
	}
	return nil, domain.NewNotFoundError("category")
}

func (t *memoryTx) InsertCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if existing, err := t.FindCategoryByName(ctx, c.Name); err == nil {
		return existing, nil
	}
	t.categories = append(t.categories, *c)
	out := *c
	return &out, nil
}

func (t *memoryTx) FindFeaturesByNames(_ context.Context, names []string) ([]domain.Feature, error) {
	var out []domain.Feature
	for _, set := range [][]domain.Feature{t.repo.features, t.features} {
		for _, f := range set {
			if slices.ContainsFunc(names, func(n string) bool { return domain.SameFeatureName(n, f.Name) }) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func (t *memoryTx) InsertFeatures(ctx context.Context, fs []domain.Feature) ([]domain.Feature, error) {
	out := make([]domain.Feature, 0, len(fs))
	for _, f := range sortedByKey(fs) {
		existing, _ := t.FindFeaturesByNames(ctx, []string{f.Name})
		if len(existing) > 0 {
			out = append(out, existing[0])
			continue
		}
		t.features = append(t.features, f)
		out = append(out, f)
	}
	return out, nil
}

func (t *memoryTx) InsertEvent(_ context.Context, e *domain.Event) error {
	for _, set := range [][]domain.Event{t.repo.events, t.events} {
		for _, other := range set {
			if other.ID == e.ID {
				return domain.NewConflictError("event already exists")
			}
		}
	}
	t.events = append(t.events, cloneEvent(*e))
	return nil
}

func cloneEvent(e domain.Event) domain.Event {
	e.Covers = slices.Clone(e.Covers)
	e.Features = slices.Clone(e.Features)
	if e.Features == nil {
		e.Features = []domain.Feature{}
	}
	if e.Category != nil {
		c := *e.Category
		e.Category = &c
	}
	return e
}
