package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// LookupRepository is an in-memory implementation of domain.LookupRepository
type LookupRepository struct {
	store *Store
}

func (r *LookupRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	_, span := r.store.span(ctx, "LookupRepository.ListCategories", 0)
	defer span.End()

	var out []domain.Category
	_ = r.store.read(false, func(d *state) error {
		for _, name := range slices.Sorted(maps.Keys(d.categories)) {
			out = append(out, domain.Category{Name: name})
		}
		return nil
	})
	return nonNil(out), finish(span, nil)
}

func (r *LookupRepository) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	_, span := r.store.span(ctx, "LookupRepository.ListManufacturers", 0)
	defer span.End()

	var out []domain.Manufacturer
	_ = r.store.read(false, func(d *state) error {
		out = slices.Collect(maps.Values(d.manufacturers))
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Manufacturer) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return nonNil(out), finish(span, nil)
}

func (r *LookupRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	_, span := r.store.span(ctx, "LookupRepository.ListUsers", 0)
	defer span.End()

	var out []domain.User
	_ = r.store.read(false, func(d *state) error {
		out = slices.Collect(maps.Values(d.users))
		return nil
	})
	slices.SortFunc(out, func(a, b domain.User) int {
		return cmp.Or(cmp.Compare(a.Username, b.Username), cmp.Compare(a.ID, b.ID))
	})
	return nonNil(out), finish(span, nil)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
