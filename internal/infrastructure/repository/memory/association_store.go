package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
)

// AssociationStore is an in-memory implementation of domain.AssociationStore.
// Link lists come back in the same order as the SQL store: category name,
// then manufacturer name or username with the id as tiebreak.
type AssociationStore struct {
	store *Store
	inTx  bool
}

func (s *AssociationStore) DeleteAllCategories(ctx context.Context, productID int64) error {
	_, span := s.store.span(ctx, "AssociationStore.DeleteAll", productID)
	defer span.End()
	span.SetAttributes(attribute.String("association.set", "categories"))

	return finish(span, s.store.write(s.inTx, func(d *state) error {
		delete(d.productCategories, productID)
		return nil
	}))
}

func (s *AssociationStore) DeleteAllManufacturers(ctx context.Context, productID int64) error {
	_, span := s.store.span(ctx, "AssociationStore.DeleteAll", productID)
	defer span.End()
	span.SetAttributes(attribute.String("association.set", "manufacturers"))

	return finish(span, s.store.write(s.inTx, func(d *state) error {
		delete(d.productManufacturers, productID)
		return nil
	}))
}

func (s *AssociationStore) DeleteAllUsers(ctx context.Context, productID int64) error {
	_, span := s.store.span(ctx, "AssociationStore.DeleteAll", productID)
	defer span.End()
	span.SetAttributes(attribute.String("association.set", "users"))

	return finish(span, s.store.write(s.inTx, func(d *state) error {
		delete(d.productUsers, productID)
		return nil
	}))
}

func (s *AssociationStore) InsertCategories(ctx context.Context, productID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, span := s.store.span(ctx, "AssociationStore.InsertMany", productID)
	defer span.End()
	span.SetAttributes(attribute.String("association.set", "categories"))

	return finish(span, s.store.write(s.inTx, func(d *state) error {
		if _, ok := d.products[productID]; !ok {
			return domain.ErrProductNotFound
		}
		for _, name := range names {
			if _, ok := d.categories[name]; !ok {
				return domain.ErrUnknownCategory
			}
		}
		d.productCategories[productID] = merge(d.productCategories[productID], names, cmp.Compare[string])
		return nil
	}))
}

func (s *AssociationStore) InsertManufacturers(ctx context.Context, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, span := s.store.span(ctx, "AssociationStore.InsertMany", productID)
	defer span.End()
	span.SetAttributes(attribute.String("association.set", "manufacturers"))

	return finish(span, s.store.write(s.inTx, func(d *state) error {
		if _, ok := d.products[productID]; !ok {
			return domain.ErrProductNotFound
		}
		for _, id := range ids {
			if _, ok := d.manufacturers[id]; !ok {
				return domain.ErrUnknownManufacturer
			}
		}
		d.productManufacturers[productID] = merge(d.productManufacturers[productID], ids, cmp.Compare[int64])
		return nil
	}))
}

func (s *AssociationStore) InsertUsers(ctx context.Context, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, span := s.store.span(ctx, "AssociationStore.InsertMany", productID)
	defer span.End()
	span.SetAttributes(attribute.String("association.set", "users"))

	return finish(span, s.store.write(s.inTx, func(d *state) error {
		if _, ok := d.products[productID]; !ok {
			return domain.ErrProductNotFound
		}
		for _, id := range ids {
			if _, ok := d.users[id]; !ok {
				return domain.ErrUnknownUser
			}
		}
		d.productUsers[productID] = merge(d.productUsers[productID], ids, cmp.Compare[int64])
		return nil
	}))
}

func (s *AssociationStore) ListCategories(ctx context.Context, productID int64) ([]domain.ProductCategoryLink, error) {
	_, span := s.store.span(ctx, "AssociationStore.ListCategories", productID)
	defer span.End()

	var links []domain.ProductCategoryLink
	_ = s.store.read(s.inTx, func(d *state) error {
		links = d.hydrate(domain.Product{ID: productID}).Categories
		return nil
	})
	return links, finish(span, nil)
}

func (s *AssociationStore) ListManufacturers(ctx context.Context, productID int64) ([]domain.ProductManufacturerLink, error) {
	_, span := s.store.span(ctx, "AssociationStore.ListManufacturers", productID)
	defer span.End()

	var links []domain.ProductManufacturerLink
	_ = s.store.read(s.inTx, func(d *state) error {
		links = d.hydrate(domain.Product{ID: productID}).Manufacturers
		return nil
	})
	return links, finish(span, nil)
}

func (s *AssociationStore) ListUsers(ctx context.Context, productID int64) ([]domain.ProductUserLink, error) {
	_, span := s.store.span(ctx, "AssociationStore.ListUsers", productID)
	defer span.End()

	var links []domain.ProductUserLink
	_ = s.store.read(s.inTx, func(d *state) error {
		links = d.hydrate(domain.Product{ID: productID}).Users
		return nil
	})
	return links, finish(span, nil)
}

// merge adds values to existing, skipping pairs that are already linked
func merge[T comparable](existing, values []T, compare func(a, b T) int) []T {
	out := slices.Clone(existing)
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, compare)
	return out
}
