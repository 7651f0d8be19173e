package memory

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository
type ProductRepository struct {
	store *Store
	inTx  bool
}

// Create stores a new product and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.store.span(ctx, "ProductRepository.Create", 0)
	defer span.End()

	span.SetAttributes(attribute.String("product.name", product.Name))

	err := r.store.write(r.inTx, func(d *state) error {
		product.ID = d.nextProductID
		d.nextProductID++
		d.products[product.ID] = *product
		return nil
	})

	r.store.logger.DebugContext(ctx, "Product created in repository",
		slog.Int64("product_id", product.ID),
		slog.String("product_name", product.Name),
	)
	return finish(span, err)
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	_, span := r.store.span(ctx, "ProductRepository.FindByID", id)
	defer span.End()

	var product domain.Product
	err := r.store.read(r.inTx, func(d *state) error {
		p, ok := d.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, finish(span, err)
	}
	return &product, finish(span, nil)
}

// FindHydrated retrieves a product with all three association sets
func (r *ProductRepository) FindHydrated(ctx context.Context, id int64) (*domain.HydratedProduct, error) {
	_, span := r.store.span(ctx, "ProductRepository.FindHydrated", id)
	defer span.End()

	var hydrated *domain.HydratedProduct
	err := r.store.read(r.inTx, func(d *state) error {
		p, ok := d.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		hydrated = d.hydrate(p)
		return nil
	})
	if err != nil {
		return nil, finish(span, err)
	}
	return hydrated, finish(span, nil)
}

// FindAllHydrated retrieves all products ordered by ID
func (r *ProductRepository) FindAllHydrated(ctx context.Context) ([]*domain.HydratedProduct, error) {
	ctx, span := r.store.span(ctx, "ProductRepository.FindAllHydrated", 0)
	defer span.End()

	var products []*domain.HydratedProduct
	_ = r.store.read(r.inTx, func(d *state) error {
		ids := slices.Sorted(maps.Keys(d.products))
		products = make([]*domain.HydratedProduct, 0, len(ids))
		for _, id := range ids {
			products = append(products, d.hydrate(d.products[id]))
		}
		return nil
	})

	span.SetAttributes(attribute.Int("product.count", len(products)))
	r.store.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)
	return products, finish(span, nil)
}

// UpdateFields applies scalar changes and bumps the version
func (r *ProductRepository) UpdateFields(ctx context.Context, id int64, fields domain.ProductFields, expectedVersion int64) error {
	_, span := r.store.span(ctx, "ProductRepository.UpdateFields", id)
	defer span.End()

	err := r.store.write(r.inTx, func(d *state) error {
		p, ok := d.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		if expectedVersion > 0 && p.Version != expectedVersion {
			return domain.ErrVersionConflict
		}
		if fields.Name != nil {
			p.Name = *fields.Name
		}
		if fields.SetDescription {
			p.Description = fields.Description
		}
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		d.products[id] = p
		return nil
	})
	return finish(span, err)
}

// Delete removes a product and every link row that references it
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	_, span := r.store.span(ctx, "ProductRepository.Delete", id)
	defer span.End()

	err := r.store.write(r.inTx, func(d *state) error {
		if _, ok := d.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		delete(d.products, id)
		delete(d.productCategories, id)
		delete(d.productManufacturers, id)
		delete(d.productUsers, id)
		return nil
	})
	return finish(span, err)
}

func (d *state) hydrate(p domain.Product) *domain.HydratedProduct {
	h := &domain.HydratedProduct{
		Product:       p,
		Categories:    []domain.ProductCategoryLink{},
		Manufacturers: []domain.ProductManufacturerLink{},
		Users:         []domain.ProductUserLink{},
	}
	for _, name := range d.productCategories[p.ID] {
		h.Categories = append(h.Categories, domain.ProductCategoryLink{ProductID: p.ID, CategoryName: name})
	}
	for _, mid := range d.productManufacturers[p.ID] {
		h.Manufacturers = append(h.Manufacturers, domain.ProductManufacturerLink{
			ProductID:      p.ID,
			ManufacturerID: mid,
			Manufacturer:   d.manufacturers[mid],
		})
	}
	for _, uid := range d.productUsers[p.ID] {
		h.Users = append(h.Users, domain.ProductUserLink{
			ProductID: p.ID,
			UserID:    uid,
			User:      d.users[uid],
		})
	}
	slices.SortFunc(h.Manufacturers, func(a, b domain.ProductManufacturerLink) int {
		return cmp.Or(cmp.Compare(a.Manufacturer.Name, b.Manufacturer.Name), cmp.Compare(a.ManufacturerID, b.ManufacturerID))
	})
	slices.SortFunc(h.Users, func(a, b domain.ProductUserLink) int {
		return cmp.Or(cmp.Compare(a.User.Username, b.User.Username), cmp.Compare(a.UserID, b.UserID))
	})
	return h
}
