package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// ProductRepository is the GORM implementation of domain.ProductRepository
type ProductRepository struct {
	db           *gorm.DB
	associations *AssociationStore
	tracer       trace.Tracer
	logger       *slog.Logger
}

// NewProductRepository creates a repository bound to db, which may be a
// transaction handle
func NewProductRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		db:           db,
		associations: NewAssociationStore(db, tracer, logger),
		tracer:       tracer,
		logger:       logger,
	}
}

// Create inserts a new product row and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("product.name", product.Name))

	row := fromDomainProduct(product)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return r.fail(ctx, span, err, "failed to create product")
	}
	product.ID = row.ID
	product.CreatedAt = row.CreatedAt
	product.UpdatedAt = row.UpdatedAt

	span.SetAttributes(attribute.Int64("product.id", product.ID))
	r.logger.DebugContext(ctx, "Product created in repository",
		slog.Int64("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// FindByID retrieves the product row without its associations
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var row Product
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, r.fail(ctx, span, err, "failed to load product")
	}

	span.SetStatus(codes.Ok, "Product found")
	return toDomainProduct(&row), nil
}

// FindHydrated loads the product and assembles its three association sets
func (r *ProductRepository) FindHydrated(ctx context.Context, id int64) (*domain.HydratedProduct, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindHydrated")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var row Product
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, r.fail(ctx, span, err, "failed to load product")
	}

	hydrated, err := r.hydrate(ctx, []Product{row})
	if err != nil {
		return nil, r.fail(ctx, span, err, "failed to load product associations")
	}

	span.SetStatus(codes.Ok, "Product hydrated")
	return hydrated[0], nil
}

// FindAllHydrated returns every product ordered by id, with associations
func (r *ProductRepository) FindAllHydrated(ctx context.Context) ([]*domain.HydratedProduct, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAllHydrated")
	defer span.End()

	var rows []Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.fail(ctx, span, err, "failed to list products")
	}

	hydrated, err := r.hydrate(ctx, rows)
	if err != nil {
		return nil, r.fail(ctx, span, err, "failed to load product associations")
	}

	span.SetAttributes(attribute.Int("product.count", len(hydrated)))
	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(hydrated)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return hydrated, nil
}

// hydrate joins rows with their links using one query per association set
func (r *ProductRepository) hydrate(ctx context.Context, rows []Product) ([]*domain.HydratedProduct, error) {
	out := make([]*domain.HydratedProduct, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	categories, err := r.associations.categoriesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	manufacturers, err := r.associations.manufacturersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	users, err := r.associations.usersFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		id := rows[i].ID
		out[i] = &domain.HydratedProduct{
			Product:       *toDomainProduct(&rows[i]),
			Categories:    nonNil(categories[id]),
			Manufacturers: nonNil(manufacturers[id]),
			Users:         nonNil(users[id]),
		}
	}
	return out, nil
}

// UpdateFields applies scalar changes and bumps the version in one statement
func (r *ProductRepository) UpdateFields(ctx context.Context, id int64, fields domain.ProductFields, expectedVersion int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.UpdateFields")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product.id", id),
		attribute.Int64("product.expected_version", expectedVersion),
	)

	updates := map[string]any{
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now().UTC(),
	}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.SetDescription {
		updates["description"] = fields.Description
	}

	query := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id)
	if expectedVersion > 0 {
		query = query.Where("version = ?", expectedVersion)
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return r.fail(ctx, span, res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		// either the row is gone or its version moved on
		var count int64
		if err := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return r.fail(ctx, span, err, "failed to update product")
		}
		if count == 0 {
			return r.fail(ctx, span, domain.ErrProductNotFound, "product not found")
		}
		return r.fail(ctx, span, domain.ErrVersionConflict, "version conflict")
	}

	span.SetStatus(codes.Ok, "Product updated")
	return nil
}

// Delete removes the product row. Link rows go with it through ON DELETE
// CASCADE; callers running in a unit of work clear them explicitly first.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if res.Error != nil {
		return r.fail(ctx, span, res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return r.fail(ctx, span, domain.ErrProductNotFound, "product not found")
	}

	r.logger.DebugContext(ctx, "Product deleted from repository",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

// fail records err on the span and converts it to a domain error
func (r *ProductRepository) fail(ctx context.Context, span trace.Span, err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = domain.ErrProductNotFound
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, message)

	if kind := domain.KindOf(err); kind == domain.KindStorage {
		r.logger.ErrorContext(ctx, message, append([]any{slog.String("error", err.Error())}, pgAttrs(err)...)...)
	} else {
		r.logger.DebugContext(ctx, message, slog.String("error", err.Error()))
	}
	return domain.WrapStorage(err, message)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
