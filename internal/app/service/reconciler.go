package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var ErrInvalidVersion = domain.NewValidationError("version must be a positive integer")

// Reconciler applies partial product updates. Every present association set
// is replaced wholesale, and the scalar update plus all replacements commit
// or roll back together.
type Reconciler struct {
	repo          domain.ProductRepository
	uow           domain.UnitOfWork
	tracer        trace.Tracer
	logger        *slog.Logger
	replacedSets  metric.Int64Counter
	insertedLinks metric.Int64Counter
}

func NewReconciler(
	repo domain.ProductRepository,
	uow domain.UnitOfWork,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *Reconciler {
	replacedSets, _ := meter.Int64Counter(
		"products.associations.replaced",
		metric.WithDescription("Association sets replaced by product updates"),
	)
	insertedLinks, _ := meter.Int64Counter(
		"products.associations.inserted",
		metric.WithDescription("Link rows inserted by product updates"),
	)

	return &Reconciler{
		repo:          repo,
		uow:           uow,
		tracer:        tracer,
		logger:        logger,
		replacedSets:  replacedSets,
		insertedLinks: insertedLinks,
	}
}

// UpdateProduct applies in to product id and returns the product as
// committed. An input with no fields performs no writes.
func (r *Reconciler) UpdateProduct(ctx context.Context, id int64, in domain.UpdateProductInput) (*domain.HydratedProduct, error) {
	ctx, span := r.tracer.Start(ctx, "Reconciler.UpdateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product.id", id),
		attribute.Bool("update.name", in.Name.Present),
		attribute.Bool("update.description", in.Description.Present),
		attribute.Bool("update.categories", in.Categories.Present),
		attribute.Bool("update.manufacturers", in.Manufacturers.Present),
		attribute.Bool("update.users", in.Users.Present),
	)

	r.logger.InfoContext(ctx, "Updating product",
		slog.Int64("product_id", id),
	)

	expected, err := validateUpdate(id, in)
	if err != nil {
		failSpan(span, err, "Validation failed")
		r.logger.WarnContext(ctx, "Rejected product update",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if in.IsEmpty() {
		product, err := r.repo.FindHydrated(ctx, id)
		if err != nil {
			failSpan(span, err, "Failed to load product")
			return nil, err
		}
		if expected > 0 && product.Version != expected {
			failSpan(span, domain.ErrVersionConflict, "Version conflict")
			return nil, domain.ErrVersionConflict
		}
		span.SetStatus(codes.Ok, "Nothing to update")
		return product, nil
	}

	fields := domain.ProductFields{}
	if name, ok := in.NameChange(); ok {
		fields.Name = &name
	}
	if description, ok := in.DescriptionChange(); ok {
		fields.Description = description
		fields.SetDescription = true
	}

	replaced := make(map[string]int, 3)
	err = r.uow.Do(ctx, func(st domain.Stores) error {
		// runs first so a missing product or stale version aborts before any
		// link is touched
		if err := st.Products.UpdateFields(ctx, id, fields, expected); err != nil {
			return err
		}

		if in.Categories.Present {
			names := domain.Dedupe(in.Categories.Value)
			if err := st.Associations.DeleteAllCategories(ctx, id); err != nil {
				return err
			}
			if err := st.Associations.InsertCategories(ctx, id, names); err != nil {
				return err
			}
			replaced["categories"] = len(names)
		}

		if in.Manufacturers.Present {
			ids := domain.Dedupe(in.Manufacturers.Value)
			if err := st.Associations.DeleteAllManufacturers(ctx, id); err != nil {
				return err
			}
			if err := st.Associations.InsertManufacturers(ctx, id, ids); err != nil {
				return err
			}
			replaced["manufacturers"] = len(ids)
		}

		if in.Users.Present {
			ids := domain.Dedupe(in.Users.Value)
			if err := st.Associations.DeleteAllUsers(ctx, id); err != nil {
				return err
			}
			if err := st.Associations.InsertUsers(ctx, id, ids); err != nil {
				return err
			}
			replaced["users"] = len(ids)
		}

		return nil
	})
	if err != nil {
		failSpan(span, err, "Reconciliation rolled back")
		r.logger.WarnContext(ctx, "Product update rolled back",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	for set, inserted := range replaced {
		r.countReplace(ctx, set, inserted)
	}

	product, err := r.repo.FindHydrated(ctx, id)
	if err != nil {
		failSpan(span, err, "Failed to reload product")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product.version", product.Version))
	r.logger.InfoContext(ctx, "Product updated successfully",
		slog.Int64("product_id", id),
		slog.Int64("version", product.Version),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return product, nil
}

// validateUpdate checks everything that can be checked without storage and
// returns the expected version, zero when none was sent
func validateUpdate(id int64, in domain.UpdateProductInput) (int64, error) {
	if err := domain.ValidateID(id); err != nil {
		return 0, err
	}
	if !in.Version.Present || in.Version.Null {
		return 0, nil
	}
	if in.Version.Value <= 0 {
		return 0, ErrInvalidVersion
	}
	return in.Version.Value, nil
}

func (r *Reconciler) countReplace(ctx context.Context, set string, inserted int) {
	attrs := metric.WithAttributes(attribute.String("association.set", set))
	r.replacedSets.Add(ctx, 1, attrs)
	r.insertedLinks.Add(ctx, int64(inserted), attrs)
}
