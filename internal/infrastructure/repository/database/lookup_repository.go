package database

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// LookupRepository reads categories, manufacturers and users
type LookupRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

func NewLookupRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *LookupRepository {
	return &LookupRepository{db: db, tracer: tracer, logger: logger}
}

// ListCategories returns every category ordered by name
func (r *LookupRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "LookupRepository.ListCategories")
	defer span.End()

	var rows []Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, r.fail(ctx, span, err, "failed to list categories")
	}

	out := make([]domain.Category, len(rows))
	for i, row := range rows {
		out[i] = domain.Category{Name: row.Name}
	}
	span.SetAttributes(attribute.Int("category.count", len(out)))
	span.SetStatus(codes.Ok, "Categories listed")
	return out, nil
}

// ListManufacturers returns every manufacturer ordered by name
func (r *LookupRepository) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	ctx, span := r.tracer.Start(ctx, "LookupRepository.ListManufacturers")
	defer span.End()

	var rows []Manufacturer
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, r.fail(ctx, span, err, "failed to list manufacturers")
	}

	out := make([]domain.Manufacturer, len(rows))
	for i, row := range rows {
		out[i] = domain.Manufacturer{ID: row.ID, Name: row.Name}
	}
	span.SetAttributes(attribute.Int("manufacturer.count", len(out)))
	span.SetStatus(codes.Ok, "Manufacturers listed")
	return out, nil
}

// ListUsers returns every user ordered by username
func (r *LookupRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "LookupRepository.ListUsers")
	defer span.End()

	var rows []User
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&rows).Error; err != nil {
		return nil, r.fail(ctx, span, err, "failed to list users")
	}

	out := make([]domain.User, len(rows))
	for i, row := range rows {
		out[i] = domain.User{ID: row.ID, Username: row.Username}
	}
	span.SetAttributes(attribute.Int("user.count", len(out)))
	span.SetStatus(codes.Ok, "Users listed")
	return out, nil
}

func (r *LookupRepository) fail(ctx context.Context, span trace.Span, err error, message string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, message)
	r.logger.ErrorContext(ctx, message, slog.String("error", err.Error()))
	return domain.WrapStorage(err, message)
}
