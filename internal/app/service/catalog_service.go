package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CatalogService serves the category, manufacturer and user lookups
type CatalogService struct {
	repo   domain.LookupRepository
	tracer trace.Tracer
	logger *slog.Logger
}

func NewCatalogService(repo domain.LookupRepository, tracer trace.Tracer, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, tracer: tracer, logger: logger}
}

// ListCategories returns every category sorted by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListCategories")
	defer span.End()

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, err, "Failed to list categories")
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	span.SetStatus(codes.Ok, "Categories listed")
	return dto.ToCategoryResponseList(categories), nil
}

// ListManufacturers returns every manufacturer sorted by name
func (s *CatalogService) ListManufacturers(ctx context.Context) ([]dto.ManufacturerResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListManufacturers")
	defer span.End()

	manufacturers, err := s.repo.ListManufacturers(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, err, "Failed to list manufacturers")
	}

	span.SetAttributes(attribute.Int("manufacturer.count", len(manufacturers)))
	span.SetStatus(codes.Ok, "Manufacturers listed")
	return dto.ToManufacturerResponseList(manufacturers), nil
}

// ListUsers returns every user sorted by username
func (s *CatalogService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListUsers")
	defer span.End()

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, err, "Failed to list users")
	}

	span.SetAttributes(attribute.Int("user.count", len(users)))
	span.SetStatus(codes.Ok, "Users listed")
	return dto.ToUserResponseList(users), nil
}

func (s *CatalogService) fail(ctx context.Context, span trace.Span, err error, message string) error {
	failSpan(span, err, message)
	s.logger.ErrorContext(ctx, message, slog.String("error", err.Error()))
	return err
}
