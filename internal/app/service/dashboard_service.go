package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/app/aggregation"
	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DashboardService runs the aggregation pipeline over the current catalog
type DashboardService struct {
	repo     domain.ProductRepository
	pipeline *aggregation.Pipeline
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewDashboardService(repo domain.ProductRepository, pipeline *aggregation.Pipeline, tracer trace.Tracer, logger *slog.Logger) *DashboardService {
	return &DashboardService{repo: repo, pipeline: pipeline, tracer: tracer, logger: logger}
}

// Dashboard loads every product and derives the filtered list and series
// for criteria
func (s *DashboardService) Dashboard(ctx context.Context, criteria aggregation.Criteria) (*dto.DashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.Dashboard")
	defer span.End()

	span.SetAttributes(
		attribute.String("criteria.search", criteria.SearchTerm),
		attribute.String("criteria.category", criteria.SelectedCategory),
		attribute.String("criteria.manufacturer", criteria.SelectedManufacturer),
		attribute.String("criteria.sort_by", string(criteria.SortBy)),
		attribute.String("criteria.sort_order", string(criteria.SortOrder)),
	)

	products, err := s.repo.FindAllHydrated(ctx)
	if err != nil {
		failSpan(span, err, "Failed to load products")
		s.logger.ErrorContext(ctx, "Failed to load products for dashboard",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// the read may have outlived the caller
	if err := ctx.Err(); err != nil {
		failSpan(span, err, "Request cancelled")
		return nil, err
	}

	dashboard := s.pipeline.Build(products, criteria)

	span.SetAttributes(
		attribute.Int("dashboard.total", dashboard.Total),
		attribute.Int("dashboard.source", len(products)),
	)
	s.logger.DebugContext(ctx, "Dashboard built",
		slog.Int("products", len(products)),
		slog.Int("matched", dashboard.Total),
	)

	span.SetStatus(codes.Ok, "Dashboard built")
	return dto.ToDashboardResponse(dashboard), nil
}
