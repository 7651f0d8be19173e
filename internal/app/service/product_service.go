package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	uow                   domain.UnitOfWork
	reconciler            *Reconciler
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	uow domain.UnitOfWork,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations := newOperationsCounter(meter)

	return &ProductService{
		repo:                  repo,
		uow:                   uow,
		reconciler:            NewReconciler(repo, uow, tracer, meter, logger),
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
	}
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.name", req.Name))

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
	)

	product, err := domain.NewProduct(req.Name, req.Description)
	if err != nil {
		failSpan(span, err, "Validation failed")
		s.logger.WarnContext(ctx, "Rejected product",
			slog.String("error", err.Error()),
		)
		recordOperation(ctx, s.productOperations, "create", err)
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		failSpan(span, err, "Failed to store product")
		s.logger.ErrorContext(ctx, "Failed to store product",
			slog.String("error", err.Error()),
		)
		recordOperation(ctx, s.productOperations, "create", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID))

	s.productCreatedCounter.Add(ctx, 1)
	recordOperation(ctx, s.productOperations, "create", nil)

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.Int64("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(product), nil
}

// GetProductByID retrieves a hydrated product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*dto.HydratedProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	s.logger.InfoContext(ctx, "Getting product by ID",
		slog.Int64("product_id", id),
	)

	if err := domain.ValidateID(id); err != nil {
		failSpan(span, err, "Invalid product id")
		recordOperation(ctx, s.productOperations, "read", err)
		return nil, err
	}

	product, err := s.repo.FindHydrated(ctx, id)
	if err != nil {
		failSpan(span, err, "Failed to load product")
		s.logger.WarnContext(ctx, "Product not loaded",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		recordOperation(ctx, s.productOperations, "read", err)
		return nil, err
	}

	recordOperation(ctx, s.productOperations, "read", nil)

	s.logger.InfoContext(ctx, "Product retrieved successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToHydratedProductResponse(product), nil
}

// ListProducts retrieves all products with their associations
func (s *ProductService) ListProducts(ctx context.Context) ([]*dto.HydratedProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.FindAllHydrated(ctx)
	if err != nil {
		failSpan(span, err, "Failed to retrieve products")
		s.logger.ErrorContext(ctx, "Failed to list products",
			slog.String("error", err.Error()),
		)
		recordOperation(ctx, s.productOperations, "list", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	recordOperation(ctx, s.productOperations, "list", nil)

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToHydratedProductResponseList(products), nil
}

// UpdateProduct applies a partial update through the reconciler
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *dto.UpdateProductRequest) (*dto.HydratedProductResponse, error) {
	product, err := s.reconciler.UpdateProduct(ctx, id, req.ToInput())
	recordOperation(ctx, s.productOperations, "update", err)
	if err != nil {
		return nil, err
	}
	return dto.ToHydratedProductResponse(product), nil
}

// DeleteProduct removes a product and all three of its association sets in
// one unit of work
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.Int64("product_id", id),
	)

	if err := domain.ValidateID(id); err != nil {
		failSpan(span, err, "Invalid product id")
		recordOperation(ctx, s.productOperations, "delete", err)
		return err
	}

	err := s.uow.Do(ctx, func(st domain.Stores) error {
		if _, err := st.Products.FindByID(ctx, id); err != nil {
			return err
		}
		if err := st.Associations.DeleteAllCategories(ctx, id); err != nil {
			return err
		}
		if err := st.Associations.DeleteAllManufacturers(ctx, id); err != nil {
			return err
		}
		if err := st.Associations.DeleteAllUsers(ctx, id); err != nil {
			return err
		}
		return st.Products.Delete(ctx, id)
	})
	if err != nil {
		failSpan(span, err, "Failed to delete product")
		s.logger.WarnContext(ctx, "Product not deleted",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		recordOperation(ctx, s.productOperations, "delete", err)
		return err
	}

	recordOperation(ctx, s.productOperations, "delete", nil)

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

// LinkCategory adds one category to a product's set
func (s *ProductService) LinkCategory(ctx context.Context, req *dto.LinkCategoryRequest) (*dto.CategoryLinkResponse, error) {
	var link dto.CategoryLinkResponse
	err := s.link(ctx, "categories", req.ProductID, func(st domain.Stores) error {
		if err := st.Associations.InsertCategories(ctx, req.ProductID, []string{req.CategoryName}); err != nil {
			return err
		}
		link = dto.CategoryLinkResponse{ProductID: req.ProductID, CategoryName: req.CategoryName}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// LinkManufacturer adds one manufacturer to a product's set
func (s *ProductService) LinkManufacturer(ctx context.Context, req *dto.LinkManufacturerRequest) (*dto.ManufacturerLinkResponse, error) {
	var link dto.ManufacturerLinkResponse
	err := s.link(ctx, "manufacturers", req.ProductID, func(st domain.Stores) error {
		if err := st.Associations.InsertManufacturers(ctx, req.ProductID, []int64{req.ManufacturerID}); err != nil {
			return err
		}
		links, err := st.Associations.ListManufacturers(ctx, req.ProductID)
		if err != nil {
			return err
		}
		for _, l := range links {
			if l.ManufacturerID == req.ManufacturerID {
				link = dto.ToManufacturerLinkResponse(l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// LinkUser adds one user to a product's set
func (s *ProductService) LinkUser(ctx context.Context, req *dto.LinkUserRequest) (*dto.UserLinkResponse, error) {
	var link dto.UserLinkResponse
	err := s.link(ctx, "users", req.ProductID, func(st domain.Stores) error {
		if err := st.Associations.InsertUsers(ctx, req.ProductID, []int64{req.UserID}); err != nil {
			return err
		}
		links, err := st.Associations.ListUsers(ctx, req.ProductID)
		if err != nil {
			return err
		}
		for _, l := range links {
			if l.UserID == req.UserID {
				link = dto.ToUserLinkResponse(l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// link bumps the product version and runs insert in the same unit of work.
// The version bump doubles as the existence check.
func (s *ProductService) link(ctx context.Context, set string, productID int64, insert func(st domain.Stores) error) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Link")
	defer span.End()

	span.SetAttributes(
		attribute.String("association.set", set),
		attribute.Int64("product.id", productID),
	)

	if err := domain.ValidateID(productID); err != nil {
		failSpan(span, err, "Invalid product id")
		recordOperation(ctx, s.productOperations, "link", err)
		return err
	}

	err := s.uow.Do(ctx, func(st domain.Stores) error {
		if err := st.Products.UpdateFields(ctx, productID, domain.ProductFields{}, 0); err != nil {
			return err
		}
		return insert(st)
	})
	if err != nil {
		failSpan(span, err, "Failed to link "+set)
		s.logger.WarnContext(ctx, "Association not created",
			slog.String("set", set),
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
		recordOperation(ctx, s.productOperations, "link", err)
		return err
	}

	recordOperation(ctx, s.productOperations, "link", nil)

	s.logger.InfoContext(ctx, "Association created",
		slog.String("set", set),
		slog.Int64("product_id", productID),
	)

	span.SetStatus(codes.Ok, "Association created")
	return nil
}
