package database

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssociationStore is the GORM implementation of domain.AssociationStore
type AssociationStore struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewAssociationStore creates a store bound to db
func NewAssociationStore(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *AssociationStore {
	return &AssociationStore{db: db, tracer: tracer, logger: logger}
}

func (s *AssociationStore) DeleteAllCategories(ctx context.Context, productID int64) error {
	return s.deleteAll(ctx, "categories", productID, &ProductCategory{})
}

func (s *AssociationStore) DeleteAllManufacturers(ctx context.Context, productID int64) error {
	return s.deleteAll(ctx, "manufacturers", productID, &ProductManufacturer{})
}

func (s *AssociationStore) DeleteAllUsers(ctx context.Context, productID int64) error {
	return s.deleteAll(ctx, "users", productID, &ProductUser{})
}

func (s *AssociationStore) deleteAll(ctx context.Context, set string, productID int64, model any) error {
	ctx, span := s.tracer.Start(ctx, "AssociationStore.DeleteAll")
	defer span.End()

	span.SetAttributes(
		attribute.String("association.set", set),
		attribute.Int64("product.id", productID),
	)

	res := s.db.WithContext(ctx).Where("product_id = ?", productID).Delete(model)
	if res.Error != nil {
		return s.fail(ctx, span, res.Error, "failed to clear "+set)
	}

	span.SetAttributes(attribute.Int64("association.deleted", res.RowsAffected))
	span.SetStatus(codes.Ok, "Associations cleared")
	return nil
}

// InsertCategories links every name to the product. Empty input is a no-op.
func (s *AssociationStore) InsertCategories(ctx context.Context, productID int64, names []string) error {
	names = domain.Dedupe(names)
	if len(names) == 0 {
		return nil
	}
	rows := make([]ProductCategory, len(names))
	for i, name := range names {
		rows[i] = ProductCategory{ProductID: productID, CategoryName: name}
	}
	return s.insert(ctx, "categories", productID, &rows, len(rows), domain.ErrUnknownCategory)
}

// InsertManufacturers links every manufacturer id to the product.
func (s *AssociationStore) InsertManufacturers(ctx context.Context, productID int64, ids []int64) error {
	ids = domain.Dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]ProductManufacturer, len(ids))
	for i, id := range ids {
		rows[i] = ProductManufacturer{ProductID: productID, ManufacturerID: id}
	}
	return s.insert(ctx, "manufacturers", productID, &rows, len(rows), domain.ErrUnknownManufacturer)
}

// InsertUsers links every user id to the product.
func (s *AssociationStore) InsertUsers(ctx context.Context, productID int64, ids []int64) error {
	ids = domain.Dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]ProductUser, len(ids))
	for i, id := range ids {
		rows[i] = ProductUser{ProductID: productID, UserID: id}
	}
	return s.insert(ctx, "users", productID, &rows, len(rows), domain.ErrUnknownUser)
}

func (s *AssociationStore) insert(ctx context.Context, set string, productID int64, rows any, n int, unknown error) error {
	ctx, span := s.tracer.Start(ctx, "AssociationStore.InsertMany")
	defer span.End()

	span.SetAttributes(
		attribute.String("association.set", set),
		attribute.Int64("product.id", productID),
		attribute.Int("association.count", n),
	)

	// existing pairs are left alone so repeated inserts never duplicate
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(rows).
		Error
	if err != nil {
		if IsForeignKeyViolation(err) {
			return s.fail(ctx, span, unknown, "failed to link "+set)
		}
		return s.fail(ctx, span, err, "failed to link "+set)
	}

	span.SetStatus(codes.Ok, "Associations inserted")
	return nil
}

func (s *AssociationStore) ListCategories(ctx context.Context, productID int64) ([]domain.ProductCategoryLink, error) {
	links, err := s.categoriesFor(ctx, []int64{productID})
	if err != nil {
		return nil, err
	}
	return nonNil(links[productID]), nil
}

func (s *AssociationStore) ListManufacturers(ctx context.Context, productID int64) ([]domain.ProductManufacturerLink, error) {
	links, err := s.manufacturersFor(ctx, []int64{productID})
	if err != nil {
		return nil, err
	}
	return nonNil(links[productID]), nil
}

func (s *AssociationStore) ListUsers(ctx context.Context, productID int64) ([]domain.ProductUserLink, error) {
	links, err := s.usersFor(ctx, []int64{productID})
	if err != nil {
		return nil, err
	}
	return nonNil(links[productID]), nil
}

func (s *AssociationStore) categoriesFor(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductCategoryLink, error) {
	ctx, span := s.tracer.Start(ctx, "AssociationStore.ListCategories")
	defer span.End()

	var rows []ProductCategory
	err := s.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC, category_name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list categories")
	}

	out := make(map[int64][]domain.ProductCategoryLink, len(productIDs))
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], domain.ProductCategoryLink{
			ProductID:    row.ProductID,
			CategoryName: row.CategoryName,
		})
	}
	span.SetStatus(codes.Ok, "Categories listed")
	return out, nil
}

func (s *AssociationStore) manufacturersFor(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductManufacturerLink, error) {
	ctx, span := s.tracer.Start(ctx, "AssociationStore.ListManufacturers")
	defer span.End()

	var rows []ProductManufacturer
	err := s.db.WithContext(ctx).
		Joins("JOIN manufacturers ON manufacturers.id = product_manufacturers.manufacturer_id").
		Preload("Manufacturer").
		Where("product_manufacturers.product_id IN ?", productIDs).
		Order("product_manufacturers.product_id ASC, manufacturers.name ASC, manufacturers.id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list manufacturers")
	}

	out := make(map[int64][]domain.ProductManufacturerLink, len(productIDs))
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], domain.ProductManufacturerLink{
			ProductID:      row.ProductID,
			ManufacturerID: row.ManufacturerID,
			Manufacturer: domain.Manufacturer{
				ID:   row.Manufacturer.ID,
				Name: row.Manufacturer.Name,
			},
		})
	}
	span.SetStatus(codes.Ok, "Manufacturers listed")
	return out, nil
}

func (s *AssociationStore) usersFor(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductUserLink, error) {
	ctx, span := s.tracer.Start(ctx, "AssociationStore.ListUsers")
	defer span.End()

	var rows []ProductUser
	err := s.db.WithContext(ctx).
		Joins("JOIN users ON users.id = product_users.user_id").
		Preload("User").
		Where("product_users.product_id IN ?", productIDs).
		Order("product_users.product_id ASC, users.username ASC, users.id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list users")
	}

	out := make(map[int64][]domain.ProductUserLink, len(productIDs))
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], domain.ProductUserLink{
			ProductID: row.ProductID,
			UserID:    row.UserID,
			User: domain.User{
				ID:       row.User.ID,
				Username: row.User.Username,
			},
		})
	}
	span.SetStatus(codes.Ok, "Users listed")
	return out, nil
}

func (s *AssociationStore) fail(ctx context.Context, span trace.Span, err error, message string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, message)
	if domain.KindOf(err) == domain.KindStorage {
		s.logger.ErrorContext(ctx, message, append([]any{slog.String("error", err.Error())}, pgAttrs(err)...)...)
	} else {
		s.logger.WarnContext(ctx, message, slog.String("error", err.Error()))
	}
	return domain.WrapStorage(err, message)
}
