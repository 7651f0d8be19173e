package domain

import (
	"context"
)

var (
	ErrProductNotFound     = NewNotFoundError("product not found")
	ErrVersionConflict     = NewConflictError("product was modified concurrently")
	ErrUnknownCategory     = NewValidationError("unknown category")
	ErrUnknownManufacturer = NewValidationError("unknown manufacturer")
	ErrUnknownUser         = NewValidationError("unknown user")
)

// ProductFields is the set of scalar columns an update may touch.
type ProductFields struct {
	Name        *string
	Description *string

	// SetDescription distinguishes "clear description" from "leave it".
	SetDescription bool
}

// ProductRepository defines the contract for product storage
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindHydrated(ctx context.Context, id int64) (*HydratedProduct, error)
	FindAllHydrated(ctx context.Context) ([]*HydratedProduct, error)
	// UpdateFields applies fields and bumps the version. When expectedVersion
	// is non-zero the write only happens if it matches the stored version.
	UpdateFields(ctx context.Context, id int64, fields ProductFields, expectedVersion int64) error
	Delete(ctx context.Context, id int64) error
}

// AssociationStore persists the three product join relations. It holds no
// business rules beyond keeping (product, other) pairs unique.
type AssociationStore interface {
	DeleteAllCategories(ctx context.Context, productID int64) error
	InsertCategories(ctx context.Context, productID int64, names []string) error
	ListCategories(ctx context.Context, productID int64) ([]ProductCategoryLink, error)

	DeleteAllManufacturers(ctx context.Context, productID int64) error
	InsertManufacturers(ctx context.Context, productID int64, ids []int64) error
	ListManufacturers(ctx context.Context, productID int64) ([]ProductManufacturerLink, error)

	DeleteAllUsers(ctx context.Context, productID int64) error
	InsertUsers(ctx context.Context, productID int64, ids []int64) error
	ListUsers(ctx context.Context, productID int64) ([]ProductUserLink, error)
}

// LookupRepository reads the related entity tables.
type LookupRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListManufacturers(ctx context.Context) ([]Manufacturer, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Stores groups the repositories bound to one unit of work.
type Stores struct {
	Products     ProductRepository
	Associations AssociationStore
}

// UnitOfWork runs fn atomically: either every write fn performs is committed
// or none is.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(stores Stores) error) error
}
