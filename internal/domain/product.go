package domain

import (
	"time"
)

var (
	ErrInvalidProductName = NewValidationError("product name is required")
	ErrInvalidProductID   = NewValidationError("invalid product id")
)

// Product represents the product entity
type Product struct {
	ID          int64
	Name        string
	Description *string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct creates a new product with validation
func NewProduct(name string, description *string) (*Product, error) {
	now := time.Now().UTC()
	product := &Product{
		Name:        name,
		Description: normalizeDescription(description),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidProductName
	}
	return nil
}

// ValidateID rejects identifiers the store could never have assigned.
func ValidateID(id int64) error {
	if id <= 0 {
		return ErrInvalidProductID
	}
	return nil
}

// empty descriptions are stored as NULL
func normalizeDescription(description *string) *string {
	if description == nil || *description == "" {
		return nil
	}
	d := *description
	return &d
}

// Category is identified by its unique name.
type Category struct {
	Name string
}

// Manufacturer is a maker a product can be linked to.
type Manufacturer struct {
	ID   int64
	Name string
}

// User is an account a product can be linked to.
type User struct {
	ID       int64
	Username string
}

// ProductCategoryLink pairs a product with a category name.
type ProductCategoryLink struct {
	ProductID    int64
	CategoryName string
}

// ProductManufacturerLink pairs a product with a manufacturer.
type ProductManufacturerLink struct {
	ProductID      int64
	ManufacturerID int64
	Manufacturer   Manufacturer
}

// ProductUserLink pairs a product with a user.
type ProductUserLink struct {
	ProductID int64
	UserID    int64
	User      User
}

// HydratedProduct is a product together with the current contents of its
// three association sets.
type HydratedProduct struct {
	Product
	Categories    []ProductCategoryLink
	Manufacturers []ProductManufacturerLink
	Users         []ProductUserLink
}
