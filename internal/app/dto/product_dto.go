package dto

import (
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// CreateProductRequest represents the request to create a product
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// UpdateProductRequest is a partial update. Keys left out of the JSON body
// leave the matching field or association set alone.
type UpdateProductRequest struct {
	Name          domain.Optional[string]   `json:"name"`
	Description   domain.Optional[string]   `json:"description"`
	Categories    domain.Optional[[]string] `json:"categories"`
	Manufacturers domain.Optional[[]int64]  `json:"manufacturers"`
	Users         domain.Optional[[]int64]  `json:"users"`
	Version       domain.Optional[int64]    `json:"version"`
}

// ToInput converts the request into the domain update input
func (r *UpdateProductRequest) ToInput() domain.UpdateProductInput {
	return domain.UpdateProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Categories:    r.Categories,
		Manufacturers: r.Manufacturers,
		Users:         r.Users,
		Version:       r.Version,
	}
}

// LinkCategoryRequest attaches one category to a product
type LinkCategoryRequest struct {
	ProductID    int64  `json:"productId" validate:"required,gt=0"`
	CategoryName string `json:"categoryName" validate:"required"`
}

// LinkManufacturerRequest attaches one manufacturer to a product
type LinkManufacturerRequest struct {
	ProductID      int64 `json:"productId" validate:"required,gt=0"`
	ManufacturerID int64 `json:"manufacturerId" validate:"required,gt=0"`
}

// LinkUserRequest attaches one user to a product
type LinkUserRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	UserID    int64 `json:"userId" validate:"required,gt=0"`
}

// ProductResponse represents the product row without associations
type ProductResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HydratedProductResponse is a product with its three association sets
type HydratedProductResponse struct {
	ProductResponse
	Categories    []CategoryLinkResponse     `json:"categories"`
	Manufacturers []ManufacturerLinkResponse `json:"manufacturers"`
	Users         []UserLinkResponse         `json:"users"`
}

type CategoryLinkResponse struct {
	ProductID    int64  `json:"productId"`
	CategoryName string `json:"categoryName"`
}

type ManufacturerLinkResponse struct {
	ProductID      int64                `json:"productId"`
	ManufacturerID int64                `json:"manufacturerId"`
	Manufacturer   ManufacturerResponse `json:"manufacturer"`
}

type UserLinkResponse struct {
	ProductID int64        `json:"productId"`
	UserID    int64        `json:"userId"`
	User      UserResponse `json:"user"`
}

// MessageResponse is the body of operations that return no entity
type MessageResponse struct {
	Message string `json:"message"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToHydratedProductResponse converts a hydrated product, always emitting the
// three sets as arrays
func ToHydratedProductResponse(p *domain.HydratedProduct) *HydratedProductResponse {
	resp := &HydratedProductResponse{
		ProductResponse: *ToProductResponse(&p.Product),
		Categories:      make([]CategoryLinkResponse, len(p.Categories)),
		Manufacturers:   make([]ManufacturerLinkResponse, len(p.Manufacturers)),
		Users:           make([]UserLinkResponse, len(p.Users)),
	}
	for i, l := range p.Categories {
		resp.Categories[i] = ToCategoryLinkResponse(l)
	}
	for i, l := range p.Manufacturers {
		resp.Manufacturers[i] = ToManufacturerLinkResponse(l)
	}
	for i, l := range p.Users {
		resp.Users[i] = ToUserLinkResponse(l)
	}
	return resp
}

// ToHydratedProductResponseList converts a list of hydrated products
func ToHydratedProductResponseList(products []*domain.HydratedProduct) []*HydratedProductResponse {
	responses := make([]*HydratedProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToHydratedProductResponse(p)
	}
	return responses
}

func ToCategoryLinkResponse(l domain.ProductCategoryLink) CategoryLinkResponse {
	return CategoryLinkResponse{ProductID: l.ProductID, CategoryName: l.CategoryName}
}

func ToManufacturerLinkResponse(l domain.ProductManufacturerLink) ManufacturerLinkResponse {
	return ManufacturerLinkResponse{
		ProductID:      l.ProductID,
		ManufacturerID: l.ManufacturerID,
		Manufacturer:   ToManufacturerResponse(l.Manufacturer),
	}
}

func ToUserLinkResponse(l domain.ProductUserLink) UserLinkResponse {
	return UserLinkResponse{
		ProductID: l.ProductID,
		UserID:    l.UserID,
		User:      ToUserResponse(l.User),
	}
}
