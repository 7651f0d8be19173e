package dto

import (
	"github.com/mrops-br/catalog-api/internal/app/aggregation"
	"github.com/mrops-br/catalog-api/internal/domain"
)

type CategoryResponse struct {
	Name string `json:"name"`
}

type ManufacturerResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func ToCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name}
}

func ToManufacturerResponse(m domain.Manufacturer) ManufacturerResponse {
	return ManufacturerResponse{ID: m.ID, Name: m.Name}
}

func ToUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}

// ToCategoryResponseList converts categories for the lookup endpoint
func ToCategoryResponseList(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = ToCategoryResponse(c)
	}
	return out
}

// ToManufacturerResponseList converts manufacturers for the lookup endpoint
func ToManufacturerResponseList(manufacturers []domain.Manufacturer) []ManufacturerResponse {
	out := make([]ManufacturerResponse, len(manufacturers))
	for i, m := range manufacturers {
		out[i] = ToManufacturerResponse(m)
	}
	return out
}

// ToUserResponseList converts users for the lookup endpoint
func ToUserResponseList(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}

// SeriesPoint is one bar or slice of a dashboard chart
type SeriesPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardResponse is the filtered product list plus its summary series
type DashboardResponse struct {
	Products           []*HydratedProductResponse `json:"products"`
	Total              int                        `json:"total"`
	CategoryCounts     []SeriesPoint              `json:"categoryCounts"`
	ManufacturerCounts []SeriesPoint              `json:"manufacturerCounts"`
	UserCounts         []SeriesPoint              `json:"userCounts"`
	TopCategories      []SeriesPoint              `json:"topCategories"`
	Categories         []string                   `json:"categories"`
	Manufacturers      []string                   `json:"manufacturers"`
}

// ToDashboardResponse converts a pipeline result
func ToDashboardResponse(d aggregation.Dashboard) *DashboardResponse {
	return &DashboardResponse{
		Products:           ToHydratedProductResponseList(d.Products),
		Total:              d.Total,
		CategoryCounts:     toSeries(d.CategoryCounts),
		ManufacturerCounts: toSeries(d.ManufacturerCounts),
		UserCounts:         toSeries(d.UserCounts),
		TopCategories:      toSeries(d.TopCategories),
		Categories:         d.Categories,
		Manufacturers:      d.Manufacturers,
	}
}

func toSeries(counts []aggregation.Count) []SeriesPoint {
	out := make([]SeriesPoint, len(counts))
	for i, c := range counts {
		out[i] = SeriesPoint{Name: c.Name, Value: c.Value}
	}
	return out
}
