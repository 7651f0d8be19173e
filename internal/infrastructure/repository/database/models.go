package database

import (
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// Product is the products table row.
type Product struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"not null"`
	Description *string `gorm:"type:text"`
	Version     int64   `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categories    []ProductCategory     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Manufacturers []ProductManufacturer `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Users         []ProductUser         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "products" }

type Category struct {
	Name string `gorm:"primaryKey"`
}

func (Category) TableName() string { return "categories" }

type Manufacturer struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null"`
}

func (Manufacturer) TableName() string { return "manufacturers" }

type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"not null;uniqueIndex"`
}

func (User) TableName() string { return "users" }

type ProductCategory struct {
	ProductID    int64    `gorm:"primaryKey;autoIncrement:false"`
	CategoryName string   `gorm:"primaryKey"`
	Category     Category `gorm:"foreignKey:CategoryName;references:Name;constraint:OnDelete:CASCADE"`
}

func (ProductCategory) TableName() string { return "product_categories" }

type ProductManufacturer struct {
	ProductID      int64        `gorm:"primaryKey;autoIncrement:false"`
	ManufacturerID int64        `gorm:"primaryKey;autoIncrement:false"`
	Manufacturer   Manufacturer `gorm:"foreignKey:ManufacturerID;constraint:OnDelete:CASCADE"`
}

func (ProductManufacturer) TableName() string { return "product_manufacturers" }

type ProductUser struct {
	ProductID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	User      User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (ProductUser) TableName() string { return "product_users" }

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&Category{},
		&Manufacturer{},
		&User{},
		&Product{},
		&ProductCategory{},
		&ProductManufacturer{},
		&ProductUser{},
	}
}

func toDomainProduct(p *Product) *domain.Product {
	return &domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromDomainProduct(p *domain.Product) *Product {
	return &Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
