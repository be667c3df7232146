package models

// Catalog tables are owned by the product service. Orders only read them to
// decorate order details.

type Product struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name             string  `gorm:"column:name;not null"`
	ShortDescription *string `gorm:"column:short_description"`
}

func (Product) TableName() string { return "products" }

type ProductVariant struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64  `gorm:"column:product_id;not null"`
	Name      string `gorm:"column:name;not null"`
}

func (ProductVariant) TableName() string { return "product_variants" }

type ProductImage struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID    int64  `gorm:"column:product_id;not null"`
	URL          string `gorm:"column:url;not null"`
	DisplayOrder int    `gorm:"column:display_order;not null;default:0"`
}

func (ProductImage) TableName() string { return "product_images" }
