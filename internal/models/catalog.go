package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name         string    `json:"name"`
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Description  string    `json:"description"`
	CardImage    string    `json:"card_image"`
	ProductCount int       `json:"product_count"`
	Products     []Product `json:"products,omitempty"`
}

type Product struct {
	BaseModel
	Slug             string     `gorm:"uniqueIndex" json:"slug"`
	Name             string     `json:"name"`
	ShortDescription string     `json:"short_description"`
	LongDescription  string     `json:"long_description"`
	Winery           string     `json:"winery"`
	CountryOfOrigin  string     `json:"country_of_origin"`
	Region           string     `json:"region"`
	GrapeVariety     string     `json:"grape_variety"`
	Vintage          int        `json:"vintage"`
	VolumeML         int        `json:"volume_ml"`
	AlcoholPercent   float64    `json:"alcohol_percent"`
	Price            int64      `json:"price"`
	Currency         string     `gorm:"default:VND" json:"currency"`
	Stock            int        `json:"stock"`
	Image            string     `json:"image"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	CategoryID       *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Category         *Category  `json:"category,omitempty"`
}
