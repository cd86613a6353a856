package models

import "time"

// Slider is a home page carousel entry managed from the back office.
type Slider struct {
	BaseModel
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Image        string `json:"image"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

// BlogPost is a storefront article.
type BlogPost struct {
	BaseModel
	Title       string     `json:"title"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"cover_image"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
}
