package models

import "strings"

// Product represents a catalog item as returned by the commerce API
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Color       string  `json:"color"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Size        string  `json:"size"`               // comma-delimited size labels, e.g. "40, 41, 42"
	ImageURL    *string `json:"imageUrl,omitempty"` // Pointer for nullable field
	Featured    bool    `json:"featured"`
}

// Sizes splits the comma-delimited size list into trimmed labels, dropping empty ones
func (p Product) Sizes() []string {
	if strings.TrimSpace(p.Size) == "" {
		return nil
	}
	parts := strings.Split(p.Size, ",")
	sizes := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// ProductInput is the body sent when creating or updating a product
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
	Featured    bool    `json:"featured,omitempty"`
}

// ProductCSV represents a product as read from an import CSV file
type ProductCSV struct {
	Name        string  `csv:"name"`
	Description string  `csv:"description"`
	Price       float64 `csv:"price"`
	Category    string  `csv:"category"`
	Brand       string  `csv:"brand"`
	Color       string  `csv:"color"`
	Size        string  `csv:"size"`
	Stock       int     `csv:"stock"`
	ImageURL    string  `csv:"image_url"`
	Featured    bool    `csv:"featured"` // optional trailing column
}

// Input converts an imported row into an API request body
func (p ProductCSV) Input() ProductInput {
	return ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Brand:       p.Brand,
		Color:       p.Color,
		Size:        p.Size,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Featured:    p.Featured,
	}
}
