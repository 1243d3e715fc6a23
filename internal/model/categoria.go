package model

import "time"

// Categoria groups products in the storefront. Slug is derived from Nome.
type Categoria struct {
	ID        uint   `gorm:"primaryKey"`
	Nome      string `gorm:"uniqueIndex;not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Descricao *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization for Portuguese names.
func (Categoria) TableName() string { return "categorias" }
