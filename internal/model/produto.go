package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produto is a catalog item. Estoque is decremented only by checkout and by
// manual adjustments; the check constraint keeps it from going negative even
// if a caller skips the conditional update.
type Produto struct {
	ID            uint            `gorm:"primaryKey"`
	Nome          string          `gorm:"index;not null"`
	Descricao     *string
	Preco         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Estoque       int             `gorm:"not null;default:0;check:chk_produtos_estoque,estoque >= 0"`
	EstoqueMinimo int             `gorm:"not null;default:0"`
	Tamanho       *string
	Cor           *string
	ImagemURL     *string
	CategoriaID   uint `gorm:"not null;index"`
	FornecedorID  uint `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Categoria  *Categoria  `gorm:"foreignKey:CategoriaID"`
	Fornecedor *Fornecedor `gorm:"foreignKey:FornecedorID"`
}

func (Produto) TableName() string { return "produtos" }

// AtingiuMinimo reports whether a stock level should raise an alert.
func (p Produto) AtingiuMinimo(estoque int) bool {
	return estoque <= p.EstoqueMinimo
}
