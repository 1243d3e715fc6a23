package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoricoPreco is an append-only record of product price changes.
type HistoricoPreco struct {
	ID          uint            `gorm:"primaryKey"`
	ProdutoID   uint            `gorm:"not null;index"`
	PrecoAntes  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecoDepois decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Motivo      string          `gorm:"not null;default:'manual'"`
	CreatedAt   time.Time

	Produto Produto `gorm:"foreignKey:ProdutoID"`
}

func (HistoricoPreco) TableName() string { return "historico_precos" }
