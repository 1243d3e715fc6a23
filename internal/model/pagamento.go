package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const PagamentoPendente = "PENDENTE"

// Pagamento is written in the same transaction as its order; one per order.
type Pagamento struct {
	ID             uint            `gorm:"primaryKey"`
	PedidoID       uint            `gorm:"not null;uniqueIndex"`
	ValorPago      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	FormaPagamento string          `gorm:"type:varchar(30);not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PENDENTE'"`
	DataPagamento  time.Time       `gorm:"not null"`
	CreatedAt      time.Time
}

func (Pagamento) TableName() string { return "pagamentos" }
