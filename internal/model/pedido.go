package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status values.
const (
	PedidoPendente   = "PENDENTE"
	PedidoConfirmado = "CONFIRMADO"
	PedidoEnviado    = "ENVIADO"
	PedidoEntregue   = "ENTREGUE"
	PedidoCancelado  = "CANCELADO"
)

// StatusPedidoValido reports whether s is a known order status.
func StatusPedidoValido(s string) bool {
	switch s {
	case PedidoPendente, PedidoConfirmado, PedidoEnviado, PedidoEntregue, PedidoCancelado:
		return true
	}
	return false
}

// Pedido is created exactly once per successful checkout, always PENDENTE.
// ValorTotal is the amount the client submitted, not a recomputed sum.
type Pedido struct {
	ID                uint            `gorm:"primaryKey"`
	ClienteID         uint            `gorm:"not null;index"`
	ValorTotal        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'PENDENTE';index"`
	ChaveIdempotencia *string         `gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Cliente   *Cliente     `gorm:"foreignKey:ClienteID"`
	Itens     []ItemPedido `gorm:"foreignKey:PedidoID"`
	Pagamento *Pagamento   `gorm:"foreignKey:PedidoID"`
}

func (Pedido) TableName() string { return "pedidos" }

// ItemPedido is immutable after creation. PrecoUnitario is the product price
// captured inside the checkout transaction.
type ItemPedido struct {
	ID            uint            `gorm:"primaryKey"`
	PedidoID      uint            `gorm:"not null;index"`
	ProdutoID     uint            `gorm:"not null;index"`
	Quantidade    int             `gorm:"not null;check:chk_itens_pedido_quantidade,quantidade > 0"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt     time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (ItemPedido) TableName() string { return "itens_pedido" }
