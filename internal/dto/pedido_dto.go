package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemPedidoRequest is one cart line. Pointers distinguish a missing field
// from an explicit zero so the service can report which one is wrong.
type ItemPedidoRequest struct {
	ProdutoID  *uint `json:"productId"`
	Quantidade *int  `json:"quantity"`
}

// CriarPedidoRequest is the checkout payload posted by the storefront.
type CriarPedidoRequest struct {
	ClienteID         *uint               `json:"customerId"`
	Itens             []ItemPedidoRequest `json:"items"`
	ValorTotal        *decimal.Decimal    `json:"totalAmount"`
	FormaPagamento    string              `json:"paymentMethod"  validate:"max=30"`
	ChaveIdempotencia *string             `json:"idempotencyKey" validate:"omitempty,min=8,max=64"`
}

type AtualizarStatusPedidoRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDENTE CONFIRMADO ENVIADO ENTREGUE CANCELADO"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type PedidoFilter struct {
	Status    string `form:"status"`
	ClienteID uint   `form:"customerId"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemPedidoResponse struct {
	ID            uint            `json:"id"`
	PedidoID      uint            `json:"orderId"`
	ProdutoID     uint            `json:"productId"`
	ProdutoNome   string          `json:"productName,omitempty"`
	Quantidade    int             `json:"quantity"`
	PrecoUnitario decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type PagamentoResponse struct {
	ID             uint            `json:"id"`
	PedidoID       uint            `json:"orderId"`
	ValorPago      decimal.Decimal `json:"amount"`
	FormaPagamento string          `json:"method"`
	Status         string          `json:"status"`
	DataPagamento  string          `json:"paidAt"`
}

type PedidoResponse struct {
	ID         uint                 `json:"id"`
	ClienteID  uint                 `json:"customerId"`
	ValorTotal decimal.Decimal      `json:"totalAmount"`
	Status     string               `json:"status"`
	CreatedAt  string               `json:"createdAt"`
	Itens      []ItemPedidoResponse `json:"items,omitempty"`
	Pagamento  *PagamentoResponse   `json:"payment,omitempty"`
}

// PedidoCriadoResponse is the aggregate returned by a successful checkout.
type PedidoCriadoResponse struct {
	Pedido    PedidoResponse       `json:"order"`
	Itens     []ItemPedidoResponse `json:"items"`
	Pagamento PagamentoResponse    `json:"payment"`
	Alertas   []AlertaResponse     `json:"alerts"`
}

type PedidoListResponse struct {
	Data       []PedidoResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}
