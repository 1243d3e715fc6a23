package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	Nome          string          `json:"nome"           validate:"required,min=2,max=120"`
	Descricao     *string         `json:"descricao"`
	Preco         decimal.Decimal `json:"preco"          validate:"required,gt=0"`
	Estoque       int             `json:"estoque"        validate:"min=0"`
	EstoqueMinimo int             `json:"estoque_minimo" validate:"min=0"`
	Tamanho       *string         `json:"tamanho"`
	Cor           *string         `json:"cor"`
	ImagemURL     *string         `json:"imagem_url"     validate:"omitempty,url"`
	CategoriaID   uint            `json:"categoria_id"   validate:"required"`
	FornecedorID  uint            `json:"fornecedor_id"  validate:"required"`
}

type AtualizarProdutoRequest struct {
	Nome          *string          `json:"nome"           validate:"omitempty,min=2,max=120"`
	Descricao     *string          `json:"descricao"`
	Preco         *decimal.Decimal `json:"preco"`
	EstoqueMinimo *int             `json:"estoque_minimo" validate:"omitempty,min=0"`
	Tamanho       *string          `json:"tamanho"`
	Cor           *string          `json:"cor"`
	ImagemURL     *string          `json:"imagem_url"     validate:"omitempty,url"`
	CategoriaID   *uint            `json:"categoria_id"`
	FornecedorID  *uint            `json:"fornecedor_id"`
}

// AjustarEstoqueRequest applies a signed delta to a product's stock.
type AjustarEstoqueRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Tipo   string `json:"tipo"   validate:"omitempty,oneof=ajuste_manual reposicao"`
	Motivo string `json:"motivo" validate:"required,min=3,max=200"`
}

type ProdutoFilter struct {
	Nome         string `form:"nome"`
	CategoriaID  uint   `form:"categoria_id"`
	AbaixoMinimo bool   `form:"abaixo_minimo"`
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=20"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID            uint            `json:"id"`
	Nome          string          `json:"nome"`
	Descricao     *string         `json:"descricao"`
	Preco         decimal.Decimal `json:"preco"`
	Estoque       int             `json:"estoque"`
	EstoqueMinimo int             `json:"estoque_minimo"`
	Tamanho       *string         `json:"tamanho"`
	Cor           *string         `json:"cor"`
	ImagemURL     *string         `json:"imagem_url"`
	CategoriaID   uint            `json:"categoria_id"`
	FornecedorID  uint            `json:"fornecedor_id"`
}

type MovimentoEstoqueResponse struct {
	ID            uint   `json:"id"`
	ProdutoID     uint   `json:"produto_id"`
	Tipo          string `json:"tipo"`
	Quantidade    int    `json:"quantidade"`
	EstoqueAntes  int    `json:"estoque_antes"`
	EstoqueDepois int    `json:"estoque_depois"`
	Motivo        string `json:"motivo"`
	CreatedAt     string `json:"created_at"`
}

// AjusteEstoqueResponse carries the movement and, when the adjustment left the
// product at or below its minimum, the alert that was raised.
type AjusteEstoqueResponse struct {
	Movimento MovimentoEstoqueResponse `json:"movimento"`
	Alerta    *AlertaResponse          `json:"alerta,omitempty"`
}

type HistoricoPrecoResponse struct {
	ID          uint            `json:"id"`
	ProdutoID   uint            `json:"produto_id"`
	PrecoAntes  decimal.Decimal `json:"preco_antes"`
	PrecoDepois decimal.Decimal `json:"preco_depois"`
	Motivo      string          `json:"motivo"`
	CreatedAt   string          `json:"created_at"`
}

type ProdutoListResponse struct {
	Data       []ProdutoResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
