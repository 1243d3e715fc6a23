package model

import "time"

// MovimentoEstoque records a stock change that did not come from checkout.
type MovimentoEstoque struct {
	ID            uint   `gorm:"primaryKey"`
	ProdutoID     uint   `gorm:"not null;index"`
	Tipo          string `gorm:"not null"` // "ajuste_manual" | "reposicao"
	Quantidade    int    `gorm:"not null"` // positive = entrada, negative = saida
	EstoqueAntes  int    `gorm:"not null"`
	EstoqueDepois int    `gorm:"not null"`
	Motivo        string
	ClienteID     *uint // admin that made the change
	CreatedAt     time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentoEstoque) TableName() string { return "movimentos_estoque" }
