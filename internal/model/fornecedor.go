package model

import "time"

// Fornecedor is a product supplier. CNPJ is stored digits only.
type Fornecedor struct {
	ID        uint   `gorm:"primaryKey"`
	Nome      string `gorm:"not null"`
	CNPJ      string `gorm:"column:cnpj;uniqueIndex;not null"`
	Telefone  *string
	Email     *string
	Endereco  *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Produtos []Produto `gorm:"foreignKey:FornecedorID"`
}

func (Fornecedor) TableName() string { return "fornecedores" }
