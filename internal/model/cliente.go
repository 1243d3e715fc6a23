package model

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Cliente is both the storefront customer and the back-office user.
// Role: "admin" | "customer"
type Cliente struct {
	ID        uint   `gorm:"primaryKey"`
	Nome      string `gorm:"not null"`
	CPF       string `gorm:"column:cpf;uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Telefone  *string
	Endereco  *string
	SenhaHash string `gorm:"not null"`
	Role      string `gorm:"type:varchar(20);not null;default:'customer'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
