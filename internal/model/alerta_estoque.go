package model

import "time"

// AlertaEstoque is raised when a stock decrement leaves a product at or below
// its minimum. NotificadoEm is set once the notifier has enqueued the email.
type AlertaEstoque struct {
	ID           uint      `gorm:"primaryKey"`
	ProdutoID    uint      `gorm:"not null;index"`
	Mensagem     string    `gorm:"type:text;not null"`
	DataAlerta   time.Time `gorm:"not null"`
	Visualizado  bool      `gorm:"not null;default:false"`
	NotificadoEm *time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (AlertaEstoque) TableName() string { return "alertas_estoque" }
