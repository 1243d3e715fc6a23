package repository

import (
	"context"

	"lojaesportiva/internal/model"

	"gorm.io/gorm"
)

type PagamentoRepository interface {
	CreateTx(tx *gorm.DB, p *model.Pagamento) error
	FindByPedidoID(ctx context.Context, pedidoID uint) (*model.Pagamento, error)
	DeleteByPedidoTx(tx *gorm.DB, pedidoID uint) error
}

type pagamentoRepo struct{ db *gorm.DB }

func NewPagamentoRepository(db *gorm.DB) PagamentoRepository { return &pagamentoRepo{db: db} }

func (r *pagamentoRepo) CreateTx(tx *gorm.DB, p *model.Pagamento) error {
	return tx.Create(p).Error
}

func (r *pagamentoRepo) FindByPedidoID(ctx context.Context, pedidoID uint) (*model.Pagamento, error) {
	var p model.Pagamento
	if err := r.db.WithContext(ctx).Where("pedido_id = ?", pedidoID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pagamentoRepo) DeleteByPedidoTx(tx *gorm.DB, pedidoID uint) error {
	return tx.Where("pedido_id = ?", pedidoID).Delete(&model.Pagamento{}).Error
}
