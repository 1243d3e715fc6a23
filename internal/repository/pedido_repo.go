package repository

import (
	"context"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoRepository interface {
	CreateTx(tx *gorm.DB, p *model.Pedido) error
	CreateItemTx(tx *gorm.DB, item *model.ItemPedido) error
	FindByID(ctx context.Context, id uint) (*model.Pedido, error)
	FindByChaveIdempotencia(ctx context.Context, chave string) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	DeleteItensTx(tx *gorm.DB, pedidoID uint) error
	DeleteTx(tx *gorm.DB, id uint) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts only the order row; items and payment are written by
// their own calls so the checkout controls the order of statements.
func (r *pedidoRepo) CreateTx(tx *gorm.DB, p *model.Pedido) error {
	return tx.Omit(clause.Associations).Create(p).Error
}

func (r *pedidoRepo) CreateItemTx(tx *gorm.DB, item *model.ItemPedido) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uint) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Itens.Produto").
		Preload("Pagamento").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) FindByChaveIdempotencia(ctx context.Context, chave string) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).Where("chave_idempotencia = ?", chave).First(&p).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, p.ID)
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClienteID != 0 {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Itens").Preload("Pagamento").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).Update("status", status))
}

func (r *pedidoRepo) DeleteItensTx(tx *gorm.DB, pedidoID uint) error {
	return tx.Where("pedido_id = ?", pedidoID).Delete(&model.ItemPedido{}).Error
}

func (r *pedidoRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return rowsOrNotFound(tx.Delete(&model.Pedido{}, id))
}
