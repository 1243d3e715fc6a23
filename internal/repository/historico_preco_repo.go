package repository

import (
	"context"

	"lojaesportiva/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoricoPrecoRepository is append-only: rows are never updated or deleted.
type HistoricoPrecoRepository interface {
	CreateTx(tx *gorm.DB, h *model.HistoricoPreco) error
	ListByProduto(ctx context.Context, produtoID uint, page, limit int) ([]model.HistoricoPreco, int64, error)
}

type historicoPrecoRepo struct{ db *gorm.DB }

func NewHistoricoPrecoRepository(db *gorm.DB) HistoricoPrecoRepository {
	return &historicoPrecoRepo{db: db}
}

func (r *historicoPrecoRepo) CreateTx(tx *gorm.DB, h *model.HistoricoPreco) error {
	return tx.Omit(clause.Associations).Create(h).Error
}

func (r *historicoPrecoRepo) ListByProduto(ctx context.Context, produtoID uint, page, limit int) ([]model.HistoricoPreco, int64, error) {
	var rows []model.HistoricoPreco
	var total int64

	q := r.db.WithContext(ctx).Model(&model.HistoricoPreco{}).Where("produto_id = ?", produtoID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}
