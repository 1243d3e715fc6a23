package repository

import (
	"context"
	"time"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertaRepository interface {
	CreateTx(tx *gorm.DB, a *model.AlertaEstoque) error
	List(ctx context.Context, filter dto.AlertaFilter) ([]model.AlertaEstoque, error)
	MarcarVisualizado(ctx context.Context, id uint) error
	MarcarTodosVisualizados(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error

	// Notifier queries
	ListPendentesNotificacao(ctx context.Context, limit int) ([]model.AlertaEstoque, error)
	MarcarNotificado(ctx context.Context, ids []uint, em time.Time) error
}

type alertaRepo struct{ db *gorm.DB }

func NewAlertaRepository(db *gorm.DB) AlertaRepository { return &alertaRepo{db: db} }

func (r *alertaRepo) CreateTx(tx *gorm.DB, a *model.AlertaEstoque) error {
	return tx.Omit(clause.Associations).Create(a).Error
}

func (r *alertaRepo) List(ctx context.Context, filter dto.AlertaFilter) ([]model.AlertaEstoque, error) {
	var alertas []model.AlertaEstoque
	q := r.db.WithContext(ctx).Preload("Produto")

	switch filter.Visualizado {
	case "true":
		q = q.Where("visualizado = ?", true)
	case "false":
		q = q.Where("visualizado = ?", false)
	}
	if filter.ProdutoID != 0 {
		q = q.Where("produto_id = ?", filter.ProdutoID)
	}

	err := q.Order("data_alerta DESC, id DESC").Find(&alertas).Error
	return alertas, err
}

func (r *alertaRepo) MarcarVisualizado(ctx context.Context, id uint) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Model(&model.AlertaEstoque{}).
		Where("id = ?", id).Update("visualizado", true))
}

func (r *alertaRepo) MarcarTodosVisualizados(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.AlertaEstoque{}).
		Where("visualizado = ?", false).Update("visualizado", true)
	return res.RowsAffected, res.Error
}

func (r *alertaRepo) Delete(ctx context.Context, id uint) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&model.AlertaEstoque{}, id))
}

func (r *alertaRepo) ListPendentesNotificacao(ctx context.Context, limit int) ([]model.AlertaEstoque, error) {
	var alertas []model.AlertaEstoque
	err := r.db.WithContext(ctx).Preload("Produto").
		Where("notificado_em IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&alertas).Error
	return alertas, err
}

func (r *alertaRepo) MarcarNotificado(ctx context.Context, ids []uint, em time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.AlertaEstoque{}).
		Where("id IN ?", ids).Update("notificado_em", em).Error
}
