package repository

import (
	"context"
	"strings"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProdutoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// so unit tests can swap in stubs.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uint) (*model.Produto, error)
	Update(ctx context.Context, p *model.Produto) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)

	// Used inside transactions — callers must pass the tx instance
	FindByIDTx(tx *gorm.DB, id uint) (*model.Produto, error)
	UpdateTx(tx *gorm.DB, p *model.Produto) error

	// LockForUpdateTx takes row locks on every id in ascending order. Two
	// checkouts sharing products therefore queue instead of deadlocking.
	// No-op on dialects without row locks (SQLite serializes writers anyway).
	LockForUpdateTx(tx *gorm.DB, ids []uint) error

	// DescontarEstoqueTx subtracts quantidade only if enough stock remains.
	// Returns false when the guard rejected the update.
	DescontarEstoqueTx(tx *gorm.DB, id uint, quantidade int) (bool, error)

	// AplicarDeltaEstoqueTx adds a signed delta, refusing to go below zero.
	AplicarDeltaEstoqueTx(tx *gorm.DB, id uint, delta int) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) DB() *gorm.DB { return r.db }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uint) (*model.Produto, error) {
	var p model.Produto
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *produtoRepo) Delete(ctx context.Context, id uint) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&model.Produto{}, id))
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})
	if filter.Nome != "" {
		q = q.Where("LOWER(nome) LIKE ?", "%"+strings.ToLower(filter.Nome)+"%")
	}
	if filter.CategoriaID != 0 {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.AbaixoMinimo {
		q = q.Where("estoque <= estoque_minimo")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("nome ASC, id ASC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Produto, error) {
	var p model.Produto
	if err := tx.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) UpdateTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Save(p).Error
}

func (r *produtoRepo) LockForUpdateTx(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 || !isPostgres(tx) {
		return nil
	}
	var locked []model.Produto
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&locked).Error
}

func (r *produtoRepo) DescontarEstoqueTx(tx *gorm.DB, id uint, quantidade int) (bool, error) {
	return r.AplicarDeltaEstoqueTx(tx, id, -quantidade)
}

func (r *produtoRepo) AplicarDeltaEstoqueTx(tx *gorm.DB, id uint, delta int) (bool, error) {
	res := tx.Model(&model.Produto{}).
		Where("id = ? AND estoque + ? >= 0", id, delta).
		Update("estoque", gorm.Expr("estoque + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
