package repository

import (
	"context"

	"lojaesportiva/internal/model"

	"gorm.io/gorm"
)

type FornecedorRepository interface {
	Create(ctx context.Context, f *model.Fornecedor) error
	FindByID(ctx context.Context, id uint) (*model.Fornecedor, error)
	List(ctx context.Context) ([]model.Fornecedor, error)
	FindByCNPJ(ctx context.Context, cnpj string) (*model.Fornecedor, error)
	Update(ctx context.Context, f *model.Fornecedor) error
	Delete(ctx context.Context, id uint) error
}

type fornecedorRepo struct{ db *gorm.DB }

func NewFornecedorRepository(db *gorm.DB) FornecedorRepository { return &fornecedorRepo{db: db} }

func (r *fornecedorRepo) Create(ctx context.Context, f *model.Fornecedor) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fornecedorRepo) FindByID(ctx context.Context, id uint) (*model.Fornecedor, error) {
	var f model.Fornecedor
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fornecedorRepo) FindByCNPJ(ctx context.Context, cnpj string) (*model.Fornecedor, error) {
	var f model.Fornecedor
	if err := r.db.WithContext(ctx).Where("cnpj = ?", cnpj).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fornecedorRepo) Update(ctx context.Context, f *model.Fornecedor) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *fornecedorRepo) Delete(ctx context.Context, id uint) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Delete(&model.Fornecedor{}, id))
}

func (r *fornecedorRepo) List(ctx context.Context) ([]model.Fornecedor, error) {
	var list []model.Fornecedor
	err := r.db.WithContext(ctx).Order("nome ASC").Find(&list).Error
	return list, err
}
