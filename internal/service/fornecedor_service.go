package service

import (
	"context"
	"errors"
	"strings"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"

	"gorm.io/gorm"
)

type FornecedorService interface {
	Criar(ctx context.Context, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error)
	Listar(ctx context.Context) ([]dto.FornecedorResponse, error)
	ObterPorID(ctx context.Context, id uint) (*dto.FornecedorResponse, error)
	Atualizar(ctx context.Context, id uint, req dto.AtualizarFornecedorRequest) (*dto.FornecedorResponse, error)
	Remover(ctx context.Context, id uint) error
}

type fornecedorService struct {
	repo repository.FornecedorRepository
}

func NewFornecedorService(repo repository.FornecedorRepository) FornecedorService {
	return &fornecedorService{repo: repo}
}

func (s *fornecedorService) Criar(ctx context.Context, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error) {
	cnpj, err := normalizarCNPJ(req.CNPJ)
	if err != nil {
		return nil, err
	}
	if err := s.checarCNPJ(ctx, cnpj, 0); err != nil {
		return nil, err
	}
	f := &model.Fornecedor{
		Nome:     strings.TrimSpace(req.Nome),
		CNPJ:     cnpj,
		Telefone: apenasDigitosPtr(req.Telefone),
		Email:    req.Email,
		Endereco: req.Endereco,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, conflictOr(err, "CNPJ já cadastrado")
	}
	return fornecedorToResponse(f), nil
}

func (s *fornecedorService) Listar(ctx context.Context) ([]dto.FornecedorResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FornecedorResponse, len(list))
	for i := range list {
		resp[i] = *fornecedorToResponse(&list[i])
	}
	return resp, nil
}

func (s *fornecedorService) ObterPorID(ctx context.Context, id uint) (*dto.FornecedorResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "fornecedor", id)
	}
	return fornecedorToResponse(f), nil
}

func (s *fornecedorService) Atualizar(ctx context.Context, id uint, req dto.AtualizarFornecedorRequest) (*dto.FornecedorResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "fornecedor", id)
	}
	if req.CNPJ != nil {
		cnpj, err := normalizarCNPJ(*req.CNPJ)
		if err != nil {
			return nil, err
		}
		if cnpj != f.CNPJ {
			if err := s.checarCNPJ(ctx, cnpj, id); err != nil {
				return nil, err
			}
		}
		f.CNPJ = cnpj
	}
	if req.Nome != nil {
		f.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.Telefone != nil {
		f.Telefone = apenasDigitosPtr(req.Telefone)
	}
	if req.Email != nil {
		f.Email = req.Email
	}
	if req.Endereco != nil {
		f.Endereco = req.Endereco
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, conflictOr(err, "CNPJ já cadastrado")
	}
	return fornecedorToResponse(f), nil
}

func (s *fornecedorService) Remover(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return conflictOr(notFoundOr(err, "fornecedor", id), "fornecedor possui produtos vinculados")
	}
	return nil
}

func (s *fornecedorService) checarCNPJ(ctx context.Context, cnpj string, id uint) error {
	existing, err := s.repo.FindByCNPJ(ctx, cnpj)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != id {
		return &ConflictError{Msg: "CNPJ já cadastrado"}
	}
	return nil
}

func normalizarCNPJ(raw string) (string, error) {
	cnpj := apenasDigitos(raw)
	if len(cnpj) != 14 {
		return "", invalid("cnpj", "CNPJ deve conter 14 dígitos")
	}
	return cnpj, nil
}

func apenasDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func apenasDigitosPtr(s *string) *string {
	if s == nil {
		return nil
	}
	d := apenasDigitos(*s)
	return &d
}

func fornecedorToResponse(f *model.Fornecedor) *dto.FornecedorResponse {
	return &dto.FornecedorResponse{
		ID:       f.ID,
		Nome:     f.Nome,
		CNPJ:     f.CNPJ,
		Telefone: f.Telefone,
		Email:    f.Email,
		Endereco: f.Endereco,
	}
}
