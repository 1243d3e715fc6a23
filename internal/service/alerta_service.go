package service

import (
	"context"
	"errors"
	"time"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"

	"gorm.io/gorm"
)

// AlertaService exposes the stock alerts raised by checkouts and manual
// adjustments to the back-office dashboard.
type AlertaService interface {
	Listar(ctx context.Context, filter dto.AlertaFilter) ([]dto.AlertaResponse, error)
	MarcarVisualizado(ctx context.Context, id uint) error
	MarcarTodosVisualizados(ctx context.Context) (int64, error)
	Remover(ctx context.Context, id uint) error
}

type alertaService struct {
	repo repository.AlertaRepository
}

func NewAlertaService(repo repository.AlertaRepository) AlertaService {
	return &alertaService{repo: repo}
}

func (s *alertaService) Listar(ctx context.Context, filter dto.AlertaFilter) ([]dto.AlertaResponse, error) {
	switch filter.Visualizado {
	case "", "true", "false":
	default:
		return nil, invalid("visualizado", "visualizado deve ser true ou false")
	}
	alertas, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AlertaResponse, len(alertas))
	for i := range alertas {
		resp[i] = alertaToResponse(&alertas[i])
	}
	return resp, nil
}

func (s *alertaService) MarcarVisualizado(ctx context.Context, id uint) error {
	if err := s.repo.MarcarVisualizado(ctx, id); err != nil {
		return notFoundOr(err, "alerta", id)
	}
	return nil
}

func (s *alertaService) MarcarTodosVisualizados(ctx context.Context) (int64, error) {
	return s.repo.MarcarTodosVisualizados(ctx)
}

func (s *alertaService) Remover(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "alerta", id)
	}
	return nil
}

func alertaToResponse(a *model.AlertaEstoque) dto.AlertaResponse {
	r := dto.AlertaResponse{
		ID:          a.ID,
		ProdutoID:   a.ProdutoID,
		Mensagem:    a.Mensagem,
		DataAlerta:  a.DataAlerta.Format(time.RFC3339),
		Visualizado: a.Visualizado,
	}
	if a.Produto != nil {
		r.ProdutoNome = a.Produto.Nome
	}
	return r
}

// notFoundOr converts gorm.ErrRecordNotFound into a NotFoundError and
// passes anything else through.
func notFoundOr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}

// conflictOr converts unique and foreign-key violations into a ConflictError.
func conflictOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &ConflictError{Msg: msg}
	}
	return err
}
