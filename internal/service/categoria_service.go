package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"

	"gorm.io/gorm"
)

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Criar(ctx context.Context, req dto.CriarCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Atualizar(ctx context.Context, id uint, req dto.AtualizarCategoriaRequest) (dto.CategoriaResponse, error)
	Remover(ctx context.Context, id uint) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:        c.ID,
		Nome:      c.Nome,
		Slug:      c.Slug,
		Descricao: c.Descricao,
	}
}

func (s *categoriaService) Criar(ctx context.Context, req dto.CriarCategoriaRequest) (dto.CategoriaResponse, error) {
	slug := Slugify(req.Nome)
	if slug == "" {
		return dto.CategoriaResponse{}, invalid("nome", "nome da categoria inválido")
	}
	if err := s.checarSlug(ctx, slug, 0); err != nil {
		return dto.CategoriaResponse{}, err
	}

	c := &model.Categoria{
		Nome:      strings.TrimSpace(req.Nome),
		Slug:      slug,
		Descricao: req.Descricao,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoriaResponse{}, conflictOr(err, "já existe uma categoria com esse nome")
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) Atualizar(ctx context.Context, id uint, req dto.AtualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, notFoundOr(err, "categoria", id)
	}

	if req.Nome != nil {
		slug := Slugify(*req.Nome)
		if slug == "" {
			return dto.CategoriaResponse{}, invalid("nome", "nome da categoria inválido")
		}
		if slug != c.Slug {
			if err := s.checarSlug(ctx, slug, id); err != nil {
				return dto.CategoriaResponse{}, err
			}
		}
		c.Nome = strings.TrimSpace(*req.Nome)
		c.Slug = slug
	}
	if req.Descricao != nil {
		c.Descricao = req.Descricao
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return dto.CategoriaResponse{}, conflictOr(err, "já existe uma categoria com esse nome")
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Remover(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return conflictOr(notFoundOr(err, "categoria", id), "categoria possui produtos vinculados")
	}
	return nil
}

func (s *categoriaService) checarSlug(ctx context.Context, slug string, id uint) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != id {
		return &ConflictError{Msg: "já existe uma categoria com esse nome"}
	}
	return nil
}

var acentos = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'ê': 'e', 'è': 'e', 'ë': 'e',
	'í': 'i', 'î': 'i', 'ì': 'i', 'ï': 'i',
	'ó': 'o', 'ô': 'o', 'õ': 'o', 'ò': 'o', 'ö': 'o',
	'ú': 'u', 'û': 'u', 'ù': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

// Slugify lowercases s, folds Portuguese accents and joins words with '-'.
// "Calçados Esportivos" becomes "calcados-esportivos".
func Slugify(s string) string {
	var b strings.Builder
	hifen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if a, ok := acentos[r]; ok {
			r = a
		}
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			hifen = false
		case !hifen && b.Len() > 0:
			b.WriteByte('-')
			hifen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
