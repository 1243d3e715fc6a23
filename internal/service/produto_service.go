package service

import (
	"context"
	"errors"
	"time"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProdutoService defines catalog maintenance: product writes, manual stock
// adjustments and price history. Checkout decrements stock on its own path.
type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	ObterPorID(ctx context.Context, id uint) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	Atualizar(ctx context.Context, id uint, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Remover(ctx context.Context, id uint) error
	AjustarEstoque(ctx context.Context, id uint, autorID *uint, req dto.AjustarEstoqueRequest) (*dto.AjusteEstoqueResponse, error)
	ListarMovimentos(ctx context.Context, id uint, limit int) ([]dto.MovimentoEstoqueResponse, error)
	ListarHistoricoPrecos(ctx context.Context, id uint, page, limit int) ([]dto.HistoricoPrecoResponse, int64, error)
}

type produtoService struct {
	repo           repository.ProdutoRepository
	categoriaRepo  repository.CategoriaRepository
	fornecedorRepo repository.FornecedorRepository
	movimentoRepo  repository.MovimentoEstoqueRepository
	historicoRepo  repository.HistoricoPrecoRepository
	alertaRepo     repository.AlertaRepository
}

func NewProdutoService(
	repo repository.ProdutoRepository,
	categoriaRepo repository.CategoriaRepository,
	fornecedorRepo repository.FornecedorRepository,
	movimentoRepo repository.MovimentoEstoqueRepository,
	historicoRepo repository.HistoricoPrecoRepository,
	alertaRepo repository.AlertaRepository,
) ProdutoService {
	return &produtoService{
		repo:           repo,
		categoriaRepo:  categoriaRepo,
		fornecedorRepo: fornecedorRepo,
		movimentoRepo:  movimentoRepo,
		historicoRepo:  historicoRepo,
		alertaRepo:     alertaRepo,
	}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	if err := s.validarReferencias(ctx, req.CategoriaID, req.FornecedorID); err != nil {
		return nil, err
	}
	p := &model.Produto{
		Nome:          req.Nome,
		Descricao:     req.Descricao,
		Preco:         req.Preco,
		Estoque:       req.Estoque,
		EstoqueMinimo: req.EstoqueMinimo,
		Tamanho:       req.Tamanho,
		Cor:           req.Cor,
		ImagemURL:     req.ImagemURL,
		CategoriaID:   req.CategoriaID,
		FornecedorID:  req.FornecedorID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := produtoToResponse(p)
	return &resp, nil
}

func (s *produtoService) ObterPorID(ctx context.Context, id uint) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "produto", id)
	}
	resp := produtoToResponse(p)
	return &resp, nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProdutoResponse, len(produtos))
	for i := range produtos {
		data[i] = produtoToResponse(&produtos[i])
	}
	return &dto.ProdutoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uint, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "produto", id)
	}

	categoriaID, fornecedorID := p.CategoriaID, p.FornecedorID
	if req.CategoriaID != nil {
		categoriaID = *req.CategoriaID
	}
	if req.FornecedorID != nil {
		fornecedorID = *req.FornecedorID
	}
	if categoriaID != p.CategoriaID || fornecedorID != p.FornecedorID {
		if err := s.validarReferencias(ctx, categoriaID, fornecedorID); err != nil {
			return nil, err
		}
	}

	if req.Nome != nil {
		p.Nome = *req.Nome
	}
	if req.Descricao != nil {
		p.Descricao = req.Descricao
	}
	if req.EstoqueMinimo != nil {
		p.EstoqueMinimo = *req.EstoqueMinimo
	}
	if req.Tamanho != nil {
		p.Tamanho = req.Tamanho
	}
	if req.Cor != nil {
		p.Cor = req.Cor
	}
	if req.ImagemURL != nil {
		p.ImagemURL = req.ImagemURL
	}
	p.CategoriaID, p.FornecedorID = categoriaID, fornecedorID

	precoAntes := p.Preco
	if req.Preco != nil {
		if !req.Preco.IsPositive() {
			return nil, invalid("preco", "Preço deve ser maior que zero")
		}
		p.Preco = *req.Preco
	}

	if p.Preco.Equal(precoAntes) {
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, err
		}
	} else {
		// Price change and its history row commit together.
		err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			if err := s.repo.UpdateTx(tx, p); err != nil {
				return err
			}
			return s.historicoRepo.CreateTx(tx, &model.HistoricoPreco{
				ProdutoID:   p.ID,
				PrecoAntes:  precoAntes,
				PrecoDepois: p.Preco,
				Motivo:      "manual",
			})
		})
		if err != nil {
			return nil, &TransactionError{Op: "atualizar produto", Err: err}
		}
		log.Info().
			Uint("produto_id", p.ID).
			Str("preco_antes", precoAntes.StringFixed(2)).
			Str("preco_depois", p.Preco.StringFixed(2)).
			Msg("preço do produto alterado")
	}

	resp := produtoToResponse(p)
	return &resp, nil
}

func (s *produtoService) Remover(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return conflictOr(notFoundOr(err, "produto", id), "Produto possui pedidos ou alertas vinculados")
	}
	return nil
}

// AjustarEstoque applies a manual stock change under the same row lock the
// checkout uses, records the movement and raises an alert when an outgoing
// adjustment leaves the product at or below its minimum.
func (s *produtoService) AjustarEstoque(ctx context.Context, id uint, autorID *uint, req dto.AjustarEstoqueRequest) (*dto.AjusteEstoqueResponse, error) {
	if req.Delta == 0 {
		return nil, invalid("delta", "delta não pode ser zero")
	}
	tipo := req.Tipo
	if tipo == "" {
		tipo = "ajuste_manual"
		if req.Delta > 0 {
			tipo = "reposicao"
		}
	}

	var (
		mov    model.MovimentoEstoque
		alerta *model.AlertaEstoque
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.LockForUpdateTx(tx, []uint{id}); err != nil {
			return err
		}
		p, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundOr(err, "produto", id)
		}
		ok, err := s.repo.AplicarDeltaEstoqueTx(tx, id, req.Delta)
		if err != nil {
			return err
		}
		if !ok {
			return &InsufficientStockError{ProdutoID: p.ID, Nome: p.Nome, Disponivel: p.Estoque, Solicitado: -req.Delta}
		}

		novo := p.Estoque + req.Delta
		mov = model.MovimentoEstoque{
			ProdutoID:     p.ID,
			Tipo:          tipo,
			Quantidade:    req.Delta,
			EstoqueAntes:  p.Estoque,
			EstoqueDepois: novo,
			Motivo:        req.Motivo,
			ClienteID:     autorID,
		}
		if err := s.movimentoRepo.CreateTx(tx, &mov); err != nil {
			return err
		}

		if req.Delta < 0 && p.AtingiuMinimo(novo) {
			alerta = &model.AlertaEstoque{
				ProdutoID:  p.ID,
				Mensagem:   MensagemAlertaEstoque(p.Nome, novo, p.EstoqueMinimo),
				DataAlerta: time.Now().UTC(),
			}
			if err := s.alertaRepo.CreateTx(tx, alerta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var nf *NotFoundError
		var stock *InsufficientStockError
		if errors.As(err, &nf) || errors.As(err, &stock) {
			return nil, err
		}
		return nil, &TransactionError{Op: "ajustar estoque", Err: err}
	}

	log.Info().
		Uint("produto_id", id).
		Int("delta", req.Delta).
		Int("estoque", mov.EstoqueDepois).
		Str("tipo", tipo).
		Msg("estoque ajustado")

	resp := &dto.AjusteEstoqueResponse{Movimento: movimentoToResponse(&mov)}
	if alerta != nil {
		a := alertaToResponse(alerta)
		resp.Alerta = &a
	}
	return resp, nil
}

func (s *produtoService) ListarMovimentos(ctx context.Context, id uint, limit int) ([]dto.MovimentoEstoqueResponse, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	movs, err := s.movimentoRepo.ListByProduto(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovimentoEstoqueResponse, len(movs))
	for i := range movs {
		resp[i] = movimentoToResponse(&movs[i])
	}
	return resp, nil
}

func (s *produtoService) ListarHistoricoPrecos(ctx context.Context, id uint, page, limit int) ([]dto.HistoricoPrecoResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, total, err := s.historicoRepo.ListByProduto(ctx, id, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.HistoricoPrecoResponse, len(rows))
	for i, h := range rows {
		resp[i] = dto.HistoricoPrecoResponse{
			ID:          h.ID,
			ProdutoID:   h.ProdutoID,
			PrecoAntes:  h.PrecoAntes,
			PrecoDepois: h.PrecoDepois,
			Motivo:      h.Motivo,
			CreatedAt:   h.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, total, nil
}

func (s *produtoService) validarReferencias(ctx context.Context, categoriaID, fornecedorID uint) error {
	if _, err := s.categoriaRepo.FindByID(ctx, categoriaID); err != nil {
		return notFoundOr(err, "categoria", categoriaID)
	}
	if _, err := s.fornecedorRepo.FindByID(ctx, fornecedorID); err != nil {
		return notFoundOr(err, "fornecedor", fornecedorID)
	}
	return nil
}

func produtoToResponse(p *model.Produto) dto.ProdutoResponse {
	return dto.ProdutoResponse{
		ID:            p.ID,
		Nome:          p.Nome,
		Descricao:     p.Descricao,
		Preco:         p.Preco,
		Estoque:       p.Estoque,
		EstoqueMinimo: p.EstoqueMinimo,
		Tamanho:       p.Tamanho,
		Cor:           p.Cor,
		ImagemURL:     p.ImagemURL,
		CategoriaID:   p.CategoriaID,
		FornecedorID:  p.FornecedorID,
	}
}

func movimentoToResponse(m *model.MovimentoEstoque) dto.MovimentoEstoqueResponse {
	return dto.MovimentoEstoqueResponse{
		ID:            m.ID,
		ProdutoID:     m.ProdutoID,
		Tipo:          m.Tipo,
		Quantidade:    m.Quantidade,
		EstoqueAntes:  m.EstoqueAntes,
		EstoqueDepois: m.EstoqueDepois,
		Motivo:        m.Motivo,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
