package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/infra"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type PedidoService interface {
	CriarPedido(ctx context.Context, req dto.CriarPedidoRequest) (*dto.PedidoCriadoResponse, error)
	CancelarPedido(ctx context.Context, id uint) error
	ObterPedido(ctx context.Context, id uint) (*dto.PedidoResponse, error)
	ListarPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	AtualizarStatus(ctx context.Context, id uint, status string) (*dto.PedidoResponse, error)
	GerarRecibo(ctx context.Context, id uint) ([]byte, error)
}

type pedidoService struct {
	pedidoRepo    repository.PedidoRepository
	produtoRepo   repository.ProdutoRepository
	clienteRepo   repository.ClienteRepository
	pagamentoRepo repository.PagamentoRepository
	alertaRepo    repository.AlertaRepository
	lockTimeout   time.Duration

	tracer         trace.Tracer
	pedidosCriados metric.Int64Counter
	pedidosFalhos  metric.Int64Counter
	alertasGerados metric.Int64Counter
}

func NewPedidoService(
	pedidoRepo repository.PedidoRepository,
	produtoRepo repository.ProdutoRepository,
	clienteRepo repository.ClienteRepository,
	pagamentoRepo repository.PagamentoRepository,
	alertaRepo repository.AlertaRepository,
	lockTimeout time.Duration,
) PedidoService {
	meter := otel.Meter("lojaesportiva/pedido")
	criados, _ := meter.Int64Counter("pedidos_criados_total",
		metric.WithDescription("Checkouts committed"))
	falhos, _ := meter.Int64Counter("pedidos_falhos_total",
		metric.WithDescription("Checkouts rejected or rolled back, by error kind"))
	alertas, _ := meter.Int64Counter("alertas_estoque_gerados_total",
		metric.WithDescription("Stock alerts raised by checkouts"))

	return &pedidoService{
		pedidoRepo:     pedidoRepo,
		produtoRepo:    produtoRepo,
		clienteRepo:    clienteRepo,
		pagamentoRepo:  pagamentoRepo,
		alertaRepo:     alertaRepo,
		lockTimeout:    lockTimeout,
		tracer:         otel.Tracer("lojaesportiva/pedido"),
		pedidosCriados: criados,
		pedidosFalhos:  falhos,
		alertasGerados: alertas,
	}
}

var errSemBanco = errors.New("transação sem conexão com o banco")

// runTx executes fn inside a GORM transaction bound to ctx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return errSemBanco
	}
	return db.WithContext(ctx).Transaction(fn)
}

// pedidoInput is a checkout request after shape validation.
type pedidoInput struct {
	clienteID uint
	itens     []itemInput
	total     decimal.Decimal
	forma     string
	chave     *string
}

type itemInput struct {
	produtoID  uint
	quantidade int
}

// estoqueFinal is a product's stock after the last cart line touching it.
type estoqueFinal struct {
	produto model.Produto
	estoque int
}

// validarPedido checks the request shape. It never touches the store.
func validarPedido(req dto.CriarPedidoRequest) (pedidoInput, error) {
	var in pedidoInput

	if req.ClienteID == nil || *req.ClienteID == 0 {
		return in, invalid("customerId", "ID do cliente é obrigatório")
	}
	if len(req.Itens) == 0 {
		return in, invalid("items", "O pedido deve conter pelo menos um item")
	}
	for i, it := range req.Itens {
		if it.ProdutoID == nil || *it.ProdutoID == 0 {
			return in, invalid(fmt.Sprintf("items[%d].productId", i), "Item %d: productId é obrigatório", i+1)
		}
		if it.Quantidade == nil {
			return in, invalid(fmt.Sprintf("items[%d].quantity", i), "Item %d: quantity é obrigatório", i+1)
		}
		if *it.Quantidade <= 0 {
			return in, invalid(fmt.Sprintf("items[%d].quantity", i), "Item %d: quantity deve ser um inteiro positivo", i+1)
		}
		in.itens = append(in.itens, itemInput{produtoID: *it.ProdutoID, quantidade: *it.Quantidade})
	}
	if req.ValorTotal == nil || !req.ValorTotal.IsPositive() {
		return in, invalid("totalAmount", "Valor total deve ser maior que zero")
	}
	forma := strings.TrimSpace(req.FormaPagamento)
	if forma == "" {
		return in, invalid("paymentMethod", "Forma de pagamento é obrigatória")
	}

	in.clienteID = *req.ClienteID
	in.total = *req.ValorTotal
	in.forma = forma
	if req.ChaveIdempotencia != nil {
		if k := strings.TrimSpace(*req.ChaveIdempotencia); k != "" {
			in.chave = &k
		}
	}
	return in, nil
}

// ── CriarPedido ───────────────────────────────────────────────────────────────
//   1. Validate request shape (no store access)
//   2. Customer must exist
//   3. Replay an order already created with the same idempotency key
//   4. Pre-flight: every product exists with enough stock (outside TX)
//   5. BEGIN TX: lock products, create pedido, per item re-read + item + decrement, one alert per product, pagamento
//   6. COMMIT

func (s *pedidoService) CriarPedido(ctx context.Context, req dto.CriarPedidoRequest) (*dto.PedidoCriadoResponse, error) {
	ctx, span := s.tracer.Start(ctx, "pedido.criar")
	defer span.End()

	resp, err := s.criarPedido(ctx, span, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.pedidosFalhos.Add(ctx, 1, metric.WithAttributes(attribute.Int("kind", int(KindOf(err)))))
		return nil, err
	}
	s.pedidosCriados.Add(ctx, 1)
	if n := len(resp.Alertas); n > 0 {
		s.alertasGerados.Add(ctx, int64(n))
	}
	return resp, nil
}

func (s *pedidoService) criarPedido(ctx context.Context, span trace.Span, req dto.CriarPedidoRequest) (*dto.PedidoCriadoResponse, error) {
	in, err := validarPedido(req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("pedido.cliente_id", int64(in.clienteID)),
		attribute.Int("pedido.itens", len(in.itens)),
		attribute.String("pedido.forma_pagamento", in.forma),
	)

	existe, err := s.clienteRepo.Exists(ctx, in.clienteID)
	if err != nil {
		return nil, fmt.Errorf("consultar cliente: %w", err)
	}
	if !existe {
		return nil, &NotFoundError{Entity: "cliente", ID: in.clienteID}
	}

	if in.chave != nil {
		if resp, err := s.replayIdempotente(ctx, in); resp != nil || err != nil {
			return resp, err
		}
	}

	// Lines repeating a product are checked against its stock together.
	pedidas := make(map[uint]int, len(in.itens))
	for _, it := range in.itens {
		p, err := s.produtoRepo.FindByID(ctx, it.produtoID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "produto", ID: it.produtoID}
		}
		if err != nil {
			return nil, fmt.Errorf("consultar produto %d: %w", it.produtoID, err)
		}
		pedidas[p.ID] += it.quantidade
		if p.Estoque < pedidas[p.ID] {
			return nil, &InsufficientStockError{
				ProdutoID: p.ID, Nome: p.Nome, Disponivel: p.Estoque, Solicitado: pedidas[p.ID],
			}
		}
	}

	var (
		pedido    model.Pedido
		itens     []model.ItemPedido
		alertas   []model.AlertaEstoque
		pagamento model.Pagamento
		nomes     = make(map[uint]string, len(in.itens))
		somaItens = decimal.Zero
		finais    = make(map[uint]estoqueFinal, len(in.itens))
		ordem     []uint
	)

	txErr := runTx(ctx, s.pedidoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.prepararTx(tx); err != nil {
			return err
		}
		if err := s.produtoRepo.LockForUpdateTx(tx, idsOrdenados(in.itens)); err != nil {
			return fmt.Errorf("bloquear produtos: %w", err)
		}

		pedido = model.Pedido{
			ClienteID:         in.clienteID,
			ValorTotal:        in.total,
			Status:            model.PedidoPendente,
			ChaveIdempotencia: in.chave,
		}
		if err := s.pedidoRepo.CreateTx(tx, &pedido); err != nil {
			return fmt.Errorf("criar pedido: %w", err)
		}

		for _, it := range in.itens {
			// Fresh read: the pre-flight snapshot may be stale by now.
			p, err := s.produtoRepo.FindByIDTx(tx, it.produtoID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "produto", ID: it.produtoID}
			}
			if err != nil {
				return fmt.Errorf("reler produto %d: %w", it.produtoID, err)
			}
			nomes[p.ID] = p.Nome

			subtotal := p.Preco.Mul(decimal.NewFromInt(int64(it.quantidade)))
			item := model.ItemPedido{
				PedidoID:      pedido.ID,
				ProdutoID:     p.ID,
				Quantidade:    it.quantidade,
				PrecoUnitario: p.Preco,
				Subtotal:      subtotal,
			}
			if err := s.pedidoRepo.CreateItemTx(tx, &item); err != nil {
				return fmt.Errorf("criar item do produto %d: %w", p.ID, err)
			}
			itens = append(itens, item)
			somaItens = somaItens.Add(subtotal)

			novoEstoque := p.Estoque - it.quantidade
			if novoEstoque < 0 {
				return &InsufficientStockError{
					ProdutoID: p.ID, Nome: p.Nome, Disponivel: p.Estoque, Solicitado: it.quantidade,
				}
			}
			ok, err := s.produtoRepo.DescontarEstoqueTx(tx, p.ID, it.quantidade)
			if err != nil {
				return fmt.Errorf("baixar estoque do produto %d: %w", p.ID, err)
			}
			if !ok {
				return &InsufficientStockError{
					ProdutoID: p.ID, Nome: p.Nome, Disponivel: p.Estoque, Solicitado: it.quantidade,
				}
			}

			if _, visto := finais[p.ID]; !visto {
				ordem = append(ordem, p.ID)
			}
			finais[p.ID] = estoqueFinal{produto: *p, estoque: novoEstoque}
		}

		// At most one alert per product, using the stock left after all its lines.
		for _, id := range ordem {
			f := finais[id]
			if !f.produto.AtingiuMinimo(f.estoque) {
				continue
			}
			alerta := model.AlertaEstoque{
				ProdutoID:   id,
				Mensagem:    MensagemAlertaEstoque(f.produto.Nome, f.estoque, f.produto.EstoqueMinimo),
				DataAlerta:  time.Now().UTC(),
				Visualizado: false,
			}
			if err := s.alertaRepo.CreateTx(tx, &alerta); err != nil {
				return fmt.Errorf("criar alerta do produto %d: %w", id, err)
			}
			alertas = append(alertas, alerta)
		}

		pagamento = model.Pagamento{
			PedidoID:       pedido.ID,
			ValorPago:      in.total,
			FormaPagamento: in.forma,
			Status:         model.PagamentoPendente,
			DataPagamento:  time.Now().UTC(),
		}
		if err := s.pagamentoRepo.CreateTx(tx, &pagamento); err != nil {
			return fmt.Errorf("criar pagamento: %w", err)
		}
		return nil
	})
	if txErr != nil {
		if in.chave != nil && infra.ClassifyError(txErr) == infra.ClassUnique {
			return nil, &ConflictError{Msg: "Pedido com esta chave de idempotência já está sendo processado"}
		}
		log.Warn().
			Err(txErr).
			Uint("cliente_id", in.clienteID).
			Str("classe", string(infra.ClassifyError(txErr))).
			Msg("pedido: transação revertida")
		return nil, &TransactionError{Op: "criar pedido", Err: txErr}
	}

	if !somaItens.Equal(in.total) {
		log.Warn().
			Uint("pedido_id", pedido.ID).
			Str("valor_total", in.total.StringFixed(2)).
			Str("soma_itens", somaItens.StringFixed(2)).
			Msg("pedido: valor total informado difere da soma dos itens")
	}
	log.Info().
		Uint("pedido_id", pedido.ID).
		Uint("cliente_id", in.clienteID).
		Int("itens", len(itens)).
		Int("alertas", len(alertas)).
		Msg("pedido criado")

	resp := &dto.PedidoCriadoResponse{
		Pedido:    pedidoToResponse(&pedido),
		Itens:     make([]dto.ItemPedidoResponse, 0, len(itens)),
		Pagamento: pagamentoToResponse(&pagamento),
		Alertas:   make([]dto.AlertaResponse, 0, len(alertas)),
	}
	for i := range itens {
		r := itemToResponse(&itens[i])
		r.ProdutoNome = nomes[itens[i].ProdutoID]
		resp.Itens = append(resp.Itens, r)
	}
	for i := range alertas {
		r := alertaToResponse(&alertas[i])
		r.ProdutoNome = nomes[alertas[i].ProdutoID]
		resp.Alertas = append(resp.Alertas, r)
	}
	return resp, nil
}

// replayIdempotente returns the aggregate of an order already created with
// the same key. (nil, nil) means the key is new.
func (s *pedidoService) replayIdempotente(ctx context.Context, in pedidoInput) (*dto.PedidoCriadoResponse, error) {
	existente, err := s.pedidoRepo.FindByChaveIdempotencia(ctx, *in.chave)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consultar chave de idempotência: %w", err)
	}
	if existente.ClienteID != in.clienteID {
		return nil, &ConflictError{Msg: "Chave de idempotência já utilizada por outro pedido"}
	}

	log.Info().Uint("pedido_id", existente.ID).Str("chave", *in.chave).Msg("pedido: replay idempotente")

	full := pedidoToResponse(existente)
	resp := &dto.PedidoCriadoResponse{
		Pedido:  full,
		Itens:   full.Itens,
		Alertas: []dto.AlertaResponse{},
	}
	if resp.Itens == nil {
		resp.Itens = []dto.ItemPedidoResponse{}
	}
	if full.Pagamento != nil {
		resp.Pagamento = *full.Pagamento
	}
	resp.Pedido.Itens = nil
	resp.Pedido.Pagamento = nil
	return resp, nil
}

// prepararTx bounds how long the checkout waits on a product row lock.
func (s *pedidoService) prepararTx(tx *gorm.DB) error {
	if tx == nil || s.lockTimeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	// SET does not take bind parameters; the value is an integer we control.
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("configurar lock_timeout: %w", err)
	}
	return nil
}

func idsOrdenados(itens []itemInput) []uint {
	seen := make(map[uint]struct{}, len(itens))
	ids := make([]uint, 0, len(itens))
	for _, it := range itens {
		if _, ok := seen[it.produtoID]; ok {
			continue
		}
		seen[it.produtoID] = struct{}{}
		ids = append(ids, it.produtoID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MensagemAlertaEstoque is the text stored on a stock alert.
func MensagemAlertaEstoque(nome string, estoqueAtual, estoqueMinimo int) string {
	return fmt.Sprintf("ATENÇÃO: O produto %q atingiu o estoque mínimo! Estoque atual: %d, Estoque mínimo: %d",
		nome, estoqueAtual, estoqueMinimo)
}

// ── CancelarPedido ────────────────────────────────────────────────────────────
// Deletes pagamento, itens and pedido atomically. Stock is not restored.

func (s *pedidoService) CancelarPedido(ctx context.Context, id uint) error {
	err := runTx(ctx, s.pedidoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.pagamentoRepo.DeleteByPedidoTx(tx, id); err != nil {
			return fmt.Errorf("remover pagamento: %w", err)
		}
		if err := s.pedidoRepo.DeleteItensTx(tx, id); err != nil {
			return fmt.Errorf("remover itens: %w", err)
		}
		if err := s.pedidoRepo.DeleteTx(tx, id); err != nil {
			return fmt.Errorf("remover pedido %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return &TransactionError{Op: "cancelar pedido", Err: err}
	}
	log.Info().Uint("pedido_id", id).Msg("pedido removido")
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *pedidoService) ObterPedido(ctx context.Context, id uint) (*dto.PedidoResponse, error) {
	p, err := s.pedidoRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "pedido", ID: id}
	}
	if err != nil {
		return nil, err
	}
	resp := pedidoToResponse(p)
	return &resp, nil
}

func (s *pedidoService) ListarPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Status != "" && !model.StatusPedidoValido(filter.Status) {
		return nil, invalid("status", "Status inválido: %s", filter.Status)
	}

	pedidos, total, err := s.pedidoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PedidoResponse, len(pedidos))
	for i := range pedidos {
		data[i] = pedidoToResponse(&pedidos[i])
	}
	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}
	return &dto.PedidoListResponse{
		Data: data, Total: total, Page: filter.Page, Limit: filter.Limit, TotalPages: totalPages,
	}, nil
}

func (s *pedidoService) AtualizarStatus(ctx context.Context, id uint, status string) (*dto.PedidoResponse, error) {
	if !model.StatusPedidoValido(status) {
		return nil, invalid("status", "Status inválido: %s", status)
	}
	if err := s.pedidoRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "pedido", ID: id}
		}
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Str("status", status).Msg("status do pedido atualizado")
	return s.ObterPedido(ctx, id)
}

func (s *pedidoService) GerarRecibo(ctx context.Context, id uint) ([]byte, error) {
	p, err := s.pedidoRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "pedido", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return infra.GerarReciboPDF(p)
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func pedidoToResponse(p *model.Pedido) dto.PedidoResponse {
	resp := dto.PedidoResponse{
		ID:         p.ID,
		ClienteID:  p.ClienteID,
		ValorTotal: p.ValorTotal,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
	for i := range p.Itens {
		resp.Itens = append(resp.Itens, itemToResponse(&p.Itens[i]))
	}
	if p.Pagamento != nil {
		pr := pagamentoToResponse(p.Pagamento)
		resp.Pagamento = &pr
	}
	return resp
}

func itemToResponse(it *model.ItemPedido) dto.ItemPedidoResponse {
	r := dto.ItemPedidoResponse{
		ID:            it.ID,
		PedidoID:      it.PedidoID,
		ProdutoID:     it.ProdutoID,
		Quantidade:    it.Quantidade,
		PrecoUnitario: it.PrecoUnitario,
		Subtotal:      it.Subtotal,
	}
	if it.Produto != nil {
		r.ProdutoNome = it.Produto.Nome
	}
	return r
}

func pagamentoToResponse(p *model.Pagamento) dto.PagamentoResponse {
	return dto.PagamentoResponse{
		ID:             p.ID,
		PedidoID:       p.PedidoID,
		ValorPago:      p.ValorPago,
		FormaPagamento: p.FormaPagamento,
		Status:         p.Status,
		DataPagamento:  p.DataPagamento.Format(time.RFC3339),
	}
}
