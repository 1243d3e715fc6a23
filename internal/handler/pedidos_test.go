package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lojaesportiva/internal/apierror"
	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/middleware"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubPedidoService records the last checkout request and returns canned
// results.
type stubPedidoService struct {
	criarErr   error
	ultimo     *dto.CriarPedidoRequest
	pedidos    map[uint]*dto.PedidoResponse
	cancelados []uint
	filtro     dto.PedidoFilter
}

func newStubPedidoService() *stubPedidoService {
	return &stubPedidoService{pedidos: map[uint]*dto.PedidoResponse{}}
}

func (s *stubPedidoService) CriarPedido(_ context.Context, req dto.CriarPedidoRequest) (*dto.PedidoCriadoResponse, error) {
	s.ultimo = &req
	if s.criarErr != nil {
		return nil, s.criarErr
	}
	return &dto.PedidoCriadoResponse{
		Pedido:    dto.PedidoResponse{ID: 10, ClienteID: *req.ClienteID, Status: model.PedidoPendente, ValorTotal: *req.ValorTotal},
		Itens:     []dto.ItemPedidoResponse{},
		Pagamento: dto.PagamentoResponse{ID: 1, PedidoID: 10, FormaPagamento: req.FormaPagamento, Status: model.PagamentoPendente},
		Alertas:   []dto.AlertaResponse{},
	}, nil
}

func (s *stubPedidoService) CancelarPedido(_ context.Context, id uint) error {
	if _, ok := s.pedidos[id]; !ok {
		return &service.TransactionError{Op: "cancelar pedido", Err: errors.New("record not found")}
	}
	s.cancelados = append(s.cancelados, id)
	return nil
}

func (s *stubPedidoService) ObterPedido(_ context.Context, id uint) (*dto.PedidoResponse, error) {
	p, ok := s.pedidos[id]
	if !ok {
		return nil, &service.NotFoundError{Entity: "pedido", ID: id}
	}
	return p, nil
}

func (s *stubPedidoService) ListarPedidos(_ context.Context, f dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	s.filtro = f
	return &dto.PedidoListResponse{Data: []dto.PedidoResponse{}, Page: f.Page, Limit: f.Limit}, nil
}

func (s *stubPedidoService) AtualizarStatus(_ context.Context, id uint, status string) (*dto.PedidoResponse, error) {
	p, err := s.ObterPedido(context.Background(), id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	return p, nil
}

func (s *stubPedidoService) GerarRecibo(_ context.Context, id uint) ([]byte, error) {
	if _, ok := s.pedidos[id]; !ok {
		return nil, &service.NotFoundError{Entity: "pedido", ID: id}
	}
	return []byte("%PDF-1.3 stub"), nil
}

var _ service.PedidoService = (*stubPedidoService)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

// comClaims stands in for JWTAuth.
func comClaims(clienteID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{ClienteID: clienteID, Role: role, Tipo: "access"})
		c.Next()
	}
}

func pedidosRouter(svc service.PedidoService, clienteID uint, role string) *gin.Engine {
	r := gin.New()
	h := NewPedidosHandler(svc)
	g := r.Group("/v1/pedidos", comClaims(clienteID, role))
	g.POST("", h.Criar)
	g.GET("", h.Listar)
	g.GET("/:id", h.Obter)
	g.GET("/:id/recibo", h.Recibo)
	g.DELETE("/:id", h.Cancelar)
	g.PATCH("/:id/status", h.AtualizarStatus)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

const checkoutBody = `{"customerId":1,"items":[{"productId":7,"quantity":6}],"totalAmount":300.00,"paymentMethod":"PIX"}`

// ── Checkout ──────────────────────────────────────────────────────────────────

func TestCriar_Sucesso201(t *testing.T) {
	svc := newStubPedidoService()
	w := doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodPost, "/v1/pedidos", checkoutBody)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.PedidoCriadoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(10), resp.Pedido.ID)
	assert.Equal(t, "PENDENTE", resp.Pedido.Status)
	assert.True(t, resp.Pedido.ValorTotal.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, "PIX", resp.Pagamento.FormaPagamento)
}

func TestCriar_ChaveDoCabecalho(t *testing.T) {
	svc := newStubPedidoService()
	r := pedidosRouter(svc, 1, model.RoleCustomer)

	w := doJSON(t, r, http.MethodPost, "/v1/pedidos", checkoutBody, "Idempotency-Key", "carrinho-abc-123")
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.ultimo.ChaveIdempotencia)
	assert.Equal(t, "carrinho-abc-123", *svc.ultimo.ChaveIdempotencia)
}

func TestCriar_ClienteNaoCompraPorOutro(t *testing.T) {
	svc := newStubPedidoService()

	w := doJSON(t, pedidosRouter(svc, 2, model.RoleCustomer), http.MethodPost, "/v1/pedidos", checkoutBody)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, svc.ultimo, "service must not be called")

	w = doJSON(t, pedidosRouter(svc, 99, model.RoleAdmin), http.MethodPost, "/v1/pedidos", checkoutBody)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCriar_JSONInvalido(t *testing.T) {
	w := doJSON(t, pedidosRouter(newStubPedidoService(), 1, model.RoleCustomer), http.MethodPost, "/v1/pedidos", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeAPIError(t, w).Detail, "JSON inválido")
}

func TestCriar_MapeamentoDeErros(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"validação", &service.ValidationError{Field: "items", Msg: "O pedido deve conter pelo menos um item"},
			http.StatusBadRequest, "O pedido deve conter pelo menos um item"},
		{"estoque", &service.InsufficientStockError{Nome: "Bola", Disponivel: 1, Solicitado: 3},
			http.StatusBadRequest, `Estoque insuficiente para o produto "Bola". Disponível: 1, Solicitado: 3`},
		{"cliente inexistente", &service.NotFoundError{Entity: "cliente", ID: 1},
			http.StatusNotFound, "cliente 1 não encontrado"},
		{"conflito", &service.ConflictError{Msg: "Chave de idempotência já utilizada por outro pedido"},
			http.StatusConflict, "Chave de idempotência já utilizada por outro pedido"},
		{"transação", &service.TransactionError{Op: "criar pedido", Err: errors.New("deadlock")},
			http.StatusInternalServerError, "Falha ao processar a transação"},
		{"inesperado", errors.New("conexão recusada"),
			http.StatusInternalServerError, "Erro interno do servidor"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newStubPedidoService()
			svc.criarErr = tc.err
			w := doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodPost, "/v1/pedidos", checkoutBody)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.detail, decodeAPIError(t, w).Detail)
		})
	}
}

func TestCriar_ValidacaoTrazCampo(t *testing.T) {
	svc := newStubPedidoService()
	svc.criarErr = &service.ValidationError{Field: "items[0].quantity", Msg: "Item 1: quantity deve ser um inteiro positivo"}

	w := doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodPost, "/v1/pedidos", checkoutBody)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var ve apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ve))
	assert.Equal(t, "Item 1: quantity deve ser um inteiro positivo", ve.Fields["items[0].quantity"])
}

func TestCriar_TransacaoExpoeCausa(t *testing.T) {
	svc := newStubPedidoService()
	svc.criarErr = &service.TransactionError{Op: "criar pedido", Err: errors.New("lock timeout")}

	w := doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodPost, "/v1/pedidos", checkoutBody)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeAPIError(t, w).Causa, "lock timeout")
}

// ── Cancel / read ─────────────────────────────────────────────────────────────

func TestCancelar(t *testing.T) {
	svc := newStubPedidoService()
	svc.pedidos[5] = &dto.PedidoResponse{ID: 5, ClienteID: 1}

	w := doJSON(t, pedidosRouter(svc, 2, model.RoleCustomer), http.MethodDelete, "/v1/pedidos/5", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, svc.cancelados)

	w = doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodDelete, "/v1/pedidos/5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Pedido 5 cancelado com sucesso"}`, w.Body.String())

	w = doJSON(t, pedidosRouter(svc, 1, model.RoleAdmin), http.MethodDelete, "/v1/pedidos/77", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(t, pedidosRouter(svc, 1, model.RoleAdmin), http.MethodDelete, "/v1/pedidos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestObter_SomenteDono(t *testing.T) {
	svc := newStubPedidoService()
	svc.pedidos[3] = &dto.PedidoResponse{ID: 3, ClienteID: 1}

	assert.Equal(t, http.StatusOK, doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodGet, "/v1/pedidos/3", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, pedidosRouter(svc, 2, model.RoleCustomer), http.MethodGet, "/v1/pedidos/3", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, pedidosRouter(svc, 2, model.RoleAdmin), http.MethodGet, "/v1/pedidos/3", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodGet, "/v1/pedidos/4", nil).Code)
}

func TestListar_ClienteVeSoOsProprios(t *testing.T) {
	svc := newStubPedidoService()

	w := doJSON(t, pedidosRouter(svc, 4, model.RoleCustomer), http.MethodGet, "/v1/pedidos?customerId=9&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(4), svc.filtro.ClienteID)
	assert.Equal(t, 2, svc.filtro.Page)

	doJSON(t, pedidosRouter(svc, 4, model.RoleAdmin), http.MethodGet, "/v1/pedidos?customerId=9", nil)
	assert.Equal(t, uint(9), svc.filtro.ClienteID)
}

func TestAtualizarStatus_ValidaValor(t *testing.T) {
	svc := newStubPedidoService()
	svc.pedidos[2] = &dto.PedidoResponse{ID: 2, ClienteID: 1, Status: model.PedidoPendente}
	r := pedidosRouter(svc, 1, model.RoleAdmin)

	w := doJSON(t, r, http.MethodPatch, "/v1/pedidos/2/status", `{"status":"VOANDO"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var ve apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ve))
	assert.Equal(t, "oneof", ve.Fields["status"])

	w = doJSON(t, r, http.MethodPatch, "/v1/pedidos/2/status", `{"status":"ENVIADO"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.PedidoEnviado, svc.pedidos[2].Status)
}

func TestRecibo_PDF(t *testing.T) {
	svc := newStubPedidoService()
	svc.pedidos[8] = &dto.PedidoResponse{ID: 8, ClienteID: 1}

	w := doJSON(t, pedidosRouter(svc, 1, model.RoleCustomer), http.MethodGet, "/v1/pedidos/8/recibo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pedido-8.pdf")
}
