package handler

import (
	"fmt"
	"net/http"
	"strings"

	"lojaesportiva/internal/apierror"
	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/middleware"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/service"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler {
	return &PedidosHandler{svc: svc}
}

// Criar godoc
// @Summary      Finalizar compra
// @Description  Cria o pedido, os itens, baixa o estoque, gera alertas de estoque mínimo e registra o pagamento numa única transação.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "Chave de idempotência"
// @Param        body body dto.CriarPedidoRequest true "Carrinho"
// @Success      201  {object} dto.PedidoCriadoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      500  {object} apierror.APIError
// @Router       /v1/pedidos [post]
func (h *PedidosHandler) Criar(c *gin.Context) {
	var req dto.CriarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.ChaveIdempotencia == nil {
		if k := strings.TrimSpace(c.GetHeader(idempotencyHeader)); k != "" {
			req.ChaveIdempotencia = &k
		}
	}

	claims := middleware.GetClaims(c)
	if claims.Role != model.RoleAdmin && req.ClienteID != nil && *req.ClienteID != claims.ClienteID {
		c.JSON(http.StatusForbidden, apierror.New("Cliente só pode comprar em nome próprio"))
		return
	}

	resp, err := h.svc.CriarPedido(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cancelar godoc
// @Summary      Cancelar pedido
// @Description  Remove o pagamento, os itens e o pedido. O estoque não é restaurado.
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID do pedido"
// @Success      200 {object} map[string]string
// @Failure      500 {object} apierror.APIError
// @Router       /v1/pedidos/{id} [delete]
func (h *PedidosHandler) Cancelar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !h.autorizar(c, id) {
		return
	}
	if err := h.svc.CancelarPedido(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Pedido %d cancelado com sucesso", id)})
}

func (h *PedidosHandler) Obter(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterPedido(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !dono(c, resp.ClienteID) {
		c.JSON(http.StatusForbidden, apierror.New("Permissões insuficientes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar pedidos
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        status     query string false "Status"
// @Param        customerId query int    false "Cliente"
// @Param        page       query int    false "Página"
// @Param        limit      query int    false "Itens por página"
// @Success      200 {object} dto.PedidoListResponse
// @Router       /v1/pedidos [get]
func (h *PedidosHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	// Customers only ever see their own orders.
	if claims := middleware.GetClaims(c); claims.Role != model.RoleAdmin {
		filter.ClienteID = claims.ClienteID
	}
	resp, err := h.svc.ListarPedidos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) AtualizarStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarStatusPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recibo godoc
// @Summary      Recibo do pedido em PDF
// @Tags         pedidos
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "ID do pedido"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pedidos/{id}/recibo [get]
func (h *PedidosHandler) Recibo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !h.autorizar(c, id) {
		return
	}
	pdf, err := h.svc.GerarRecibo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="pedido-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// autorizar lets admins through and checks ownership for customers. An order
// that cannot be read is left for the service call to report.
func (h *PedidosHandler) autorizar(c *gin.Context, id uint) bool {
	claims := middleware.GetClaims(c)
	if claims.Role == model.RoleAdmin {
		return true
	}
	p, err := h.svc.ObterPedido(c.Request.Context(), id)
	if err != nil {
		return true
	}
	if p.ClienteID != claims.ClienteID {
		c.JSON(http.StatusForbidden, apierror.New("Permissões insuficientes"))
		return false
	}
	return true
}

func dono(c *gin.Context, clienteID uint) bool {
	claims := middleware.GetClaims(c)
	return claims.Role == model.RoleAdmin || claims.ClienteID == clienteID
}
