package handler

import (
	"net/http"

	"lojaesportiva/internal/apierror"
	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/service"

	"github.com/gin-gonic/gin"
)

type AlertasHandler struct{ svc service.AlertaService }

func NewAlertasHandler(svc service.AlertaService) *AlertasHandler {
	return &AlertasHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar alertas de estoque
// @Tags         alertas
// @Produce      json
// @Security     BearerAuth
// @Param        visualizado query string false "true | false"
// @Param        productId   query int    false "Produto"
// @Success      200 {array} dto.AlertaResponse
// @Router       /v1/alertas [get]
func (h *AlertasHandler) Listar(c *gin.Context) {
	var filter dto.AlertaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlertasHandler) NaoVisualizados(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.AlertaFilter{Visualizado: "false"})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlertasHandler) PorProduto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), dto.AlertaFilter{ProdutoID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlertasHandler) MarcarVisualizado(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarcarVisualizado(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AlertasHandler) MarcarTodosVisualizados(c *gin.Context) {
	n, err := h.svc.MarcarTodosVisualizados(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarcarTodosResponse{Atualizados: n})
}

func (h *AlertasHandler) Remover(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remover(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
