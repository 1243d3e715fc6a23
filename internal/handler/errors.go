package handler

import (
	"errors"
	"net/http"

	"lojaesportiva/internal/apierror"
	"lojaesportiva/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto its HTTP status and envelope.
// Unexpected errors are attached to the context so ErrorHandler logs them.
func respondError(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		var ve *service.ValidationError
		errors.As(err, &ve)
		c.JSON(http.StatusBadRequest, &apierror.ValidationError{
			Detail: ve.Msg,
			Fields: map[string]string{ve.Field: ve.Msg},
		})
	case service.KindInsufficientStock:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case service.KindConflict:
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case service.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case service.KindForbidden:
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case service.KindTransaction:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.NewWithCause("Falha ao processar a transação", err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}
