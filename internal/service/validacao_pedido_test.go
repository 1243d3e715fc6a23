package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// Validation runs before any repository is touched, so nil repositories are
// enough here.
func TestCriarPedido_Validacao(t *testing.T) {
	svc := service.NewPedidoService(nil, nil, nil, nil, nil, time.Second)
	total := decimal.RequireFromString("10.00")
	item := dto.ItemPedidoRequest{ProdutoID: ptr(uint(1)), Quantidade: ptr(1)}

	cases := []struct {
		name  string
		req   dto.CriarPedidoRequest
		field string
		msg   string
	}{
		{
			name:  "sem cliente",
			req:   dto.CriarPedidoRequest{Itens: []dto.ItemPedidoRequest{item}, ValorTotal: &total, FormaPagamento: "PIX"},
			field: "customerId",
			msg:   "ID do cliente é obrigatório",
		},
		{
			name:  "sem itens",
			req:   dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), ValorTotal: &total, FormaPagamento: "PIX"},
			field: "items",
			msg:   "O pedido deve conter pelo menos um item",
		},
		{
			name: "item sem produto",
			req: dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), ValorTotal: &total, FormaPagamento: "PIX",
				Itens: []dto.ItemPedidoRequest{item, {Quantidade: ptr(1)}}},
			field: "items[1].productId",
			msg:   "Item 2: productId é obrigatório",
		},
		{
			name: "item sem quantidade",
			req: dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), ValorTotal: &total, FormaPagamento: "PIX",
				Itens: []dto.ItemPedidoRequest{{ProdutoID: ptr(uint(3))}}},
			field: "items[0].quantity",
			msg:   "Item 1: quantity é obrigatório",
		},
		{
			name: "quantidade zero",
			req: dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), ValorTotal: &total, FormaPagamento: "PIX",
				Itens: []dto.ItemPedidoRequest{{ProdutoID: ptr(uint(3)), Quantidade: ptr(0)}}},
			field: "items[0].quantity",
			msg:   "Item 1: quantity deve ser um inteiro positivo",
		},
		{
			name: "quantidade negativa",
			req: dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), ValorTotal: &total, FormaPagamento: "PIX",
				Itens: []dto.ItemPedidoRequest{{ProdutoID: ptr(uint(3)), Quantidade: ptr(-2)}}},
			field: "items[0].quantity",
			msg:   "Item 1: quantity deve ser um inteiro positivo",
		},
		{
			name:  "sem valor total",
			req:   dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), Itens: []dto.ItemPedidoRequest{item}, FormaPagamento: "PIX"},
			field: "totalAmount",
			msg:   "Valor total deve ser maior que zero",
		},
		{
			name: "valor total zero",
			req: dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), Itens: []dto.ItemPedidoRequest{item},
				ValorTotal: ptr(decimal.Zero), FormaPagamento: "PIX"},
			field: "totalAmount",
			msg:   "Valor total deve ser maior que zero",
		},
		{
			name:  "forma de pagamento em branco",
			req:   dto.CriarPedidoRequest{ClienteID: ptr(uint(1)), Itens: []dto.ItemPedidoRequest{item}, ValorTotal: &total, FormaPagamento: "   "},
			field: "paymentMethod",
			msg:   "Forma de pagamento é obrigatória",
		},
		{
			// customerId is checked before items even when both are wrong
			name:  "primeira falha vence",
			req:   dto.CriarPedidoRequest{},
			field: "customerId",
			msg:   "ID do cliente é obrigatório",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CriarPedido(context.Background(), tc.req)
			require.Error(t, err)

			var valErr *service.ValidationError
			require.True(t, errors.As(err, &valErr), "got %T: %v", err, err)
			assert.Equal(t, tc.field, valErr.Field)
			assert.Equal(t, tc.msg, valErr.Msg)
			assert.Equal(t, service.KindValidation, service.KindOf(err))
		})
	}
}

func TestKindOf(t *testing.T) {
	stock := &service.InsufficientStockError{Nome: "Bola", Disponivel: 1, Solicitado: 2}
	cases := []struct {
		name string
		err  error
		want service.Kind
	}{
		{"nil", nil, service.KindInternal},
		{"genérico", errors.New("boom"), service.KindInternal},
		{"validação", &service.ValidationError{Field: "x", Msg: "y"}, service.KindValidation},
		{"não encontrado", &service.NotFoundError{Entity: "produto", ID: 1}, service.KindNotFound},
		{"estoque", stock, service.KindInsufficientStock},
		{"conflito", &service.ConflictError{Msg: "dup"}, service.KindConflict},
		{"credenciais", service.ErrCredenciaisInvalidas, service.KindUnauthorized},
		{"acesso negado", service.ErrAcessoNegado, service.KindForbidden},
		{"transação envolve estoque", &service.TransactionError{Op: "criar pedido", Err: stock}, service.KindTransaction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.KindOf(tc.err))
		})
	}
}

func TestNotFoundError_Mensagem(t *testing.T) {
	err := &service.NotFoundError{Entity: "produto", ID: 42}
	assert.Equal(t, "produto 42 não encontrado", err.Error())
}

func TestMensagemAlertaEstoque(t *testing.T) {
	assert.Equal(t,
		`ATENÇÃO: O produto "Bola" atingiu o estoque mínimo! Estoque atual: 0, Estoque mínimo: 3`,
		service.MensagemAlertaEstoque("Bola", 0, 3))
}
