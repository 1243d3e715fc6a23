package service_test

import (
	"context"
	"errors"
	"testing"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduto_CriarEObter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	criado, err := f.produtos.Criar(ctx, dto.CriarProdutoRequest{
		Nome:          "Bola Oficial",
		Preco:         decimal.RequireFromString("129.90"),
		Estoque:       20,
		EstoqueMinimo: 4,
		CategoriaID:   f.categoria.ID,
		FornecedorID:  f.fornecedor.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, criado.ID)

	obtido, err := f.produtos.ObterPorID(ctx, criado.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bola Oficial", obtido.Nome)
	assert.Equal(t, "129.90", obtido.Preco.StringFixed(2))
	assert.Equal(t, 20, obtido.Estoque)

	_, err = f.produtos.ObterPorID(ctx, 999)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestProduto_CriarComCategoriaInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.produtos.Criar(context.Background(), dto.CriarProdutoRequest{
		Nome:         "Bola",
		Preco:        decimal.RequireFromString("10"),
		CategoriaID:  777,
		FornecedorID: f.fornecedor.ID,
	})
	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "categoria", nf.Entity)
}

func TestProduto_ListarComFiltros(t *testing.T) {
	f := newFixture(t)
	f.produto(t, 0, "Bola de Vôlei", "80.00", 2, 5)
	f.produto(t, 0, "Bola de Basquete", "120.00", 30, 5)
	f.produto(t, 0, "Rede de Vôlei", "300.00", 10, 1)
	ctx := context.Background()

	bolas, err := f.produtos.Listar(ctx, dto.ProdutoFilter{Nome: "bola", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bolas.Total)
	require.Len(t, bolas.Data, 2)
	assert.Equal(t, "Bola de Basquete", bolas.Data[0].Nome)

	baixos, err := f.produtos.Listar(ctx, dto.ProdutoFilter{AbaixoMinimo: true, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, baixos.Data, 1)
	assert.Equal(t, "Bola de Vôlei", baixos.Data[0].Nome)

	pagina, err := f.produtos.Listar(ctx, dto.ProdutoFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), pagina.Total)
	assert.Equal(t, 2, pagina.TotalPages)
	assert.Len(t, pagina.Data, 1)
}

func TestProduto_AtualizarPrecoGravaHistorico(t *testing.T) {
	f := newFixture(t)
	p := f.produto(t, 0, "Skate", "250.00", 5, 1)
	ctx := context.Background()

	novo := decimal.RequireFromString("279.90")
	resp, err := f.produtos.Atualizar(ctx, p.ID, dto.AtualizarProdutoRequest{Preco: &novo})
	require.NoError(t, err)
	assert.Equal(t, "279.90", resp.Preco.StringFixed(2))

	nome := "Skate Street"
	_, err = f.produtos.Atualizar(ctx, p.ID, dto.AtualizarProdutoRequest{Nome: &nome})
	require.NoError(t, err)

	hist, total, err := f.produtos.ListarHistoricoPrecos(ctx, p.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, hist, 1)
	assert.Equal(t, "250.00", hist[0].PrecoAntes.StringFixed(2))
	assert.Equal(t, "279.90", hist[0].PrecoDepois.StringFixed(2))

	zero := decimal.Zero
	_, err = f.produtos.Atualizar(ctx, p.ID, dto.AtualizarProdutoRequest{Preco: &zero})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestProduto_RemoverComPedidoConflita(t *testing.T) {
	f := newFixture(t)
	p := f.produto(t, 0, "Patins", "400.00", 5, 1)
	livre := f.produto(t, 0, "Capacete", "150.00", 5, 1)
	ctx := context.Background()

	_, err := f.pedidos.CriarPedido(ctx, pedidoReq(1, "400.00", "PIX", linha{p.ID, 1}))
	require.NoError(t, err)

	err = f.produtos.Remover(ctx, p.ID)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	require.NoError(t, f.produtos.Remover(ctx, livre.ID))
	err = f.produtos.Remover(ctx, livre.ID)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestProduto_AjustarEstoque(t *testing.T) {
	f := newFixture(t)
	p := f.produto(t, 0, "Halter 5kg", "60.00", 10, 3)
	admin := uint(1)
	ctx := context.Background()

	t.Run("reposição", func(t *testing.T) {
		resp, err := f.produtos.AjustarEstoque(ctx, p.ID, &admin, dto.AjustarEstoqueRequest{Delta: 5, Motivo: "chegada de lote"})
		require.NoError(t, err)
		assert.Equal(t, "reposicao", resp.Movimento.Tipo)
		assert.Equal(t, 10, resp.Movimento.EstoqueAntes)
		assert.Equal(t, 15, resp.Movimento.EstoqueDepois)
		assert.Nil(t, resp.Alerta)
	})

	t.Run("saída que atinge o mínimo gera alerta", func(t *testing.T) {
		resp, err := f.produtos.AjustarEstoque(ctx, p.ID, &admin, dto.AjustarEstoqueRequest{Delta: -12, Motivo: "avaria"})
		require.NoError(t, err)
		assert.Equal(t, "ajuste_manual", resp.Movimento.Tipo)
		assert.Equal(t, 3, resp.Movimento.EstoqueDepois)
		require.NotNil(t, resp.Alerta)
		assert.Contains(t, resp.Alerta.Mensagem, "Estoque atual: 3, Estoque mínimo: 3")
	})

	t.Run("saída maior que o estoque", func(t *testing.T) {
		_, err := f.produtos.AjustarEstoque(ctx, p.ID, &admin, dto.AjustarEstoqueRequest{Delta: -4, Motivo: "avaria"})
		var stockErr *service.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, 3, stockErr.Disponivel)
		assert.Equal(t, 4, stockErr.Solicitado)
		assert.Equal(t, 3, f.estoque(t, p.ID))
	})

	t.Run("produto inexistente", func(t *testing.T) {
		_, err := f.produtos.AjustarEstoque(ctx, 999, &admin, dto.AjustarEstoqueRequest{Delta: 1, Motivo: "teste"})
		assert.Equal(t, service.KindNotFound, service.KindOf(err))
	})

	t.Run("delta zero", func(t *testing.T) {
		_, err := f.produtos.AjustarEstoque(ctx, p.ID, &admin, dto.AjustarEstoqueRequest{Delta: 0, Motivo: "nada"})
		assert.Equal(t, service.KindValidation, service.KindOf(err))
	})

	movs, err := f.produtos.ListarMovimentos(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
	assert.Equal(t, int64(2), f.count(t, &model.MovimentoEstoque{}))
	assert.Equal(t, int64(1), f.count(t, &model.AlertaEstoque{}))
}
