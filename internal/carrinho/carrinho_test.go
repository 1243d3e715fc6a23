package carrinho

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preco(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAdicionarItem_AgrupaMesmaVariacao(t *testing.T) {
	c := New()

	a, err := c.AdicionarItem(7, 1, preco("50.00"), "M", "azul")
	require.NoError(t, err)
	b, err := c.AdicionarItem(7, 2, preco("45.00"), " M ", "azul")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 3, b.Quantidade)
	assert.Equal(t, "45.00", b.PrecoUnitario.StringFixed(2), "latest catalog price wins")

	_, err = c.AdicionarItem(7, 1, preco("45.00"), "G", "azul")
	require.NoError(t, err)
	assert.Len(t, c.Itens(), 2)
	assert.Equal(t, 4, c.TotalItens())
	assert.Equal(t, "180.00", c.ValorTotal().StringFixed(2))

	_, err = c.AdicionarItem(7, 0, preco("45.00"), "", "")
	assert.ErrorIs(t, err, ErrQuantidadeInvalida)
}

func TestAtualizarERemover(t *testing.T) {
	c := New()
	it, _ := c.AdicionarItem(1, 2, preco("10"), "", "")
	outro, _ := c.AdicionarItem(2, 1, preco("5"), "", "")

	require.NoError(t, c.AtualizarQuantidade(it.ID, 5))
	assert.Equal(t, 6, c.TotalItens())

	require.NoError(t, c.AtualizarQuantidade(it.ID, 0))
	require.Len(t, c.Itens(), 1)
	assert.Equal(t, outro.ID, c.Itens()[0].ID)

	assert.ErrorIs(t, c.Remover("nao-existe"), ErrItemNaoEncontrado)
	assert.ErrorIs(t, c.AtualizarQuantidade("nao-existe", 3), ErrItemNaoEncontrado)
	require.NoError(t, c.Remover(outro.ID))
	assert.Empty(t, c.Itens())
}

func TestItensDevolveCopia(t *testing.T) {
	c := New()
	_, _ = c.AdicionarItem(1, 1, preco("10"), "", "")

	itens := c.Itens()
	itens[0].Quantidade = 99
	assert.Equal(t, 1, c.TotalItens())
}

func TestParaPedido(t *testing.T) {
	c := New()
	_, err := c.ParaPedido(1, "PIX")
	assert.ErrorIs(t, err, ErrCarrinhoVazio)

	_, _ = c.AdicionarItem(7, 6, preco("50.00"), "M", "")
	_, _ = c.AdicionarItem(9, 1, preco("19.99"), "", "")

	req, err := c.ParaPedido(3, "PIX")
	require.NoError(t, err)
	assert.Equal(t, uint(3), *req.ClienteID)
	assert.Equal(t, "PIX", req.FormaPagamento)
	assert.Equal(t, "319.99", req.ValorTotal.StringFixed(2))
	require.Len(t, req.Itens, 2)
	assert.Equal(t, uint(7), *req.Itens[0].ProdutoID)
	assert.Equal(t, 6, *req.Itens[0].Quantidade)
	require.NotNil(t, req.ChaveIdempotencia)
	assert.NotEmpty(t, *req.ChaveIdempotencia)
}

func TestParaPedido_ChaveDeIdempotencia(t *testing.T) {
	c := New()
	item, _ := c.AdicionarItem(7, 2, preco("50.00"), "", "")

	chave := func() string {
		t.Helper()
		req, err := c.ParaPedido(1, "PIX")
		require.NoError(t, err)
		return *req.ChaveIdempotencia
	}

	primeira := chave()
	assert.Equal(t, primeira, chave(), "unchanged cart keeps its key")

	require.NoError(t, c.AtualizarQuantidade(item.ID, 3))
	segunda := chave()
	assert.NotEqual(t, primeira, segunda)

	_, _ = c.AdicionarItem(9, 1, preco("10"), "", "")
	terceira := chave()
	assert.NotEqual(t, segunda, terceira)

	c.Limpar()
	_, _ = c.AdicionarItem(7, 1, preco("50.00"), "", "")
	assert.NotEqual(t, terceira, chave())
}

func TestConcorrente(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.AdicionarItem(1, 1, preco("1"), "", "")
		}()
	}
	wg.Wait()
	assert.Len(t, c.Itens(), 1)
	assert.Equal(t, 50, c.TotalItens())
}
