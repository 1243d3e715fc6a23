// Package carrinho holds the storefront's shopping cart. The cart lives on the
// client side; the server only sees it when it is submitted as an order.
package carrinho

import (
	"errors"
	"strings"
	"sync"
	"time"

	"lojaesportiva/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCarrinhoVazio      = errors.New("carrinho vazio")
	ErrItemNaoEncontrado  = errors.New("item não encontrado no carrinho")
	ErrQuantidadeInvalida = errors.New("quantidade deve ser maior que zero")
)

// Item is one cart line. Lines for the same product with a different size or
// colour are kept apart.
type Item struct {
	ID            string
	ProdutoID     uint
	Quantidade    int
	Tamanho       string
	Cor           string
	PrecoUnitario decimal.Decimal
	AdicionadoEm  time.Time
}

func (i Item) Subtotal() decimal.Decimal {
	return i.PrecoUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}

// Carrinho is safe for concurrent use. chave is the idempotency key of the
// pending checkout; it survives resubmissions and is dropped whenever the
// lines change.
type Carrinho struct {
	mu    sync.Mutex
	itens []Item
	chave string
	now   func() time.Time
}

func New() *Carrinho {
	return &Carrinho{now: time.Now}
}

// AdicionarItem adds quantidade units. An existing line with the same product,
// size and colour is topped up instead of duplicated.
func (c *Carrinho) AdicionarItem(produtoID uint, quantidade int, preco decimal.Decimal, tamanho, cor string) (Item, error) {
	if quantidade <= 0 {
		return Item{}, ErrQuantidadeInvalida
	}
	tamanho, cor = strings.TrimSpace(tamanho), strings.TrimSpace(cor)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chave = ""

	for i := range c.itens {
		it := &c.itens[i]
		if it.ProdutoID == produtoID && it.Tamanho == tamanho && it.Cor == cor {
			it.Quantidade += quantidade
			it.PrecoUnitario = preco
			return *it, nil
		}
	}
	it := Item{
		ID:            uuid.NewString(),
		ProdutoID:     produtoID,
		Quantidade:    quantidade,
		Tamanho:       tamanho,
		Cor:           cor,
		PrecoUnitario: preco,
		AdicionadoEm:  c.now(),
	}
	c.itens = append(c.itens, it)
	return it, nil
}

func (c *Carrinho) Remover(itemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remover(itemID)
}

func (c *Carrinho) remover(itemID string) error {
	for i := range c.itens {
		if c.itens[i].ID == itemID {
			c.itens = append(c.itens[:i], c.itens[i+1:]...)
			c.chave = ""
			return nil
		}
	}
	return ErrItemNaoEncontrado
}

// AtualizarQuantidade sets a line's quantity; zero or less removes the line.
func (c *Carrinho) AtualizarQuantidade(itemID string, quantidade int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantidade <= 0 {
		return c.remover(itemID)
	}
	for i := range c.itens {
		if c.itens[i].ID == itemID {
			c.itens[i].Quantidade = quantidade
			c.chave = ""
			return nil
		}
	}
	return ErrItemNaoEncontrado
}

func (c *Carrinho) Limpar() {
	c.mu.Lock()
	c.itens = nil
	c.chave = ""
	c.mu.Unlock()
}

// Itens returns a copy of the lines in insertion order.
func (c *Carrinho) Itens() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.itens))
	copy(out, c.itens)
	return out
}

func (c *Carrinho) TotalItens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.itens {
		n += it.Quantidade
	}
	return n
}

func (c *Carrinho) ValorTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.itens {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ParaPedido builds the checkout request for the current cart. Size and
// colour stay client-side; the order API prices by product. Every call on an
// unchanged cart carries the same idempotency key.
func (c *Carrinho) ParaPedido(clienteID uint, formaPagamento string) (dto.CriarPedidoRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.itens) == 0 {
		return dto.CriarPedidoRequest{}, ErrCarrinhoVazio
	}
	if c.chave == "" {
		c.chave = uuid.NewString()
	}
	chave := c.chave
	req := dto.CriarPedidoRequest{
		ClienteID:         &clienteID,
		Itens:             make([]dto.ItemPedidoRequest, len(c.itens)),
		FormaPagamento:    formaPagamento,
		ChaveIdempotencia: &chave,
	}
	total := decimal.Zero
	for i, it := range c.itens {
		produtoID, qtd := it.ProdutoID, it.Quantidade
		req.Itens[i] = dto.ItemPedidoRequest{ProdutoID: &produtoID, Quantidade: &qtd}
		total = total.Add(it.Subtotal())
	}
	req.ValorTotal = &total
	return req, nil
}
