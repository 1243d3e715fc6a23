// Package storefront is the Go client the shop front end uses to talk to the
// order API: catalog lookups and checkout of a local cart.
package storefront

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lojaesportiva/internal/apierror"
	"lojaesportiva/internal/carrinho"
	"lojaesportiva/internal/dto"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the order API.
type APIError struct {
	Status int
	Detail string
	Causa  string
}

func (e *APIError) Error() string {
	if e.Causa != "" {
		return fmt.Sprintf("api %d: %s (%s)", e.Status, e.Detail, e.Causa)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Detail)
}

type Client struct {
	http *resty.Client
}

// New builds a client for baseURL. token is the customer's access token.
func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

func (c *Client) ObterProduto(ctx context.Context, id uint) (*dto.ProdutoResponse, error) {
	var out dto.ProdutoResponse
	var apiErr apierror.APIError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		SetPathParam("id", strconv.FormatUint(uint64(id), 10)).
		Get("/v1/produtos/{id}")
	if err != nil {
		return nil, fmt.Errorf("obter produto %d: %w", id, err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Detail: apiErr.Detail}
	}
	return &out, nil
}

// AdicionarAoCarrinho looks the product up so the cart line carries the
// current catalog price.
func (c *Client) AdicionarAoCarrinho(ctx context.Context, cart *carrinho.Carrinho, produtoID uint, quantidade int, tamanho, cor string) (carrinho.Item, error) {
	p, err := c.ObterProduto(ctx, produtoID)
	if err != nil {
		return carrinho.Item{}, err
	}
	return cart.AdicionarItem(p.ID, quantidade, p.Preco, tamanho, cor)
}

// FinalizarCompra submits the cart as an order. The cart is cleared only on
// 201; on any failure it is left as it was. The idempotency key belongs to
// the cart, so resubmitting an unchanged cart after a lost response or a 5xx
// returns the order already created instead of placing a second one.
func (c *Client) FinalizarCompra(ctx context.Context, cart *carrinho.Carrinho, clienteID uint, formaPagamento string) (*dto.PedidoCriadoResponse, error) {
	req, err := cart.ParaPedido(clienteID, formaPagamento)
	if err != nil {
		return nil, err
	}

	var out dto.PedidoCriadoResponse
	var apiErr apierror.APIError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", *req.ChaveIdempotencia).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/pedidos")
	if err != nil {
		return nil, fmt.Errorf("finalizar compra: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, &APIError{Status: resp.StatusCode(), Detail: apiErr.Detail, Causa: apiErr.Causa}
	}

	cart.Limpar()
	return &out, nil
}
