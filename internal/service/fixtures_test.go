package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/infra"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"
	"lojaesportiva/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fakeVerifier stores passwords as "hash:<senha>".
type fakeVerifier struct{}

func (fakeVerifier) Hash(senha string) (string, error) { return "hash:" + senha, nil }

func (fakeVerifier) Compare(hash, senha string) error {
	if hash != "hash:"+senha {
		return errors.New("mismatch")
	}
	return nil
}

type fixture struct {
	db         *gorm.DB
	pedidos    service.PedidoService
	produtos   service.ProdutoService
	alertas    service.AlertaService
	cliente    model.Cliente
	categoria  model.Categoria
	fornecedor model.Fornecedor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{db: db}
	f.cliente = model.Cliente{ID: 1, Nome: "Ana Souza", CPF: "12345678901", Email: "ana@example.com", SenhaHash: "hash:segredo", Role: model.RoleCustomer}
	require.NoError(t, db.Create(&f.cliente).Error)
	f.categoria = model.Categoria{Nome: "Futebol", Slug: "futebol"}
	require.NoError(t, db.Create(&f.categoria).Error)
	f.fornecedor = model.Fornecedor{Nome: "Esportes SA", CNPJ: "11222333000181"}
	require.NoError(t, db.Create(&f.fornecedor).Error)

	produtoRepo := repository.NewProdutoRepository(db)
	alertaRepo := repository.NewAlertaRepository(db)
	f.pedidos = service.NewPedidoService(
		repository.NewPedidoRepository(db),
		produtoRepo,
		repository.NewClienteRepository(db),
		repository.NewPagamentoRepository(db),
		alertaRepo,
		time.Second,
	)
	f.produtos = service.NewProdutoService(
		produtoRepo,
		repository.NewCategoriaRepository(db),
		repository.NewFornecedorRepository(db),
		repository.NewMovimentoEstoqueRepository(db),
		repository.NewHistoricoPrecoRepository(db),
		alertaRepo,
	)
	f.alertas = service.NewAlertaService(alertaRepo)
	return f
}

// produto inserts a product. id 0 lets the database assign one.
func (f *fixture) produto(t *testing.T, id uint, nome, preco string, estoque, minimo int) model.Produto {
	t.Helper()
	p := model.Produto{
		ID:            id,
		Nome:          nome,
		Preco:         decimal.RequireFromString(preco),
		Estoque:       estoque,
		EstoqueMinimo: minimo,
		CategoriaID:   f.categoria.ID,
		FornecedorID:  f.fornecedor.ID,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) estoque(t *testing.T, produtoID uint) int {
	t.Helper()
	var p model.Produto
	require.NoError(t, f.db.First(&p, produtoID).Error)
	return p.Estoque
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

// linha is a (productId, quantity) pair.
type linha struct {
	produto    uint
	quantidade int
}

func pedidoReq(clienteID uint, total, forma string, linhas ...linha) dto.CriarPedidoRequest {
	req := dto.CriarPedidoRequest{ClienteID: &clienteID, FormaPagamento: forma}
	if total != "" {
		v := decimal.RequireFromString(total)
		req.ValorTotal = &v
	}
	for _, l := range linhas {
		p, q := l.produto, l.quantidade
		req.Itens = append(req.Itens, dto.ItemPedidoRequest{ProdutoID: &p, Quantidade: &q})
	}
	return req
}

func comChave(req dto.CriarPedidoRequest, chave string) dto.CriarPedidoRequest {
	req.ChaveIdempotencia = &chave
	return req
}
