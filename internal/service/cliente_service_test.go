package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lojaesportiva/internal/config"
	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/repository"
	"lojaesportiva/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCliente_Cadastro(t *testing.T) {
	f := newFixture(t)
	svc := service.NewClienteService(repository.NewClienteRepository(f.db), fakeVerifier{})
	ctx := context.Background()

	c, err := svc.Criar(ctx, dto.CriarClienteRequest{
		Nome: " Carla Lima ", CPF: "987.654.321-00", Email: "Carla@Example.com ", Senha: "corrida10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Carla Lima", c.Nome)
	assert.Equal(t, "98765432100", c.CPF)
	assert.Equal(t, "carla@example.com", c.Email)
	assert.Equal(t, "customer", c.Role)

	cases := []struct {
		name string
		req  dto.CriarClienteRequest
		kind service.Kind
	}{
		{"CPF repetido", dto.CriarClienteRequest{Nome: "X", CPF: "98765432100", Email: "x@example.com", Senha: "123456"}, service.KindConflict},
		{"e-mail repetido", dto.CriarClienteRequest{Nome: "X", CPF: "11111111111", Email: "ANA@example.com", Senha: "123456"}, service.KindConflict},
		{"CPF curto", dto.CriarClienteRequest{Nome: "X", CPF: "123", Email: "y@example.com", Senha: "123456"}, service.KindValidation},
		{"senha curta", dto.CriarClienteRequest{Nome: "X", CPF: "22222222222", Email: "z@example.com", Senha: "123"}, service.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Criar(ctx, tc.req)
			assert.Equal(t, tc.kind, service.KindOf(err))
		})
	}
}

func TestCliente_AlterarSenha(t *testing.T) {
	f := newFixture(t)
	svc := service.NewClienteService(repository.NewClienteRepository(f.db), fakeVerifier{})
	ctx := context.Background()

	err := svc.AlterarSenha(ctx, f.cliente.ID, dto.AlterarSenhaRequest{SenhaAtual: "errada", NovaSenha: "nova-senha"})
	assert.True(t, errors.Is(err, service.ErrCredenciaisInvalidas))

	require.NoError(t, svc.AlterarSenha(ctx, f.cliente.ID, dto.AlterarSenhaRequest{SenhaAtual: "segredo", NovaSenha: "nova-senha"}))

	auth := service.NewAuthService(repository.NewClienteRepository(f.db), fakeVerifier{}, testConfig())
	_, err = auth.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Senha: "nova-senha"})
	assert.NoError(t, err)
}

func TestCliente_RemoverComPedidos(t *testing.T) {
	f := newFixture(t)
	svc := service.NewClienteService(repository.NewClienteRepository(f.db), fakeVerifier{})
	p := f.produto(t, 0, "Bola", "10.00", 5, 0)
	ctx := context.Background()

	_, err := f.pedidos.CriarPedido(ctx, pedidoReq(1, "10.00", "PIX", linha{p.ID, 1}))
	require.NoError(t, err)

	assert.Equal(t, service.KindConflict, service.KindOf(svc.Remover(ctx, f.cliente.ID)))
	assert.Equal(t, service.KindNotFound, service.KindOf(svc.Remover(ctx, 999)))
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "segredo-de-teste", JWTExpirationHours: 1, JWTRefreshHours: 24}
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testConfig().JWTSecret), nil
	})
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestAuth_Login(t *testing.T) {
	f := newFixture(t)
	svc := service.NewAuthService(repository.NewClienteRepository(f.db), fakeVerifier{}, testConfig())
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: " ANA@example.com", Senha: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, f.cliente.ID, resp.Cliente.ID)

	access := parseClaims(t, resp.AccessToken)
	assert.Equal(t, service.TokenAccess, access["typ"])
	assert.Equal(t, float64(f.cliente.ID), access["cliente_id"])
	assert.Equal(t, "customer", access["role"])
	assert.Equal(t, service.TokenRefresh, parseClaims(t, resp.RefreshToken)["typ"])

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Senha: "errada"})
	assert.True(t, errors.Is(err, service.ErrCredenciaisInvalidas))
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ninguem@example.com", Senha: "segredo"})
	assert.True(t, errors.Is(err, service.ErrCredenciaisInvalidas))
}

func TestAuth_Refresh(t *testing.T) {
	f := newFixture(t)
	svc := service.NewAuthService(repository.NewClienteRepository(f.db), fakeVerifier{}, testConfig())
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Senha: "segredo"})
	require.NoError(t, err)

	renovado, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renovado.AccessToken)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.True(t, errors.Is(err, service.ErrCredenciaisInvalidas), "access token must not refresh")

	_, err = svc.Refresh(ctx, "nao-e-um-jwt")
	assert.True(t, errors.Is(err, service.ErrCredenciaisInvalidas))

	forjado := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"cliente_id": f.cliente.ID, "typ": service.TokenRefresh, "exp": time.Now().Add(time.Hour).Unix(),
	})
	assinado, err := forjado.SignedString([]byte("outro-segredo"))
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, assinado)
	assert.True(t, errors.Is(err, service.ErrCredenciaisInvalidas))
}

func TestAuth_SemSegredo(t *testing.T) {
	f := newFixture(t)
	svc := service.NewAuthService(repository.NewClienteRepository(f.db), fakeVerifier{}, &config.Config{JWTExpirationHours: 1})

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Senha: "segredo"})
	require.Error(t, err)
	assert.Equal(t, service.KindInternal, service.KindOf(err))
}
