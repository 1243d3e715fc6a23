package router

import (
	"context"
	"time"

	"lojaesportiva/internal/config"
	"lojaesportiva/internal/handler"
	"lojaesportiva/internal/infra"
	"lojaesportiva/internal/middleware"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"
	"lojaesportiva/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// Background helpers started here stop when ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.RateLimiter(1000, time.Minute) // 1000 req/min per IP
	loginLimiter := middleware.LoginRateLimiter()
	go middleware.RunPurger(ctx.Done(), apiLimiter, loginLimiter)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	// ── Infrastructure ───────────────────────────────────────────────────────
	verifier := infra.NewBcryptVerifier(cfg.BcryptCost)

	// ── Repositories ─────────────────────────────────────────────────────────
	clienteRepo := repository.NewClienteRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	fornecedorRepo := repository.NewFornecedorRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	pagamentoRepo := repository.NewPagamentoRepository(db)
	alertaRepo := repository.NewAlertaRepository(db)
	movimentoRepo := repository.NewMovimentoEstoqueRepository(db)
	historicoRepo := repository.NewHistoricoPrecoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(clienteRepo, verifier, cfg)
	clienteSvc := service.NewClienteService(clienteRepo, verifier)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	fornecedorSvc := service.NewFornecedorService(fornecedorRepo)
	produtoSvc := service.NewProdutoService(produtoRepo, categoriaRepo, fornecedorRepo, movimentoRepo, historicoRepo, alertaRepo)
	pedidoSvc := service.NewPedidoService(pedidoRepo, produtoRepo, clienteRepo, pagamentoRepo, alertaRepo,
		time.Duration(cfg.CheckoutLockTimeoutMS)*time.Millisecond)
	alertaSvc := service.NewAlertaService(alertaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	fornecedoresH := handler.NewFornecedoresHandler(fornecedorSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	alertasH := handler.NewAlertasHandler(alertaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Storefront catalog and sign-up need no token
	r.POST("/v1/clientes", clientesH.Cadastrar)
	r.GET("/v1/produtos", produtosH.Listar)
	r.GET("/v1/produtos/:id", produtosH.ObterPorID)
	r.GET("/v1/categorias", categoriasH.Listar)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleCustomer)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Customers act on their own orders; handlers check ownership
		pedidos := v1.Group("/pedidos", anyRole)
		{
			pedidos.POST("", pedidosH.Criar)
			pedidos.GET("", pedidosH.Listar)
			pedidos.GET("/:id", pedidosH.Obter)
			pedidos.GET("/:id/recibo", pedidosH.Recibo)
			pedidos.DELETE("/:id", pedidosH.Cancelar)
		}
		v1.PATCH("/pedidos/:id/status", adminOnly, pedidosH.AtualizarStatus)

		clientes := v1.Group("/clientes", anyRole)
		{
			clientes.GET("/:id", clientesH.Obter)
			clientes.PUT("/:id", clientesH.Atualizar)
			clientes.PUT("/:id/senha", clientesH.AlterarSenha)
		}
		v1.DELETE("/clientes/:id", adminOnly, clientesH.Remover)

		prods := v1.Group("/produtos", adminOnly)
		{
			prods.POST("", produtosH.Criar)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.DELETE("/:id", produtosH.Remover)
			prods.PATCH("/:id/estoque", produtosH.AjustarEstoque)
			prods.GET("/:id/movimentos", produtosH.ListarMovimentos)
			prods.GET("/:id/historico-precos", produtosH.ListarHistoricoPrecos)
			prods.GET("/:id/alertas", alertasH.PorProduto)
		}

		categorias := v1.Group("/categorias", adminOnly)
		{
			categorias.POST("", categoriasH.Criar)
			categorias.PUT("/:id", categoriasH.Atualizar)
			categorias.DELETE("/:id", categoriasH.Remover)
		}

		forn := v1.Group("/fornecedores", adminOnly)
		{
			forn.POST("", fornecedoresH.Criar)
			forn.GET("", fornecedoresH.Listar)
			forn.GET("/:id", fornecedoresH.ObterPorID)
			forn.PUT("/:id", fornecedoresH.Atualizar)
			forn.DELETE("/:id", fornecedoresH.Remover)
		}

		alertas := v1.Group("/alertas", adminOnly)
		{
			alertas.GET("", alertasH.Listar)
			alertas.GET("/nao-visualizados", alertasH.NaoVisualizados)
			alertas.PATCH("/visualizar-todos", alertasH.MarcarTodosVisualizados)
			alertas.PATCH("/:id/visualizar", alertasH.MarcarVisualizado)
			alertas.DELETE("/:id", alertasH.Remover)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
