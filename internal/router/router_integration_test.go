//go:build integration

package router_test

// Runs the storefront suite against real PostgreSQL and Redis containers, where
// checkout relies on row locks instead of SQLite's single writer.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lojaesportiva/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func postgresEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("loja_test"),
		tcPostgres.WithUsername("loja"),
		tcPostgres.WithPassword("loja"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return setupEnv(t, db, rdb)
}

func TestIntegration_FluxoDeCompra(t *testing.T) {
	exerciseCheckoutFlow(t, postgresEnv(t))
}

func TestIntegration_CompraConcorrente(t *testing.T) {
	exerciseConcurrentCheckout(t, postgresEnv(t), 40, 10)
}

func TestIntegration_HealthComRedis(t *testing.T) {
	env := postgresEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "connected", body["redis"])
	assert.Equal(t, float64(0), body["dlq"])
}

func TestIntegration_SchemaPatchesIdempotentes(t *testing.T) {
	env := postgresEnv(t)
	require.NoError(t, infra.RunMigrations(env.db))

	var n int64
	require.NoError(t, env.db.Raw(`SELECT count(*) FROM pg_indexes WHERE indexname = 'idx_alertas_estoque_pendentes'`).Scan(&n).Error)
	assert.Equal(t, int64(1), n)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := env.db.WithContext(ctx).Exec(`INSERT INTO pagamentos (pedido_id, valor_pago, forma_pagamento, status, data_pagamento) VALUES (999999, 0, 'PIX', 'PENDENTE', NOW())`).Error
	assert.Error(t, err)
}
