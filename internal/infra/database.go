package infra

import (
	"fmt"
	"strings"

	"lojaesportiva/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection for dsn, runs AutoMigrate for every
// model and applies the idempotent PostgreSQL patches AutoMigrate cannot
// express.
//
// postgres:// and postgresql:// DSNs use the pgx-backed driver. file: and
// sqlite:// DSNs use SQLite (local development and tests); SQLite is limited
// to one open connection so writers serialize instead of failing with
// SQLITE_BUSY.
func NewDatabase(dsn string) (*gorm.DB, error) {
	dialector, isSQLite, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), false, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(dsn, "sqlite://"))), true, nil
	case strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(sqliteDSN(dsn)), true, nil
	}
	return nil, false, fmt.Errorf("database: unsupported DSN scheme in %q", redactDSN(dsn))
}

// sqliteDSN enforces foreign keys, which SQLite leaves off by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "@"); i > 0 {
		if j := strings.Index(dsn, "://"); j > 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	return dsn
}

// RunMigrations creates or updates all tables. Exported for integration
// tests that open their own connection.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Categoria{},
		&model.Fornecedor{},
		&model.Cliente{},
		&model.Produto{},
		&model.Pedido{},
		&model.ItemPedido{},
		&model.Pagamento{},
		&model.AlertaEstoque{},
		&model.MovimentoEstoque{},
		&model.HistoricoPreco{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := applySchemaPatches(db); err != nil {
			return fmt.Errorf("schema patches: %w", err)
		}
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot
// express. Each statement is guarded so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// notifier polls alerts not yet emailed
		{"partial index alertas_estoque pendentes", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_alertas_estoque_pendentes') THEN
    CREATE INDEX idx_alertas_estoque_pendentes
        ON alertas_estoque (id)
        WHERE notificado_em IS NULL;
  END IF;
END $$`},
		// dashboard lists unseen alerts
		{"partial index alertas_estoque nao visualizados", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_alertas_estoque_nao_visualizados') THEN
    CREATE INDEX idx_alertas_estoque_nao_visualizados
        ON alertas_estoque (data_alerta DESC)
        WHERE visualizado = false;
  END IF;
END $$`},
		{"check pagamentos valor_pago positivo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pagamentos_valor_pago') THEN
    ALTER TABLE pagamentos ADD CONSTRAINT chk_pagamentos_valor_pago CHECK (valor_pago > 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
