package worker

// Background loop that turns freshly raised stock alerts into email jobs.
// Alerts are marked notified once their job is on the queue; delivery
// failures from there on are the email worker's retry/DLQ business.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lojaesportiva/internal/infra"
	"lojaesportiva/internal/model"

	"github.com/rs/zerolog/log"
)

const alertaBatchSize = 50

type alertaSource interface {
	ListPendentesNotificacao(ctx context.Context, limit int) ([]model.AlertaEstoque, error)
	MarcarNotificado(ctx context.Context, ids []uint, em time.Time) error
}

type emailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// AlertaCronConfig holds all dependencies for the alert notifier.
type AlertaCronConfig struct {
	Alertas       alertaSource
	Queue         emailEnqueuer
	CB            *infra.CircuitBreaker
	Destinatarios []string
	Intervalo     time.Duration
}

// RunAlertaCron ticks every cfg.Intervalo until ctx is cancelled.
func RunAlertaCron(ctx context.Context, cfg AlertaCronConfig) error {
	if cfg.Intervalo <= 0 {
		cfg.Intervalo = time.Minute
	}
	ticker := time.NewTicker(cfg.Intervalo)
	defer ticker.Stop()

	log.Info().Dur("intervalo", cfg.Intervalo).Msg("alerta_cron: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("alerta_cron: shutting down")
			return nil
		case <-ticker.C:
			if _, err := processAlertas(ctx, cfg); err != nil {
				log.Error().Err(err).Msg("alerta_cron: tick failed")
			}
		}
	}
}

// processAlertas enqueues one summary email for the pending batch and
// returns how many alerts it covered.
func processAlertas(ctx context.Context, cfg AlertaCronConfig) (int, error) {
	if len(cfg.Destinatarios) == 0 {
		return 0, nil
	}
	// Nothing would be delivered while the relay is down.
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("alerta_cron: circuit breaker is open, skipping tick")
		return 0, nil
	}

	alertas, err := cfg.Alertas.ListPendentesNotificacao(ctx, alertaBatchSize)
	if err != nil {
		return 0, fmt.Errorf("listar alertas pendentes: %w", err)
	}
	if len(alertas) == 0 {
		return 0, nil
	}

	payload := montarEmailAlertas(cfg.Destinatarios, alertas)
	if err := cfg.Queue.EnqueueEmail(ctx, payload); err != nil {
		return 0, fmt.Errorf("enfileirar e-mail: %w", err)
	}
	if err := cfg.Alertas.MarcarNotificado(ctx, payload.AlertaIDs, time.Now().UTC()); err != nil {
		// Left unmarked, these go out again on the next tick.
		return 0, fmt.Errorf("marcar alertas notificados: %w", err)
	}

	log.Info().Int("count", len(alertas)).Msg("alerta_cron: alertas enfileirados")
	return len(alertas), nil
}

func montarEmailAlertas(to []string, alertas []model.AlertaEstoque) EmailJobPayload {
	var b strings.Builder
	ids := make([]uint, 0, len(alertas))
	b.WriteString("Os seguintes produtos atingiram o estoque mínimo:\n\n")
	for _, a := range alertas {
		ids = append(ids, a.ID)
		fmt.Fprintf(&b, "- [%s] %s\n", a.DataAlerta.Format("02/01/2006 15:04"), a.Mensagem)
	}
	return EmailJobPayload{
		To:        to,
		Subject:   fmt.Sprintf("Alerta de estoque: %d ocorrência(s)", len(alertas)),
		Body:      b.String(),
		AlertaIDs: ids,
	}
}
