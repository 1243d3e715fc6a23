package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"lojaesportiva/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	// AlertaIDs lists the stock alerts summarised in Body, for log correlation.
	AlertaIDs []uint `json:"alerta_ids,omitempty"`
}

// Sender delivers a plain-text email. Satisfied by *infra.Mailer.
type Sender interface {
	Configured() bool
	Send(to []string, subject, body string) error
}

// EmailWorker processes email jobs from QueueEmail. Every send goes through
// the circuit breaker so a dead SMTP relay is not hammered.
type EmailWorker struct {
	sender Sender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(sender Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: payload inválido: %v: %w", err, ErrPermanent)
	}
	if len(payload.To) == 0 {
		return fmt.Errorf("email_worker: sem destinatários: %w", ErrPermanent)
	}
	if !w.sender.Configured() {
		log.Warn().Strs("to", payload.To).Msg("email_worker: SMTP não configurado, e-mail descartado")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.sender.Send(payload.To, payload.Subject, payload.Body)
	})
	if err != nil {
		return fmt.Errorf("email_worker: envio falhou: %w", err)
	}
	log.Info().
		Strs("to", payload.To).
		Interface("alerta_ids", payload.AlertaIDs).
		Msg("email_worker: alerta de estoque enviado")
	return nil
}
