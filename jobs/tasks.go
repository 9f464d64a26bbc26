package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotifyOrderStatus is the task type for order status emails.
	TaskNotifyOrderStatus = "notify:order-status"
	// TaskTariffsWarmup is the task type for the nightly tariff cache reload.
	TaskTariffsWarmup = "tariffs:warmup"
)

// NotifyOrderStatusPayload describes an order status change to mail out.
type NotifyOrderStatusPayload struct {
	OrderID     int64   `json:"order_id"`
	NumeroOrden string  `json:"numero_orden"`
	Email       string  `json:"email"`
	Nombre      string  `json:"nombre"`
	Estado      string  `json:"estado"`
	TotalPagar  float64 `json:"total_pagar"`
}

// NewNotifyOrderStatusTask constructs an Asynq task.
func NewNotifyOrderStatusTask(payload NotifyOrderStatusPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyOrderStatus, data), nil
}

// NewTariffsWarmupTask constructs the cron task; it carries no payload.
func NewTariffsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTariffsWarmup, nil)
}

// Mailer sends a plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewNotifyOrderStatusHandler processes TaskNotifyOrderStatus tasks. The
// email text is composed here so the API never blocks on SMTP.
func NewNotifyOrderStatusHandler(logger *slog.Logger, mailer Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload NotifyOrderStatusPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		subject := fmt.Sprintf("Orden %s: %s", payload.NumeroOrden, estadoLabel(payload.Estado))
		body := fmt.Sprintf(
			"Hola %s,\n\nSu orden %s ahora se encuentra en estado %s.\nTotal a pagar: $%.2f\n\nMr. Paquetes",
			payload.Nombre, payload.NumeroOrden, estadoLabel(payload.Estado), payload.TotalPagar,
		)
		if mailer == nil {
			logger.Info("order status notification (no mailer configured)",
				slog.String("to", payload.Email), slog.String("subject", subject))
			return nil
		}
		if err := mailer.Send(ctx, payload.Email, subject, body); err != nil {
			logger.Error("send order status email", slog.Any("error", err))
			return err
		}
		return nil
	}
}

// TariffWarmer reloads the tariff cache from the database.
type TariffWarmer interface {
	Warm(ctx context.Context) error
}

// NewTariffsWarmupHandler processes TaskTariffsWarmup tasks.
func NewTariffsWarmupHandler(logger *slog.Logger, warmer TariffWarmer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := warmer.Warm(ctx); err != nil {
			logger.Error("tariff warmup", slog.Any("error", err))
			return err
		}
		logger.Info("tariff cache warmed")
		return nil
	}
}

func estadoLabel(estado string) string {
	switch estado {
	case "En_proceso":
		return "En proceso"
	case "Completada":
		return "Completada"
	case "Cancelada":
		return "Cancelada"
	}
	return estado
}
