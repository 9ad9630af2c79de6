package queue

import (
	"encoding/json"

	"github.com/openconf/confreg/internal/config"
	"github.com/openconf/confreg/internal/mailer"
	"go.uber.org/zap"
)

type MailConsumerContext struct {
	Config *config.Config
	Logger *zap.SugaredLogger
	Mailer mailer.Client
}

type MailJobPayload struct {
	ToEmail       string `json:"to_email"`
	ToName        string `json:"to_name"`
	ReferenceCode string `json:"reference_code"`
	// Retry count of this job, incremented on each redelivery we requeue ourselves.
	Retry int `json:"retry"`
}

func PublishConfirmationEmail(r *RabbitMQ, payload MailJobPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return r.Publish(QueueRegistrationEmail, body)
}

// StartMailConsumer drains the registration email queue and sends each
// confirmation mail. Malformed payloads are dropped, send failures are
// requeued up to MAX_QUEUE_RETRY times.
func StartMailConsumer(mcc MailConsumerContext, r *RabbitMQ) error {
	deliveries, err := r.Consume(QueueRegistrationEmail)
	if err != nil {
		return err
	}

	for delivery := range deliveries {
		var payload MailJobPayload
		if err := json.Unmarshal(delivery.Body, &payload); err != nil {
			mcc.Logger.Errorf("Failed to unmarshal mail job payload, dropping message: %v", err)
			if err := r.Nack(delivery, false); err != nil {
				mcc.Logger.Errorf("Failed to nack message: %v", err)
			}
			continue
		}

		_, err := mcc.Mailer.Send(mailer.CONFIRMATION_TEMPLATE, payload.ToName, payload.ToEmail, mailer.ConfirmationData{
			FullName:      payload.ToName,
			ReferenceCode: payload.ReferenceCode,
		})
		if err != nil {
			if payload.Retry+1 >= MAX_QUEUE_RETRY {
				mcc.Logger.Errorf("Giving up on confirmation mail to %s after %d attempts: %v", payload.ToEmail, MAX_QUEUE_RETRY, err)
				if err := r.Nack(delivery, false); err != nil {
					mcc.Logger.Errorf("Failed to nack message: %v", err)
				}
				continue
			}

			payload.Retry++
			if err := PublishConfirmationEmail(r, payload); err != nil {
				mcc.Logger.Errorf("Failed to requeue mail job for %s: %v", payload.ToEmail, err)
			}
			if err := r.Ack(delivery); err != nil {
				mcc.Logger.Errorf("Failed to ack message: %v", err)
			}
			continue
		}

		mcc.Logger.Infof("Confirmation mail sent to %s", payload.ToEmail)
		if err := r.Ack(delivery); err != nil {
			mcc.Logger.Errorf("Failed to ack message: %v", err)
		}
	}

	return nil
}
