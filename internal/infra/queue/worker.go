package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DispatchHandler runs the dispatch described by a payload.
type DispatchHandler interface {
	HandleDispatch(ctx context.Context, payload DispatchPayload) error
}

// Acknowledger is the part of amqp.Delivery the worker needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// ErrPermanent marks a failure that retrying will not fix.
var ErrPermanent = errors.New("permanent dispatch failure")

type Worker struct {
	Channel *amqp.Channel
	Handler DispatchHandler
}

func NewWorker(ch *amqp.Channel, handler DispatchHandler) *Worker {
	return &Worker{
		Channel: ch,
		Handler: handler,
	}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, d.Body, &d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, body []byte, ack Acknowledger) {
	log.Printf("📥 [WORKER] Mensagem Recebida do RabbitMQ")

	var payload DispatchPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.CampaignID == "" {
		log.Printf("❌ [WORKER] Payload inválido: %v", err)
		// Mensagem podre: rejeita sem requeue para não travar a fila.
		ack.Nack(false, false)
		return
	}

	log.Printf("⚙️ [WORKER] Disparando campanha %s (origem: %s)", payload.CampaignID, payload.Origin)

	err := w.Handler.HandleDispatch(ctx, payload)
	switch {
	case err == nil:
		log.Printf("✅ [WORKER] Campanha %s processada", payload.CampaignID)
		ack.Ack(false)
	case errors.Is(err, ErrPermanent):
		log.Printf("❌ [WORKER] Campanha %s rejeitada: %s", payload.CampaignID, err)
		ack.Nack(false, false)
	case ctx.Err() != nil:
		// shutdown no meio do disparo: devolve para outro worker
		ack.Nack(false, true)
	default:
		log.Printf("❌ [WORKER] Erro no disparo da campanha %s: %s", payload.CampaignID, err)
		ack.Nack(false, false)
	}
}
