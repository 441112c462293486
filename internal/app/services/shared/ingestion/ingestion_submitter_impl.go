// Package ingestion hands forms back to the initial ingestion pipeline over RabbitMQ.
package ingestion

import (
	"context"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Message is the payload the ingestion pipeline consumes.
type Message struct {
	ID          string    `json:"id"`
	FormName    string    `json:"form_name"`
	FormData    string    `json:"form_data"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// publisher is the part of *amqp.Channel the submitter uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type rabbitMQSubmitter struct {
	ch        publisher
	queueName string
	confirms  <-chan amqp.Confirmation
	mu        sync.Mutex
	Log       *zap.Logger
}

// NewRabbitMQSubmitter declares the durable ingestion queue and puts the channel in
// confirm mode, so Submit only succeeds once the broker has taken the form.
func NewRabbitMQSubmitter(conn *amqp.Connection, queueName string, logger *zap.Logger) (contracts.IngestionSubmitter, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &rabbitMQSubmitter{
		ch:        ch,
		queueName: queueName,
		confirms:  ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		Log:       logger,
	}, nil
}

func (s *rabbitMQSubmitter) Submit(ctx context.Context, formName string, formData []byte) error {
	requestID := utils.RequestIDFrom(ctx)
	s.Log.Info("rabbitMQSubmitter.Submit called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormNameKey, formName),
		zap.String(constvars.LoggingQueueNameKey, s.queueName),
	)

	body, err := json.Marshal(Message{
		ID:          uuid.NewString(),
		FormName:    formName,
		FormData:    string(formData),
		SubmittedAt: time.Now(),
	})
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	// one publish in flight at a time so each confirmation matches its publish
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    formName,
	}
	if err := s.ch.PublishWithContext(ctx, "", s.queueName, false, false, msg); err != nil {
		s.Log.Error("rabbitMQSubmitter.Submit error publishing",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, formName),
			zap.Error(err),
		)
		return exceptions.ErrIngestionPublish(err, s.queueName)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			s.Log.Error("rabbitMQSubmitter.Submit broker nacked form",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingFormNameKey, formName),
			)
			return exceptions.ErrIngestionNack(formName)
		}
	case <-ctx.Done():
		return exceptions.ErrIngestionPublish(ctx.Err(), s.queueName)
	}

	s.Log.Info("rabbitMQSubmitter.Submit succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormNameKey, formName),
	)
	return nil
}
