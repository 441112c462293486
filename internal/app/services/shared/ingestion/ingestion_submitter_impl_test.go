package ingestion

import (
	"context"
	"errors"
	"mobileforms-service/internal/pkg/exceptions"
	"testing"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	published []amqp.Publishing
	confirms  chan amqp.Confirmation
	ack       bool
	err       error
}

func (f *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: f.ack}
	return nil
}

func newTestSubmitter(ack bool, err error) (*fakePublisher, *rabbitMQSubmitter) {
	fake := &fakePublisher{confirms: make(chan amqp.Confirmation, 1), ack: ack, err: err}
	return fake, &rabbitMQSubmitter{
		ch:        fake,
		queueName: "mobileforms_ingestion_queue",
		confirms:  fake.confirms,
		Log:       zap.NewNop(),
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Confirmed", func(t *testing.T) {
		fake, submitter := newTestSubmitter(true, nil)
		require.NoError(t, submitter.Submit(ctx, "err123.xml", []byte("<form/>")))
		require.Len(t, fake.published, 1)
		assert.Equal(t, amqp.Persistent, fake.published[0].DeliveryMode)

		var message Message
		require.NoError(t, json.Unmarshal(fake.published[0].Body, &message))
		assert.Equal(t, "err123.xml", message.FormName)
		assert.Equal(t, "<form/>", message.FormData)
	})

	t.Run("Nacked", func(t *testing.T) {
		_, submitter := newTestSubmitter(false, nil)
		err := submitter.Submit(ctx, "err123.xml", []byte("<form/>"))
		assert.True(t, errors.Is(err, exceptions.ErrStorageFailure))
	})

	t.Run("Publish Error", func(t *testing.T) {
		_, submitter := newTestSubmitter(true, errors.New("channel closed"))
		err := submitter.Submit(ctx, "err123.xml", []byte("<form/>"))
		assert.True(t, errors.Is(err, exceptions.ErrStorageFailure))
	})
}
