package rabbitmq

import (
	"errors"
	"fmt"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(_ uint64, _ bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}
func (a *ackRecorder) Reject(_ uint64, _ bool) error { return nil }

func TestProcessDelivery(t *testing.T) {
	tests := []struct {
		name        string
		handlerErr  error
		wantAck     bool
		wantNack    bool
		wantRequeue bool
	}{
		{
			name:    "success is acked",
			wantAck: true,
		},
		{
			name:        "transient failure is requeued",
			handlerErr:  errors.New("smtp connection refused"),
			wantNack:    true,
			wantRequeue: true,
		},
		{
			name:        "unprocessable message is rejected without requeue",
			handlerErr:  fmt.Errorf("error unmarshalling message: %w", ErrBadMessage),
			wantNack:    true,
			wantRequeue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ackRecorder{}
			delivery := amqp.Delivery{Acknowledger: rec, DeliveryTag: 1, Body: []byte("{}")}

			processDelivery(delivery, func([]byte) error { return tt.handlerErr })

			assert.Equal(t, tt.wantAck, rec.acked)
			assert.Equal(t, tt.wantNack, rec.nacked)
			if tt.wantNack {
				assert.Equal(t, tt.wantRequeue, rec.requeue)
			}
		})
	}
}
