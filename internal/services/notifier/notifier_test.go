package services

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/family-hub/internal/lib/smtp"
	"github.com/magabrotheeeer/family-hub/internal/models"
	"github.com/magabrotheeeer/family-hub/internal/rabbitmq"
)

type writeCloser struct{ bytes.Buffer }

func (w *writeCloser) Close() error { return nil }

type ClientMock struct {
	mock.Mock
	data writeCloser
}

func (m *ClientMock) Mail(from string) error { return m.Called(from).Error(0) }
func (m *ClientMock) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *ClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	return &m.data, args.Error(0)
}
func (m *ClientMock) Quit() error  { return m.Called().Error(0) }
func (m *ClientMock) Close() error { return m.Called().Error(0) }

type TransportMock struct {
	mock.Mock
	client *ClientMock
}

func (m *TransportMock) Connect() (smtp.Client, error) {
	args := m.Called()
	if m.client == nil {
		return nil, args.Error(0)
	}
	return m.client, args.Error(0)
}

func (m *TransportMock) GetSMTPUser() string { return "noreply@familyhub.app" }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestNotifierService_SendSubscriptionExpired(t *testing.T) {
	client := new(ClientMock)
	client.On("Mail", "noreply@familyhub.app").Return(nil).Once()
	client.On("Rcpt", "alice@example.com").Return(nil).Once()
	client.On("Data").Return(nil).Once()
	client.On("Quit").Return(nil).Once()

	transport := &TransportMock{client: client}
	transport.On("Connect").Return(nil).Once()

	svc := NewNotifierService(transport, newNoopLogger())

	event := models.SubscriptionExpiredEvent{
		UserUID:   "uid-1",
		Email:     "alice@example.com",
		Username:  "alice",
		ExpiredAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Actions: []models.ExpiryAction{
			{GroupID: 10, DowngradeRole: false},
			{GroupID: 20, DowngradeRole: true},
		},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, svc.SendSubscriptionExpired(body))

	sent := client.data.String()
	assert.Contains(t, sent, "To: alice@example.com")
	assert.Contains(t, sent, "alice")
	assert.Contains(t, sent, "10.03.2026")
	client.AssertExpectations(t)
	transport.AssertExpectations(t)
}

func TestNotifierService_SendSubscriptionExpired_BadPayload(t *testing.T) {
	transport := &TransportMock{}
	svc := NewNotifierService(transport, newNoopLogger())

	err := svc.SendSubscriptionExpired([]byte("not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, rabbitmq.ErrBadMessage)
	transport.AssertNotCalled(t, "Connect")
}
