package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/magabrotheeeer/course-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
	written strings.Builder
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	return &writeCloser{sb: &m.written}, args.Error(1)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

type writeCloser struct{ sb *strings.Builder }

func (w *writeCloser) Write(p []byte) (int, error) { return w.sb.Write(p) }
func (w *writeCloser) Close() error                { return nil }

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSender_SendConfirmEmail(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	svc := NewSenderService(transport, "https://plateforme.example.com", NewNoopLogger())

	transport.On("GetSMTPUser").Return("noreply@plateforme.example.com")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@plateforme.example.com").Return(nil).Once()
	client.On("Rcpt", "alice@example.com").Return(nil).Once()
	client.On("Data").Return(nil, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	body, _ := json.Marshal(models.ConfirmEmail{Email: "alice@example.com", Token: "tok-123"})
	require.NoError(t, svc.SendConfirmEmail(body))

	msg := client.written.String()
	assert.Contains(t, msg, "To: alice@example.com")
	assert.Contains(t, msg, "https://plateforme.example.com/newsletter/confirm?token=tok-123")
	assert.Contains(t, msg, "Confirmez votre inscription")

	transport.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestSender_SendReminderEmail(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	svc := NewSenderService(transport, "https://plateforme.example.com", NewNoopLogger())

	transport.On("GetSMTPUser").Return("noreply@plateforme.example.com")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", mock.Anything).Return(nil).Once()
	client.On("Rcpt", "bob@example.com").Return(nil).Once()
	client.On("Data").Return(nil, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	body, _ := json.Marshal(models.ConfirmEmail{Email: "bob@example.com", Token: "tok-456"})
	require.NoError(t, svc.SendReminderEmail(body))

	assert.Contains(t, client.written.String(), "attend confirmation")
}

func TestSender_ConnectError(t *testing.T) {
	transport := new(MockTransport)
	svc := NewSenderService(transport, "https://plateforme.example.com", NewNoopLogger())

	transport.On("GetSMTPUser").Return("noreply@plateforme.example.com")
	transport.On("Connect").Return(nil, errors.New("connection refused")).Once()

	body, _ := json.Marshal(models.ConfirmEmail{Email: "x@y.z", Token: "t"})
	assert.Error(t, svc.SendConfirmEmail(body))
}

func TestSender_BadPayload(t *testing.T) {
	svc := NewSenderService(new(MockTransport), "https://plateforme.example.com", NewNoopLogger())
	assert.Error(t, svc.SendConfirmEmail([]byte("not json")))
}
