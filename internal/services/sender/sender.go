// Package services содержит бизнес-логику отправки писем рассылки:
// подтверждение подписки и напоминание о неподтверждённой заявке.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// SenderService отправляет письма рассылки через SMTP-транспорт.
type SenderService struct {
	transport     smtp.TransportInterface
	publicBaseURL string
	log           *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, publicBaseURL string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport:     transport,
		publicBaseURL: publicBaseURL,
		log:           log,
	}
}

// SendConfirmEmail отправляет письмо подтверждения подписки.
// Тело сообщения — models.ConfirmEmail из очереди.
func (s *SenderService) SendConfirmEmail(body []byte) error {
	var message models.ConfirmEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Confirmez votre inscription à la newsletter"
	bodyText := fmt.Sprintf(`Bonjour,

Merci de votre inscription à notre newsletter.

Pour confirmer votre adresse, cliquez sur le lien suivant :
%s/newsletter/confirm?token=%s

Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.`,
		s.publicBaseURL, message.Token)

	return s.sendEmail(to, subject, bodyText)
}

// SendReminderEmail отправляет напоминание о неподтверждённой подписке.
func (s *SenderService) SendReminderEmail(body []byte) error {
	var message models.ConfirmEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Votre inscription à la newsletter attend confirmation"
	bodyText := fmt.Sprintf(`Bonjour,

Votre inscription à notre newsletter n'a pas encore été confirmée.

Pour la finaliser, cliquez sur le lien suivant :
%s/newsletter/confirm?token=%s

Sans confirmation, votre adresse ne recevra aucun envoi.`,
		s.publicBaseURL, message.Token)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message", sl.Err(err))
		return err
	}
	if err := wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err := client.Quit(); err != nil {
		s.log.Warn("failed to quit SMTP session", sl.Err(err))
	}
	s.log.Info("email sent", slog.String("to", strings.Join(to, ";")), slog.String("subject", subject))
	return nil
}
