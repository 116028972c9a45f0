// Package services содержит отправку уведомлений по событиям из очереди.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/lib/smtp"
	"github.com/magabrotheeeer/family-hub/internal/models"
	"github.com/magabrotheeeer/family-hub/internal/rabbitmq"
)

// NotifierService отправляет письма пользователям по событиям подписки.
type NotifierService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(transport smtp.TransportInterface, log *slog.Logger) *NotifierService {
	return &NotifierService{
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionExpired обрабатывает событие завершения подписки:
// письмо пользователю о потере административных полномочий в группах.
func (s *NotifierService) SendSubscriptionExpired(body []byte) error {
	var event models.SubscriptionExpiredEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w: %w", rabbitmq.ErrBadMessage, err)
	}

	var lockedGroups int
	for _, action := range event.Actions {
		if !action.DowngradeRole {
			lockedGroups++
		}
	}

	subject := "Ваша подписка на Family Hub завершена"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\n"+
		"Ваша подписка завершена %s.\n"+
		"Группы без другого активного администратора переведены в режим чтения: %d.\n\n"+
		"Чтобы вернуть полный доступ, продлите подписку.",
		event.Username, event.ExpiredAt.Format("02.01.2006"), lockedGroups)

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

func (s *NotifierService) sendEmail(to []string, subject, bodyText string) error {
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
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			s.log.Warn("failed to quit SMTP session", sl.Err(quitErr))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	s.log.Info("notification email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
