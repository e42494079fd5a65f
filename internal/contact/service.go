// internal/contact/service.go
package contact

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"html/template"

	apperrors "careers-backend/internal/common/errors"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/models"
	"careers-backend/internal/notify"
)

var relayTemplate = template.Must(template.New("contact").Parse(`
<h3>Nouvelle demande de contact</h3>
<p><b>Nom :</b> {{.FirstName}} {{.LastName}}</p>
<p><b>Email :</b> {{.Email}}</p>
<p><b>Téléphone :</b> {{.PhoneOrDefault}}</p>
<p><b>Sujet :</b> {{.Subject}}</p>
<p><b>Message :</b><br/>{{.Message}}</p>
`))

// Service persists contact-form submissions and relays them to the HR inbox.
// Persistence is authoritative; the relay email is best effort and its
// failure is only logged, the submitter still gets a success.
type Service struct {
	db        *sql.DB
	mail      notify.MailTransport
	recipient string
	logger    logger.Logger
}

func NewService(db *sql.DB, mail notify.MailTransport, recipient string, log logger.Logger) *Service {
	return &Service{db: db, mail: mail, recipient: recipient, logger: log}
}

func (s *Service) Submit(ctx context.Context, msg models.ContactMessage) error {
	if msg.FirstName == "" || msg.LastName == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return apperrors.NewValidationError("firstName, lastName, email, sujet et message sont obligatoires")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages_contact (prenom, nom, email, telephone, sujet, message, date_envoi)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		msg.FirstName, msg.LastName, msg.Email, nullablePhone(msg.Phone), msg.Subject, msg.Message,
	)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("insert contact message: %w", err))
	}

	s.relay(ctx, msg)
	return nil
}

func (s *Service) relay(ctx context.Context, msg models.ContactMessage) {
	if s.mail == nil || s.recipient == "" {
		return
	}

	phone := msg.Phone
	if phone == "" {
		phone = "Non précisé"
	}
	var body bytes.Buffer
	err := relayTemplate.Execute(&body, struct {
		models.ContactMessage
		PhoneOrDefault string
	}{msg, phone})
	if err != nil {
		s.logger.WithError(err).Error("contact relay rendering failed", nil)
		return
	}

	subject := fmt.Sprintf("Nouveau message - %s", msg.Subject)
	if err := s.mail.Deliver(ctx, s.recipient, subject, body.String()); err != nil {
		s.logger.WithError(err).Warn("contact relay email failed, message is persisted", map[string]interface{}{
			"email": msg.Email,
		})
	}
}

func nullablePhone(phone string) interface{} {
	if phone == "" {
		return nil
	}
	return phone
}
