// internal/notify/transport.go
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	commonaws "careers-backend/internal/common/aws"
	"careers-backend/internal/common/config"
)

// MailTransport delivers one email. Implementations are chosen by
// configuration; callers never care which provider is behind it.
type MailTransport interface {
	Deliver(ctx context.Context, to, subject, htmlBody string) error
}

// SESTransport sends mail through Amazon SES.
type SESTransport struct {
	client *commonaws.SESClient
	sender string
}

func NewSESTransport(client *commonaws.SESClient, sender string) *SESTransport {
	return &SESTransport{client: client, sender: sender}
}

func (t *SESTransport) Deliver(ctx context.Context, to, subject, htmlBody string) error {
	_, err := t.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(t.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data:    awssdk.String(subject),
				Charset: awssdk.String("UTF-8"),
			},
			Body: &sestypes.Body{
				Html: &sestypes.Content{
					Data:    awssdk.String(htmlBody),
					Charset: awssdk.String("UTF-8"),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", to, err)
	}
	return nil
}

// SMTPTransport sends mail through a plain SMTP relay. It exists for local
// and on-premise deployments where SES is not available.
type SMTPTransport struct {
	addr   string
	auth   smtp.Auth
	sender string
}

func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	var auth smtp.Auth
	if cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	}
	return &SMTPTransport{
		addr:   fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port),
		auth:   auth,
		sender: cfg.Sender,
	}
}

func (t *SMTPTransport) Deliver(ctx context.Context, to, subject, htmlBody string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", t.sender)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(t.addr, t.auth, t.sender, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// SMSSender publishes one short message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// SNSSMSSender delivers SMS through Amazon SNS direct publish.
type SNSSMSSender struct {
	client *commonaws.SNSClient
}

func NewSNSSMSSender(client *commonaws.SNSClient) *SNSSMSSender {
	return &SNSSMSSender{client: client}
}

func (s *SNSSMSSender) Send(ctx context.Context, phone, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: awssdk.String(phone),
		Message:     awssdk.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", phone, err)
	}
	return nil
}
