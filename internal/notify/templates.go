// internal/notify/templates.go
package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"careers-backend/internal/models"
)

const (
	subjectAccepted = "Votre candidature a été retenue"
	subjectRejected = "Réponse à votre candidature"
)

var acceptedTemplate = template.Must(template.New("accepted").Parse(`
<div style="font-family: Arial, sans-serif; color: #222; padding: 20px;">
  <h2 style="color: #2e7d32;">Bonjour {{.Name}},</h2>
  <p>Nous avons le plaisir de vous informer que votre candidature pour le poste de <b>{{.Role}}</b> a été <b>acceptée</b>.</p>
  <p>Notre équipe vous contactera prochainement afin de planifier un entretien ou finaliser la suite du processus.</p>
  <p>Nous vous remercions pour votre confiance et l'intérêt que vous portez à <b>{{.Company}}</b>.</p>
  <br/>
  <p>Cordialement,<br><b>L'équipe RH - {{.Company}}</b></p>
</div>
`))

var rejectedTemplate = template.Must(template.New("rejected").Parse(`
<div style="font-family: Arial, sans-serif; color: #222; padding: 20px;">
  <h2 style="color: #d32f2f;">Bonjour {{.Name}},</h2>
  <p>Nous vous remercions d'avoir postulé pour le poste de <b>{{.Role}}</b> chez <b>{{.Company}}</b>.</p>
  <p>Après étude de votre dossier, nous sommes au regret de vous informer que votre candidature n'a pas été retenue pour cette fois.</p>
  <p>Nous vous encourageons toutefois à postuler à d'autres opportunités futures correspondant à votre profil.</p>
  <br/>
  <p>Cordialement,<br><b>L'équipe RH - {{.Company}}</b></p>
</div>
`))

type templateData struct {
	Name    string
	Role    string
	Company string
}

// renderOutcome produces the subject and HTML body for a decision email.
// Only terminal statuses have a message; anything else is an error because
// the lifecycle controller should never emit one.
func renderOutcome(status models.LifecycleStatus, name, role, company string) (string, string, error) {
	data := templateData{Name: name, Role: role, Company: company}
	var (
		subject string
		tmpl    *template.Template
	)
	switch status {
	case models.StatusAccepted:
		subject, tmpl = subjectAccepted, acceptedTemplate
	case models.StatusRejected:
		subject, tmpl = subjectRejected, rejectedTemplate
	default:
		return "", "", fmt.Errorf("no outcome message for status %q", status)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render outcome template: %w", err)
	}
	return subject, body.String(), nil
}

// smsOutcome is the short-message rendition of a decision, sent only when
// the SMS leg is enabled.
func smsOutcome(status models.LifecycleStatus, name, role, company string) string {
	if status == models.StatusAccepted {
		return fmt.Sprintf("Bonjour %s, votre candidature pour le poste de %s chez %s a été acceptée. Notre équipe vous contactera prochainement.", name, role, company)
	}
	return fmt.Sprintf("Bonjour %s, votre candidature pour le poste de %s chez %s n'a pas été retenue cette fois. Merci de votre intérêt.", name, role, company)
}
