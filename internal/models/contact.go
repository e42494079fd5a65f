// internal/models/contact.go
package models

import "time"

// ContactMessage is one entry from the public contact form, persisted in
// messages_contact and relayed to the HR inbox.
type ContactMessage struct {
	ID        int64     `json:"id,omitempty"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}
