package models

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)

// Notification records one delivery attempt of a diagnosis result.
type Notification struct {
	ID          string   `json:"id"`
	ApplicantID string   `json:"applicantId"`
	Channels    []string `json:"channels"`
	Status      string   `json:"status"`
	Subject     string   `json:"subject"`
	SentAt      string   `json:"sentAt"`
}
