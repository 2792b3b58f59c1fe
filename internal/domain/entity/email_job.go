package entity

import "time"

// EmailJob is a queued invoice email with its rendered attachment
type EmailJob struct {
	ID             string     `json:"id"`
	InvoiceID      string     `json:"invoiceId"`
	Recipient      string     `json:"recipient"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
	AttachmentName string     `json:"attachmentName"`
	Attachment     []byte     `json:"-"`
	Language       string     `json:"language"`
	Status         string     `json:"status"`
	Attempts       int        `json:"attempts"`
	LastError      string     `json:"lastError,omitempty"`
	NextAttemptAt  time.Time  `json:"nextAttemptAt"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
