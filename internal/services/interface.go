package services

import "context"

// Notification is a workflow event to be delivered to a single recipient.
type Notification struct {
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	ContractID string `json:"contract_id,omitempty"`
}

// Notifier delivers workflow notifications. Delivery is best-effort: the
// engine logs failures and never fails an operation because of one.
type Notifier interface {
	// Notify delivers a single notification.
	Notify(ctx context.Context, n Notification) error
}
