package models

import (
	"time"
)

// PaymentProof is the manual bank-transfer evidence a restaurant submits to
// upgrade. The screenshot itself is stored elsewhere; only its URL lives here.
type PaymentProof struct {
	ID              string     `json:"id"`
	PayerName       string     `json:"payer_name"`
	Reference       string     `json:"reference"`
	Amount          int        `json:"amount"`
	ScreenshotURL   string     `json:"screenshot_url"`
	PlanType        string     `json:"plan_type"`
	UploadedAt      time.Time  `json:"uploaded_at"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovalReason  string     `json:"approval_reason,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}
