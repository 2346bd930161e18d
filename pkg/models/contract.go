// Package models defines the domain models for the contract management service
package models

import (
	"time"
)

// ContractStatus represents where a contract sits in its lifecycle
type ContractStatus string

const (
	StatusDraft               ContractStatus = "draft"
	StatusReviewApproval      ContractStatus = "review_approval"
	StatusWaitingForSignature ContractStatus = "waiting_for_signature"
	StatusSigned              ContractStatus = "signed"
	StatusActive              ContractStatus = "active"
	StatusExpiring            ContractStatus = "expiring"
	StatusExpired             ContractStatus = "expired"
)

// ReviewStatus summarizes the progress of the review round
type ReviewStatus string

const (
	ReviewStatusPending          ReviewStatus = "pending"
	ReviewStatusInReview         ReviewStatus = "in_review"
	ReviewStatusReviewed         ReviewStatus = "reviewed"
	ReviewStatusChangesRequested ReviewStatus = "changes_requested"
)

// ApprovalStatus tracks the approver's decision on the contract as a whole
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
)

// ReviewerStatus is the per-reviewer progress marker
type ReviewerStatus string

const (
	ReviewerStatusPending  ReviewerStatus = "pending"
	ReviewerStatusReviewed ReviewerStatus = "reviewed"
)

// ApproverStatus is the approver sub-record progress marker
type ApproverStatus string

const (
	ApproverStatusPending  ApproverStatus = "pending"
	ApproverStatusApproved ApproverStatus = "approved"
)

// ParticipantRole identifies which hat a workflow participant is wearing
// when they file a modification request.
type ParticipantRole string

const (
	RoleReviewer ParticipantRole = "reviewer"
	RoleApprover ParticipantRole = "approver"
)

// Valid reports whether the role is one of the closed set.
func (r ParticipantRole) Valid() bool {
	return r == RoleReviewer || r == RoleApprover
}

// Reviewer is a single entry in a contract's review round.
type Reviewer struct {
	Email      string         `json:"email"`
	Status     ReviewerStatus `json:"status"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
}

// Approver is the single identity allowed to move the contract to the
// signature stage once all reviewers are done.
type Approver struct {
	Email      string         `json:"email"`
	Status     ApproverStatus `json:"status"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
}

// ModificationRequest is an audit-logged rejection event. The list on a
// contract only ever grows; requests are never merged or truncated.
type ModificationRequest struct {
	RequestedBy string          `json:"requested_by"`
	Role        ParticipantRole `json:"role"`
	Comments    string          `json:"comments"`
	RequestedAt time.Time       `json:"requested_at"`
}

// Contract is the central entity of the service.
//
// The document payload fields (Content, TemplateData/FieldValues, Xfdf) are
// mutually exclusive by construction: exactly one representation is
// authoritative for a given contract, but the type system does not enforce it.
type Contract struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ClientName   string `json:"client_name,omitempty"`
	Category     string `json:"category,omitempty"`
	Value        string `json:"value,omitempty"`
	TemplateID   string `json:"template_id,omitempty"`
	TemplateName string `json:"template_name,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Status    ContractStatus `json:"status"`
	CreatedBy string         `json:"created_by"`

	// Signature artifacts, set when the contract is signed
	Signer         string     `json:"signer,omitempty"`
	SignatureImage string     `json:"signature_image,omitempty"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`

	// Review/approval sub-state. Present from submit-for-review onward,
	// cleared when a modification is requested.
	Reviewers            []Reviewer            `json:"reviewers,omitempty"`
	Approver             *Approver             `json:"approver,omitempty"`
	ReviewStatus         ReviewStatus          `json:"review_status,omitempty"`
	ApprovalStatus       ApprovalStatus        `json:"approval_status,omitempty"`
	ModificationRequests []ModificationRequest `json:"modification_requests,omitempty"`

	// Document payload
	Content      string            `json:"content,omitempty"`
	TemplateData []byte            `json:"template_data,omitempty"`
	FieldValues  map[string]string `json:"field_values,omitempty"`
	Xfdf         string            `json:"xfdf,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasReviewer reports whether the given identity is in the reviewer list.
func (c *Contract) HasReviewer(email string) bool {
	for _, r := range c.Reviewers {
		if r.Email == email {
			return true
		}
	}
	return false
}

// AllReviewersDone reports whether every assigned reviewer has finished.
// It is false when no reviewers are assigned.
func (c *Contract) AllReviewersDone() bool {
	if len(c.Reviewers) == 0 {
		return false
	}
	for _, r := range c.Reviewers {
		if r.Status != ReviewerStatusReviewed {
			return false
		}
	}
	return true
}

// ContractView is a Contract decorated with the date-derived display status.
// It is what read endpoints return; the derived status is never persisted.
type ContractView struct {
	Contract
	DisplayStatus ContractStatus `json:"display_status"`
}

// NewContractView builds a view of the contract as of now.
func NewContractView(c Contract, now time.Time) ContractView {
	return ContractView{Contract: c, DisplayStatus: DisplayStatus(&c, now)}
}
