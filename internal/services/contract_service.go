package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pushpam22priya/contract-management-sub000/internal/logging"
	"github.com/pushpam22priya/contract-management-sub000/internal/repository"
	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// ContractService is the contract workflow engine. It owns the lifecycle
// status transitions and the reviewer/approver bookkeeping, persisting
// through a ContractStore collaborator.
//
// Every mutation is a whole-collection read-modify-write: load, locate the
// target by id, validate, mutate, save. Preconditions are checked before
// anything is mutated, so a failed operation never corrupts stored state.
// With the default store semantics two concurrent operations on the same
// contract race and the last writer wins; when optimistic locking is
// enabled (and the store supports it) the loser gets a conflict result
// instead.
type ContractService struct {
	store       repository.ContractStore
	notifier    Notifier
	logger      *logging.Logger
	optimistic  bool
	transitions metric.Int64Counter
}

// NewContractService creates a new ContractService. optimisticLocking only
// takes effect when the store implements VersionedContractStore.
func NewContractService(store repository.ContractStore, notifier Notifier, logger *logging.Logger, optimisticLocking bool) *ContractService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	transitions, err := otel.Meter("contract-workflow").Int64Counter(
		"contract.workflow.transitions",
		metric.WithDescription("Count of contract workflow operations that mutated a contract"),
	)
	if err != nil && logger != nil {
		logger.Warn("failed to create transition counter", "error", err)
	}
	return &ContractService{
		store:       store,
		notifier:    notifier,
		logger:      logger,
		optimistic:  optimisticLocking,
		transitions: transitions,
	}
}

// CreateContractInput carries the caller-supplied fields of a new contract.
type CreateContractInput struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	ClientName   string            `json:"client_name"`
	Category     string            `json:"category"`
	Value        string            `json:"value"`
	TemplateID   string            `json:"template_id"`
	TemplateName string            `json:"template_name"`
	StartDate    *time.Time        `json:"start_date"`
	EndDate      *time.Time        `json:"end_date"`
	CreatedBy    string            `json:"created_by"`
	Content      string            `json:"content"`
	TemplateData []byte            `json:"template_data"`
	FieldValues  map[string]string `json:"field_values"`
}

// CreateContract stores a new contract in draft status. The id and creation
// timestamp are assigned here; the contract is prepended so listings come
// out most-recent-first.
func (s *ContractService) CreateContract(ctx context.Context, input CreateContractInput) Result {
	contracts, revision, err := s.load(ctx)
	if err != nil {
		return s.loadFailure("create contract", err)
	}

	now := time.Now().UTC()
	contract := models.Contract{
		ID:           uuid.New().String(),
		Title:        input.Title,
		Description:  input.Description,
		ClientName:   input.ClientName,
		Category:     input.Category,
		Value:        input.Value,
		TemplateID:   input.TemplateID,
		TemplateName: input.TemplateName,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       models.StatusDraft,
		CreatedBy:    input.CreatedBy,
		Content:      input.Content,
		TemplateData: input.TemplateData,
		FieldValues:  input.FieldValues,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	contracts = append([]models.Contract{contract}, contracts...)
	if err := s.save(ctx, contracts, revision); err != nil {
		return s.saveFailure("create contract", err)
	}

	s.recordTransition(ctx, "create")
	res := succeed("Contract created successfully")
	res.Contract = &contracts[0]
	return res
}

// SubmitForReview moves a draft into the review/approval stage, building
// the pending reviewer list and the approver sub-record.
func (s *ContractService) SubmitForReview(ctx context.Context, contractID string, reviewers []string, approver string) Result {
	if len(reviewers) == 0 {
		return fail(ErrValidation, "At least one reviewer is required")
	}

	res := s.mutate(ctx, contractID, "submit_for_review", "submit contract for review", func(c *models.Contract) Result {
		c.Status = models.StatusReviewApproval
		c.Reviewers = make([]models.Reviewer, 0, len(reviewers))
		for _, email := range reviewers {
			c.Reviewers = append(c.Reviewers, models.Reviewer{
				Email:  email,
				Status: models.ReviewerStatusPending,
			})
		}
		c.ReviewStatus = models.ReviewStatusPending
		if approver != "" {
			c.Approver = &models.Approver{Email: approver, Status: models.ApproverStatusPending}
			c.ApprovalStatus = models.ApprovalStatusPending
		} else {
			c.Approver = nil
			c.ApprovalStatus = ""
		}
		return succeed("Contract submitted for review and approval")
	})

	if res.Success {
		recipients := append([]string{}, reviewers...)
		recipients = append(recipients, approver)
		s.notify(ctx, contractID, "Contract review requested",
			fmt.Sprintf("You have been asked to review contract %q.", res.Contract.Title),
			recipients...)
	}
	return res
}

// MarkAsReviewed records a single reviewer's completed review and
// recomputes the review summary.
func (s *ContractService) MarkAsReviewed(ctx context.Context, contractID, reviewerEmail string) Result {
	var allDone bool
	res := s.mutate(ctx, contractID, "mark_as_reviewed", "record review", func(c *models.Contract) Result {
		if len(c.Reviewers) == 0 {
			return fail(ErrNoReviewersAssigned, "No reviewers are assigned to this contract")
		}
		idx := -1
		for i := range c.Reviewers {
			if c.Reviewers[i].Email == reviewerEmail {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fail(ErrNotAssignedReviewer, "You are not an assigned reviewer for this contract")
		}

		now := time.Now().UTC()
		c.Reviewers[idx].Status = models.ReviewerStatusReviewed
		c.Reviewers[idx].ReviewedAt = &now

		if c.AllReviewersDone() {
			allDone = true
			c.ReviewStatus = models.ReviewStatusReviewed
			return succeed("All reviews are complete. The contract is ready for approval.")
		}
		c.ReviewStatus = models.ReviewStatusInReview
		return succeed("Your review has been recorded")
	})

	if res.Success && allDone && res.Contract.Approver != nil {
		s.notify(ctx, contractID, "Contract ready for approval",
			fmt.Sprintf("All reviews of contract %q are complete.", res.Contract.Title),
			res.Contract.Approver.Email)
	}
	return res
}

// SubmitForFurtherReview appends additional reviewers as pending entries
// and resets the review summary to in_review, even when every earlier
// reviewer had already finished.
//
// The engine does not de-duplicate against reviewers already on the list;
// callers are expected to pre-filter.
func (s *ContractService) SubmitForFurtherReview(ctx context.Context, contractID string, additionalReviewers []string, submittedBy string) Result {
	if len(additionalReviewers) == 0 {
		return fail(ErrValidation, "At least one reviewer is required")
	}

	res := s.mutate(ctx, contractID, "submit_for_further_review", "submit for further review", func(c *models.Contract) Result {
		for _, email := range additionalReviewers {
			c.Reviewers = append(c.Reviewers, models.Reviewer{
				Email:  email,
				Status: models.ReviewerStatusPending,
			})
		}
		c.ReviewStatus = models.ReviewStatusInReview
		return succeed("Contract submitted for further review")
	})

	if res.Success {
		s.notify(ctx, contractID, "Contract review requested",
			fmt.Sprintf("%s has asked you to review contract %q.", submittedBy, res.Contract.Title),
			additionalReviewers...)
	}
	return res
}

// ApproveContract moves a fully reviewed contract to the signature stage.
//
// The supplied approver identity only controls whether the approver
// sub-record is stamped: approval itself succeeds regardless of who calls
// it, and there is no finality guard, so approving an already approved (or
// even signed) contract succeeds again.
func (s *ContractService) ApproveContract(ctx context.Context, contractID, approverEmail string) Result {
	res := s.mutate(ctx, contractID, "approve", "approve contract", func(c *models.Contract) Result {
		if len(c.Reviewers) > 0 && !c.AllReviewersDone() {
			return fail(ErrReviewersIncomplete, "All reviewers must complete their review before approval")
		}
		if c.Approver != nil && approverEmail != "" && c.Approver.Email == approverEmail {
			now := time.Now().UTC()
			c.Approver.Status = models.ApproverStatusApproved
			c.Approver.ApprovedAt = &now
		}
		c.Status = models.StatusWaitingForSignature
		c.ApprovalStatus = models.ApprovalStatusApproved
		return succeed("Contract approved and waiting for signature")
	})

	if res.Success {
		s.notify(ctx, contractID, "Contract approved",
			fmt.Sprintf("Contract %q was approved and is waiting for signature.", res.Contract.Title),
			res.Contract.CreatedBy)
	}
	return res
}

// RequestModification files an audit-logged rejection: the request is
// appended (never merged with earlier ones), the review sub-state is
// cleared and the contract reverts to draft so the workflow can restart.
func (s *ContractService) RequestModification(ctx context.Context, contractID, requestedBy string, role models.ParticipantRole, comments string) Result {
	if strings.TrimSpace(comments) == "" {
		return fail(ErrValidation, "Comments are required for a modification request")
	}
	if !role.Valid() {
		return fail(ErrValidation, "Role must be reviewer or approver")
	}

	res := s.mutate(ctx, contractID, "request_modification", "record modification request", func(c *models.Contract) Result {
		c.ModificationRequests = append(c.ModificationRequests, models.ModificationRequest{
			RequestedBy: requestedBy,
			Role:        role,
			Comments:    comments,
			RequestedAt: time.Now().UTC(),
		})
		c.Status = models.StatusDraft
		c.ReviewStatus = models.ReviewStatusChangesRequested
		c.Reviewers = nil
		c.Approver = nil
		c.ApprovalStatus = ""
		return succeed("Modification request recorded")
	})

	if res.Success {
		s.notify(ctx, contractID, "Changes requested",
			fmt.Sprintf("%s requested changes to contract %q: %s", requestedBy, res.Contract.Title, comments),
			res.Contract.CreatedBy)
	}
	return res
}

// SignContract records the signature artifact and moves the contract to
// signed. Signing is only valid from waiting_for_signature; the derived
// active/expiring/expired statuses come from date comparison on read
// paths, never from the engine.
func (s *ContractService) SignContract(ctx context.Context, contractID, signer, signatureImage string) Result {
	res := s.mutate(ctx, contractID, "sign", "sign contract", func(c *models.Contract) Result {
		if c.Status != models.StatusWaitingForSignature {
			return fail(ErrValidation, "Contract is not waiting for signature")
		}
		now := time.Now().UTC()
		c.Signer = signer
		c.SignatureImage = signatureImage
		c.SignedAt = &now
		c.Status = models.StatusSigned
		return succeed("Contract signed successfully")
	})

	if res.Success {
		s.notify(ctx, contractID, "Contract signed",
			fmt.Sprintf("Contract %q was signed by %s.", res.Contract.Title, signer),
			res.Contract.CreatedBy)
	}
	return res
}

// UpdateContractXfdf stores the annotation overlay produced by the
// external document viewer. The blob is opaque to the engine.
func (s *ContractService) UpdateContractXfdf(ctx context.Context, contractID, xfdf string) Result {
	return s.mutate(ctx, contractID, "update_xfdf", "update annotations", func(c *models.Contract) Result {
		c.Xfdf = xfdf
		return succeed("Contract annotations updated")
	})
}

// UpdateContractInput carries the editable fields of a draft contract.
type UpdateContractInput struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	ClientName   string            `json:"client_name"`
	Category     string            `json:"category"`
	Value        string            `json:"value"`
	StartDate    *time.Time        `json:"start_date"`
	EndDate      *time.Time        `json:"end_date"`
	Content      string            `json:"content"`
	TemplateData []byte            `json:"template_data"`
	FieldValues  map[string]string `json:"field_values"`
}

// UpdateContract edits the descriptive fields and document payload of a
// draft. Contracts that have entered the workflow cannot be edited.
func (s *ContractService) UpdateContract(ctx context.Context, contractID string, input UpdateContractInput) Result {
	return s.mutate(ctx, contractID, "update", "update contract", func(c *models.Contract) Result {
		if c.Status != models.StatusDraft {
			return fail(ErrValidation, "Only draft contracts can be edited")
		}
		c.Title = input.Title
		c.Description = input.Description
		c.ClientName = input.ClientName
		c.Category = input.Category
		c.Value = input.Value
		c.StartDate = input.StartDate
		c.EndDate = input.EndDate
		c.Content = input.Content
		c.TemplateData = input.TemplateData
		c.FieldValues = input.FieldValues
		return succeed("Contract updated")
	})
}

// DeleteContract removes a contract from the collection. This is the admin
// cleanup path; it sits outside the state machine and works regardless of
// status.
func (s *ContractService) DeleteContract(ctx context.Context, contractID string) Result {
	contracts, revision, err := s.load(ctx)
	if err != nil {
		return s.loadFailure("delete contract", err)
	}
	idx := indexOf(contracts, contractID)
	if idx < 0 {
		return fail(ErrNotFound, "Contract not found")
	}
	contracts = append(contracts[:idx], contracts[idx+1:]...)
	if err := s.save(ctx, contracts, revision); err != nil {
		return s.saveFailure("delete contract", err)
	}
	s.recordTransition(ctx, "delete")
	return succeed("Contract deleted")
}

// GetContractByID returns a single contract, or repository.ErrNotFound.
func (s *ContractService) GetContractByID(ctx context.Context, contractID string) (*models.Contract, error) {
	contracts, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(contracts, contractID)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	c := contracts[idx]
	return &c, nil
}

// ListContracts returns every contract, most-recent-first.
func (s *ContractService) ListContracts(ctx context.Context) ([]models.Contract, error) {
	return s.store.LoadAll(ctx)
}

// GetContractsForReview returns the contracts awaiting action from the
// given identity: status review_approval and the identity is either an
// assigned reviewer or the approver. Pure read, no mutation.
func (s *ContractService) GetContractsForReview(ctx context.Context, identity string) ([]models.Contract, error) {
	contracts, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	queue := make([]models.Contract, 0)
	for _, c := range contracts {
		if c.Status != models.StatusReviewApproval {
			continue
		}
		if c.HasReviewer(identity) || (c.Approver != nil && c.Approver.Email == identity) {
			queue = append(queue, c)
		}
	}
	return queue, nil
}

// mutate is the shared read-modify-write cycle: load the collection,
// locate the target, apply the operation, persist. apply sees the contract
// in place and must not touch stored state on failure.
func (s *ContractService) mutate(ctx context.Context, contractID, operation, failureVerb string, apply func(*models.Contract) Result) Result {
	contracts, revision, err := s.load(ctx)
	if err != nil {
		return s.loadFailure(failureVerb, err)
	}
	idx := indexOf(contracts, contractID)
	if idx < 0 {
		return fail(ErrNotFound, "Contract not found")
	}

	contract := &contracts[idx]
	res := apply(contract)
	if !res.Success {
		return res
	}
	contract.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, contracts, revision); err != nil {
		return s.saveFailure(failureVerb, err)
	}

	s.recordTransition(ctx, operation)
	res.Contract = contract
	return res
}

func (s *ContractService) load(ctx context.Context) ([]models.Contract, int64, error) {
	if vs, ok := s.store.(repository.VersionedContractStore); ok && s.optimistic {
		return vs.LoadAllVersioned(ctx)
	}
	contracts, err := s.store.LoadAll(ctx)
	return contracts, -1, err
}

func (s *ContractService) save(ctx context.Context, contracts []models.Contract, revision int64) error {
	if vs, ok := s.store.(repository.VersionedContractStore); ok && s.optimistic && revision >= 0 {
		return vs.SaveAllIfRevision(ctx, contracts, revision)
	}
	return s.store.SaveAll(ctx, contracts)
}

func (s *ContractService) loadFailure(failureVerb string, err error) Result {
	if s.logger != nil {
		s.logger.Error("failed to load contract collection", "error", err)
	}
	return fail(ErrStoreWrite, fmt.Sprintf("Failed to %s. Please try again.", failureVerb))
}

func (s *ContractService) saveFailure(failureVerb string, err error) Result {
	if errors.Is(err, repository.ErrRevisionMismatch) {
		return fail(ErrConflict, "The contract was modified concurrently. Please retry.")
	}
	if s.logger != nil {
		s.logger.Error("failed to save contract collection", "error", err)
	}
	return fail(ErrStoreWrite, fmt.Sprintf("Failed to %s. Please try again.", failureVerb))
}

func (s *ContractService) notify(ctx context.Context, contractID, subject, body string, recipients ...string) {
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}
		n := Notification{Recipient: recipient, Subject: subject, Body: body, ContractID: contractID}
		if err := s.notifier.Notify(ctx, n); err != nil && s.logger != nil {
			s.logger.Warn("notification delivery failed", "recipient", recipient, "error", err)
		}
	}
}

func (s *ContractService) recordTransition(ctx context.Context, operation string) {
	if s.transitions == nil {
		return
	}
	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func indexOf(contracts []models.Contract, id string) int {
	for i := range contracts {
		if contracts[i].ID == id {
			return i
		}
	}
	return -1
}
