package services

import (
	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// ErrorKind classifies why a workflow operation failed. An empty kind means
// the operation succeeded.
type ErrorKind string

const (
	ErrNone                ErrorKind = ""
	ErrNotFound            ErrorKind = "not_found"
	ErrNoReviewersAssigned ErrorKind = "no_reviewers_assigned"
	ErrNotAssignedReviewer ErrorKind = "not_assigned_reviewer"
	ErrReviewersIncomplete ErrorKind = "reviewers_incomplete"
	ErrValidation          ErrorKind = "validation"
	ErrStoreWrite          ErrorKind = "store_write"
	ErrConflict            ErrorKind = "conflict"
)

// Result is the uniform return value of every mutating workflow operation:
// a success flag, a human-readable message and, on success, the updated
// contract. Callers branch on Success and display Message; Kind is there
// for programmatic handling (HTTP status mapping, retries).
type Result struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Contract *models.Contract `json:"contract,omitempty"`
	Kind     ErrorKind        `json:"error_kind,omitempty"`
}

func succeed(message string) Result {
	return Result{Success: true, Message: message}
}

func fail(kind ErrorKind, message string) Result {
	return Result{Success: false, Message: message, Kind: kind}
}
