package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name     string
		contract Contract
		want     ContractStatus
	}{
		{
			name:     "draft is untouched",
			contract: Contract{Status: StatusDraft},
			want:     StatusDraft,
		},
		{
			name:     "review_approval is untouched",
			contract: Contract{Status: StatusReviewApproval, EndDate: ptr(now.Add(-time.Hour))},
			want:     StatusReviewApproval,
		},
		{
			name:     "signed past end date is expired",
			contract: Contract{Status: StatusSigned, EndDate: ptr(now.Add(-24 * time.Hour))},
			want:     StatusExpired,
		},
		{
			name:     "signed within expiring window",
			contract: Contract{Status: StatusSigned, EndDate: ptr(now.Add(10 * 24 * time.Hour))},
			want:     StatusExpiring,
		},
		{
			name: "signed and started is active",
			contract: Contract{
				Status:    StatusSigned,
				StartDate: ptr(now.Add(-48 * time.Hour)),
				EndDate:   ptr(now.Add(365 * 24 * time.Hour)),
			},
			want: StatusActive,
		},
		{
			name: "signed before start date stays signed",
			contract: Contract{
				Status:    StatusSigned,
				StartDate: ptr(now.Add(48 * time.Hour)),
				EndDate:   ptr(now.Add(365 * 24 * time.Hour)),
			},
			want: StatusSigned,
		},
		{
			name:     "signed without dates is active",
			contract: Contract{Status: StatusSigned},
			want:     StatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayStatus(&tt.contract, now))
		})
	}
}

func TestAllReviewersDone(t *testing.T) {
	c := Contract{}
	assert.False(t, c.AllReviewersDone(), "no reviewers means not done")

	c.Reviewers = []Reviewer{
		{Email: "a@example.com", Status: ReviewerStatusReviewed},
		{Email: "b@example.com", Status: ReviewerStatusPending},
	}
	assert.False(t, c.AllReviewersDone())

	c.Reviewers[1].Status = ReviewerStatusReviewed
	assert.True(t, c.AllReviewersDone())
}
