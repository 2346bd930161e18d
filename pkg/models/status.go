package models

import "time"

// ExpiringWindow is how close to the end date a signed contract is
// reported as expiring.
const ExpiringWindow = 30 * 24 * time.Hour

// DisplayStatus derives the status a signed contract should be displayed
// with by comparing its dates against now. The workflow engine never
// persists the derived value; the stored status stays "signed" and read
// paths call this on the way out.
//
// Contracts that have not reached the signature stage are displayed with
// their stored status unchanged.
func DisplayStatus(c *Contract, now time.Time) ContractStatus {
	switch c.Status {
	case StatusSigned, StatusActive, StatusExpiring, StatusExpired:
	default:
		return c.Status
	}

	if c.EndDate != nil {
		if now.After(*c.EndDate) {
			return StatusExpired
		}
		if c.EndDate.Sub(now) <= ExpiringWindow {
			return StatusExpiring
		}
	}
	if c.StartDate == nil || !now.Before(*c.StartDate) {
		return StatusActive
	}
	return StatusSigned
}
