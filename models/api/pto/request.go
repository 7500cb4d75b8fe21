package ptoapimodels

import (
	"pto-bot-backend/models"
	dbmodels "pto-bot-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

// DraftRequest is a parsed but unpersisted request. RequestID is minted
// when the confirmation prompt is rendered and carried through the
// confirm action, so duplicate clicks resolve to the same row.
type DraftRequest struct {
	RequestID    string    `json:"request_id,omitempty"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	BusinessDays int       `json:"business_days"`
	Reason       string    `json:"reason"`
}

func (d DraftRequest) Validate() error {
	if d.UserID == "" {
		return errors.New("draft has no user id")
	}
	if d.End.Before(d.Start) {
		return errors.New("draft end date is before start date")
	}
	if d.BusinessDays <= 0 {
		return errors.New("draft covers no business days")
	}
	return nil
}

type BalanceCheck struct {
	Allowed   bool `json:"allowed"`
	Requested int  `json:"requested"`
	Allowance int  `json:"allowance"`
	Taken     int  `json:"taken"`
	Remaining int  `json:"remaining"`
}

type DecisionResult struct {
	RequestID string               `json:"request_id"`
	Status    models.RequestStatus `json:"status"`
	DecidedAt time.Time            `json:"decided_at"`
	// AlreadyDecided is set when this call was a duplicate of an
	// earlier identical decision and no write happened.
	AlreadyDecided bool `json:"already_decided"`
	// LedgerApplied reports whether the balance increment landed;
	// false after an approval means the discrepancy was escalated.
	LedgerApplied   bool `json:"ledger_applied"`
	BalancePrevious int  `json:"balance_previous,omitempty"`
	BalanceTaken    int  `json:"balance_taken,omitempty"`
}

type HistoryStats struct {
	TotalRequests    int        `json:"total_requests"`
	LastRequestDate  *time.Time `json:"last_request_date,omitempty"`
	DaysUsedThisYear int        `json:"days_used_this_year"`
	AvgPerMonth      float64    `json:"avg_requests_per_month"`
}

type RequestView struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	UserName     string               `json:"user_name"`
	Start        string               `json:"start"`
	End          string               `json:"end"`
	BusinessDays int                  `json:"business_days"`
	Reason       string               `json:"reason"`
	Status       models.RequestStatus `json:"status"`
	ManagerID    string               `json:"manager_id"`
	ManagerName  string               `json:"manager_name"`
	CreatedAt    time.Time            `json:"created_at"`
	ApproverID   string               `json:"approver_id,omitempty"`
	DecidedAt    *time.Time           `json:"decided_at,omitempty"`
}

func RequestConvert(rec dbmodels.PTORequest) RequestView {
	return RequestView{
		ID:           rec.ID,
		UserID:       rec.UserID,
		UserName:     rec.UserName,
		Start:        rec.StartDate.Format("2006-01-02"),
		End:          rec.EndDate.Format("2006-01-02"),
		BusinessDays: rec.BusinessDays,
		Reason:       rec.Reason,
		Status:       rec.Status,
		ManagerID:    rec.ManagerID,
		ManagerName:  rec.ManagerName,
		CreatedAt:    rec.CreatedAt,
		ApproverID:   rec.ApproverID,
		DecidedAt:    rec.DecidedAt,
	}
}

type BalanceView struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Allowance int    `json:"allowance"`
	Taken     int    `json:"taken"`
	Remaining int    `json:"remaining"`
}

func BalanceConvert(rec dbmodels.LeaveBalance) BalanceView {
	return BalanceView{
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		Allowance: rec.Allowance,
		Taken:     rec.Taken,
		Remaining: rec.Remaining(),
	}
}
