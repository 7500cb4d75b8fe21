package ptohandler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"pto-bot-backend/config"
	"pto-bot-backend/db"
	balancestore "pto-bot-backend/lib/balance/store"
	"pto-bot-backend/lib/escalation"
	"pto-bot-backend/lib/extractor"
	slacknotify "pto-bot-backend/lib/notify/slack"
	ptostore "pto-bot-backend/lib/pto/store"
	"pto-bot-backend/lib/utils/helpers"
	"pto-bot-backend/lib/utils/lock"
	"pto-bot-backend/models"
	ptoapimodels "pto-bot-backend/models/api/pto"
	dbmodels "pto-bot-backend/models/db"
)

// Provider owns the request lifecycle: drafting from free text, the
// advisory balance check, idempotent submission, and the single
// pending -> approved/denied transition with its balance side effect.
type Provider interface {
	Draft(userID, userName, freeText string, today time.Time) (ptoapimodels.DraftRequest, error)
	CheckBalance(userID string, businessDays int) (ptoapimodels.BalanceCheck, error)
	Submit(draft ptoapimodels.DraftRequest) (requestID string, err error)
	Decide(requestID, actorID string, decision models.RequestStatus) (ptoapimodels.DecisionResult, error)
	HistoryStats(userID string) (ptoapimodels.HistoryStats, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:        ptostore.NewInstance(db.DB),
		balanceStore: balancestore.NewInstance(db.DB),
		extractor:    extractor.Instance,
		notifier:     slacknotify.Instance,
		escalator:    escalation.Instance,
		maxSpanDays:  config.Conf.PTO.MaxSpanDays,
	}
}

// NewProvider wires explicit dependencies, used by tests and callers
// that hold their own store instances.
func NewProvider(
	store ptostore.Provider,
	balanceStore balancestore.Provider,
	dateExtractor extractor.Provider,
	notifier slacknotify.Provider,
	escalator escalation.Provider,
	maxSpanDays int,
) Provider {
	return impl{
		store:        store,
		balanceStore: balanceStore,
		extractor:    dateExtractor,
		notifier:     notifier,
		escalator:    escalator,
		maxSpanDays:  maxSpanDays,
	}
}

type impl struct {
	store        ptostore.Provider
	balanceStore balancestore.Provider
	extractor    extractor.Provider
	notifier     slacknotify.Provider
	escalator    escalation.Provider
	maxSpanDays  int
}

func (i impl) GetLogger(requestID, userID string) *log.Entry {
	logger := log.
		WithField("request_id", requestID).
		WithField("user_id", userID)
	return logger
}

func (i impl) Draft(userID, userName, freeText string, today time.Time) (ptoapimodels.DraftRequest, error) {
	logger := log.WithField("user_id", userID)
	ext, err := i.extractor.Extract(freeText, today)
	if err != nil {
		logger.WithError(err).Warn("failed to extract leave dates from message")
		return ptoapimodels.DraftRequest{}, err
	}
	if ext.End.Before(ext.Start) {
		return ptoapimodels.DraftRequest{}, &models.ValidationError{
			Reason: "the end date is before the start date",
		}
	}
	if span := helpers.SpanDays(ext.Start, ext.End); span > i.maxSpanDays {
		return ptoapimodels.DraftRequest{}, &models.ValidationError{
			Reason: fmt.Sprintf("the requested range covers %d days, the maximum is %d", span, i.maxSpanDays),
		}
	}
	businessDays := helpers.BusinessDays(ext.Start, ext.End)
	if businessDays == 0 {
		return ptoapimodels.DraftRequest{}, &models.ValidationError{
			Reason: "the requested range contains no business days",
		}
	}
	return ptoapimodels.DraftRequest{
		// minted here so every later submission of this draft is
		// idempotent, duplicate confirm clicks included
		RequestID:    uuid.NewString(),
		UserID:       userID,
		UserName:     userName,
		Start:        ext.Start,
		End:          ext.End,
		BusinessDays: businessDays,
		Reason:       ext.Reason,
	}, nil
}

// CheckBalance is advisory: a race between this check and a later
// approval is accepted, the ledger only moves on approval.
func (i impl) CheckBalance(userID string, businessDays int) (ptoapimodels.BalanceCheck, error) {
	balance, err := i.balanceStore.GetBalance(userID)
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Error("failed to read balance")
		return ptoapimodels.BalanceCheck{}, err
	}
	remaining := balance.Remaining()
	return ptoapimodels.BalanceCheck{
		Allowed:   businessDays <= remaining,
		Requested: businessDays,
		Allowance: balance.Allowance,
		Taken:     balance.Taken,
		Remaining: remaining,
	}, nil
}

func (i impl) Submit(draft ptoapimodels.DraftRequest) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", &models.ValidationError{Reason: err.Error()}
	}
	requestID := draft.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := i.GetLogger(requestID, draft.UserID)

	// policy: check before persist, against the annual ledger
	check, err := i.CheckBalance(draft.UserID, draft.BusinessDays)
	if err != nil {
		return "", err
	}
	if !check.Allowed {
		return "", &models.InsufficientBalanceError{
			Requested: draft.BusinessDays,
			Remaining: check.Remaining,
		}
	}

	balance, err := i.balanceStore.GetBalance(draft.UserID)
	if err != nil {
		return "", err
	}
	if balance.ManagerID == "" {
		logger.Warn("user has no assigned manager in the roster")
		return "", &models.ValidationError{
			Reason: "no approver is assigned to you, ask HR to update the roster",
		}
	}

	rec := dbmodels.PTORequest{
		ID:           requestID,
		UserID:       draft.UserID,
		UserName:     draft.UserName,
		StartDate:    helpers.DateUTC(draft.Start),
		EndDate:      helpers.DateUTC(draft.End),
		BusinessDays: draft.BusinessDays,
		Reason:       draft.Reason,
		Status:       models.RequestStatusPending,
		ManagerID:    balance.ManagerID,
		ManagerName:  balance.ManagerName,
	}
	stored, inserted, err := i.store.EnsureRow(rec)
	if err != nil {
		logger.WithError(err).Error("failed to persist request")
		return "", err
	}
	if !inserted {
		// retried delivery or duplicate click, the first submission
		// already notified the manager
		logger.Info("request already submitted, skipping duplicate")
		return stored.ID, nil
	}

	i.notifyManager(stored, logger)
	return stored.ID, nil
}

func (i impl) Decide(requestID, actorID string, decision models.RequestStatus) (ptoapimodels.DecisionResult, error) {
	logger := i.GetLogger(requestID, "").WithField("actor_id", actorID)
	if !decision.Terminal() {
		return ptoapimodels.DecisionResult{}, errors.Errorf("invalid decision %q", decision)
	}

	var result ptoapimodels.DecisionResult
	// the keyed lock serializes concurrent deliveries for the same
	// request within this instance; the conditional UpdateStatus
	// covers what the lock cannot see
	acquired, err := lock.WithDelay(context.Background(), "pto-decide-"+requestID, 3*time.Second, func() error {
		rec, err := i.store.GetByID(requestID)
		if err != nil {
			logger.WithError(err).Error("failed to load request for decision")
			return err
		}
		if rec == nil {
			logger.Warn("decision references unknown request, possibly a stale button")
			return models.ErrNotFound
		}
		logger = i.GetLogger(requestID, rec.UserID).WithField("actor_id", actorID)
		if rec.ManagerID != actorID {
			logger.Warn("decision attempt by an actor who is not the assigned manager")
			return models.ErrUnauthorized
		}
		if rec.Status == decision {
			result = ptoapimodels.DecisionResult{
				RequestID:      requestID,
				Status:         rec.Status,
				AlreadyDecided: true,
				LedgerApplied:  true,
			}
			if rec.DecidedAt != nil {
				result.DecidedAt = *rec.DecidedAt
			}
			return nil
		}
		if rec.Status.Terminal() {
			logger.WithField("status", rec.Status).Warn("attempt to flip an already decided request")
			return models.ErrConflict
		}

		decidedAt := time.Now().UTC()
		updated, err := i.store.UpdateStatus(requestID, decision, actorID, decidedAt)
		if err != nil {
			logger.WithError(err).Error("failed to update request status")
			return err
		}
		if !updated {
			// lost the conditional update, someone decided in between
			current, err := i.store.GetByID(requestID)
			if err != nil {
				return err
			}
			if current != nil && current.Status == decision {
				result = ptoapimodels.DecisionResult{
					RequestID:      requestID,
					Status:         current.Status,
					AlreadyDecided: true,
					LedgerApplied:  true,
				}
				if current.DecidedAt != nil {
					result.DecidedAt = *current.DecidedAt
				}
				return nil
			}
			return models.ErrConflict
		}

		result = ptoapimodels.DecisionResult{
			RequestID:     requestID,
			Status:        decision,
			DecidedAt:     decidedAt,
			LedgerApplied: true,
		}
		if decision == models.RequestStatusApproved {
			previous, current, err := i.balanceStore.IncrementTaken(rec.UserID, rec.BusinessDays)
			if err != nil {
				// the approval stands; rolling back a manager-visible
				// decision is worse than a temporarily stale balance
				result.LedgerApplied = false
				i.escalator.LedgerDiscrepancy(requestID, rec.UserID, rec.BusinessDays, err)
			} else {
				result.BalancePrevious = previous
				result.BalanceTaken = current
			}
		}

		i.notifyDecision(*rec, decision, logger)
		return nil
	})
	if err != nil {
		return ptoapimodels.DecisionResult{}, err
	}
	if !acquired {
		logger.Warn("decision is already being processed by a concurrent delivery")
		return ptoapimodels.DecisionResult{}, errors.New("decision is already being processed, try again")
	}
	return result, nil
}

func (i impl) HistoryStats(userID string) (ptoapimodels.HistoryStats, error) {
	history, err := i.store.HistoryForUser(userID, nil)
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Error("failed to load request history")
		return ptoapimodels.HistoryStats{}, err
	}
	stats := ptoapimodels.HistoryStats{
		TotalRequests: len(history),
	}
	now := time.Now().UTC()
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	trailingStart := now.AddDate(-1, 0, 0)
	trailingCount := 0
	for _, rec := range history {
		created := rec.CreatedAt
		if stats.LastRequestDate == nil || created.After(*stats.LastRequestDate) {
			t := created
			stats.LastRequestDate = &t
		}
		if rec.Status == models.RequestStatusApproved && !rec.StartDate.Before(yearStart) {
			stats.DaysUsedThisYear += rec.BusinessDays
		}
		if !created.Before(trailingStart) {
			trailingCount++
		}
	}
	stats.AvgPerMonth = float64(trailingCount) / 12.0
	return stats, nil
}
