package ptohandler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pto-bot-backend/lib/extractor"
	"pto-bot-backend/models"
	ptoapimodels "pto-bot-backend/models/api/pto"
	dbmodels "pto-bot-backend/models/db"
)

type lifecycleFixture struct {
	store     *fakeRequestStore
	balances  *fakeBalanceStore
	notifier  *fakeNotifier
	escalator *fakeEscalator
	provider  Provider
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	f := &lifecycleFixture{
		store:     newFakeRequestStore(),
		balances:  newFakeBalanceStore(),
		notifier:  &fakeNotifier{},
		escalator: &fakeEscalator{},
	}
	ext := fakeExtractor{spans: map[string]extractor.Result{
		"next week": {
			Start:  mustDate("2026-09-07"),
			End:    mustDate("2026-09-09"),
			Reason: "vacation",
		},
		"the whole quarter": {
			Start: mustDate("2026-10-01"),
			End:   mustDate("2026-12-31"),
		},
		"this weekend": {
			Start: mustDate("2026-09-05"),
			End:   mustDate("2026-09-06"),
		},
	}}
	f.provider = NewProvider(f.store, f.balances, ext, f.notifier, f.escalator, 30)
	return f
}

func (f *lifecycleFixture) seedBalance(userID string, allowance, taken int) {
	_ = f.balances.SetAllowance(dbmodels.LeaveBalance{
		UserID:      userID,
		UserName:    "Test User",
		ManagerID:   "UMANAGER",
		ManagerName: "Test Manager",
		Allowance:   allowance,
	})
	if taken != 0 {
		_, _, _ = f.balances.IncrementTaken(userID, taken)
		f.balances.increments = 0
	}
}

func (f *lifecycleFixture) submitted(t *testing.T, userID string, days int) string {
	t.Helper()
	start := mustDate("2026-09-07")
	requestID, err := f.provider.Submit(ptoapimodels.DraftRequest{
		UserID:       userID,
		UserName:     "Test User",
		Start:        start,
		End:          start.AddDate(0, 0, days-1),
		BusinessDays: days,
		Reason:       "vacation",
	})
	require.Nil(t, err)
	return requestID
}

func TestDraft(t *testing.T) {
	today := mustDate("2026-09-01")

	t.Run(`free text becomes a draft with a minted id`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		draft, err := f.provider.Draft("U1", "Test User", "I need next week off", today)
		require.Nil(t, err)
		require.NotEmpty(t, draft.RequestID)
		require.Equal(t, "U1", draft.UserID)
		require.Equal(t, mustDate("2026-09-07"), draft.Start)
		require.Equal(t, mustDate("2026-09-09"), draft.End)
		require.Equal(t, 3, draft.BusinessDays)
		require.Equal(t, "vacation", draft.Reason)
	})

	t.Run(`two drafts of the same text get distinct ids`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		first, err := f.provider.Draft("U1", "Test User", "next week", today)
		require.Nil(t, err)
		second, err := f.provider.Draft("U1", "Test User", "next week", today)
		require.Nil(t, err)
		require.NotEqual(t, first.RequestID, second.RequestID)
	})

	t.Run(`unparseable text surfaces as a parse error`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		_, err := f.provider.Draft("U1", "Test User", "hello there", today)
		parseErr := &models.ParseError{}
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run(`span over the maximum is rejected`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		_, err := f.provider.Draft("U1", "Test User", "the whole quarter off", today)
		validationErr := &models.ValidationError{}
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run(`weekend-only range has no business days`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		_, err := f.provider.Draft("U1", "Test User", "this weekend", today)
		validationErr := &models.ValidationError{}
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestCheckBalance(t *testing.T) {
	t.Run(`ten days against five remaining is not allowed`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 20)

		check, err := f.provider.CheckBalance("U1", 10)
		require.Nil(t, err)
		require.False(t, check.Allowed)
		require.Equal(t, 10, check.Requested)
		require.Equal(t, 25, check.Allowance)
		require.Equal(t, 20, check.Taken)
		require.Equal(t, 5, check.Remaining)
	})

	t.Run(`request equal to the remainder is allowed`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 20)

		check, err := f.provider.CheckBalance("U1", 5)
		require.Nil(t, err)
		require.True(t, check.Allowed)
	})

	t.Run(`unknown user has a zero balance`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		check, err := f.provider.CheckBalance("UGHOST", 1)
		require.Nil(t, err)
		require.False(t, check.Allowed)
		require.Equal(t, 0, check.Remaining)
	})
}

func TestSubmit(t *testing.T) {
	draft := func(requestID string) ptoapimodels.DraftRequest {
		return ptoapimodels.DraftRequest{
			RequestID:    requestID,
			UserID:       "U1",
			UserName:     "Test User",
			Start:        mustDate("2026-09-07"),
			End:          mustDate("2026-09-09"),
			BusinessDays: 3,
			Reason:       "vacation",
		}
	}

	t.Run(`submission persists a pending row and notifies the manager`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 0)

		requestID, err := f.provider.Submit(draft("req-1"))
		require.Nil(t, err)
		require.Equal(t, "req-1", requestID)

		rec, err := f.store.GetByID("req-1")
		require.Nil(t, err)
		require.NotNil(t, rec)
		require.Equal(t, models.RequestStatusPending, rec.Status)
		require.Equal(t, "UMANAGER", rec.ManagerID)
		require.Len(t, f.notifier.notified, 1)
	})

	t.Run(`duplicate submission is absorbed without a second notification`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 0)

		first, err := f.provider.Submit(draft("req-1"))
		require.Nil(t, err)
		second, err := f.provider.Submit(draft("req-1"))
		require.Nil(t, err)
		require.Equal(t, first, second)

		history, err := f.store.HistoryForUser("U1", nil)
		require.Nil(t, err)
		require.Len(t, history, 1)
		require.Len(t, f.notifier.notified, 1)
	})

	t.Run(`insufficient balance blocks submission`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 23)

		_, err := f.provider.Submit(draft("req-1"))
		balanceErr := &models.InsufficientBalanceError{}
		require.ErrorAs(t, err, &balanceErr)
		require.Equal(t, 3, balanceErr.Requested)
		require.Equal(t, 2, balanceErr.Remaining)

		rec, err := f.store.GetByID("req-1")
		require.Nil(t, err)
		require.Nil(t, rec)
	})

	t.Run(`user without an assigned manager cannot submit`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		_ = f.balances.SetAllowance(dbmodels.LeaveBalance{
			UserID:    "U1",
			UserName:  "Test User",
			Allowance: 25,
		})

		_, err := f.provider.Submit(draft("req-1"))
		validationErr := &models.ValidationError{}
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run(`invalid draft is rejected before any store call`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		_, err := f.provider.Submit(ptoapimodels.DraftRequest{UserID: "U1"})
		validationErr := &models.ValidationError{}
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestDecide(t *testing.T) {
	t.Run(`approval moves the ledger once`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 10)
		requestID := f.submitted(t, "U1", 3)

		result, err := f.provider.Decide(requestID, "UMANAGER", models.RequestStatusApproved)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusApproved, result.Status)
		require.False(t, result.AlreadyDecided)
		require.True(t, result.LedgerApplied)
		require.Equal(t, 10, result.BalancePrevious)
		require.Equal(t, 13, result.BalanceTaken)

		balance, err := f.balances.GetBalance("U1")
		require.Nil(t, err)
		require.Equal(t, 13, balance.Taken)
	})

	t.Run(`a second approval is a no-op, the ledger stays put`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 10)
		requestID := f.submitted(t, "U1", 3)

		_, err := f.provider.Decide(requestID, "UMANAGER", models.RequestStatusApproved)
		require.Nil(t, err)
		result, err := f.provider.Decide(requestID, "UMANAGER", models.RequestStatusApproved)
		require.Nil(t, err)
		require.True(t, result.AlreadyDecided)

		balance, err := f.balances.GetBalance("U1")
		require.Nil(t, err)
		require.Equal(t, 13, balance.Taken)
		require.Equal(t, 1, f.balances.increments)
	})

	t.Run(`denial after approval is a conflict`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 0)
		requestID := f.submitted(t, "U1", 3)

		_, err := f.provider.Decide(requestID, "UMANAGER", models.RequestStatusApproved)
		require.Nil(t, err)
		_, err = f.provider.Decide(requestID, "UMANAGER", models.RequestStatusDenied)
		require.ErrorIs(t, err, models.ErrConflict)

		rec, err := f.store.GetByID(requestID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusApproved, rec.Status)
	})

	t.Run(`denial does not touch the ledger`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 10)
		requestID := f.submitted(t, "U1", 3)

		result, err := f.provider.Decide(requestID, "UMANAGER", models.RequestStatusDenied)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusDenied, result.Status)

		balance, err := f.balances.GetBalance("U1")
		require.Nil(t, err)
		require.Equal(t, 10, balance.Taken)
		require.Equal(t, 0, f.balances.increments)
	})

	t.Run(`only the assigned manager may decide`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 0)
		requestID := f.submitted(t, "U1", 3)

		_, err := f.provider.Decide(requestID, "UINTRUDER", models.RequestStatusApproved)
		require.ErrorIs(t, err, models.ErrUnauthorized)

		rec, err := f.store.GetByID(requestID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusPending, rec.Status)
	})

	t.Run(`unknown request id`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		_, err := f.provider.Decide("req-missing", "UMANAGER", models.RequestStatusDenied)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run(`pending is not a decision`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		_, err := f.provider.Decide("req-1", "UMANAGER", models.RequestStatusPending)
		require.NotNil(t, err)
	})

	t.Run(`approval stands when the ledger row is gone, discrepancy escalates`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 0)
		requestID := f.submitted(t, "U1", 3)
		delete(f.balances.rows, "U1")

		result, err := f.provider.Decide(requestID, "UMANAGER", models.RequestStatusApproved)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusApproved, result.Status)
		require.False(t, result.LedgerApplied)
		require.Equal(t, 1, f.escalator.calls)

		rec, err := f.store.GetByID(requestID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusApproved, rec.Status)
	})

	t.Run(`concurrent approvals land exactly one increment`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 10)
		requestID := f.submitted(t, "U1", 3)

		wg := sync.WaitGroup{}
		for j := 0; j < 5; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = f.provider.Decide(requestID, "UMANAGER", models.RequestStatusApproved)
			}()
		}
		wg.Wait()

		balance, err := f.balances.GetBalance("U1")
		require.Nil(t, err)
		require.Equal(t, 13, balance.Taken)
		require.Equal(t, 1, f.balances.increments)
	})
}

func TestHistoryStats(t *testing.T) {
	t.Run(`empty history`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		stats, err := f.provider.HistoryStats("U1")
		require.Nil(t, err)
		require.Equal(t, 0, stats.TotalRequests)
		require.Nil(t, stats.LastRequestDate)
	})

	t.Run(`approved days in the current year are summed`, func(t *testing.T) {
		f := newLifecycleFixture(t)
		f.seedBalance("U1", 25, 0)

		now := time.Now().UTC()
		thisYear := time.Date(now.Year(), 6, 1, 0, 0, 0, 0, time.UTC)
		for j := 0; j < 2; j++ {
			requestID := fmt.Sprintf("req-%d", j)
			_, _, err := f.store.EnsureRow(dbmodels.PTORequest{
				ID:           requestID,
				UserID:       "U1",
				StartDate:    thisYear.AddDate(0, 0, 7*j),
				EndDate:      thisYear.AddDate(0, 0, 7*j+4),
				BusinessDays: 4,
				Status:       models.RequestStatusPending,
				ManagerID:    "UMANAGER",
			})
			require.Nil(t, err)
			_, err = f.provider.Decide(requestID, "UMANAGER", models.RequestStatusApproved)
			require.Nil(t, err)
		}
		_, _, err := f.store.EnsureRow(dbmodels.PTORequest{
			ID:           "req-denied",
			UserID:       "U1",
			StartDate:    thisYear,
			EndDate:      thisYear,
			BusinessDays: 1,
			Status:       models.RequestStatusDenied,
			ManagerID:    "UMANAGER",
		})
		require.Nil(t, err)

		stats, err := f.provider.HistoryStats("U1")
		require.Nil(t, err)
		require.Equal(t, 3, stats.TotalRequests)
		require.Equal(t, 8, stats.DaysUsedThisYear)
		require.NotNil(t, stats.LastRequestDate)
		require.InDelta(t, 0.25, stats.AvgPerMonth, 0.0001)
	})
}
