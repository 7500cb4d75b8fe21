package ptohandler

import (
	"strings"
	"sync"
	"time"

	"pto-bot-backend/lib/extractor"
	"pto-bot-backend/lib/utils/helpers"
	"pto-bot-backend/models"
	dbmodels "pto-bot-backend/models/db"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

type fakeRequestStore struct {
	mu   sync.Mutex
	rows map[string]dbmodels.PTORequest
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{rows: map[string]dbmodels.PTORequest{}}
}

func (s *fakeRequestStore) EnsureRow(rec dbmodels.PTORequest) (dbmodels.PTORequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[rec.ID]; ok {
		return existing, false, nil
	}
	rec.CreatedAt = time.Now().UTC()
	s.rows[rec.ID] = rec
	return rec, true, nil
}

func (s *fakeRequestStore) GetByID(id string) (*dbmodels.PTORequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *fakeRequestStore) UpdateStatus(id string, status models.RequestStatus, approverID string, decidedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	if !ok || rec.Status != models.RequestStatusPending {
		return false, nil
	}
	rec.Status = status
	rec.ApproverID = approverID
	rec.DecidedAt = &decidedAt
	s.rows[id] = rec
	return true, nil
}

func (s *fakeRequestStore) SetMessageRef(id, channelID, messageTS string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	if !ok {
		return errors.New("row not found")
	}
	rec.MessageChannelID = channelID
	rec.MessageTS = messageTS
	s.rows[id] = rec
	return nil
}

func (s *fakeRequestStore) HistoryForUser(userID string, windowStart *time.Time) ([]dbmodels.PTORequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []dbmodels.PTORequest{}
	for _, rec := range s.rows {
		if rec.UserID != userID {
			continue
		}
		if windowStart != nil && rec.CreatedAt.Before(*windowStart) {
			continue
		}
		list = append(list, rec)
	}
	return list, nil
}

func (s *fakeRequestStore) ListPendingOlderThan(age time.Duration) ([]dbmodels.PTORequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-age)
	list := []dbmodels.PTORequest{}
	for _, rec := range s.rows {
		if rec.Status == models.RequestStatusPending && rec.CreatedAt.Before(cutoff) {
			list = append(list, rec)
		}
	}
	return list, nil
}

type fakeBalanceStore struct {
	mu         sync.Mutex
	rows       map[string]dbmodels.LeaveBalance
	increments int
}

func newFakeBalanceStore() *fakeBalanceStore {
	return &fakeBalanceStore{rows: map[string]dbmodels.LeaveBalance{}}
}

func (s *fakeBalanceStore) GetBalance(userID string) (dbmodels.LeaveBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[userID]
	if !ok {
		return dbmodels.LeaveBalance{UserID: userID}, nil
	}
	return rec, nil
}

func (s *fakeBalanceStore) IncrementTaken(userID string, days int) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[userID]
	if !ok {
		return 0, 0, models.ErrUserNotFound
	}
	previous := rec.Taken
	rec.Taken += days
	s.rows[userID] = rec
	s.increments++
	return previous, rec.Taken, nil
}

func (s *fakeBalanceStore) SetAllowance(rec dbmodels.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[rec.UserID]; ok {
		rec.Taken = existing.Taken
	}
	s.rows[rec.UserID] = rec
	return nil
}

func (s *fakeBalanceStore) List() ([]dbmodels.LeaveBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []dbmodels.LeaveBalance{}
	for _, rec := range s.rows {
		list = append(list, rec)
	}
	return list, nil
}

// fakeExtractor answers with a fixed span keyed by a marker word.
type fakeExtractor struct {
	spans map[string]extractor.Result
}

func (f fakeExtractor) Extract(freeText string, today time.Time) (extractor.Result, error) {
	for marker, res := range f.spans {
		if strings.Contains(freeText, marker) {
			return res, nil
		}
	}
	return extractor.Result{}, &models.ParseError{Reason: "no dates were found in the message"}
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
	updated  []string
}

func (f *fakeNotifier) Notify(targetID, text string, blocks ...slack.Block) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, targetID+": "+text)
	return "C" + targetID, "168000.0001", nil
}

func (f *fakeNotifier) UpdateMessage(channelID, messageTS, text string, blocks ...slack.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, channelID+": "+text)
	return nil
}

type fakeEscalator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeEscalator) LedgerDiscrepancy(requestID, userID string, days int, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func mustDate(t string) time.Time {
	d, err := helpers.ParseISODate(t)
	if err != nil {
		panic(err)
	}
	return d
}
