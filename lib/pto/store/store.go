package ptostore

import (
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pto-bot-backend/models"
	dbmodels "pto-bot-backend/models/db"
)

type Provider interface {
	// EnsureRow inserts rec unless a row with the same id already
	// exists; either way the stored row is returned. inserted reports
	// whether this call created it.
	EnsureRow(rec dbmodels.PTORequest) (stored dbmodels.PTORequest, inserted bool, err error)
	GetByID(id string) (rec *dbmodels.PTORequest, err error)
	// UpdateStatus moves a request out of pending. The update is
	// conditional on the row still being pending, so a lost race
	// reports updated=false instead of flipping a terminal state.
	// Status and audit fields land in one statement.
	UpdateStatus(id string, status models.RequestStatus, approverID string, decidedAt time.Time) (updated bool, err error)
	SetMessageRef(id, channelID, messageTS string) error
	HistoryForUser(userID string, windowStart *time.Time) (list []dbmodels.PTORequest, err error)
	ListPendingOlderThan(age time.Duration) (list []dbmodels.PTORequest, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) EnsureRow(rec dbmodels.PTORequest) (dbmodels.PTORequest, bool, error) {
	res := i.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&rec)
	if res.Error != nil && !isUniqueViolation(res.Error) {
		return dbmodels.PTORequest{}, false, res.Error
	}
	inserted := res.Error == nil && res.RowsAffected > 0

	stored := dbmodels.PTORequest{}
	err := i.db.
		Where("id = ?", rec.ID).
		First(&stored).
		Error
	if err != nil {
		return dbmodels.PTORequest{}, false, err
	}
	return stored, inserted, nil
}

func (i impl) GetByID(id string) (*dbmodels.PTORequest, error) {
	rec := dbmodels.PTORequest{}
	err := i.db.
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) UpdateStatus(id string, status models.RequestStatus, approverID string, decidedAt time.Time) (bool, error) {
	res := i.db.
		Model(&dbmodels.PTORequest{}).
		Where("id = ?", id).
		Where("status = ?", models.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"approver_id": approverID,
			"decided_at":  decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (i impl) SetMessageRef(id, channelID, messageTS string) error {
	err := i.db.
		Model(&dbmodels.PTORequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"message_channel_id": channelID,
			"message_ts":         messageTS,
		}).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) HistoryForUser(userID string, windowStart *time.Time) (list []dbmodels.PTORequest, err error) {
	list = []dbmodels.PTORequest{}
	tx := i.db.
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if windowStart != nil {
		tx = tx.Where("created_at >= ?", *windowStart)
	}
	err = tx.Find(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) ListPendingOlderThan(age time.Duration) (list []dbmodels.PTORequest, err error) {
	list = []dbmodels.PTORequest{}
	err = i.db.
		Where("status = ?", models.RequestStatusPending).
		Where("created_at < ?", time.Now().Add(-age)).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
