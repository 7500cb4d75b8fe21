package balancestore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pto-bot-backend/models"
	dbmodels "pto-bot-backend/models/db"
)

type Provider interface {
	// GetBalance returns a zero balance for an unknown user; being
	// absent from the roster is a legitimate state, not an error.
	GetBalance(userID string) (dbmodels.LeaveBalance, error)
	// IncrementTaken adds days to the taken counter. A missing row is
	// models.ErrUserNotFound: dropping an approved day count would
	// corrupt the ledger, so the caller must escalate.
	IncrementTaken(userID string, days int) (previous, current int, err error)
	SetAllowance(rec dbmodels.LeaveBalance) error
	List() (list []dbmodels.LeaveBalance, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetBalance(userID string) (dbmodels.LeaveBalance, error) {
	rec := dbmodels.LeaveBalance{}
	err := i.db.
		Where("user_id = ?", userID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dbmodels.LeaveBalance{UserID: userID}, nil
		}
		return dbmodels.LeaveBalance{}, err
	}
	return rec, nil
}

func (i impl) IncrementTaken(userID string, days int) (previous, current int, err error) {
	rec := dbmodels.LeaveBalance{}
	err = i.db.
		Where("user_id = ?", userID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, models.ErrUserNotFound
		}
		return 0, 0, err
	}
	previous = rec.Taken

	res := i.db.
		Model(&dbmodels.LeaveBalance{}).
		Where("user_id = ?", userID).
		Update("taken", gorm.Expr("taken + ?", days))
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, models.ErrUserNotFound
	}
	return previous, previous + days, nil
}

func (i impl) SetAllowance(rec dbmodels.LeaveBalance) error {
	err := i.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_name", "manager_id", "manager_name", "allowance", "updated_at"}),
		}).
		Create(&rec).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) List() (list []dbmodels.LeaveBalance, err error) {
	list = []dbmodels.LeaveBalance{}
	err = i.db.
		Order("user_name ASC").
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
