package dbmodels

import (
	"time"
)

// LeaveBalance holds the annual ledger for one user. Allowance and the
// assigned manager come from the roster import; taken only ever grows,
// by the business-day count of approved requests.
type LeaveBalance struct {
	UserID      string `gorm:"primaryKey;type:varchar(36)"`
	UserName    string
	ManagerID   string `gorm:"type:varchar(36)"`
	ManagerName string
	Allowance   int
	Taken       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b LeaveBalance) Remaining() int {
	return b.Allowance - b.Taken
}
