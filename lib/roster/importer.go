package roster

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	balancestore "pto-bot-backend/lib/balance/store"
	"pto-bot-backend/db"
	dbmodels "pto-bot-backend/models/db"
)

// Provider loads the HR roster from a spreadsheet: one row per user
// with the annual allowance and the assigned approver. Existing taken
// counters are preserved, importing a new year's roster with fresh
// allowances is how the annual scope resets.
type Provider interface {
	ImportXLSX(r io.Reader) (ImportResult, error)
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		balanceStore: balancestore.NewInstance(db.DB),
	}
}

func NewProvider(balanceStore balancestore.Provider) Provider {
	return impl{
		balanceStore: balanceStore,
	}
}

type impl struct {
	balanceStore balancestore.Provider
}

// expected columns: user id, user name, manager id, manager name, allowance
func (i impl) ImportXLSX(r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "failed to open roster file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close roster file")
		}
	}()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "failed to read roster rows")
	}

	result := ImportResult{}
	for idx, row := range rows {
		if idx == 0 {
			// header
			continue
		}
		rec, err := parseRosterRow(row)
		if err != nil {
			log.WithField("row", idx+1).WithError(err).Warn("skipping invalid roster row")
			result.Skipped = append(result.Skipped, err.Error())
			continue
		}
		if err := i.balanceStore.SetAllowance(rec); err != nil {
			return result, errors.Wrapf(err, "failed to upsert balance row for user %v", rec.UserID)
		}
		result.Imported++
	}
	return result, nil
}

func parseRosterRow(row []string) (dbmodels.LeaveBalance, error) {
	if len(row) < 5 {
		return dbmodels.LeaveBalance{}, errors.Errorf("expected 5 columns, got %d", len(row))
	}
	userID := strings.TrimSpace(row[0])
	if userID == "" {
		return dbmodels.LeaveBalance{}, errors.New("empty user id")
	}
	allowance, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil || allowance < 0 {
		return dbmodels.LeaveBalance{}, errors.Errorf("invalid allowance %q for user %v", row[4], userID)
	}
	return dbmodels.LeaveBalance{
		UserID:      userID,
		UserName:    strings.TrimSpace(row[1]),
		ManagerID:   strings.TrimSpace(row[2]),
		ManagerName: strings.TrimSpace(row[3]),
		Allowance:   allowance,
	}, nil
}
