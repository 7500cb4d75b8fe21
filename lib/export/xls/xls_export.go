package xlsexport

import (
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"pto-bot-backend/lib/utils/helpers"
	dbmodels "pto-bot-backend/models/db"
)

type Provider interface {
	ExportBalances(list []dbmodels.LeaveBalance) (*bytes.Buffer, error)
	ExportRequests(list []dbmodels.PTORequest) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var balanceHeaders = []string{"User ID", "Name", "Manager", "Allowance", "Taken", "Remaining"}

func (i impl) ExportBalances(list []dbmodels.LeaveBalance) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close xlsx file")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, balanceHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xlsx header")
	}
	if len(list) != 0 {
		if err := applyDataCellStyle(f, sheet, 1, row+1, len(balanceHeaders), len(list)+1); err != nil {
			return nil, err
		}
		for _, item := range list {
			row++
			col := 1
			if err := writeColumn(f, sheet, col, row, item.UserID); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.UserName); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.ManagerName); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.Allowance); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.Taken); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.Remaining()); err != nil {
				return nil, err
			}
		}
	}
	f.SetSheetName(sheet, "Balances")
	return f.WriteToBuffer()
}

var requestHeaders = []string{"Request ID", "User", "Start", "End", "Business days", "Reason", "Status", "Manager", "Decided at"}

func (i impl) ExportRequests(list []dbmodels.PTORequest) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close xlsx file")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, requestHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xlsx header")
	}
	if len(list) != 0 {
		if err := applyDataCellStyle(f, sheet, 1, row+1, len(requestHeaders), len(list)+1); err != nil {
			return nil, err
		}
		for _, item := range list {
			row++
			col := 1
			if err := writeColumn(f, sheet, col, row, item.ID); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.UserName); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, helpers.FormatISODate(item.StartDate)); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, helpers.FormatISODate(item.EndDate)); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.BusinessDays); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.Reason); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, string(item.Status)); err != nil {
				return nil, err
			}
			col++
			if err := writeColumn(f, sheet, col, row, item.ManagerName); err != nil {
				return nil, err
			}
			col++
			if item.DecidedAt != nil {
				if err := writeColumn(f, sheet, col, row, item.DecidedAt.Format("2006-01-02 15:04")); err != nil {
					return nil, err
				}
			}
		}
	}
	f.SetSheetName(sheet, "Requests")
	return f.WriteToBuffer()
}
