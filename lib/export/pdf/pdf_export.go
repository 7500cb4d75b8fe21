package pdfexport

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"pto-bot-backend/lib/utils/helpers"
	ptoapimodels "pto-bot-backend/models/api/pto"
	dbmodels "pto-bot-backend/models/db"
)

// GenerateBalanceStatement renders a one-page PTO statement for a user:
// the current annual balance followed by the request history.
func GenerateBalanceStatement(balance ptoapimodels.BalanceView, history []dbmodels.PTORequest) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("GenerateBalanceStatement panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}

	pdf.CellFormat(0, 10, "PTO balance statement", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Employee: %s (%s)", balance.UserName, balance.UserID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Allowance: %d    Taken: %d    Remaining: %d", balance.Allowance, balance.Taken, balance.Remaining), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	widths := []float64{30, 30, 22, 60, 28}
	headers := []string{"Start", "End", "Days", "Reason", "Status"}
	for idx, h := range headers {
		pdf.CellFormat(widths[idx], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, rec := range history {
		pdf.CellFormat(widths[0], 7, helpers.FormatISODate(rec.StartDate), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, helpers.FormatISODate(rec.EndDate), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", rec.BusinessDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, rec.Reason, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 7, string(rec.Status), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	err = pdf.Output(buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render pdf statement")
	}
	return buf.Bytes(), nil
}
