package opsnotify

import (
	"fmt"
	"net/http"
	"pto-bot-backend/config"
	"strings"

	"github.com/sirupsen/logrus"
)

// SendLedgerAlert posts a ledger discrepancy to the operator webhook:
// the approval already stands, only the balance increment failed.
func SendLedgerAlert(requestID, userID string, days int, errs string, logger *logrus.Entry) {
	addr := config.Conf.OpsNotify.WebhookURL
	if addr == "" {
		logger.Warn("operator webhook is not configured, ledger alert dropped")
		return
	}
	payload := fmt.Sprintf(
		`{"request_id":%q,"user_id":%q,"business_days":%d,"error":%q}`,
		requestID, userID, days, errs)
	resp, err := http.Post(addr, "application/json", strings.NewReader(payload))
	if err != nil {
		logger.WithError(err).Errorf("error sending ledger alert to operator webhook, resp %+v", resp)
	}
}
