package escalation

import (
	"fmt"
	"pto-bot-backend/config"
	"pto-bot-backend/lib/smtp"
	opsnotify "pto-bot-backend/lib/utils/ops-notify"

	log "github.com/sirupsen/logrus"
)

// Provider surfaces ledger discrepancies that must reach an operator:
// an approval succeeded but its balance increment did not.
type Provider interface {
	LedgerDiscrepancy(requestID, userID string, days int, cause error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

func (i impl) LedgerDiscrepancy(requestID, userID string, days int, cause error) {
	logger := log.
		WithField("request_id", requestID).
		WithField("user_id", userID)
	logger.WithError(cause).Error("approved request was not applied to the balance ledger")

	opsnotify.SendLedgerAlert(requestID, userID, days, cause.Error(), logger)

	hrEmail := config.Conf.Smtp.HREmail
	if hrEmail == "" || smtp.Instance == nil {
		return
	}
	msg := fmt.Sprintf(
		"PTO request %s for user %s was approved, but the balance ledger was not updated (%d business days): %v.\nThe taken counter must be corrected manually.",
		requestID, userID, days, cause)
	if err := smtp.Instance.SendEMail(config.Conf.Smtp.User, hrEmail, msg, "balance ledger discrepancy"); err != nil {
		logger.WithError(err).Error("failed to email HR about ledger discrepancy")
	}
}
