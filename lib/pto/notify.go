package ptohandler

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"pto-bot-backend/lib/utils/helpers"
	"pto-bot-backend/models"
	dbmodels "pto-bot-backend/models/db"
)

// Notifications are fire-and-forget: a failed chat message never fails
// the lifecycle operation that triggered it.

func (i impl) notifyManager(rec dbmodels.PTORequest, logger *log.Entry) {
	text := fmt.Sprintf(
		"%s requests %d business day(s) of PTO, %s to %s: %s",
		rec.UserName, rec.BusinessDays,
		helpers.FormatISODate(rec.StartDate), helpers.FormatISODate(rec.EndDate),
		rec.Reason,
	)
	channelID, messageTS, err := i.notifier.Notify(rec.ManagerID, text, DecisionBlocks(rec.ID, text)...)
	if err != nil {
		logger.WithError(err).Error("failed to notify manager about new request")
		return
	}
	// remember the message so the decision can rewrite it in place
	if err := i.store.SetMessageRef(rec.ID, channelID, messageTS); err != nil {
		logger.WithError(err).Error("failed to store manager notification reference")
	}
}

func (i impl) notifyDecision(rec dbmodels.PTORequest, decision models.RequestStatus, logger *log.Entry) {
	verdict := "approved"
	if decision == models.RequestStatusDenied {
		verdict = "denied"
	}
	text := fmt.Sprintf(
		"Your PTO request for %s to %s was %s.",
		helpers.FormatISODate(rec.StartDate), helpers.FormatISODate(rec.EndDate), verdict,
	)
	if _, _, err := i.notifier.Notify(rec.UserID, text); err != nil {
		logger.WithError(err).Error("failed to notify requester about decision")
	}

	if rec.MessageChannelID == "" || rec.MessageTS == "" {
		return
	}
	managerText := fmt.Sprintf(
		"Request from %s (%s to %s): %s",
		rec.UserName,
		helpers.FormatISODate(rec.StartDate), helpers.FormatISODate(rec.EndDate), verdict,
	)
	if err := i.notifier.UpdateMessage(rec.MessageChannelID, rec.MessageTS, managerText); err != nil {
		logger.WithError(err).Error("failed to rewrite manager decision message")
	}
}
