package reminderworker

import (
	"context"
	"fmt"
	"time"

	"pto-bot-backend/config"
	"pto-bot-backend/db"
	slacknotify "pto-bot-backend/lib/notify/slack"
	ptostore "pto-bot-backend/lib/pto/store"
	baseworker "pto-bot-backend/lib/utils/base-worker"
	"pto-bot-backend/lib/utils/helpers"
)

// Nudges managers about requests that have been sitting in pending.
// Expiry stays out of the lifecycle, a pending request lives until
// decided; this only repeats the notification.

func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl: *baseworker.NewInstance("PendingReminderWorker", 20*time.Second, 6*time.Hour),
		store:    ptostore.NewInstance(db.DB),
		notifier: slacknotify.Instance,
		maxAge:   time.Duration(config.Conf.PTO.ReminderAfterHours) * time.Hour,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	store    ptostore.Provider
	notifier slacknotify.Provider
	maxAge   time.Duration
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	list, err := i.store.ListPendingOlderThan(i.maxAge)
	if err != nil {
		logger.WithError(err).Error("failed to list stale pending requests")
		return
	}
	for _, rec := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		text := fmt.Sprintf(
			"Reminder: the PTO request from %s (%s to %s) is still waiting for your decision.",
			rec.UserName, helpers.FormatISODate(rec.StartDate), helpers.FormatISODate(rec.EndDate),
		)
		if _, _, err := i.notifier.Notify(rec.ManagerID, text); err != nil {
			logger.
				WithError(err).
				WithField("request_id", rec.ID).
				Error("failed to send pending reminder")
			continue
		}
	}
}
