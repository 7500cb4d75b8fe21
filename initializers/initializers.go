package initializers

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"pto-bot-backend/config"
	"pto-bot-backend/lib/escalation"
	xlsexport "pto-bot-backend/lib/export/xls"
	"pto-bot-backend/lib/extractor"
	slacknotify "pto-bot-backend/lib/notify/slack"
	ptohandler "pto-bot-backend/lib/pto"
	reminderworker "pto-bot-backend/lib/reminder/worker"
	reportworker "pto-bot-backend/lib/report/worker"
	"pto-bot-backend/lib/roster"
)

func InitAllServices(ctx context.Context) {
	InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitRedis()
	InitSmtp()
	extractor.NewHandler(config.Conf.YandexGPT.IAMToken, config.Conf.YandexGPT.CatalogID)
	slacknotify.NewHandler(config.Conf.Slack.BotToken)
	escalation.NewHandler()
	xlsexport.NewHandler()
	ptohandler.NewHandler()
	roster.NewHandler()
	go initWorkers(ctx)
}

// start with a gap between workers to spread the load
func initWorkers(ctx context.Context) {
	if *config.Conf.PTO.ReminderEnabled {
		// nudge managers about requests stuck in pending
		reminderworker.StartWorker(ctx)
	}

	if *config.Conf.S3.ReportEnabled {
		if !makeTimeGap(ctx) {
			return
		}
		storage, err := InitS3(ctx)
		if err != nil {
			log.WithError(err).Error("report storage unavailable, balance report worker not started")
			return
		}
		// daily balance snapshot for HR
		reportworker.StartWorker(ctx, storage)
	}
}

func makeTimeGap(ctx context.Context) (canRun bool) {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Second * 10):
		return true
	}
}
