package reportworker

import (
	"context"
	"fmt"
	"time"

	"pto-bot-backend/db"
	balancestore "pto-bot-backend/lib/balance/store"
	xlsexport "pto-bot-backend/lib/export/xls"
	baseworker "pto-bot-backend/lib/utils/base-worker"
	s3client "pto-bot-backend/s3"
)

// Uploads a fresh balance report to the report bucket once a day, so
// HR has a snapshot even when the admin API is never called.

func StartWorker(ctx context.Context, storage s3client.Provider) {
	i := &impl{
		BaseImpl:     *baseworker.NewInstance("BalanceReportWorker", 30*time.Second, 24*time.Hour),
		balanceStore: balancestore.NewInstance(db.DB),
		storage:      storage,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	balanceStore balancestore.Provider
	storage      s3client.Provider
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	list, err := i.balanceStore.List()
	if err != nil {
		logger.WithError(err).Error("failed to list balances for report")
		return
	}
	buf, err := xlsexport.Instance.ExportBalances(list)
	if err != nil {
		logger.WithError(err).Error("failed to build balance report")
		return
	}
	objectName := fmt.Sprintf("balances/%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	err = i.storage.Upload(ctx, objectName, buf,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err != nil {
		logger.WithError(err).Errorf("failed to upload balance report %v", objectName)
		return
	}
	logger.Infof("balance report uploaded: %v", objectName)
}
