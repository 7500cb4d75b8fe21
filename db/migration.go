package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	dbmodels "pto-bot-backend/models/db"
)

func AutoMigrateDB() error {
	log.Info("running migrations")
	if err := DB.AutoMigrate(&dbmodels.PTORequest{}); err != nil {
		return errors.Wrap(err, "failed to migrate PTORequest")
	}
	if err := DB.AutoMigrate(&dbmodels.LeaveBalance{}); err != nil {
		return errors.Wrap(err, "failed to migrate LeaveBalance")
	}
	log.Info("migrations finished")
	return nil
}
