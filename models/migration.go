package models

import (
	"log"

	"github.com/mmdatafocus/adsync_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Advertiser{}, &Order{}, &LineItem{},
		&CatalogSyncRun{}, &CatalogSyncError{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
