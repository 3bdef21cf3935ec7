package omssync

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mmdatafocus/adsync_backend/config"
	"github.com/mmdatafocus/adsync_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// processCatalogSyncRun drives one queued catalog run to a terminal status.
// Re-delivery of an already-finished run is a no-op.
func processCatalogSyncRun(ctx context.Context, payload CatalogSyncPayload) error {
	if payload.RunId == 0 {
		return errors.New("invalid payload")
	}

	db := config.GetDB().WithContext(ctx)

	var run models.CatalogSyncRun
	if err := db.Where("id = ?", payload.RunId).Take(&run).Error; err != nil {
		return err
	}

	if run.Status == models.SyncRunStatusSuccess || run.Status == models.SyncRunStatusFailed || run.Status == models.SyncRunStatusPartial {
		return nil
	}

	now := time.Now()
	startedAt := run.StartedAt
	if startedAt == nil {
		startedAt = &now
	}

	if err := db.Model(&run).Updates(map[string]interface{}{
		"status":     models.SyncRunStatusRunning,
		"started_at": startedAt,
	}).Error; err != nil {
		return err
	}

	stats := map[string]int{
		"fetched": 0,
		"pushed":  0,
	}
	errorCount := 0
	totalSynced := 0

	products, err := fetchCatalogProducts(ctx)
	if err != nil {
		errorCount++
		_ = createCatalogSyncError(ctx, db, run.ID, "product", "", "fetch_failed", err.Error(), nil, true)
	} else {
		stats["fetched"] = len(products)

		if config.CatalogPushDryRun() {
			config.GetLogger().WithFields(logrus.Fields{
				"runId":    run.ID,
				"products": len(products),
			}).Info("dry run, skipping catalog push")
			totalSynced = len(products)
		} else if err := pushCatalogProducts(ctx, products); err != nil {
			errorCount++
			_ = createCatalogSyncError(ctx, db, run.ID, "product", "", "push_failed", err.Error(), nil, true)
		} else {
			stats["pushed"] = len(products)
			totalSynced = len(products)
		}
	}

	finishedAt := time.Now()
	durationMs := finishedAt.Sub(*startedAt).Milliseconds()
	status := models.SyncRunStatusSuccess
	if errorCount > 0 && totalSynced == 0 {
		status = models.SyncRunStatusFailed
	} else if errorCount > 0 {
		status = models.SyncRunStatusPartial
	}

	statsJSON, _ := json.Marshal(stats)
	return db.Model(&run).Updates(map[string]interface{}{
		"status":         status,
		"finished_at":    finishedAt,
		"duration_ms":    durationMs,
		"records_synced": totalSynced,
		"error_count":    errorCount,
		"stats_json":     statsJSON,
	}).Error
}

func fetchCatalogProducts(ctx context.Context) ([]CatalogProduct, error) {
	creds, err := LoadCredentials(catalogCredentialsName())
	if err != nil {
		return nil, err
	}
	client, err := newO1Client(creds.O1)
	if err != nil {
		return nil, err
	}
	return client.FetchProducts(ctx)
}

func pushCatalogProducts(ctx context.Context, products []CatalogProduct) error {
	creds, err := LoadCredentials(catalogCredentialsName())
	if err != nil {
		return err
	}
	client, err := newAOSClient(creds.AOS)
	if err != nil {
		return err
	}

	values := make([]PsFieldValue, 0, len(products))
	for _, p := range products {
		values = append(values, PsFieldValue{
			ExternalId: p.ExternalId,
			Status:     p.Status,
			Value:      p.Name,
		})
	}
	return client.PushFieldValues(ctx, values)
}

func createCatalogSyncError(ctx context.Context, db *gorm.DB, runId uint, entityType string, externalId string, code string, message string, payload []byte, retryable bool) error {
	errRec := models.CatalogSyncError{
		SyncRunId:   runId,
		EntityType:  entityType,
		ExternalId:  externalId,
		ErrorCode:   code,
		Message:     message,
		PayloadJSON: payload,
		Retryable:   retryable,
	}
	return db.WithContext(ctx).Create(&errRec).Error
}
