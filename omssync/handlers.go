package omssync

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/adsync_backend/config"
	"github.com/mmdatafocus/adsync_backend/models"
	"github.com/mmdatafocus/adsync_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service bundles the reconciler with the delivery scheduler so handlers share
// one wired instance.
type Service struct {
	rec      *Reconciler
	delivery *DeliveryScheduler
}

func NewService(store IdentityStore, delivery *DeliveryScheduler) *Service {
	return &Service{
		rec:      NewReconciler(store),
		delivery: delivery,
	}
}

func (s *Service) UpsertAdvertiserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpsertAdvertiserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		id, _, err := s.rec.ReconcileAdvertiser(c.Request.Context(), req)
		if err != nil {
			if IsValidationError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, UpsertAdvertiserResponse{
			AdvertiserId:       id,
			SourceAdvertiserId: req.SourceAdvertiserId,
		})
	}
}

// UpsertOrderHandler reconciles the order, then its line items one by one. A
// line item that fails validation becomes an error row in the response; a
// store failure aborts the whole request. On success the delivery trigger is
// scheduled and the response returns immediately.
func (s *Service) UpsertOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpsertOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		ctx := c.Request.Context()

		orderId, _, err := s.rec.ReconcileOrder(ctx, req)
		if err != nil {
			if IsValidationError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		results := make([]LineItemResult, 0, len(req.Lineitems))
		for _, li := range req.Lineitems {
			itemId, _, err := s.rec.ReconcileLineItem(ctx, li, orderId, req.AdvertiserId)
			if err != nil {
				if IsValidationError(err) {
					msg := err.Error()
					results = append(results, LineItemResult{
						LineitemId:       strconv.Itoa(li.LineitemId),
						SourceLineitemId: li.SourceLineitemId,
						Name:             li.Name,
						Status:           models.LineItemStatusError,
						ErrorMessage:     &msg,
					})
					continue
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			results = append(results, LineItemResult{
				LineitemId:       strconv.Itoa(itemId),
				SourceLineitemId: li.SourceLineitemId,
				Name:             li.Name,
				Status:           models.LineItemStatusSuccess,
			})
		}

		authHeader, _ := utils.GetAuthHeaderFromContext(ctx)
		if authHeader == "" {
			authHeader = c.GetHeader("Authorization")
		}
		s.delivery.Schedule(orderId, authHeader)

		c.JSON(http.StatusOK, UpsertOrderResponse{
			OrderId:   orderId,
			Lineitems: results,
		})
	}
}

func TriggerCatalogSyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB().WithContext(c.Request.Context())

		run := models.CatalogSyncRun{
			Provider:    models.CatalogProviderO1,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredManual,
		}
		if err := db.Create(&run).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		caller, _ := utils.GetCallerFromContext(c.Request.Context())
		config.GetLogger().WithFields(logrus.Fields{
			"runId":  run.ID,
			"caller": caller,
		}).Info("catalog sync triggered")

		_ = PublishCatalogSyncRun(c.Request.Context(), run.ID)

		c.JSON(http.StatusOK, TriggerCatalogSyncResponse{ID: run.ID})
	}
}

func CatalogSyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		db := config.GetDB().WithContext(c.Request.Context())

		var runs []models.CatalogSyncRun
		if err := db.Where("provider = ?", models.CatalogProviderO1).
			Order("id desc").
			Limit(limit).
			Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]CatalogSyncRunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, CatalogSyncHistoryResponse{Items: items})
	}
}

func CatalogSyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())

		var run models.CatalogSyncRun
		if err := db.Where("id = ?", id).Take(&run).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var errs []models.CatalogSyncError
		if err := db.Where("sync_run_id = ?", run.ID).Order("id desc").Find(&errs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, CatalogSyncRunDetailResponse{
			CatalogSyncRunResponse: mapRunToResponse(run),
			Errors:                 mapErrors(errs),
		})
	}
}

func RetryCatalogSyncRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())

		var run models.CatalogSyncRun
		if err := db.Where("id = ?", id).Take(&run).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		newRun := models.CatalogSyncRun{
			Provider:    run.Provider,
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredRetry,
			ParentRunId: &run.ID,
		}
		if err := db.Create(&newRun).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		caller, _ := utils.GetCallerFromContext(c.Request.Context())
		config.GetLogger().WithFields(logrus.Fields{
			"runId":       newRun.ID,
			"parentRunId": run.ID,
			"caller":      caller,
		}).Info("catalog sync retry triggered")

		_ = PublishCatalogSyncRun(c.Request.Context(), newRun.ID)

		c.JSON(http.StatusOK, TriggerCatalogSyncResponse{ID: newRun.ID})
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapRunToResponse(run models.CatalogSyncRun) CatalogSyncRunResponse {
	return CatalogSyncRunResponse{
		ID:            run.ID,
		Status:        run.Status,
		StartedAt:     formatTime(run.StartedAt),
		FinishedAt:    formatTime(run.FinishedAt),
		DurationMs:    run.DurationMs,
		RecordsSynced: run.RecordsSynced,
		ErrorCount:    run.ErrorCount,
		TriggeredBy:   run.TriggeredBy,
	}
}

func mapErrors(errorsList []models.CatalogSyncError) []CatalogSyncErrorResponse {
	out := make([]CatalogSyncErrorResponse, 0, len(errorsList))
	for _, errItem := range errorsList {
		out = append(out, CatalogSyncErrorResponse{
			ID:         errItem.ID,
			EntityType: errItem.EntityType,
			ExternalId: errItem.ExternalId,
			Message:    errItem.Message,
			Retryable:  errItem.Retryable,
		})
	}
	return out
}
