package omssync

import (
	"context"
	"strconv"
	"strings"

	"github.com/mmdatafocus/adsync_backend/models"
	"github.com/shopspring/decimal"
)

// Reconciler matches incoming OMS entity descriptions against the identity
// store and mints surrogate ids for the ones it has never seen. It keeps no
// state between calls; existence is re-derived on every invocation.
type Reconciler struct {
	store IdentityStore
}

func NewReconciler(store IdentityStore) *Reconciler {
	return &Reconciler{store: store}
}

// ReconcileAdvertiser matches by exact name only. A hit returns the stored id
// untouched and writes nothing; the OMS-supplied advertiser id is ignored on
// the match path so repeated webhooks for one name de-duplicate.
func (r *Reconciler) ReconcileAdvertiser(ctx context.Context, req UpsertAdvertiserRequest) (int, bool, error) {
	existing, err := r.store.AdvertiserByName(ctx, req.Name)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	adv := models.Advertiser{
		Name:       req.Name,
		ExternalId: req.SourceAdvertiserId,
	}
	if err := r.store.CreateAdvertiser(ctx, &adv); err != nil {
		return 0, false, err
	}
	return adv.ID, true, nil
}

// ReconcileOrder updates in place when the caller-asserted id exists; an
// unknown or absent id takes the create path. Dates are normalized before
// any write, so a bad date leaves the store untouched.
func (r *Reconciler) ReconcileOrder(ctx context.Context, req UpsertOrderRequest) (int, bool, error) {
	startDate, err := normalizeTimestampField("startDate", req.StartDate)
	if err != nil {
		return 0, false, err
	}
	endDate, err := normalizeTimestampField("endDate", req.EndDate)
	if err != nil {
		return 0, false, err
	}

	order := models.Order{
		ID:                 req.OrderId,
		Name:               req.Name,
		OmsId:              req.SourceOrderId,
		StartDate:          startDate,
		EndDate:            endDate,
		AdvertiserId:       req.AdvertiserId,
		SalespersonEmailId: req.SalesPersonEmailId,
		SalespersonName:    req.SalesPersonName,
	}

	if req.OrderId > 0 {
		existing, err := r.store.OrderByID(ctx, req.OrderId)
		if err != nil {
			return 0, false, err
		}
		if existing != nil {
			if err := r.store.UpdateOrder(ctx, &order); err != nil {
				return 0, false, err
			}
			return order.ID, false, nil
		}
	}

	order.ID = 0
	if err := r.store.CreateOrder(ctx, &order); err != nil {
		return 0, false, err
	}
	return order.ID, true, nil
}

// ReconcileLineItem follows the same id semantics as ReconcileOrder. The
// order and advertiser ids come from the already-reconciled parent, never
// from the payload, so a line item can only attach to a known order.
func (r *Reconciler) ReconcileLineItem(ctx context.Context, req UpsertLineItemRequest, orderId int, advertiserId int) (int, bool, error) {
	startDate, err := normalizeTimestampField("startDate", req.StartDate)
	if err != nil {
		return 0, false, err
	}
	endDate, err := normalizeTimestampField("endDate", req.EndDate)
	if err != nil {
		return 0, false, err
	}
	quantity, err := intFromNumber("quantity", req.Quantity)
	if err != nil {
		return 0, false, err
	}
	unitCost, err := decimalFromNumber("unitCost", req.UnitCost)
	if err != nil {
		return 0, false, err
	}

	item := models.LineItem{
		ID:           req.LineitemId,
		Name:         req.Name,
		OmsId:        req.SourceLineitemId,
		StartDate:    startDate,
		EndDate:      endDate,
		CostMethod:   req.CostType,
		Quantity:     quantity,
		UnitCost:     unitCost,
		OrderId:      orderId,
		AdvertiserId: advertiserId,
	}

	if req.LineitemId > 0 {
		existing, err := r.store.LineItemByID(ctx, req.LineitemId)
		if err != nil {
			return 0, false, err
		}
		if existing != nil {
			if err := r.store.UpdateLineItem(ctx, &item); err != nil {
				return 0, false, err
			}
			return item.ID, false, nil
		}
	}

	item.ID = 0
	if err := r.store.CreateLineItem(ctx, &item); err != nil {
		return 0, false, err
	}
	return item.ID, true, nil
}

func intFromNumber(field string, num NumericField) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(num.String()))
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "must be an integer"}
	}
	return n, nil
}

func decimalFromNumber(field string, num NumericField) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(num.String()))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must be a decimal number"}
	}
	return d, nil
}
