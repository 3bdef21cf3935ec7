package omssync

import (
	"context"
	"errors"

	"github.com/mmdatafocus/adsync_backend/config"
	"github.com/mmdatafocus/adsync_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityStore is the persistence boundary the reconciler works against:
// point lookup by id, business-key lookup for advertisers, insert, update.
// Inserts mint the surrogate id and write it back onto the row.
type IdentityStore interface {
	AdvertiserByName(ctx context.Context, name string) (*models.Advertiser, error)
	CreateAdvertiser(ctx context.Context, adv *models.Advertiser) error

	OrderByID(ctx context.Context, id int) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error

	LineItemByID(ctx context.Context, id int) (*models.LineItem, error)
	CreateLineItem(ctx context.Context, item *models.LineItem) error
	UpdateLineItem(ctx context.Context, item *models.LineItem) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// LazyGormStore resolves the shared gorm handle on every call. The service
// starts listening before the database connects, so the handle cannot be
// captured at wiring time.
type LazyGormStore struct{}

func NewLazyGormStore() *LazyGormStore {
	return &LazyGormStore{}
}

func (s *LazyGormStore) AdvertiserByName(ctx context.Context, name string) (*models.Advertiser, error) {
	return NewGormStore(config.GetDB()).AdvertiserByName(ctx, name)
}

func (s *LazyGormStore) CreateAdvertiser(ctx context.Context, adv *models.Advertiser) error {
	return NewGormStore(config.GetDB()).CreateAdvertiser(ctx, adv)
}

func (s *LazyGormStore) OrderByID(ctx context.Context, id int) (*models.Order, error) {
	return NewGormStore(config.GetDB()).OrderByID(ctx, id)
}

func (s *LazyGormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return NewGormStore(config.GetDB()).CreateOrder(ctx, order)
}

func (s *LazyGormStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	return NewGormStore(config.GetDB()).UpdateOrder(ctx, order)
}

func (s *LazyGormStore) LineItemByID(ctx context.Context, id int) (*models.LineItem, error) {
	return NewGormStore(config.GetDB()).LineItemByID(ctx, id)
}

func (s *LazyGormStore) CreateLineItem(ctx context.Context, item *models.LineItem) error {
	return NewGormStore(config.GetDB()).CreateLineItem(ctx, item)
}

func (s *LazyGormStore) UpdateLineItem(ctx context.Context, item *models.LineItem) error {
	return NewGormStore(config.GetDB()).UpdateLineItem(ctx, item)
}

func (s *GormStore) AdvertiserByName(ctx context.Context, name string) (*models.Advertiser, error) {
	var adv models.Advertiser
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&adv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &adv, nil
}

func (s *GormStore) CreateAdvertiser(ctx context.Context, adv *models.Advertiser) error {
	return s.createWithMintedID(ctx, &models.Advertiser{}, func(id int) error {
		adv.ID = id
		return nil
	}, adv)
}

func (s *GormStore) OrderByID(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.createWithMintedID(ctx, &models.Order{}, func(id int) error {
		order.ID = id
		return nil
	}, order)
}

func (s *GormStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"name":                 order.Name,
			"oms_id":               order.OmsId,
			"start_date":           order.StartDate,
			"end_date":             order.EndDate,
			"advertiser_id":        order.AdvertiserId,
			"salesperson_email_id": order.SalespersonEmailId,
			"salesperson_name":     order.SalespersonName,
		}).Error
}

func (s *GormStore) LineItemByID(ctx context.Context, id int) (*models.LineItem, error) {
	var item models.LineItem
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *GormStore) CreateLineItem(ctx context.Context, item *models.LineItem) error {
	return s.createWithMintedID(ctx, &models.LineItem{}, func(id int) error {
		item.ID = id
		return nil
	}, item)
}

func (s *GormStore) UpdateLineItem(ctx context.Context, item *models.LineItem) error {
	return s.db.WithContext(ctx).Model(&models.LineItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":          item.Name,
			"oms_id":        item.OmsId,
			"start_date":    item.StartDate,
			"end_date":      item.EndDate,
			"cost_method":   item.CostMethod,
			"quantity":      item.Quantity,
			"unit_cost":     item.UnitCost,
			"order_id":      item.OrderId,
			"advertiser_id": item.AdvertiserId,
		}).Error
}

// createWithMintedID allocates id = max(existing)+1 and inserts, both inside
// one transaction. The max-id read takes a FOR UPDATE lock so two concurrent
// creates for the same table cannot mint the same id.
func (s *GormStore) createWithMintedID(ctx context.Context, model interface{}, setID func(id int) error, row interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int
		err := tx.Model(model).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("COALESCE(MAX(id), 0)").
			Scan(&maxID).Error
		if err != nil {
			return err
		}
		if err := setID(maxID + 1); err != nil {
			return err
		}
		return tx.Create(row).Error
	})
}
