package omssync

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mmdatafocus/adsync_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStore(gormDB), mock, mockDB
}

func TestGormStore_AdvertiserByName(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "external_id", "name", "created_at", "updated_at"}).
			AddRow(3, "adv-900", "Acme Motors", now, now)

		mock.ExpectQuery("SELECT \\* FROM `advertisers` WHERE name = \\?").
			WillReturnRows(rows)

		adv, err := store.AdvertiserByName(context.Background(), "Acme Motors")
		assert.NoError(t, err)
		require.NotNil(t, adv)
		assert.Equal(t, 3, adv.ID)
		assert.Equal(t, "adv-900", adv.ExternalId)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found is a clean miss", func(t *testing.T) {
		store, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectQuery("SELECT \\* FROM `advertisers` WHERE name = \\?").
			WillReturnError(gorm.ErrRecordNotFound)

		adv, err := store.AdvertiserByName(context.Background(), "Nobody")
		assert.NoError(t, err)
		assert.Nil(t, adv)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_OrderByID_NotFound(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT \\* FROM `orders` WHERE id = \\?").
		WillReturnError(gorm.ErrRecordNotFound)

	order, err := store.OrderByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CreateOrder_MintsLockedMaxPlusOne(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(id\\), 0\\) FROM `orders` FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(MAX(id), 0)"}).AddRow(4))
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	order := &models.Order{
		Name:      "Spring Push",
		OmsId:     "ord-1",
		StartDate: "2024-03-01 09:00:00",
		EndDate:   "2024-03-31 18:00:00",
	}
	err := store.CreateOrder(context.Background(), order)
	assert.NoError(t, err)
	assert.Equal(t, 5, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CreateOrder_EmptyTableMintsOne(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(id\\), 0\\) FROM `orders` FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(MAX(id), 0)"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	order := &models.Order{Name: "First", OmsId: "ord-0"}
	err := store.CreateOrder(context.Background(), order)
	assert.NoError(t, err)
	assert.Equal(t, 1, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CreateOrder_InsertFailureRollsBack(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(id\\), 0\\) FROM `orders` FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(MAX(id), 0)"}).AddRow(2))
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := store.CreateOrder(context.Background(), &models.Order{Name: "Doomed"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpdateLineItem(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectExec("UPDATE `line_items` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateLineItem(context.Background(), &models.LineItem{
		ID:    1,
		Name:  "Banner 300x250",
		OmsId: "li-55",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
