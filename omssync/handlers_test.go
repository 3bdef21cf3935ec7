package omssync

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/adsync_backend/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.RegisterCustomValidations()
	os.Exit(m.Run())
}

func newTestService(store IdentityStore) (*Service, *httptest.Server, *atomic.Int32) {
	var deliveryCalls atomic.Int32
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deliveryCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))

	scheduler := &DeliveryScheduler{
		baseURL: downstream.URL,
		delay:   10 * time.Millisecond,
		http:    downstream.Client(),
	}
	return NewService(store, scheduler), downstream, &deliveryCalls
}

func performJSON(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/", handler)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpsertAdvertiserHandler(t *testing.T) {
	store := newFakeStore()
	service, downstream, _ := newTestService(store)
	defer downstream.Close()

	w := performJSON(service.UpsertAdvertiserHandler(), `{"name":"Acme Motors","sourceAdvertiserId":"adv-900"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp UpsertAdvertiserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AdvertiserId != 1 || resp.SourceAdvertiserId != "adv-900" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Repeat with same name returns the same id.
	w = performJSON(service.UpsertAdvertiserHandler(), `{"name":"Acme Motors","sourceAdvertiserId":"adv-999"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AdvertiserId != 1 {
		t.Fatalf("expected stable id 1, got %d", resp.AdvertiserId)
	}
}

func TestUpsertAdvertiserHandler_BadJSON(t *testing.T) {
	store := newFakeStore()
	service, downstream, _ := newTestService(store)
	defer downstream.Close()

	w := performJSON(service.UpsertAdvertiserHandler(), `not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpsertOrderHandler_MintsOrderAndLineItems(t *testing.T) {
	store := newFakeStore()
	service, downstream, _ := newTestService(store)
	defer downstream.Close()

	body := `{
		"orderId": 1,
		"name": "Spring Push",
		"sourceOrderId": "ord-1",
		"startDate": "2024-03-01 09:00",
		"endDate": "2024-03-31 18:00",
		"advertiserId": 1,
		"lineitems": [
			{
				"lineitemId": 1,
				"name": "Banner 300x250",
				"sourceLineitemId": "li-55",
				"startDate": "2024-03-01 09:00",
				"endDate": "2024-03-31 18:00",
				"costType": "CPM",
				"quantity": 3,
				"unitCost": 12.5
			}
		]
	}`
	w := performJSON(service.UpsertOrderHandler(), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp UpsertOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrderId != 1 {
		t.Fatalf("expected minted order id 1, got %d", resp.OrderId)
	}
	if len(resp.Lineitems) != 1 {
		t.Fatalf("expected 1 line item result, got %d", len(resp.Lineitems))
	}
	li := resp.Lineitems[0]
	if li.Status != "success" || li.LineitemId != "1" || li.SourceLineitemId != "li-55" {
		t.Fatalf("unexpected line item result: %+v", li)
	}
	if li.ErrorMessage != nil {
		t.Fatalf("expected no error message, got %q", *li.ErrorMessage)
	}

	item := store.lineItems[1]
	if item == nil {
		t.Fatal("line item not stored")
	}
	if item.OrderId != 1 {
		t.Fatalf("expected line item attached to order 1, got %d", item.OrderId)
	}
}

func TestUpsertOrderHandler_LineItemValidationBecomesErrorRow(t *testing.T) {
	store := newFakeStore()
	service, downstream, _ := newTestService(store)
	defer downstream.Close()

	body := `{
		"orderId": 0,
		"name": "Mixed",
		"sourceOrderId": "ord-2",
		"startDate": "2024-03-01 09:00",
		"endDate": "2024-03-31 18:00",
		"advertiserId": 1,
		"lineitems": [
			{
				"lineitemId": 0,
				"name": "Good",
				"sourceLineitemId": "li-1",
				"startDate": "2024-03-01 09:00",
				"endDate": "2024-03-31 18:00",
				"quantity": 1,
				"unitCost": 2
			},
			{
				"lineitemId": 0,
				"name": "Bad",
				"sourceLineitemId": "li-2",
				"startDate": "2024-03-01 09:00",
				"endDate": "2024-03-31 18:00",
				"quantity": "many",
				"unitCost": 2
			}
		]
	}`
	w := performJSON(service.UpsertOrderHandler(), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with per-item errors, got %d: %s", w.Code, w.Body.String())
	}

	var resp UpsertOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Lineitems) != 2 {
		t.Fatalf("expected 2 line item results, got %d", len(resp.Lineitems))
	}
	if resp.Lineitems[0].Status != "success" {
		t.Fatalf("expected first item success, got %+v", resp.Lineitems[0])
	}
	if resp.Lineitems[1].Status != "error" || resp.Lineitems[1].ErrorMessage == nil {
		t.Fatalf("expected second item error row, got %+v", resp.Lineitems[1])
	}
	if len(store.lineItems) != 1 {
		t.Fatalf("expected only the valid item stored, got %d", len(store.lineItems))
	}
}

func TestUpsertOrderHandler_BadOrderDateIs400(t *testing.T) {
	store := newFakeStore()
	service, downstream, _ := newTestService(store)
	defer downstream.Close()

	body := `{
		"orderId": 1,
		"name": "Broken",
		"sourceOrderId": "ord-3",
		"startDate": "2024-13-40 99:99",
		"endDate": "2024-03-31 18:00",
		"advertiserId": 1
	}`
	w := performJSON(service.UpsertOrderHandler(), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.orders) != 0 {
		t.Fatal("bad order date must not create a row")
	}
}

func TestUpsertOrderHandler_SchedulesDelivery(t *testing.T) {
	store := newFakeStore()
	service, downstream, calls := newTestService(store)
	defer downstream.Close()

	body := `{
		"orderId": 0,
		"name": "Trigger Check",
		"sourceOrderId": "ord-4",
		"startDate": "2024-03-01 09:00",
		"endDate": "2024-03-31 18:00",
		"advertiserId": 1
	}`
	w := performJSON(service.UpsertOrderHandler(), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if calls.Load() != 0 {
		t.Fatal("delivery must not fire before the delay")
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 delivery call, got %d", calls.Load())
	}
}
