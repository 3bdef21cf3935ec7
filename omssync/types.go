package omssync

import (
	"encoding/json"
	"time"
)

const (
	// The OMS sends timestamps without seconds; rows store them with seconds.
	omsTimestampLayout   = "2006-01-02 15:04"
	storeTimestampLayout = "2006-01-02 15:04:05"
)

// NormalizeTimestamp converts an OMS webhook timestamp to the canonical
// storage form. It is pure; reconciliation fails before any write when a
// date does not parse.
func NormalizeTimestamp(value string) (string, error) {
	return normalizeTimestampField("timestamp", value)
}

func normalizeTimestampField(field string, value string) (string, error) {
	t, err := time.Parse(omsTimestampLayout, value)
	if err != nil {
		return "", &ValidationError{Field: field, Reason: "expected " + omsTimestampLayout + " timestamp"}
	}
	return t.Format(storeTimestampLayout), nil
}

type UpsertAdvertiserRequest struct {
	Name               string `json:"name" binding:"required"`
	SourceAdvertiserId string `json:"sourceAdvertiserId" binding:"required"`
}

type UpsertAdvertiserResponse struct {
	AdvertiserId       int    `json:"advertiserId"`
	SourceAdvertiserId string `json:"sourceAdvertiserId"`
}

// NumericField accepts any JSON scalar at bind time and keeps its text.
// Parsing happens during reconciliation so a non-numeric value becomes a
// per-line-item error row instead of rejecting the whole request.
type NumericField string

func (n *NumericField) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericField(s)
		return nil
	}
	if string(data) == "null" {
		*n = ""
		return nil
	}
	*n = NumericField(data)
	return nil
}

func (n NumericField) String() string { return string(n) }

type UpsertOrderRequest struct {
	OrderId            int                     `json:"orderId"`
	Name               string                  `json:"name" binding:"required"`
	SourceOrderId      string                  `json:"sourceOrderId" binding:"required"`
	StartDate          string                  `json:"startDate" binding:"required,omsdate"`
	EndDate            string                  `json:"endDate" binding:"required,omsdate"`
	AdvertiserId       int                     `json:"advertiserId" binding:"required"`
	SalesPersonEmailId string                  `json:"salesPersonEmailId"`
	SalesPersonName    string                  `json:"salesPersonName"`
	Lineitems          []UpsertLineItemRequest `json:"lineitems"`
}

type UpsertLineItemRequest struct {
	LineitemId       int          `json:"lineitemId"`
	Name             string       `json:"name" binding:"required"`
	SourceLineitemId string       `json:"sourceLineitemId" binding:"required"`
	StartDate        string       `json:"startDate" binding:"required,omsdate"`
	EndDate          string       `json:"endDate" binding:"required,omsdate"`
	CostType         string       `json:"costType"`
	Quantity         NumericField `json:"quantity"`
	UnitCost         NumericField `json:"unitCost"`
}

// LineItemResult echoes the source id next to the minted one so the OMS can
// map its records to ours.
type LineItemResult struct {
	LineitemId       string  `json:"lineitemId"`
	SourceLineitemId string  `json:"sourceLineitemId"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	ErrorMessage     *string `json:"errorMessage"`
}

type UpsertOrderResponse struct {
	OrderId   int              `json:"orderId"`
	Lineitems []LineItemResult `json:"lineitems"`
}

type TriggerCatalogSyncResponse struct {
	ID uint `json:"id"`
}

type CatalogSyncHistoryResponse struct {
	Items []CatalogSyncRunResponse `json:"items"`
}

type CatalogSyncRunResponse struct {
	ID            uint    `json:"id"`
	Status        string  `json:"status"`
	StartedAt     *string `json:"startedAt"`
	FinishedAt    *string `json:"finishedAt"`
	DurationMs    int64   `json:"durationMs"`
	RecordsSynced int     `json:"recordsSynced"`
	ErrorCount    int     `json:"errorCount"`
	TriggeredBy   string  `json:"triggeredBy"`
}

type CatalogSyncRunDetailResponse struct {
	CatalogSyncRunResponse
	Errors []CatalogSyncErrorResponse `json:"errors"`
}

type CatalogSyncErrorResponse struct {
	ID         uint   `json:"id"`
	EntityType string `json:"entityType"`
	ExternalId string `json:"externalId"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
		ID   string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type CatalogSyncPayload struct {
	RunId uint `json:"run_id"`
}
