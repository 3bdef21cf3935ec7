package omssync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/adsync_backend/config"
)

const defaultDeliveryDelay = 5 * time.Second

// DeliveryScheduler fires the downstream "generate delivery data" call a
// fixed delay after an order reconciliation completes, on its own goroutine.
// The caller's response never waits on it and never sees its failures; those
// are logged and dropped.
type DeliveryScheduler struct {
	baseURL string
	delay   time.Duration
	http    *http.Client
}

func NewDeliveryScheduler() *DeliveryScheduler {
	baseURL := strings.TrimSpace(os.Getenv("DELIVERY_API_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8081"
	}
	delay := defaultDeliveryDelay
	if v := strings.TrimSpace(os.Getenv("DELIVERY_TRIGGER_DELAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			delay = time.Duration(n) * time.Second
		}
	}
	return &DeliveryScheduler{
		baseURL: strings.TrimRight(baseURL, "/"),
		delay:   delay,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Schedule is fire-and-forget: once scheduled the delay always elapses and
// the call always goes out (barring process shutdown). No cancellation.
func (s *DeliveryScheduler) Schedule(orderId int, authHeader string) {
	go func() {
		time.Sleep(s.delay)
		if err := s.generateDeliveryData(context.Background(), orderId, authHeader); err != nil {
			config.LogError(config.GetLogger(), "delivery.go", "Schedule", "generate delivery data", orderId, err)
		}
	}()
}

func (s *DeliveryScheduler) generateDeliveryData(ctx context.Context, orderId int, authHeader string) error {
	payload, _ := json.Marshal(map[string]int{"orderId": orderId})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/delivery/generate", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delivery api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
