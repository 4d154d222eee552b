package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/utils"
)

// RevalidateClient notifies the frontend that a community's pages changed so
// it can rebuild the affected routes. A circuit breaker keeps a dead frontend
// from stalling consumption.
type RevalidateClient struct {
	endpoint    string
	httpClient  *http.Client
	breaker     *utils.CircuitBreaker
	mutex       sync.RWMutex
	lastSuccess time.Time
	lastError   error
}

// NewRevalidateClient creates a new revalidation client
func NewRevalidateClient(endpoint string) *RevalidateClient {
	return &RevalidateClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: utils.NewCircuitBreaker(5, 30*time.Second),
	}
}

// Revalidate posts the page event to the frontend webhook.
func (rc *RevalidateClient) Revalidate(event PageEvent) error {
	return rc.breaker.Call(func() error {
		return rc.post(event)
	})
}

func (rc *RevalidateClient) post(event PageEvent) error {
	payload := map[string]interface{}{
		"event_type": event.EventType,
		"domain":     event.Domain,
		"ident":      event.CommunityIdent,
		"end_point":  event.EndPoint,
		"timestamp":  time.Now(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		rc.recordFailure(err)
		return fmt.Errorf("failed to marshal revalidation payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, rc.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		rc.recordFailure(err)
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Community-Ident", event.CommunityIdent)

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		rc.recordFailure(err)
		return fmt.Errorf("failed to call revalidation webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("revalidation webhook returned status %d", resp.StatusCode)
		rc.recordFailure(err)
		return err
	}

	rc.mutex.Lock()
	rc.lastSuccess = time.Now()
	rc.lastError = nil
	rc.mutex.Unlock()
	return nil
}

func (rc *RevalidateClient) recordFailure(err error) {
	rc.mutex.Lock()
	rc.lastError = err
	rc.mutex.Unlock()
}

// Status reports the client's view of the frontend webhook.
func (rc *RevalidateClient) Status() map[string]interface{} {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()

	status := map[string]interface{}{
		"endpoint":      rc.endpoint,
		"breaker_state": string(rc.breaker.GetState()),
		"last_success":  rc.lastSuccess,
	}
	if rc.lastError != nil {
		status["last_error"] = rc.lastError.Error()
	}
	return status
}

// handleGetSyncStatus reports webhook connectivity.
func handleGetSyncStatus(client *RevalidateClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.OKResponse(c, "Sync status retrieved successfully", client.Status())
	}
}

// handleGetFailedDeliveries lists deliveries awaiting retry.
func handleGetFailedDeliveries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var failed []FailedDelivery
		if err := db.Where("status = ?", "pending").Order("next_retry_at").Limit(100).Find(&failed).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch failed deliveries")
			return
		}
		utils.OKResponse(c, "Failed deliveries retrieved successfully", failed)
	}
}
