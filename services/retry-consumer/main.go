package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/config"
)

// FailedDelivery mirrors the sync service's retry table.
type FailedDelivery struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	EventID      string     `json:"event_id" gorm:"not null"`
	CommunityID  uint       `json:"community_id" gorm:"not null;index"`
	Domain       string     `json:"domain" gorm:"not null"`
	EndPoint     string     `json:"end_point"`
	EventType    string     `json:"event_type" gorm:"not null"`
	ErrorMessage string     `json:"error_message" gorm:"not null"`
	RetryCount   int        `json:"retry_count" gorm:"default:0"`
	Status       string     `json:"status" gorm:"default:'pending';index"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func (FailedDelivery) TableName() string {
	return "failed_deliveries"
}

// RetryConsumer re-drives failed revalidation deliveries with exponential
// backoff until they succeed or exhaust their retry budget.
type RetryConsumer struct {
	db            *gorm.DB
	endpoint      string
	httpClient    *http.Client
	maxRetries    int
	batchSize     int
	checkInterval time.Duration
}

// NewRetryConsumer creates a new retry consumer
func NewRetryConsumer(db *gorm.DB, endpoint string) *RetryConsumer {
	return &RetryConsumer{
		db:       db,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries:    8,
		batchSize:     100,
		checkInterval: 30 * time.Second,
	}
}

// Run processes pending failed deliveries forever.
func (rc *RetryConsumer) Run() {
	logrus.Info("Starting retry consumer")

	for {
		var pending []FailedDelivery
		err := rc.db.Where("status = ? AND next_retry_at <= ?", "pending", time.Now()).
			Order("next_retry_at").
			Limit(rc.batchSize).
			Find(&pending).Error
		if err != nil {
			logrus.WithError(err).Error("Failed to fetch pending deliveries")
			time.Sleep(rc.checkInterval)
			continue
		}

		for i := range pending {
			rc.retry(&pending[i])
		}

		time.Sleep(rc.checkInterval)
	}
}

func (rc *RetryConsumer) retry(delivery *FailedDelivery) {
	err := rc.deliver(delivery)
	now := time.Now()

	if err == nil {
		delivery.Status = "resolved"
		delivery.ResolvedAt = &now
		delivery.NextRetryAt = nil
		if saveErr := rc.db.Save(delivery).Error; saveErr != nil {
			logrus.WithError(saveErr).Error("Failed to mark delivery resolved")
		}
		logrus.WithFields(logrus.Fields{
			"event_id": delivery.EventID,
			"domain":   delivery.Domain,
			"retries":  delivery.RetryCount,
		}).Info("Delivery resolved")
		return
	}

	delivery.RetryCount++
	delivery.ErrorMessage = err.Error()

	if delivery.RetryCount >= rc.maxRetries {
		delivery.Status = "abandoned"
		delivery.NextRetryAt = nil
		logrus.WithFields(logrus.Fields{
			"event_id": delivery.EventID,
			"domain":   delivery.Domain,
		}).Warn("Delivery abandoned after max retries")
	} else {
		// Backoff doubles per attempt: 1m, 2m, 4m, ...
		backoff := time.Duration(1<<uint(delivery.RetryCount)) * time.Minute / 2
		next := now.Add(backoff)
		delivery.NextRetryAt = &next
	}

	if saveErr := rc.db.Save(delivery).Error; saveErr != nil {
		logrus.WithError(saveErr).Error("Failed to update delivery after retry")
	}
}

func (rc *RetryConsumer) deliver(delivery *FailedDelivery) error {
	payload := map[string]interface{}{
		"event_type": delivery.EventType,
		"domain":     delivery.Domain,
		"end_point":  delivery.EndPoint,
		"timestamp":  time.Now(),
		"retry":      true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, rc.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call revalidation webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("revalidation webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	appConfig, err := config.LoadApp()
	if err != nil {
		log.Fatal("Failed to load application config:", err)
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&FailedDelivery{}); err != nil {
		log.Fatal("Failed to migrate failed deliveries table:", err)
	}

	consumer := NewRetryConsumer(db, appConfig.RevalidateEndpoint)
	consumer.Run()
}
