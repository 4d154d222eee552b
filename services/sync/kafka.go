package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PageEvent mirrors the payload published by the pages service.
type PageEvent struct {
	ID             string    `json:"id"`
	CommunityID    uint      `json:"community_id"`
	CommunityIdent string    `json:"community_ident"`
	Domain         string    `json:"domain"`
	PageID         uint      `json:"page_id"`
	EndPoint       string    `json:"end_point"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
}

// FailedDelivery records a revalidation call that could not be completed, for
// the retry consumer to pick up.
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

// KafkaConsumer handles page-event consumption.
type KafkaConsumer struct {
	pageReader *kafka.Reader
	db         *gorm.DB
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(broker string, db *gorm.DB) (*KafkaConsumer, error) {
	if err := db.AutoMigrate(&FailedDelivery{}); err != nil {
		return nil, fmt.Errorf("failed to migrate failed deliveries table: %w", err)
	}

	pageReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          "page-events",
		GroupID:        "sync-service",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &KafkaConsumer{pageReader: pageReader, db: db}, nil
}

// ConsumePageEvents reads page-change events and pushes revalidation calls to
// the frontend. Delivery failures are stored for retry instead of blocking
// the consumer.
func (kc *KafkaConsumer) ConsumePageEvents(client *RevalidateClient) {
	logrus.Info("Starting page events consumer")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		msg, err := kc.pageReader.ReadMessage(ctx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logrus.WithError(err).Warn("Error reading page event")
			time.Sleep(1 * time.Second)
			continue
		}

		var event PageEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logrus.WithError(err).Warn("Error unmarshaling page event")
			continue
		}

		if err := client.Revalidate(event); err != nil {
			logrus.WithFields(logrus.Fields{
				"event_id": event.ID,
				"domain":   event.Domain,
				"error":    err,
			}).Warn("Revalidation failed, storing for retry")
			kc.storeFailedDelivery(event, err)
		}
	}
}

func (kc *KafkaConsumer) storeFailedDelivery(event PageEvent, cause error) {
	nextRetryAt := time.Now().Add(1 * time.Minute)
	failed := FailedDelivery{
		EventID:      event.ID,
		CommunityID:  event.CommunityID,
		Domain:       event.Domain,
		EndPoint:     event.EndPoint,
		EventType:    event.EventType,
		ErrorMessage: cause.Error(),
		Status:       "pending",
		NextRetryAt:  &nextRetryAt,
	}
	if err := kc.db.Create(&failed).Error; err != nil {
		logrus.WithError(err).Error("Failed to store failed delivery")
	}
}

// Close closes the Kafka consumer
func (kc *KafkaConsumer) Close() error {
	if err := kc.pageReader.Close(); err != nil {
		return fmt.Errorf("failed to close page reader: %w", err)
	}
	return nil
}
