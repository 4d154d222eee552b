package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// PageEvent is a page-change notification published to the page-events topic.
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

// KafkaProducer publishes page events through a buffered worker pool so
// request handlers never block on the broker.
type KafkaProducer struct {
	writer        *kafka.Writer
	pageEventChan chan PageEvent
	workerCount   int
	shutdownChan  chan struct{}
	wg            sync.WaitGroup
}

// NewKafkaProducer creates a new Kafka producer with worker pool
func NewKafkaProducer(broker string) (*KafkaProducer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        "page-events",
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	kp := &KafkaProducer{
		writer:        writer,
		pageEventChan: make(chan PageEvent, 1000),
		workerCount:   10,
		shutdownChan:  make(chan struct{}),
	}

	kp.startWorkers()
	return kp, nil
}

func (kp *KafkaProducer) startWorkers() {
	for i := 0; i < kp.workerCount; i++ {
		kp.wg.Add(1)
		go kp.pageEventWorker(i)
	}
	logrus.Infof("Started %d page event workers", kp.workerCount)
}

func (kp *KafkaProducer) pageEventWorker(id int) {
	defer kp.wg.Done()

	for {
		select {
		case event := <-kp.pageEventChan:
			if err := kp.sendPageEventSync(event); err != nil {
				logrus.WithError(err).Warnf("Worker %d failed to send page event", id)
			}
		case <-kp.shutdownChan:
			return
		}
	}
}

// SendPageEvent queues a page event asynchronously (non-blocking)
func (kp *KafkaProducer) SendPageEvent(event PageEvent) error {
	select {
	case kp.pageEventChan <- event:
		return nil
	default:
		return fmt.Errorf("page event queue full, event dropped")
	}
}

func (kp *KafkaProducer) sendPageEventSync(event PageEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal page event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return kp.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CommunityIdent),
		Value: value,
	})
}

// Close drains the worker pool and closes the writer.
func (kp *KafkaProducer) Close() error {
	close(kp.shutdownChan)
	kp.wg.Wait()
	return kp.writer.Close()
}
