// Package notification delivers web-push notifications to waitstaff
// devices subscribed to tables. Delivery runs on a worker pool, fed
// fire-and-forget from the order lifecycle.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"comanda-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case tableID := <-wp.jobs:
			wp.sendNotificationsForTable(ctx, tableID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a notification run for a table. It never blocks the
// caller: if the queue is full the run is dropped and logged.
func (wp *WorkerPool) Dispatch(tableID int64) {
	select {
	case wp.jobs <- tableID:
	default:
		log.Printf("notification queue full, dropping push for table %d", tableID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// sendNotificationsForTable pushes to every device subscribed to the table.
func (wp *WorkerPool) sendNotificationsForTable(ctx context.Context, tableID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_table_mapping stm ON stm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("stm.table_id = ?", tableID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for table %d: %v", tableID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	tableLabel := fmt.Sprintf("%d", tableID)
	var table model.Table
	if err := wp.db.WithContext(ctx).
		Select("number").
		First(&table, tableID).Error; err != nil {
		log.Printf("error fetching table %d: %v", tableID, err)
	} else {
		tableLabel = fmt.Sprintf("%d", table.Number)
	}

	log.Printf("sending %d notifications for table %s", len(subscriptions), tableLabel)

	message := fmt.Sprintf("Table %s has items ready to serve", tableLabel)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are removed on 410 responses.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription for endpoint %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
