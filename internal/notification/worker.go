package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"rota-backend/internal/rota"
	"rota-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// JobKind distinguishes the notification texts.
type JobKind int

const (
	KindAdded JobKind = iota
	KindRemoved
	KindReminder
)

// Job is one pending notification for one user.
type Job struct {
	Kind   JobKind
	UserID int64
	Branch string
	Date   time.Time
	Hours  []int
}

// WorkerPool manages a pool of workers delivering push notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*4),
		store:   s,
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
	log.Printf("notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.process(ctx, job)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job. The queue is bounded; when it is full the job is
// dropped rather than stalling the request that triggered it.
func (wp *WorkerPool) Dispatch(job Job) {
	select {
	case wp.jobs <- job:
	default:
		log.Printf("notification queue full, dropping job for user %d", job.UserID)
	}
}

// NotifyRotaChange queues a "your rota changed" push after an admin added
// or removed the user on a slot.
func (wp *WorkerPool) NotifyRotaChange(userID int64, branch string, date time.Time, hour int, added bool) {
	kind := KindRemoved
	if added {
		kind = KindAdded
	}
	wp.Dispatch(Job{
		Kind:   kind,
		UserID: userID,
		Branch: branch,
		Date:   date,
		Hours:  []int{hour},
	})
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

func (wp *WorkerPool) process(ctx context.Context, job Job) {
	subscriptions, err := wp.store.SubscriptionsForUser(ctx, job.UserID)
	if err != nil {
		log.Printf("error fetching subscriptions for user %d: %v", job.UserID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload := []byte(messageFor(job))
	for _, sub := range subscriptions {
		wp.send(ctx, sub.Endpoint, sub.P256DH, sub.Auth, payload)
	}
}

func messageFor(job Job) string {
	day := job.Date.Format("02.01.2006")
	hours := rota.FormatHourRuns(job.Hours)
	switch job.Kind {
	case KindAdded:
		return fmt.Sprintf("Вас добавили в график: %s, %s", day, hours)
	case KindRemoved:
		return fmt.Sprintf("Вас сняли со смены: %s, %s", day, hours)
	default:
		return fmt.Sprintf("Скоро ваша смена: %s, %s", day, hours)
	}
}

func (wp *WorkerPool) send(ctx context.Context, endpoint, p256dh, auth string, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", endpoint)
		if err := wp.store.DeleteSubscription(ctx, endpoint); err != nil {
			log.Printf("failed to delete expired subscription %s: %v", endpoint, err)
		}
	}
}
