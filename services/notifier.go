package services

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"repairconnect-server/models"
)

const (
	notifierQueueSize   = 256
	notifierMaxAttempts = 3
)

type queuedNotification struct {
	UserID  uint
	Type    string
	Payload map[string]interface{}
}

// Notifier is the best-effort outbox for workflow notifications. Enqueue
// never fails the caller: writes happen on a background worker that retries
// a few times and then drops the notification with a log line. A failed
// notification must never roll back the transition that produced it.
type Notifier struct {
	db    *gorm.DB
	queue chan queuedNotification
	done  chan struct{}
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{
		db:    db,
		queue: make(chan queuedNotification, notifierQueueSize),
		done:  make(chan struct{}),
	}
}

// Start launches the outbox worker.
func (n *Notifier) Start() {
	go n.run()
	log.Println("🔔 Notification outbox started")
}

// Stop drains nothing; queued notifications still in flight are dropped.
func (n *Notifier) Stop() {
	close(n.queue)
	<-n.done
	log.Println("🔔 Notification outbox stopped")
}

// Enqueue queues a notification for userID. Non-blocking: when the queue is
// full the notification is dropped and logged, never the caller's problem.
func (n *Notifier) Enqueue(userID uint, notificationType string, payload map[string]interface{}) {
	select {
	case n.queue <- queuedNotification{UserID: userID, Type: notificationType, Payload: payload}:
	default:
		log.Printf("⚠️ Notification queue full, dropping %s notification for user %d", notificationType, userID)
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		n.deliver(msg)
	}
}

// deliver writes one notification row, retrying on failure with a short
// backoff before giving up.
func (n *Notifier) deliver(msg queuedNotification) {
	payloadJSON, err := json.Marshal(msg.Payload)
	if err != nil {
		log.Printf("⚠️ Failed to encode %s notification payload for user %d: %v", msg.Type, msg.UserID, err)
		return
	}

	notification := models.Notification{
		UserID:  msg.UserID,
		Type:    msg.Type,
		Payload: datatypes.JSON(payloadJSON),
	}

	var lastErr error
	for attempt := 1; attempt <= notifierMaxAttempts; attempt++ {
		if lastErr = n.db.Create(&notification).Error; lastErr == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
	}

	log.Printf("⚠️ Failed to write %s notification for user %d after %d attempts: %v",
		msg.Type, msg.UserID, notifierMaxAttempts, lastErr)
}
