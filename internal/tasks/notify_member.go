package tasks

import (
	"context"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/openshelf/openshelf/internal/notify"
)

// NotifyMemberTask delivers an availability notice for a returned book
// to the member holding the reservation.
type NotifyMemberTask struct {
	BookID     int64  `json:"book_id"`
	BookTitle  string `json:"book_title"`
	MemberID   int64  `json:"member_id"`
	MemberName string `json:"member_name"`
}

// Config returns the queue configuration for notification tasks.
func (t NotifyMemberTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "notify_member",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NotifyMemberProcessor creates a processor for notification tasks.
// Delivery fans out through the given notifier, which must not itself
// enqueue (the queue would feed itself).
func NotifyMemberProcessor(delivery notify.Notifier) backlite.QueueProcessor[NotifyMemberTask] {
	if delivery == nil {
		delivery = notify.NewLogNotifier()
	}
	return func(ctx context.Context, task NotifyMemberTask) error {
		delivery.NotifyAvailable(notify.Notification{
			BookID:     task.BookID,
			BookTitle:  task.BookTitle,
			MemberID:   task.MemberID,
			MemberName: task.MemberName,
		})
		log.Printf("[TASK] Notified member %d about %q", task.MemberID, task.BookTitle)
		return nil
	}
}

// NewNotifyMemberQueue creates the backlite queue for notifications.
func NewNotifyMemberQueue(delivery notify.Notifier) backlite.Queue {
	return backlite.NewQueue(NotifyMemberProcessor(delivery))
}

// QueueNotifier enqueues availability notices instead of delivering
// them inline. It satisfies notify.Notifier so the library service
// never knows whether delivery is queued or direct.
type QueueNotifier struct {
	client *Client
}

func NewQueueNotifier(client *Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (q *QueueNotifier) NotifyAvailable(n notify.Notification) {
	_, err := q.client.Add(NotifyMemberTask{
		BookID:     n.BookID,
		BookTitle:  n.BookTitle,
		MemberID:   n.MemberID,
		MemberName: n.MemberName,
	}).Save()
	if err != nil {
		log.Printf("Failed to enqueue notification for member %d: %v", n.MemberID, err)
	}
}
