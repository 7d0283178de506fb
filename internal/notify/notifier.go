// Package notify defines the delivery boundary for reservation
// availability notices. Delivery is an external collaborator; the core
// fires a notification and never awaits the outcome.
package notify

import "log"

// Notification names the member whose reserved book became available.
type Notification struct {
	BookID     int64  `json:"book_id"`
	BookTitle  string `json:"book_title"`
	MemberID   int64  `json:"member_id"`
	MemberName string `json:"member_name"`
}

// Notifier delivers availability notices.
type Notifier interface {
	NotifyAvailable(n Notification)
}

// LogNotifier writes notices to the process log. It is the default
// delivery mechanism and the fallback when the task queue is disabled.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (*LogNotifier) NotifyAvailable(n Notification) {
	log.Printf("Book %q is now available for %s (member %d). Please borrow it soon.",
		n.BookTitle, n.MemberName, n.MemberID)
}

// Func adapts a plain function to the Notifier interface.
type Func func(n Notification)

func (f Func) NotifyAvailable(n Notification) { f(n) }
