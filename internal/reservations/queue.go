// Package reservations owns the reservation records. Per book the
// states are none -> active -> (fulfilled|expired) -> none. Expiry is
// evaluated lazily against the caller's clock; there is no background
// timer.
package reservations

import (
	"time"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/liberrors"
)

// DefaultHoldHours is how long a reservation stays active.
const DefaultHoldHours = 24

// LoanChecker reports whether a book is currently borrowed.
// Implemented by the lending ledger; injected to keep the packages
// decoupled.
type LoanChecker interface {
	HasOpenLoan(bookID int64) bool
}

// Queue is the owned collection of reservations.
type Queue struct {
	reservations []entities.Reservation
	loans        LoanChecker
	holdHours    int
}

// New creates a queue seeded from a snapshot collection.
func New(reservations []entities.Reservation, loans LoanChecker, holdHours int) *Queue {
	if holdHours <= 0 {
		holdHours = DefaultHoldHours
	}
	q := &Queue{
		reservations: make([]entities.Reservation, len(reservations)),
		loans:        loans,
		holdHours:    holdHours,
	}
	copy(q.reservations, reservations)
	return q
}

// Reserve places a hold on a borrowed book. A book without an open
// loan cannot be reserved (it can be borrowed directly), and a book
// with an active reservation cannot be reserved twice. Member
// validation happens in the caller before any write.
func (q *Queue) Reserve(bookID, memberID int64, now time.Time) (entities.Reservation, error) {
	if q.loans == nil || !q.loans.HasOpenLoan(bookID) {
		return entities.Reservation{}, liberrors.NewConflict(
			"book %d is available and can be borrowed directly", bookID)
	}
	if q.HasActiveReservation(bookID, now) {
		return entities.Reservation{}, liberrors.NewConflict(
			"book %d is already reserved", bookID)
	}

	res := entities.Reservation{
		BookID:          bookID,
		MemberID:        memberID,
		ReservationDate: now,
		Expiry:          now.Add(time.Duration(q.holdHours) * time.Hour),
	}
	q.reservations = append(q.reservations, res)
	return res, nil
}

// NotifyAndPurge runs after a return: it collects every still-active
// reservation on the book for notification, then clears the book's
// reservation state entirely, stale duplicates included. Only one
// reservation is meaningfully served even if duplicates slipped in.
func (q *Queue) NotifyAndPurge(bookID int64, now time.Time) []entities.Reservation {
	notified := make([]entities.Reservation, 0)
	remaining := q.reservations[:0]
	for _, r := range q.reservations {
		if r.BookID != bookID {
			remaining = append(remaining, r)
			continue
		}
		if r.Active(now) {
			notified = append(notified, r)
		}
	}
	q.reservations = remaining
	return notified
}

// HasActiveReservation reports whether the book has an unexpired
// reservation as of the given time.
func (q *Queue) HasActiveReservation(bookID int64, asOf time.Time) bool {
	_, ok := q.ActiveFor(bookID, asOf)
	return ok
}

// ActiveFor returns the active reservation for the book, if any. The
// single-active-reservation invariant guarantees at most one exists.
func (q *Queue) ActiveFor(bookID int64, asOf time.Time) (entities.Reservation, bool) {
	for _, r := range q.reservations {
		if r.BookID == bookID && r.Active(asOf) {
			return r, true
		}
	}
	return entities.Reservation{}, false
}

// All returns a copy of every reservation record, expired ones
// included.
func (q *Queue) All() []entities.Reservation {
	out := make([]entities.Reservation, len(q.reservations))
	copy(out, q.reservations)
	return out
}

// Len returns the number of reservation records.
func (q *Queue) Len() int {
	return len(q.reservations)
}
