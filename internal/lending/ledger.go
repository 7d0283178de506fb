// Package lending implements the borrow/return state machine and fine
// accrual. Per book the states are Available -> Borrowed -> Available,
// or Available -> Reserved -> Borrowed -> Available; the ledger owns
// the loan records and enforces the single-open-loan invariant.
package lending

import (
	"math"
	"time"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/liberrors"
)

// ReservationChecker reports whether a book currently has an active
// reservation. Implemented by the reservation queue; injected so the
// two packages stay decoupled.
type ReservationChecker interface {
	HasActiveReservation(bookID int64, asOf time.Time) bool
}

// Options are the lending policy knobs.
type Options struct {
	LoanPeriodDays int   // calendar days until due, default 14
	BorrowLimit    int   // max open loans per member, default 3
	FineRate       int64 // currency units per day overdue, default 1
}

// DefaultOptions returns the standard lending policy.
func DefaultOptions() Options {
	return Options{
		LoanPeriodDays: 14,
		BorrowLimit:    3,
		FineRate:       1,
	}
}

// Ledger owns the loan records. Loans are closed, never deleted, so
// the ledger doubles as the borrowing history.
type Ledger struct {
	loans        []entities.Loan
	reservations ReservationChecker
	opts         Options
}

// NewLedger creates a ledger seeded from a snapshot collection.
func NewLedger(loans []entities.Loan, reservations ReservationChecker, opts Options) *Ledger {
	if opts.LoanPeriodDays <= 0 {
		opts.LoanPeriodDays = DefaultOptions().LoanPeriodDays
	}
	if opts.BorrowLimit <= 0 {
		opts.BorrowLimit = DefaultOptions().BorrowLimit
	}
	if opts.FineRate <= 0 {
		opts.FineRate = DefaultOptions().FineRate
	}

	l := &Ledger{
		loans:        make([]entities.Loan, len(loans)),
		reservations: reservations,
		opts:         opts,
	}
	copy(l.loans, loans)
	return l
}

// Borrow opens a loan for the book. The caller has already resolved
// book and member existence; the ledger enforces the state machine:
// a book with an open loan or an active reservation cannot be
// borrowed, and a member at the borrowing limit is rejected. All
// checks run before any write, so a failed borrow mutates nothing.
func (l *Ledger) Borrow(bookID, memberID int64, now time.Time) (entities.Loan, error) {
	if l.HasOpenLoan(bookID) {
		return entities.Loan{}, liberrors.NewConflict("book %d is already borrowed", bookID)
	}
	if l.reservations != nil && l.reservations.HasActiveReservation(bookID, now) {
		return entities.Loan{}, liberrors.NewConflict("book %d is reserved", bookID)
	}
	if l.OpenLoanCount(memberID) >= l.opts.BorrowLimit {
		return entities.Loan{}, &liberrors.LimitExceededError{MemberID: memberID, Limit: l.opts.BorrowLimit}
	}

	loan := entities.Loan{
		BookID:     bookID,
		MemberID:   memberID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, l.opts.LoanPeriodDays),
	}
	l.loans = append(l.loans, loan)
	return loan, nil
}

// Return closes the open loan for the book. The return must be
// confirmed with the borrower's member id; a mismatch leaves the loan
// untouched.
func (l *Ledger) Return(bookID, confirmingMemberID int64, now time.Time) (entities.Loan, error) {
	for i := range l.loans {
		if l.loans[i].BookID != bookID || !l.loans[i].Open() {
			continue
		}
		if l.loans[i].MemberID != confirmingMemberID {
			return entities.Loan{}, liberrors.NewValidation(
				"member %d is not the borrower of book %d", confirmingMemberID, bookID)
		}
		returned := now
		l.loans[i].ReturnDate = &returned
		return l.loans[i], nil
	}
	return entities.Loan{}, &liberrors.NotFoundError{Kind: "loan", ID: bookID}
}

// OpenLoan returns the open loan for the book, if any. The
// single-open-loan invariant guarantees at most one exists.
func (l *Ledger) OpenLoan(bookID int64) (entities.Loan, bool) {
	for _, loan := range l.loans {
		if loan.BookID == bookID && loan.Open() {
			return loan, true
		}
	}
	return entities.Loan{}, false
}

// HasOpenLoan reports whether the book is currently borrowed.
func (l *Ledger) HasOpenLoan(bookID int64) bool {
	_, ok := l.OpenLoan(bookID)
	return ok
}

// OpenLoanCount counts the member's open loans, for limit enforcement.
func (l *Ledger) OpenLoanCount(memberID int64) int {
	count := 0
	for _, loan := range l.loans {
		if loan.MemberID == memberID && loan.Open() {
			count++
		}
	}
	return count
}

// OpenLoans returns every loan still out, in insertion order.
func (l *Ledger) OpenLoans() []entities.Loan {
	out := make([]entities.Loan, 0)
	for _, loan := range l.loans {
		if loan.Open() {
			out = append(out, loan)
		}
	}
	return out
}

// Fine computes the fine accrued on a loan as of the given time. It is
// pure: an open loan past due accrues FineRate per calendar day,
// rounded up; everything else is zero.
func (l *Ledger) Fine(loan entities.Loan, asOf time.Time) int64 {
	return Fine(loan, asOf, l.opts.FineRate)
}

// Fine is the fine formula shared by per-row display and the dashboard
// aggregate: ceil((asOf - dueDate) / 1 day) * rate for open overdue
// loans, else zero.
func Fine(loan entities.Loan, asOf time.Time, rate int64) int64 {
	if !loan.Overdue(asOf) {
		return 0
	}
	days := int64(math.Ceil(asOf.Sub(loan.DueDate).Hours() / 24))
	return days * rate
}

// TotalFines sums the fines over every open overdue loan.
func (l *Ledger) TotalFines(asOf time.Time) int64 {
	var total int64
	for _, loan := range l.loans {
		total += l.Fine(loan, asOf)
	}
	return total
}

// OverdueCount counts open loans past their due date.
func (l *Ledger) OverdueCount(asOf time.Time) int {
	count := 0
	for _, loan := range l.loans {
		if loan.Overdue(asOf) {
			count++
		}
	}
	return count
}

// All returns a copy of every loan record, open and closed.
func (l *Ledger) All() []entities.Loan {
	out := make([]entities.Loan, len(l.loans))
	copy(out, l.loans)
	return out
}

// Len returns the total number of loan records.
func (l *Ledger) Len() int {
	return len(l.loans)
}
