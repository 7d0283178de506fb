package entities

import (
	"fmt"
	"time"
)

// BookStatus is the derived availability of a book. It is never stored;
// it is recomputed from loan and reservation state on demand.
type BookStatus string

const (
	StatusAvailable BookStatus = "available"
	StatusBorrowed  BookStatus = "borrowed"
	StatusReserved  BookStatus = "reserved"
)

type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	Category string `json:"category,omitempty"`
	Barcode  string `json:"barcode,omitempty"`
}

// DerivedBarcode returns the canonical barcode for a book id.
// Barcodes are a string convention, not a hardware protocol.
func DerivedBarcode(bookID int64) string {
	return fmt.Sprintf("LIB-%d", bookID)
}

type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Loan records a single lending of a book to a member. A loan is open
// while ReturnDate is nil; loans are closed, never deleted.
//
// The json tags keep the persisted layout compatible with backups from
// the original record keeper ("studentId" is the member id there).
type Loan struct {
	BookID     int64      `json:"bookId"`
	MemberID   int64      `json:"studentId"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
}

// Open reports whether the book is still in the borrower's possession.
func (l Loan) Open() bool {
	return l.ReturnDate == nil
}

// Overdue reports whether the loan is open past its due date.
func (l Loan) Overdue(asOf time.Time) bool {
	return l.Open() && asOf.After(l.DueDate)
}

type Reservation struct {
	BookID          int64     `json:"bookId"`
	MemberID        int64     `json:"studentId"`
	ReservationDate time.Time `json:"reservationDate"`
	Expiry          time.Time `json:"reservationExpiry"`
}

// Active reports whether the reservation has not yet expired.
// Expiry is always evaluated lazily against the caller's clock.
func (r Reservation) Active(asOf time.Time) bool {
	return r.Expiry.After(asOf)
}

// ActivityEntry is one line of the append-only audit trail.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Snapshot is the whole persisted aggregate: five ordered collections,
// read and replaced as a unit. The collection keys match the backup
// files produced by the original record keeper so that old exports
// import cleanly.
type Snapshot struct {
	Books        []Book          `json:"books"`
	Members      []Member        `json:"students"`
	Loans        []Loan          `json:"borrowedBooks"`
	Reservations []Reservation   `json:"reservations"`
	Activity     []ActivityEntry `json:"activityLog"`
}

// EmptySnapshot returns a snapshot with all five collections allocated,
// so JSON round-trips produce [] rather than null.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Books:        []Book{},
		Members:      []Member{},
		Loans:        []Loan{},
		Reservations: []Reservation{},
		Activity:     []ActivityEntry{},
	}
}

// SnapshotRecord is the database row backing the SQLite snapshot store.
// A single row holds the serialized aggregate.
type SnapshotRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Data      string    `gorm:"type:text" json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}
