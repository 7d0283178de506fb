// Package library aggregates the catalog, membership register,
// lending ledger, reservation queue and activity log behind a single
// service. UI layers (HTTP, CLI) only ever talk to this service; no
// component calls back up into them.
package library

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/catalog"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/lending"
	"github.com/openshelf/openshelf/internal/liberrors"
	"github.com/openshelf/openshelf/internal/membership"
	"github.com/openshelf/openshelf/internal/notify"
	"github.com/openshelf/openshelf/internal/reservations"
	"github.com/openshelf/openshelf/internal/snapshot"
)

// Options tune the service; zero values fall back to defaults.
type Options struct {
	Lending              lending.Options
	ReservationHoldHours int

	// Now overrides the clock, for tests.
	Now func() time.Time

	// SyncSave makes snapshot saves block instead of running in the
	// background. Mutating operations never await the save either way;
	// tests use this to observe the persisted state deterministically.
	SyncSave bool
}

// Service is the single logical actor of the record keeper. One mutex
// serializes every operation so the check-then-act validation inside
// borrow and reserve stays atomic even when an HTTP server drives the
// service from concurrent handlers.
type Service struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	members  *membership.Membership
	ledger   *lending.Ledger
	queue    *reservations.Queue
	activity *activity.Log

	store    snapshot.Store
	notifier notify.Notifier
	now      func() time.Time
	syncSave bool

	lendOpts  lending.Options
	holdHours int
}

// ledgerRef and queueRef break the construction cycle between the
// ledger (which asks the queue about reservations) and the queue
// (which asks the ledger about open loans).
type ledgerRef struct{ ledger *lending.Ledger }

func (r *ledgerRef) HasOpenLoan(bookID int64) bool { return r.ledger.HasOpenLoan(bookID) }

type queueRef struct{ queue *reservations.Queue }

func (r *queueRef) HasActiveReservation(bookID int64, asOf time.Time) bool {
	return r.queue.HasActiveReservation(bookID, asOf)
}

// NewService builds a service from a loaded snapshot. The snapshot is
// copied into the owned collections; the store is only written to, via
// the save-after-mutation hook.
func NewService(snap *entities.Snapshot, store snapshot.Store, notifier notify.Notifier, opts Options) *Service {
	if snap == nil {
		snap = entities.EmptySnapshot()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	lref := &ledgerRef{}
	qref := &queueRef{}
	ledger := lending.NewLedger(snap.Loans, qref, opts.Lending)
	queue := reservations.New(snap.Reservations, lref, opts.ReservationHoldHours)
	lref.ledger = ledger
	qref.queue = queue

	return &Service{
		catalog:   catalog.New(snap.Books),
		members:   membership.New(snap.Members),
		ledger:    ledger,
		queue:     queue,
		activity:  activity.New(snap.Activity),
		store:     store,
		notifier:  notifier,
		now:       opts.Now,
		syncSave:  opts.SyncSave,
		lendOpts:  opts.Lending,
		holdHours: opts.ReservationHoldHours,
	}
}

// --- Catalog operations ---

// BookView pairs a book with its derived status and barcode.
type BookView struct {
	entities.Book
	Status  entities.BookStatus `json:"status"`
	Barcode string              `json:"barcode"`
}

// SaveBook upserts a book record.
func (s *Service) SaveBook(book entities.Book) (entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.catalog.Find(book.ID)
	saved, err := s.catalog.Upsert(book)
	if err != nil {
		return entities.Book{}, err
	}

	if existed {
		s.logActivity(fmt.Sprintf("Book %q updated.", saved.Title))
	} else {
		s.logActivity(fmt.Sprintf("Book %q added.", saved.Title))
	}
	s.persistLocked()
	return saved, nil
}

// DeleteBook removes a book record. Open loans or reservations
// referencing it are left dangling on purpose; see the design notes.
func (s *Service) DeleteBook(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.catalog.Remove(id)
	if err != nil {
		return err
	}
	s.logActivity(fmt.Sprintf("Book %q deleted.", removed.Title))
	s.persistLocked()
	return nil
}

// FindBook returns a single book with its derived status.
func (s *Service) FindBook(id int64) (BookView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.catalog.Find(id)
	if !ok {
		return BookView{}, &liberrors.NotFoundError{Kind: "book", ID: id}
	}
	return s.bookViewLocked(book), nil
}

// SearchBooks filters the catalog; an empty query lists everything.
func (s *Service) SearchBooks(query string) []BookView {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.catalog.Search(query)
	views := make([]BookView, len(matched))
	for i, b := range matched {
		views[i] = s.bookViewLocked(b)
	}
	return views
}

// BookByBarcode resolves a scanned barcode to a book.
func (s *Service) BookByBarcode(code string) (BookView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.catalog.ByBarcode(code)
	if !ok {
		return BookView{}, liberrors.NewValidation("no book matches barcode %q", code)
	}
	return s.bookViewLocked(book), nil
}

func (s *Service) bookViewLocked(book entities.Book) BookView {
	return BookView{
		Book:    book,
		Status:  s.statusLocked(book.ID),
		Barcode: entities.DerivedBarcode(book.ID),
	}
}

// statusLocked is the derived-status projection: an open loan wins,
// then an active reservation, else available. Never stored.
func (s *Service) statusLocked(bookID int64) entities.BookStatus {
	if s.ledger.HasOpenLoan(bookID) {
		return entities.StatusBorrowed
	}
	if s.queue.HasActiveReservation(bookID, s.now()) {
		return entities.StatusReserved
	}
	return entities.StatusAvailable
}

// --- Membership operations ---

// MemberView pairs a member with the count of books they have out.
type MemberView struct {
	entities.Member
	OpenLoans int `json:"open_loans"`
}

// SaveMember upserts a member record.
func (s *Service) SaveMember(member entities.Member) (entities.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.members.Find(member.ID)
	saved, err := s.members.Upsert(member)
	if err != nil {
		return entities.Member{}, err
	}

	if existed {
		s.logActivity(fmt.Sprintf("Member %q updated.", saved.Name))
	} else {
		s.logActivity(fmt.Sprintf("Member %q added.", saved.Name))
	}
	s.persistLocked()
	return saved, nil
}

// DeleteMember removes a member record without cascading into loans or
// reservations; dangling references render as "Unknown".
func (s *Service) DeleteMember(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.members.Remove(id)
	if err != nil {
		return err
	}
	s.logActivity(fmt.Sprintf("Member %q deleted.", removed.Name))
	s.persistLocked()
	return nil
}

// FindMember returns a single member with their open loan count.
func (s *Service) FindMember(id int64) (MemberView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members.Find(id)
	if !ok {
		return MemberView{}, &liberrors.NotFoundError{Kind: "member", ID: id}
	}
	return MemberView{Member: member, OpenLoans: s.ledger.OpenLoanCount(member.ID)}, nil
}

// SearchMembers filters the register; an empty query lists everyone.
func (s *Service) SearchMembers(query string) []MemberView {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.members.Search(query)
	views := make([]MemberView, len(matched))
	for i, m := range matched {
		views[i] = MemberView{Member: m, OpenLoans: s.ledger.OpenLoanCount(m.ID)}
	}
	return views
}

// --- Lending operations ---

// Borrow opens a loan: book and member must exist, the book must be
// available, and the member must be under the borrowing limit.
func (s *Service) Borrow(bookID, memberID int64) (entities.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.catalog.Find(bookID)
	if !ok {
		return entities.Loan{}, &liberrors.NotFoundError{Kind: "book", ID: bookID}
	}
	member, ok := s.members.Find(memberID)
	if !ok {
		return entities.Loan{}, &liberrors.NotFoundError{Kind: "member", ID: memberID}
	}

	loan, err := s.ledger.Borrow(bookID, memberID, s.now())
	if err != nil {
		return entities.Loan{}, err
	}

	s.logActivity(fmt.Sprintf("Book %q borrowed by %s.", book.Title, member.Name))
	s.persistLocked()
	return loan, nil
}

// Return closes the open loan for the book. The confirming member id
// must match the borrower. Active reservation holders are notified and
// the book's reservation state is cleared.
func (s *Service) Return(bookID, confirmingMemberID int64) (entities.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.ledger.Return(bookID, confirmingMemberID, s.now())
	if err != nil {
		return entities.Loan{}, err
	}

	title := s.bookTitleLocked(bookID)
	for _, res := range s.queue.NotifyAndPurge(bookID, s.now()) {
		s.notifier.NotifyAvailable(notify.Notification{
			BookID:     res.BookID,
			BookTitle:  title,
			MemberID:   res.MemberID,
			MemberName: s.members.NameFor(res.MemberID),
		})
	}

	s.logActivity(fmt.Sprintf("Book %q returned by member ID %d.", title, confirmingMemberID))
	s.persistLocked()
	return loan, nil
}

// Reserve places a hold on a borrowed book for a member.
func (s *Service) Reserve(bookID, memberID int64) (entities.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if memberID <= 0 {
		return entities.Reservation{}, liberrors.NewValidation("a valid member id is required")
	}
	member, ok := s.members.Find(memberID)
	if !ok {
		return entities.Reservation{}, liberrors.NewValidation("no member found with id %d", memberID)
	}
	book, ok := s.catalog.Find(bookID)
	if !ok {
		return entities.Reservation{}, &liberrors.NotFoundError{Kind: "book", ID: bookID}
	}

	res, err := s.queue.Reserve(bookID, memberID, s.now())
	if err != nil {
		return entities.Reservation{}, err
	}

	s.logActivity(fmt.Sprintf("Book %q reserved for %s.", book.Title, member.Name))
	s.persistLocked()
	return res, nil
}

// LoanView decorates a loan with display names and the current fine.
type LoanView struct {
	entities.Loan
	BookTitle  string `json:"book_title"`
	MemberName string `json:"member_name"`
	Fine       int64  `json:"fine"`
	Overdue    bool   `json:"overdue"`
}

// Loans returns every loan record, open and closed, decorated for
// display. Fines are computed against the current clock.
func (s *Service) Loans() []LoanView {
	s.mu.Lock()
	defer s.mu.Unlock()

	asOf := s.now()
	loans := s.ledger.All()
	views := make([]LoanView, len(loans))
	for i, loan := range loans {
		views[i] = LoanView{
			Loan:       loan,
			BookTitle:  s.bookTitleLocked(loan.BookID),
			MemberName: s.members.NameFor(loan.MemberID),
			Fine:       s.ledger.Fine(loan, asOf),
			Overdue:    loan.Overdue(asOf),
		}
	}
	return views
}

// Reservations returns every reservation record with display names.
func (s *Service) Reservations() []ReservationView {
	s.mu.Lock()
	defer s.mu.Unlock()

	asOf := s.now()
	all := s.queue.All()
	views := make([]ReservationView, len(all))
	for i, res := range all {
		views[i] = ReservationView{
			Reservation: res,
			BookTitle:   s.bookTitleLocked(res.BookID),
			MemberName:  s.members.NameFor(res.MemberID),
			Active:      res.Active(asOf),
		}
	}
	return views
}

// ReservationView decorates a reservation with display names.
type ReservationView struct {
	entities.Reservation
	BookTitle  string `json:"book_title"`
	MemberName string `json:"member_name"`
	Active     bool   `json:"active"`
}

// Activity returns the full ordered audit trail.
func (s *Service) Activity() []entities.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity.All()
}

// --- Dashboard ---

// Stats is the dashboard summary. TotalFines uses the same pure fine
// formula as the per-row display.
type Stats struct {
	TotalBooks    int   `json:"total_books"`
	TotalMembers  int   `json:"total_members"`
	BorrowedBooks int   `json:"borrowed_books"`
	OverdueBooks  int   `json:"overdue_books"`
	TotalFines    int64 `json:"total_fines"`
}

// Stats computes the dashboard summary as of now.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	asOf := s.now()
	return Stats{
		TotalBooks:    s.catalog.Len(),
		TotalMembers:  s.members.Len(),
		BorrowedBooks: len(s.ledger.OpenLoans()),
		OverdueBooks:  s.ledger.OverdueCount(asOf),
		TotalFines:    s.ledger.TotalFines(asOf),
	}
}

// --- Snapshot / backup ---

// Snapshot assembles the current aggregate state.
func (s *Service) Snapshot() *entities.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Restore replaces the whole aggregate with the imported snapshot and
// persists it. All derived state is recomputed from the new records.
func (s *Service) Restore(snap *entities.Snapshot) error {
	if snap == nil {
		return liberrors.NewValidation("snapshot is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lref := &ledgerRef{}
	qref := &queueRef{}
	ledger := lending.NewLedger(snap.Loans, qref, s.lendOpts)
	queue := reservations.New(snap.Reservations, lref, s.holdHours)
	lref.ledger = ledger
	qref.queue = queue

	s.catalog = catalog.New(snap.Books)
	s.members = membership.New(snap.Members)
	s.ledger = ledger
	s.queue = queue
	s.activity = activity.New(snap.Activity)

	s.persistLocked()
	return nil
}

func (s *Service) snapshotLocked() *entities.Snapshot {
	return &entities.Snapshot{
		Books:        s.catalog.All(),
		Members:      s.members.All(),
		Loans:        s.ledger.All(),
		Reservations: s.queue.All(),
		Activity:     s.activity.All(),
	}
}

func (s *Service) bookTitleLocked(bookID int64) string {
	if book, ok := s.catalog.Find(bookID); ok {
		return book.Title
	}
	return "Unknown"
}

func (s *Service) logActivity(message string) {
	s.activity.Append(message, s.now())
}

// persistLocked snapshots the state under the lock, then hands it to
// the store. The save is fire-and-forget: persistence failures are
// logged, never surfaced into the operation result.
func (s *Service) persistLocked() {
	if s.store == nil {
		return
	}
	snap := s.snapshotLocked()
	save := func() {
		if err := s.store.Save(snap); err != nil {
			log.Printf("Failed to save snapshot: %v", err)
		}
	}
	if s.syncSave {
		save()
		return
	}
	go save()
}
