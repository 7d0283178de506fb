package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/liberrors"
	"github.com/openshelf/openshelf/internal/notify"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// memoryStore records every saved snapshot, keeping the latest.
type memoryStore struct {
	saved []*entities.Snapshot
}

func (m *memoryStore) Load() (*entities.Snapshot, error) { return entities.EmptySnapshot(), nil }
func (m *memoryStore) Save(snap *entities.Snapshot) error {
	m.saved = append(m.saved, snap)
	return nil
}

func (m *memoryStore) latest() *entities.Snapshot {
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time            { return c.current }
func (c *testClock) advance(d time.Duration)   { c.current = c.current.Add(d) }
func (c *testClock) advanceDays(d int)         { c.current = c.current.AddDate(0, 0, d) }

type fixture struct {
	svc      *Service
	store    *memoryStore
	clock    *testClock
	notified []notify.Notification
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: &memoryStore{},
		clock: &testClock{current: baseTime},
	}
	notifier := notify.Func(func(n notify.Notification) {
		f.notified = append(f.notified, n)
	})
	f.svc = NewService(entities.EmptySnapshot(), f.store, notifier, Options{
		Now:      f.clock.now,
		SyncSave: true,
	})
	return f
}

func (f *fixture) seedBook(t *testing.T, id int64, title string) {
	t.Helper()
	_, err := f.svc.SaveBook(entities.Book{ID: id, Title: title, Author: "Author", Year: 2000})
	require.NoError(t, err)
}

func (f *fixture) seedMember(t *testing.T, id int64, name string) {
	t.Helper()
	_, err := f.svc.SaveMember(entities.Member{ID: id, Name: name})
	require.NoError(t, err)
}

func TestService_BorrowReturnScenario(t *testing.T) {
	// Book {1, "Dune"}, members Ann and Ben. Borrow, reserve while
	// out, return: the reservation is served and cleared.
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")
	f.seedMember(t, 2, "Ben")

	loan, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)
	assert.Equal(t, baseTime, loan.BorrowDate)
	assert.Equal(t, baseTime.AddDate(0, 0, 14), loan.DueDate)
	assert.Nil(t, loan.ReturnDate)

	view, err := f.svc.FindBook(1)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusBorrowed, view.Status)

	_, err = f.svc.Reserve(1, 2)
	require.NoError(t, err)

	f.clock.advance(time.Hour)
	returned, err := f.svc.Return(1, 1)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, f.clock.current, *returned.ReturnDate)

	require.Len(t, f.notified, 1)
	assert.Equal(t, int64(2), f.notified[0].MemberID)
	assert.Equal(t, "Ben", f.notified[0].MemberName)
	assert.Equal(t, "Dune", f.notified[0].BookTitle)

	assert.Empty(t, f.svc.Reservations(), "reservation for the book is removed after return")

	view, err = f.svc.FindBook(1)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusAvailable, view.Status)
}

func TestService_BorrowConflictScenario(t *testing.T) {
	// borrow(1,1) then borrow(1,2): the second fails with a conflict
	// and the first loan is unchanged.
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")
	f.seedMember(t, 2, "Ben")

	first, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)

	_, err = f.svc.Borrow(1, 2)
	assert.True(t, liberrors.IsConflict(err))

	loans := f.svc.Loans()
	require.Len(t, loans, 1)
	assert.Equal(t, first, loans[0].Loan)
}

func TestService_BorrowValidations(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")

	t.Run("unknown book", func(t *testing.T) {
		_, err := f.svc.Borrow(99, 1)
		assert.True(t, liberrors.IsNotFound(err))
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := f.svc.Borrow(1, 99)
		assert.True(t, liberrors.IsNotFound(err))
	})

	t.Run("reserved book cannot be borrowed by someone else", func(t *testing.T) {
		f := newFixture(t)
		f.seedBook(t, 1, "Dune")
		f.seedMember(t, 1, "Ann")
		f.seedMember(t, 2, "Ben")
		f.seedMember(t, 3, "Cyn")

		_, err := f.svc.Borrow(1, 1)
		require.NoError(t, err)
		_, err = f.svc.Reserve(1, 2)
		require.NoError(t, err)
		_, err = f.svc.Return(1, 1)
		require.NoError(t, err)

		// Reservation state was cleared by the return, so the book
		// is borrowable again by anyone.
		_, err = f.svc.Borrow(1, 3)
		assert.NoError(t, err)
	})
}

func TestService_BorrowingLimit(t *testing.T) {
	f := newFixture(t)
	f.seedMember(t, 1, "Ann")
	for id := int64(1); id <= 4; id++ {
		f.seedBook(t, id, "Book")
	}

	for id := int64(1); id <= 3; id++ {
		_, err := f.svc.Borrow(id, 1)
		require.NoError(t, err)
	}

	_, err := f.svc.Borrow(4, 1)
	assert.True(t, liberrors.IsLimitExceeded(err))

	_, err = f.svc.Return(2, 1)
	require.NoError(t, err)

	_, err = f.svc.Borrow(4, 1)
	assert.NoError(t, err)
}

func TestService_ReturnValidation(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")
	f.seedMember(t, 2, "Ben")

	_, err := f.svc.Return(1, 1)
	assert.True(t, liberrors.IsNotFound(err), "no open loan yet")

	_, err = f.svc.Borrow(1, 1)
	require.NoError(t, err)

	_, err = f.svc.Return(1, 2)
	assert.True(t, liberrors.IsValidation(err), "wrong confirming member")

	_, err = f.svc.Return(1, 1)
	assert.NoError(t, err)
}

func TestService_ReserveValidations(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")

	t.Run("missing member id", func(t *testing.T) {
		_, err := f.svc.Reserve(1, 0)
		assert.True(t, liberrors.IsValidation(err))
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := f.svc.Reserve(1, 99)
		assert.True(t, liberrors.IsValidation(err))
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := f.svc.Reserve(99, 1)
		assert.True(t, liberrors.IsNotFound(err))
	})

	t.Run("available book", func(t *testing.T) {
		_, err := f.svc.Reserve(1, 1)
		assert.True(t, liberrors.IsConflict(err), "a free book should be borrowed directly")
	})
}

func TestService_ReservationExpiryIsLazy(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")
	f.seedMember(t, 2, "Ben")

	_, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)
	_, err = f.svc.Reserve(1, 2)
	require.NoError(t, err)

	view, err := f.svc.FindBook(1)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusBorrowed, view.Status)

	_, err = f.svc.Return(1, 1)
	require.NoError(t, err)
	require.Len(t, f.notified, 1)

	// A fresh reservation left to expire notifies nobody on return.
	f.notified = nil
	_, err = f.svc.Borrow(1, 1)
	require.NoError(t, err)
	_, err = f.svc.Reserve(1, 2)
	require.NoError(t, err)

	f.clock.advanceDays(2)
	_, err = f.svc.Return(1, 1)
	require.NoError(t, err)
	assert.Empty(t, f.notified)
	assert.Empty(t, f.svc.Reservations())
}

func TestService_DanglingReferencesRenderUnknown(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")

	_, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBook(1))
	require.NoError(t, f.svc.DeleteMember(1))

	loans := f.svc.Loans()
	require.Len(t, loans, 1)
	assert.Equal(t, "Unknown", loans[0].BookTitle)
	assert.Equal(t, "Unknown", loans[0].MemberName)
}

func TestService_Stats(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedBook(t, 2, "Emma")
	f.seedMember(t, 1, "Ann")
	f.seedMember(t, 2, "Ben")

	_, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)

	f.clock.advanceDays(20) // 6 days overdue

	_, err = f.svc.Borrow(2, 2)
	require.NoError(t, err)

	stats := f.svc.Stats()
	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 2, stats.TotalMembers)
	assert.Equal(t, 2, stats.BorrowedBooks)
	assert.Equal(t, 1, stats.OverdueBooks)
	assert.Equal(t, int64(6), stats.TotalFines)

	// The aggregate matches the sum of the per-row fines.
	var sum int64
	for _, loan := range f.svc.Loans() {
		sum += loan.Fine
	}
	assert.Equal(t, stats.TotalFines, sum)
}

func TestService_PersistsAfterEveryMutation(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")

	saves := len(f.store.saved)
	require.Greater(t, saves, 0)

	_, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)
	assert.Len(t, f.store.saved, saves+1)

	snap := f.store.latest()
	require.Len(t, snap.Loans, 1)
	assert.Equal(t, int64(1), snap.Loans[0].BookID)

	// Failed operations persist nothing.
	_, err = f.svc.Borrow(1, 1)
	require.Error(t, err)
	assert.Len(t, f.store.saved, saves+1)
}

func TestService_ActivityTrail(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")

	_, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)
	_, err = f.svc.Return(1, 1)
	require.NoError(t, err)

	var messages []string
	for _, e := range f.svc.Activity() {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{
		`Book "Dune" added.`,
		`Member "Ann" added.`,
		`Book "Dune" borrowed by Ann.`,
		`Book "Dune" returned by member ID 1.`,
	}, messages)
}

func TestService_RestoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 1, "Dune")
	f.seedMember(t, 1, "Ann")
	_, err := f.svc.Borrow(1, 1)
	require.NoError(t, err)

	exported := f.svc.Snapshot()

	// Restore into a fresh service: the record sets survive intact.
	other := newFixture(t)
	require.NoError(t, other.svc.Restore(exported))

	assert.Equal(t, exported, other.svc.Snapshot())

	// Derived state is rebuilt: the open loan still blocks borrowing.
	other.seedMember(t, 2, "Ben")
	_, err = other.svc.Borrow(1, 2)
	assert.True(t, liberrors.IsConflict(err))
}

func TestService_BarcodeLookup(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t, 7, "Dune")

	view, err := f.svc.BookByBarcode("LIB-7")
	require.NoError(t, err)
	assert.Equal(t, "Dune", view.Title)

	_, err = f.svc.BookByBarcode("LIB-99")
	assert.True(t, liberrors.IsValidation(err))
}
