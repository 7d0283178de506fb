package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/liberrors"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// stubReservations marks a fixed set of book ids as actively reserved.
type stubReservations map[int64]bool

func (s stubReservations) HasActiveReservation(bookID int64, _ time.Time) bool {
	return s[bookID]
}

func newTestLedger(reserved stubReservations) *Ledger {
	return NewLedger(nil, reserved, DefaultOptions())
}

func TestLedger_Borrow(t *testing.T) {
	t.Run("creates a loan due in 14 days", func(t *testing.T) {
		l := newTestLedger(nil)

		loan, err := l.Borrow(1, 1, now)
		require.NoError(t, err)

		assert.Equal(t, int64(1), loan.BookID)
		assert.Equal(t, int64(1), loan.MemberID)
		assert.Equal(t, now, loan.BorrowDate)
		assert.Equal(t, now.AddDate(0, 0, 14), loan.DueDate)
		assert.Nil(t, loan.ReturnDate)
	})

	t.Run("same book twice conflicts, first loan unchanged", func(t *testing.T) {
		l := newTestLedger(nil)

		first, err := l.Borrow(1, 1, now)
		require.NoError(t, err)

		_, err = l.Borrow(1, 2, now.Add(time.Hour))
		assert.True(t, liberrors.IsConflict(err))

		open, ok := l.OpenLoan(1)
		require.True(t, ok)
		assert.Equal(t, first, open)
		assert.Equal(t, 1, l.Len())
	})

	t.Run("borrow is not idempotent: repeat with identical args conflicts", func(t *testing.T) {
		l := newTestLedger(nil)

		_, err := l.Borrow(1, 1, now)
		require.NoError(t, err)

		_, err = l.Borrow(1, 1, now)
		assert.True(t, liberrors.IsConflict(err))
		assert.Equal(t, 1, l.Len())
	})

	t.Run("reserved book cannot be borrowed", func(t *testing.T) {
		l := newTestLedger(stubReservations{5: true})

		_, err := l.Borrow(5, 1, now)
		assert.True(t, liberrors.IsConflict(err))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("borrowing limit", func(t *testing.T) {
		l := newTestLedger(nil)

		for bookID := int64(1); bookID <= 3; bookID++ {
			_, err := l.Borrow(bookID, 1, now)
			require.NoError(t, err)
		}

		_, err := l.Borrow(4, 1, now)
		assert.True(t, liberrors.IsLimitExceeded(err))

		// Returning one frees a slot.
		_, err = l.Return(2, 1, now)
		require.NoError(t, err)

		_, err = l.Borrow(4, 1, now)
		assert.NoError(t, err)
	})
}

func TestLedger_Return(t *testing.T) {
	t.Run("closes the loan", func(t *testing.T) {
		l := newTestLedger(nil)
		_, err := l.Borrow(1, 1, now)
		require.NoError(t, err)

		returned := now.Add(48 * time.Hour)
		loan, err := l.Return(1, 1, returned)
		require.NoError(t, err)

		require.NotNil(t, loan.ReturnDate)
		assert.Equal(t, returned, *loan.ReturnDate)
		assert.False(t, l.HasOpenLoan(1))
		assert.Equal(t, 1, l.Len(), "closed loans are kept, never deleted")
	})

	t.Run("no open loan", func(t *testing.T) {
		l := newTestLedger(nil)
		_, err := l.Return(1, 1, now)
		assert.True(t, liberrors.IsNotFound(err))
	})

	t.Run("wrong confirming member", func(t *testing.T) {
		l := newTestLedger(nil)
		_, err := l.Borrow(1, 1, now)
		require.NoError(t, err)

		_, err = l.Return(1, 2, now)
		assert.True(t, liberrors.IsValidation(err))
		assert.True(t, l.HasOpenLoan(1), "loan must stay open on failed confirmation")
	})

	t.Run("borrow then return leaves the book borrowable again", func(t *testing.T) {
		l := newTestLedger(nil)

		_, err := l.Borrow(1, 1, now)
		require.NoError(t, err)
		_, err = l.Return(1, 1, now.Add(time.Hour))
		require.NoError(t, err)

		_, err = l.Borrow(1, 2, now.Add(2*time.Hour))
		assert.NoError(t, err)
	})
}

func TestLedger_SingleOpenLoanInvariant(t *testing.T) {
	l := newTestLedger(nil)

	// Interleave borrows and returns across books and members, then
	// check the invariant over the raw records.
	_, _ = l.Borrow(1, 1, now)
	_, _ = l.Borrow(2, 1, now)
	_, _ = l.Borrow(1, 2, now) // conflict
	_, _ = l.Return(1, 1, now.Add(time.Hour))
	_, _ = l.Borrow(1, 2, now.Add(2*time.Hour))
	_, _ = l.Borrow(2, 3, now.Add(2*time.Hour)) // conflict

	openPerBook := map[int64]int{}
	for _, loan := range l.All() {
		if loan.Open() {
			openPerBook[loan.BookID]++
		}
	}
	for bookID, count := range openPerBook {
		assert.LessOrEqual(t, count, 1, "book %d has %d open loans", bookID, count)
	}
}

func TestFine(t *testing.T) {
	due := now
	openLoan := entities.Loan{BookID: 1, MemberID: 1, BorrowDate: now.AddDate(0, 0, -14), DueDate: due}

	t.Run("zero before or at due date", func(t *testing.T) {
		assert.Zero(t, Fine(openLoan, due.Add(-time.Hour), 1))
		assert.Zero(t, Fine(openLoan, due, 1))
	})

	t.Run("daily increments, rounded up", func(t *testing.T) {
		assert.Equal(t, int64(1), Fine(openLoan, due.Add(time.Minute), 1))
		assert.Equal(t, int64(1), Fine(openLoan, due.Add(24*time.Hour), 1))
		assert.Equal(t, int64(2), Fine(openLoan, due.Add(25*time.Hour), 1))
		assert.Equal(t, int64(7), Fine(openLoan, due.AddDate(0, 0, 7), 1))
	})

	t.Run("strictly increasing past due", func(t *testing.T) {
		prev := int64(0)
		for d := 1; d <= 5; d++ {
			fine := Fine(openLoan, due.AddDate(0, 0, d), 1)
			assert.Greater(t, fine, prev)
			prev = fine
		}
		assert.Equal(t, int64(5), prev)
	})

	t.Run("closed loans accrue nothing", func(t *testing.T) {
		returned := due.Add(time.Hour)
		closed := openLoan
		closed.ReturnDate = &returned
		assert.Zero(t, Fine(closed, due.AddDate(0, 0, 10), 1))
	})

	t.Run("rate scales linearly", func(t *testing.T) {
		assert.Equal(t, int64(6), Fine(openLoan, due.AddDate(0, 0, 3), 2))
	})
}

func TestLedger_TotalFines(t *testing.T) {
	l := newTestLedger(nil)

	_, err := l.Borrow(1, 1, now.AddDate(0, 0, -20)) // due 6 days ago
	require.NoError(t, err)
	_, err = l.Borrow(2, 2, now.AddDate(0, 0, -1)) // not yet due
	require.NoError(t, err)

	assert.Equal(t, int64(6), l.TotalFines(now))
	assert.Equal(t, 1, l.OverdueCount(now))
}
