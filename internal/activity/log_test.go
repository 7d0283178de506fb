package activity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
)

func TestLog_AppendKeepsOrder(t *testing.T) {
	l := New(nil)
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		l.Append(fmt.Sprintf("entry %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	entries := l.All()
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("entry %d", i), e.Message)
		assert.Equal(t, base.Add(time.Duration(i)*time.Minute), e.Timestamp)
	}
}

func TestLog_SeededFromSnapshot(t *testing.T) {
	seed := []entities.ActivityEntry{
		{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Message: "imported"},
	}
	l := New(seed)

	l.Append("new entry", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	entries := l.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "imported", entries[0].Message)
	assert.Equal(t, "new entry", entries[1].Message)
}

func TestLog_AllReturnsCopy(t *testing.T) {
	l := New(nil)
	l.Append("original", time.Now())

	entries := l.All()
	entries[0].Message = "mutated"

	assert.Equal(t, "original", l.All()[0].Message)
}
