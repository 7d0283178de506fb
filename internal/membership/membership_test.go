package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/liberrors"
)

func sampleMembers() []entities.Member {
	return []entities.Member{
		{ID: 1, Name: "Ann Veal", Email: "ann@example.com", Phone: "555-0101"},
		{ID: 2, Name: "Bob Loblaw", Email: "bob@example.com", Phone: "555-0102"},
	}
}

func TestMembership_Upsert(t *testing.T) {
	t.Run("adds and assigns ids", func(t *testing.T) {
		m := New(sampleMembers())

		member, err := m.Upsert(entities.Member{Name: "Carl"})
		require.NoError(t, err)

		assert.Equal(t, int64(3), member.ID)
		assert.Equal(t, 3, m.Len())
	})

	t.Run("replaces by id", func(t *testing.T) {
		m := New(sampleMembers())

		_, err := m.Upsert(entities.Member{ID: 1, Name: "Ann V.", Email: "annv@example.com"})
		require.NoError(t, err)

		got, ok := m.Find(1)
		require.True(t, ok)
		assert.Equal(t, "Ann V.", got.Name)
		assert.Equal(t, 2, m.Len())
	})

	t.Run("requires a name", func(t *testing.T) {
		m := New(nil)
		_, err := m.Upsert(entities.Member{Email: "x@example.com"})
		assert.True(t, liberrors.IsValidation(err))
	})

	t.Run("no uniqueness constraint on email", func(t *testing.T) {
		m := New(sampleMembers())
		_, err := m.Upsert(entities.Member{Name: "Ann's twin", Email: "ann@example.com"})
		assert.NoError(t, err)
	})
}

func TestMembership_Remove(t *testing.T) {
	m := New(sampleMembers())

	removed, err := m.Remove(2)
	require.NoError(t, err)
	assert.Equal(t, "Bob Loblaw", removed.Name)

	_, err = m.Remove(2)
	assert.True(t, liberrors.IsNotFound(err))
}

func TestMembership_NameFor(t *testing.T) {
	m := New(sampleMembers())

	assert.Equal(t, "Ann Veal", m.NameFor(1))
	assert.Equal(t, "Unknown", m.NameFor(42))
}

func TestMembership_Search(t *testing.T) {
	m := New(sampleMembers())

	assert.Len(t, m.Search("loblaw"), 1)
	assert.Len(t, m.Search("example.com"), 2)
	assert.Len(t, m.Search("555-0101"), 1)

	byID := m.Search("2")
	require.Len(t, byID, 1)
	assert.Equal(t, "Bob Loblaw", byID[0].Name)
}
