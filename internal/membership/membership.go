// Package membership owns the member records of the library.
package membership

import (
	"strconv"
	"strings"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/liberrors"
)

// Membership is the owned collection of members. Deleting a member
// does not cascade into loans or reservations referencing it; those
// render the member as "Unknown".
type Membership struct {
	members []entities.Member
}

// New creates a membership register seeded from a snapshot collection.
func New(members []entities.Member) *Membership {
	m := &Membership{members: make([]entities.Member, len(members))}
	copy(m.members, members)
	return m
}

// Upsert adds the member, or replaces the existing record with the
// same id. A zero id gets the next free one assigned. There is no
// uniqueness constraint on email or phone.
func (m *Membership) Upsert(member entities.Member) (entities.Member, error) {
	if strings.TrimSpace(member.Name) == "" {
		return entities.Member{}, liberrors.NewValidation("member name is required")
	}

	if member.ID == 0 {
		member.ID = m.nextID()
	}

	for i := range m.members {
		if m.members[i].ID == member.ID {
			m.members[i] = member
			return member, nil
		}
	}
	m.members = append(m.members, member)
	return member, nil
}

// Remove deletes the member record.
func (m *Membership) Remove(id int64) (entities.Member, error) {
	for i := range m.members {
		if m.members[i].ID == id {
			removed := m.members[i]
			m.members = append(m.members[:i], m.members[i+1:]...)
			return removed, nil
		}
	}
	return entities.Member{}, &liberrors.NotFoundError{Kind: "member", ID: id}
}

// Find returns the member with the given id.
func (m *Membership) Find(id int64) (entities.Member, bool) {
	for _, mem := range m.members {
		if mem.ID == id {
			return mem, true
		}
	}
	return entities.Member{}, false
}

// NameFor resolves a member id to a display name, falling back to
// "Unknown" for dangling references.
func (m *Membership) NameFor(id int64) string {
	if mem, ok := m.Find(id); ok {
		return mem.Name
	}
	return "Unknown"
}

// Search filters members by a free-text query: case-insensitive
// substring over name, email and phone, exact match on the id.
func (m *Membership) Search(query string) []entities.Member {
	query = strings.TrimSpace(query)
	if query == "" {
		return m.All()
	}

	lower := strings.ToLower(query)
	matched := make([]entities.Member, 0)
	for _, mem := range m.members {
		switch {
		case strings.Contains(strings.ToLower(mem.Name), lower),
			strings.Contains(strings.ToLower(mem.Email), lower),
			strings.Contains(strings.ToLower(mem.Phone), lower),
			strconv.FormatInt(mem.ID, 10) == query:
			matched = append(matched, mem)
		}
	}
	return matched
}

// All returns a copy of every member record in insertion order.
func (m *Membership) All() []entities.Member {
	out := make([]entities.Member, len(m.members))
	copy(out, m.members)
	return out
}

// Len returns the number of registered members.
func (m *Membership) Len() int {
	return len(m.members)
}

func (m *Membership) nextID() int64 {
	var max int64
	for _, mem := range m.members {
		if mem.ID > max {
			max = mem.ID
		}
	}
	return max + 1
}
