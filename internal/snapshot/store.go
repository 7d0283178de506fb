// Package snapshot persists the whole library aggregate. The contract
// is deliberately narrow: whole-aggregate read and replace, nothing
// else, so the store can be backed by a flat file or a database row
// without the core noticing.
package snapshot

import (
	"github.com/openshelf/openshelf/internal/entities"
)

// Store loads and saves the full aggregate state.
type Store interface {
	Load() (*entities.Snapshot, error)
	Save(snap *entities.Snapshot) error
}
