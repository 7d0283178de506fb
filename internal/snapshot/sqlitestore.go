package snapshot

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// snapshotRowID is the fixed primary key of the single snapshot row.
const snapshotRowID = 1

// SQLiteStore keeps the snapshot as one row in the application
// database: whole-aggregate read/replace, same contract as the file
// store.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore creates a database-backed store. The snapshots table
// must already be migrated (see the database package).
func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the snapshot row. A missing row yields an empty snapshot.
func (s *SQLiteStore) Load() (*entities.Snapshot, error) {
	var record entities.SnapshotRecord
	err := s.db.First(&record, snapshotRowID).Error
	if err == gorm.ErrRecordNotFound {
		return entities.EmptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot row: %w", err)
	}

	snap := entities.EmptySnapshot()
	if err := json.Unmarshal([]byte(record.Data), snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot row: %w", err)
	}
	return snap, nil
}

// Save replaces the snapshot row.
func (s *SQLiteStore) Save(snap *entities.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	record := entities.SnapshotRecord{ID: snapshotRowID, Data: string(data)}

	var existing entities.SnapshotRecord
	result := s.db.First(&existing, snapshotRowID)
	if result.Error == gorm.ErrRecordNotFound {
		if err := s.db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create snapshot row: %w", err)
		}
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("failed to check snapshot row: %w", result.Error)
	}

	existing.Data = record.Data
	if err := s.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update snapshot row: %w", err)
	}
	return nil
}
