// Package cli implements the offline subcommands: backup export and
// import, and calendar export. Each command owns its flag set and is
// dispatched from main.
package cli

import (
	"fmt"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/snapshot"
)

// openStore builds the snapshot store the commands read and write.
// The returned closer is a no-op for the file backend.
func openStore(backend, dataPath, dbPath string) (snapshot.Store, func(), error) {
	switch config.SnapshotBackend(backend) {
	case config.SnapshotBackendFile:
		return snapshot.NewFileStore(dataPath), func() {}, nil
	case config.SnapshotBackendSQLite:
		db, err := database.NewDatabase(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return snapshot.NewSQLiteStore(db.DB), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q (want file or sqlite)", backend)
	}
}
