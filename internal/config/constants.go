package config

// Default paths for persisted state
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./openshelf.db"

	// DefaultSnapshotPath is the default path for the JSON data file
	DefaultSnapshotPath = "./library-data.json"
)
