package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/exporters"
)

// ImportDataCommand replaces the library data with a backup document.
type ImportDataCommand struct {
	BackupPath   string
	Backend      string
	DataPath     string
	DatabasePath string
	AuditDir     string
	DryRun       bool
}

func NewImportDataCommand() *ImportDataCommand {
	return &ImportDataCommand{}
}

func (cmd *ImportDataCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-data", flag.ExitOnError)

	fs.StringVar(&cmd.BackupPath, "file", "", "Path to the backup JSON document (required)")
	fs.StringVar(&cmd.Backend, "backend", "file", "Snapshot backend: file or sqlite")
	fs.StringVar(&cmd.DataPath, "data", config.DefaultSnapshotPath, "Path to the library data file (file backend)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file (sqlite backend)")
	fs.StringVar(&cmd.AuditDir, "audit", "./audit", "Directory for the pre-import safety dump")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the backup without replacing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-data -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Replace the library data with a backup document. The current\n")
		fmt.Fprintf(os.Stderr, "state is dumped to the audit directory before it is overwritten.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-data -file backup.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-data -file backup.json -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.BackupPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportDataCommand) Run() error {
	f, err := os.Open(cmd.BackupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	snap, summary, err := exporters.ImportBackup(f)
	if err != nil {
		return fmt.Errorf("invalid backup document: %w", err)
	}

	fmt.Printf("Backup contains %d books, %d members, %d loans, %d reservations, %d activity entries\n",
		summary.Books, summary.Members, summary.Loans, summary.Reservations, summary.Activity)

	if cmd.DryRun {
		fmt.Println("Dry run complete. Use without -dry-run to import.")
		return nil
	}

	store, closeStore, err := openStore(cmd.Backend, cmd.DataPath, cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer closeStore()

	// Dump the outgoing state before it is overwritten.
	if current, err := store.Load(); err == nil {
		auditor := audit.NewAuditor(cmd.AuditDir)
		if path, err := auditor.SaveSnapshot(current); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write pre-import dump: %v\n", err)
		} else {
			fmt.Printf("Previous state saved to %s\n", path)
		}
	}

	if err := store.Save(snap); err != nil {
		return fmt.Errorf("failed to save imported data: %w", err)
	}

	fmt.Println("Import complete!")
	return nil
}
