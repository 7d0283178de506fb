// Package audit writes safety dumps of the aggregate before
// destructive operations. A backup import replaces everything, so the
// pre-import state is dumped to disk first and can be re-imported by
// hand if the import turns out to be a mistake.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/internal/entities"
)

type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveSnapshot dumps the aggregate to a UUID4-named JSON file and
// returns the filename.
func (a *Auditor) SaveSnapshot(snap *entities.Snapshot) (string, error) {
	return a.SaveJSON(snap)
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	auditID := uuid.New()
	filename := fmt.Sprintf("%s.json", auditID.String())
	path := filepath.Join(a.AuditDir, filename)

	log.Printf("Saving audit file: %s", path)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return filename, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
