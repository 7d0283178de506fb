package http

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/exporters"
	"github.com/openshelf/openshelf/internal/library"
)

// maxImportBytes caps the accepted backup size.
const maxImportBytes = 32 << 20

// BackupController serves backup export and import. Imports replace
// the whole aggregate, so the previous state is dumped to the audit
// directory first.
type BackupController struct {
	library *library.Service
	auditor *audit.Auditor
}

func NewBackupController(svc *library.Service, auditor *audit.Auditor) *BackupController {
	return &BackupController{library: svc, auditor: auditor}
}

// Export streams the current snapshot as a downloadable JSON backup.
func (bc *BackupController) Export(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="library-backup.json"`)

	if err := exporters.ExportBackup(c.Writer, bc.library.Snapshot()); err != nil {
		log.Printf("Failed to stream backup export: %v", err)
	}
}

// Import replaces the aggregate with an uploaded backup document.
func (bc *BackupController) Import(c *gin.Context) {
	reader := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	snap, summary, err := exporters.ImportBackup(reader)
	if err != nil {
		respondDomainError(c, err, "backup import")
		return
	}

	// Dump the outgoing state before it is overwritten.
	if bc.auditor != nil {
		if path, err := bc.auditor.SaveSnapshot(bc.library.Snapshot()); err != nil {
			log.Printf("Failed to write pre-import audit dump: %v", err)
		} else {
			log.Printf("Pre-import state saved to %s", path)
		}
	}

	if err := bc.library.Restore(snap); err != nil {
		respondDomainError(c, err, "backup restore")
		return
	}

	c.IndentedJSON(200, gin.H{
		"message": fmt.Sprintf("imported %d books, %d members, %d loans, %d reservations",
			summary.Books, summary.Members, summary.Loans, summary.Reservations),
		"summary": summary,
	})
}
