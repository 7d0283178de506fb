package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/library"
)

func newBackupRouter(t *testing.T) (*gin.Engine, *library.Service, string) {
	t.Helper()
	svc := newTestService(t)
	auditDir := t.TempDir()
	controller := NewBackupController(svc, audit.NewAuditor(auditDir))

	router := gin.New()
	router.GET("/api/backup/export", controller.Export)
	router.POST("/api/backup/import", controller.Import)
	return router, svc, auditDir
}

func TestBackupController_ExportImportRoundTrip(t *testing.T) {
	router, svc, auditDir := newBackupRouter(t)

	_, err := svc.Borrow(1, 1)
	require.NoError(t, err)

	// Export the current state.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/backup/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "library-backup.json")

	exported := w.Body.Bytes()
	assert.Contains(t, string(exported), `"students"`)
	assert.Contains(t, string(exported), `"borrowedBooks"`)

	// Wipe the aggregate, then import the backup.
	require.NoError(t, svc.Restore(entities.EmptySnapshot()))
	require.Empty(t, svc.SearchBooks(""))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/backup/import", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, svc.SearchBooks(""), 3)
	assert.Len(t, svc.SearchMembers(""), 2)

	book, err := svc.FindBook(1)
	require.NoError(t, err)
	assert.Equal(t, "borrowed", string(book.Status))

	// The pre-import state was dumped to the audit directory.
	entries, err := os.ReadDir(auditDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}

func TestBackupController_ImportRejectsGarbage(t *testing.T) {
	router, svc, _ := newBackupRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "definitely not json"},
		{"json without backup keys", `{"something": "else"}`},
		{"json array", `[1, 2, 3]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/backup/import", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			// The aggregate is untouched.
			assert.Len(t, svc.SearchBooks(""), 3)
		})
	}
}
