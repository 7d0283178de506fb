package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/library"
)

func newBooksRouter(t *testing.T) (*gin.Engine, *library.Service) {
	t.Helper()
	svc := newTestService(t)
	controller := NewBooksController(svc)

	router := gin.New()
	router.GET("/api/books", controller.List)
	router.GET("/api/books/:id", controller.Get)
	router.POST("/api/books", controller.Create)
	router.PUT("/api/books/:id", controller.Update)
	router.DELETE("/api/books/:id", controller.Delete)
	router.GET("/api/barcode/:code", controller.ByBarcode)
	return router, svc
}

func TestBooksController_List(t *testing.T) {
	router, _ := newBooksRouter(t)

	t.Run("lists all books", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books", nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decodePage(t, w)
		assert.Equal(t, 3, page.Total)
		assert.False(t, page.HasMore)
	})

	t.Run("filters by search query", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books?q=dune", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decodePage(t, w).Total)
	})

	t.Run("sorts by title descending", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books?sort=title&order=desc", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Data []library.BookView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Len(t, page.Data, 3)
		assert.Equal(t, "Neuromancer", page.Data[0].Title)
		assert.Equal(t, "Dune", page.Data[2].Title)
	})

	t.Run("paginates", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books?page=2&per_page=2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decodePage(t, w)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.Page)
		assert.False(t, page.HasMore)
	})
}

func TestBooksController_Get(t *testing.T) {
	router, _ := newBooksRouter(t)

	t.Run("returns book with derived status and barcode", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books/1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var book library.BookView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "available", string(book.Status))
		assert.Equal(t, "LIB-1", book.Barcode)
	})

	t.Run("unknown id responds 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books/99", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id responds 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/books/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_Create(t *testing.T) {
	router, svc := newBooksRouter(t)

	t.Run("creates a book", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
			"title":  "Solaris",
			"author": "Stanislaw Lem",
			"year":   1961,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		found, err := svc.FindBook(4)
		require.NoError(t, err)
		assert.Equal(t, "Solaris", found.Title)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{"author": "Nobody"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_Update(t *testing.T) {
	router, svc := newBooksRouter(t)

	t.Run("updates an existing book", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/books/2", gin.H{
			"title":  "Emma",
			"author": "Jane Austen",
			"year":   1816,
		})
		require.Equal(t, http.StatusOK, w.Code)

		found, err := svc.FindBook(2)
		require.NoError(t, err)
		assert.Equal(t, 1816, found.Year)
	})

	t.Run("unknown id responds 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/books/99", gin.H{
			"title":  "Ghost",
			"author": "Nobody",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_Delete(t *testing.T) {
	router, svc := newBooksRouter(t)

	w := doJSON(t, router, http.MethodDelete, "/api/books/3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := svc.FindBook(3)
	assert.Error(t, err)

	w = doJSON(t, router, http.MethodDelete, "/api/books/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksController_ByBarcode(t *testing.T) {
	router, _ := newBooksRouter(t)

	t.Run("resolves a known barcode", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/barcode/LIB-2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var book library.BookView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, "Emma", book.Title)
	})

	t.Run("unknown barcode responds 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/barcode/LIB-99", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
