package http

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/library"
)

// BooksController serves the catalog endpoints.
type BooksController struct {
	library *library.Service
}

func NewBooksController(svc *library.Service) *BooksController {
	return &BooksController{library: svc}
}

type bookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author" binding:"required"`
	Year     int    `json:"year"`
	Category string `json:"category"`
}

// List returns catalog entries, filtered by an optional search query
// and paginated. Sorting follows the sort/order query parameters.
func (bc *BooksController) List(c *gin.Context) {
	books := bc.library.SearchBooks(c.Query("q"))
	sortBooks(books, c.DefaultQuery("sort", "id"), c.DefaultQuery("order", "asc"))

	page, perPage := parsePagination(c)
	start, end := pageBounds(len(books), page, perPage)
	c.IndentedJSON(200, paginated(books[start:end], len(books), page, perPage))
}

// Get returns a single book with its derived status and barcode.
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.library.FindBook(id)
	if err != nil {
		respondDomainError(c, err, "find book")
		return
	}
	c.IndentedJSON(200, book)
}

// Create adds a new book to the catalog.
func (bc *BooksController) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	saved, err := bc.library.SaveBook(entities.Book{
		Title:    req.Title,
		Author:   req.Author,
		Year:     req.Year,
		Category: req.Category,
	})
	if err != nil {
		respondDomainError(c, err, "create book")
		return
	}
	respondCreated(c, saved)
}

// Update replaces an existing book's details.
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := bc.library.FindBook(id); err != nil {
		respondDomainError(c, err, "update book")
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	saved, err := bc.library.SaveBook(entities.Book{
		ID:       id,
		Title:    req.Title,
		Author:   req.Author,
		Year:     req.Year,
		Category: req.Category,
	})
	if err != nil {
		respondDomainError(c, err, "update book")
		return
	}
	c.IndentedJSON(200, saved)
}

// Delete removes a book from the catalog.
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := bc.library.DeleteBook(id); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// ByBarcode resolves a scanned barcode to a catalog entry.
func (bc *BooksController) ByBarcode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	book, err := bc.library.BookByBarcode(code)
	if err != nil {
		respondDomainError(c, err, "barcode lookup")
		return
	}
	c.IndentedJSON(200, book)
}

func sortBooks(books []library.BookView, key, order string) {
	less := func(a, b library.BookView) bool { return a.ID < b.ID }
	switch key {
	case "title":
		less = func(a, b library.BookView) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case "author":
		less = func(a, b library.BookView) bool {
			return strings.ToLower(a.Author) < strings.ToLower(b.Author)
		}
	case "year":
		less = func(a, b library.BookView) bool { return a.Year < b.Year }
	}
	sort.SliceStable(books, func(i, j int) bool {
		if order == "desc" {
			return less(books[j], books[i])
		}
		return less(books[i], books[j])
	})
}
