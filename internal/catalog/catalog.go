// Package catalog owns the book records of the library.
package catalog

import (
	"strconv"
	"strings"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/liberrors"
)

// Catalog is the owned collection of books. It knows nothing about
// loans or reservations; availability is derived elsewhere.
type Catalog struct {
	books []entities.Book
}

// New creates a catalog seeded from a snapshot collection.
func New(books []entities.Book) *Catalog {
	c := &Catalog{books: make([]entities.Book, len(books))}
	copy(c.books, books)
	return c
}

// Upsert adds the book, or replaces the existing record with the same
// id. A zero id gets the next free one assigned.
func (c *Catalog) Upsert(book entities.Book) (entities.Book, error) {
	if strings.TrimSpace(book.Title) == "" {
		return entities.Book{}, liberrors.NewValidation("book title is required")
	}
	if strings.TrimSpace(book.Author) == "" {
		return entities.Book{}, liberrors.NewValidation("book author is required")
	}
	if book.Year == 0 {
		return entities.Book{}, liberrors.NewValidation("book year is required")
	}

	if book.ID == 0 {
		book.ID = c.nextID()
	}

	for i := range c.books {
		if c.books[i].ID == book.ID {
			c.books[i] = book
			return book, nil
		}
	}
	c.books = append(c.books, book)
	return book, nil
}

// Remove deletes the book record. It deliberately does not check for
// open loans or reservations referencing the book; dangling references
// are tolerated and rendered as "Unknown".
func (c *Catalog) Remove(id int64) (entities.Book, error) {
	for i := range c.books {
		if c.books[i].ID == id {
			removed := c.books[i]
			c.books = append(c.books[:i], c.books[i+1:]...)
			return removed, nil
		}
	}
	return entities.Book{}, &liberrors.NotFoundError{Kind: "book", ID: id}
}

// Find returns the book with the given id.
func (c *Catalog) Find(id int64) (entities.Book, bool) {
	for _, b := range c.books {
		if b.ID == id {
			return b, true
		}
	}
	return entities.Book{}, false
}

// Search filters books by a free-text query: case-insensitive
// substring match over title, author and category, substring match on
// the year, and exact match on the id. The result is recomputed on
// every call.
func (c *Catalog) Search(query string) []entities.Book {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.All()
	}

	lower := strings.ToLower(query)
	matched := make([]entities.Book, 0)
	for _, b := range c.books {
		switch {
		case strings.Contains(strings.ToLower(b.Title), lower),
			strings.Contains(strings.ToLower(b.Author), lower),
			b.Category != "" && strings.Contains(strings.ToLower(b.Category), lower),
			strings.Contains(strconv.Itoa(b.Year), query),
			strconv.FormatInt(b.ID, 10) == query:
			matched = append(matched, b)
		}
	}
	return matched
}

// ByBarcode resolves a scanned code against the derived barcode of
// every book. Barcodes are not guaranteed unique; the first match
// wins.
func (c *Catalog) ByBarcode(code string) (entities.Book, bool) {
	for _, b := range c.books {
		if entities.DerivedBarcode(b.ID) == code {
			return b, true
		}
	}
	return entities.Book{}, false
}

// All returns a copy of every book record in insertion order.
func (c *Catalog) All() []entities.Book {
	out := make([]entities.Book, len(c.books))
	copy(out, c.books)
	return out
}

// Len returns the number of books in the catalog.
func (c *Catalog) Len() int {
	return len(c.books)
}

func (c *Catalog) nextID() int64 {
	var max int64
	for _, b := range c.books {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}
