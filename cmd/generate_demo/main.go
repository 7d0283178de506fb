// Command generate_demo creates a demo data file with sample library
// records: a small catalog, a few members, open and overdue loans, a
// reservation and the activity trail the operations produce.
// Usage: go run cmd/generate_demo/main.go [-out path/to/library-data.json]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/library"
	"github.com/openshelf/openshelf/internal/snapshot"
)

const defaultDemoDataPath = "./demo/library-data.json"

func main() {
	outPath := flag.String("out", defaultDemoDataPath, "path to the demo data file")
	flag.Parse()

	log.Printf("Generating demo data at %s...", *outPath)

	if err := os.Remove(*outPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo data: %v", err)
	}

	// The demo clock starts three weeks back and is advanced between
	// operations, so the generated loans have believable dates and one
	// of them is overdue today.
	clock := time.Now().AddDate(0, 0, -21)
	svc := library.NewService(entities.EmptySnapshot(), snapshot.NewFileStore(*outPath), nil, library.Options{
		Now:      func() time.Time { return clock },
		SyncSave: true,
	})

	books := []entities.Book{
		{Title: "Dune", Author: "Frank Herbert", Year: 1965, Category: "Sci-Fi"},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Year: 1813, Category: "Classic"},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Year: 1937, Category: "Fantasy"},
		{Title: "Neuromancer", Author: "William Gibson", Year: 1984, Category: "Sci-Fi"},
		{Title: "Moby-Dick", Author: "Herman Melville", Year: 1851, Category: "Classic"},
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Year: 1969, Category: "Sci-Fi"},
	}
	for _, book := range books {
		if _, err := svc.SaveBook(book); err != nil {
			log.Fatalf("Failed to save book %q: %v", book.Title, err)
		}
		log.Printf("Saved: %s by %s", book.Title, book.Author)
	}

	members := []entities.Member{
		{Name: "Ann Clarke", Email: "ann@example.com", Phone: "555-0101"},
		{Name: "Ben Okafor", Email: "ben@example.com"},
		{Name: "Cara Lindqvist", Phone: "555-0133"},
	}
	for _, member := range members {
		if _, err := svc.SaveMember(member); err != nil {
			log.Fatalf("Failed to save member %q: %v", member.Name, err)
		}
		log.Printf("Registered: %s", member.Name)
	}

	// An overdue loan: borrowed three weeks ago with a 14-day period.
	borrow(svc, 1, 1)

	// Recent loans, still within the period.
	clock = clock.AddDate(0, 0, 16)
	borrow(svc, 2, 2)
	clock = clock.AddDate(0, 0, 2)
	borrow(svc, 3, 1)

	// A returned loan for history.
	borrow(svc, 4, 3)
	clock = clock.AddDate(0, 0, 1)
	if _, err := svc.Return(4, 3); err != nil {
		log.Fatalf("Failed to return book 4: %v", err)
	}

	// A hold on the overdue book.
	clock = clock.AddDate(0, 0, 1)
	if _, err := svc.Reserve(1, 2); err != nil {
		log.Fatalf("Failed to reserve book 1: %v", err)
	}

	snap := svc.Snapshot()
	log.Printf("Demo data ready: %d books, %d members, %d loans, %d reservations",
		len(snap.Books), len(snap.Members), len(snap.Loans), len(snap.Reservations))
}

func borrow(svc *library.Service, bookID, memberID int64) {
	if _, err := svc.Borrow(bookID, memberID); err != nil {
		log.Fatalf("Failed to borrow book %d for member %d: %v", bookID, memberID, err)
	}
}
