package exporters

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openshelf/openshelf/internal/library"
)

// CalendarExporter renders open loans as an iCalendar feed so due
// dates show up in the user's calendar app. Closed loans are skipped.
type CalendarExporter struct {
	ProductID string
}

func NewCalendarExporter() *CalendarExporter {
	return &CalendarExporter{
		ProductID: "-//openshelf//library//EN",
	}
}

// Export writes one all-day VEVENT per open loan. The stamp is taken
// once so every event in a single export shares it.
func (e *CalendarExporter) Export(w io.Writer, loans []library.LoanView, stamp time.Time) error {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+e.ProductID)
	writeLine(&b, "CALSCALE:GREGORIAN")

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, loan := range loans {
		if !loan.Open() {
			continue
		}
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:loan-%d-%d@openshelf", loan.BookID, loan.BorrowDate.Unix()))
		writeLine(&b, "DTSTAMP:"+dtstamp)
		writeLine(&b, "DTSTART;VALUE=DATE:"+loan.DueDate.Format("20060102"))
		writeLine(&b, "SUMMARY:"+escapeText(loan.BookTitle+" (Due)"))
		writeLine(&b, "DESCRIPTION:"+escapeText(
			fmt.Sprintf("Borrowed by %s on %s.", loan.MemberName, loan.BorrowDate.Format("2006-01-02"))))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeLine terminates with CRLF as RFC 5545 requires.
func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// escapeText applies RFC 5545 TEXT escaping.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
