package http

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/exporters"
	"github.com/openshelf/openshelf/internal/library"
)

// CalendarController serves the due-date calendar export.
type CalendarController struct {
	library  *library.Service
	exporter *exporters.CalendarExporter
}

func NewCalendarController(svc *library.Service) *CalendarController {
	return &CalendarController{
		library:  svc,
		exporter: exporters.NewCalendarExporter(),
	}
}

// Export streams an iCalendar document with one all-day event per open
// loan, dated on the due date.
func (cc *CalendarController) Export(c *gin.Context) {
	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="due-dates.ics"`)

	if err := cc.exporter.Export(c.Writer, cc.library.Loans(), time.Now()); err != nil {
		log.Printf("Failed to stream calendar export: %v", err)
	}
}
