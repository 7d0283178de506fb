package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/library"
)

// DashboardController serves the stats summary and the activity trail.
type DashboardController struct {
	library *library.Service
}

func NewDashboardController(svc *library.Service) *DashboardController {
	return &DashboardController{library: svc}
}

// Stats returns the dashboard summary computed as of now.
func (dc *DashboardController) Stats(c *gin.Context) {
	c.IndentedJSON(200, dc.library.Stats())
}

// Activity returns the audit trail, newest entries last, paginated.
func (dc *DashboardController) Activity(c *gin.Context) {
	entries := dc.library.Activity()

	page, perPage := parsePagination(c)
	start, end := pageBounds(len(entries), page, perPage)
	c.IndentedJSON(200, paginated(entries[start:end], len(entries), page, perPage))
}
