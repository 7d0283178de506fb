package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/library"
)

// ReservationsController serves the reservation queue endpoints.
type ReservationsController struct {
	library *library.Service
}

func NewReservationsController(svc *library.Service) *ReservationsController {
	return &ReservationsController{library: svc}
}

type reserveRequest struct {
	BookID   int64 `json:"book_id" binding:"required"`
	MemberID int64 `json:"member_id" binding:"required"`
}

// List returns reservation records with display names and their
// current active flag. The active filter hides expired holds.
func (rc *ReservationsController) List(c *gin.Context) {
	reservations := rc.library.Reservations()

	if c.Query("active") == "true" {
		filtered := make([]library.ReservationView, 0, len(reservations))
		for _, r := range reservations {
			if r.Active {
				filtered = append(filtered, r)
			}
		}
		reservations = filtered
	}

	page, perPage := parsePagination(c)
	start, end := pageBounds(len(reservations), page, perPage)
	c.IndentedJSON(200, paginated(reservations[start:end], len(reservations), page, perPage))
}

// Create places a hold on a borrowed book.
func (rc *ReservationsController) Create(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id and member_id are required")
		return
	}

	res, err := rc.library.Reserve(req.BookID, req.MemberID)
	if err != nil {
		respondDomainError(c, err, "reserve")
		return
	}
	respondCreated(c, res)
}
