package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/liberrors"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any  `json:"data"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasMore bool `json:"has_more"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "validation"})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondDomainError translates the library error taxonomy into HTTP
// status codes: validation 400, not found 404, conflict and limit 409.
// Anything outside the taxonomy is treated as an internal error.
func respondDomainError(c *gin.Context, err error, context string) {
	switch {
	case liberrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case liberrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case liberrors.IsLimitExceeded(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "limit_exceeded"})
	case liberrors.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
	default:
		respondInternalError(c, err, context)
	}
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates a positive integer ID from URL
// parameters. Responds with a 400 error and returns false on failure.
func parseIDParam(c *gin.Context, paramName string) (int64, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parsePagination reads page/per_page query parameters, clamped to
// sane bounds. Page numbering starts at 1.
func parsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// pageBounds returns the [start, end) slice bounds for a page over a
// collection of the given length.
func pageBounds(total, page, perPage int) (start, end int) {
	start = (page - 1) * perPage
	if start > total {
		start = total
	}
	end = start + perPage
	if end > total {
		end = total
	}
	return start, end
}

// paginated builds the standard paginated envelope around a page slice.
func paginated(data any, total, page, perPage int) PaginatedResponse {
	_, end := pageBounds(total, page, perPage)
	return PaginatedResponse{
		Data:    data,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		HasMore: end < total,
	}
}
