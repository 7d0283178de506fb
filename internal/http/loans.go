package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openshelf/openshelf/internal/library"
)

// confirmTokenTTL bounds how long a pending return stays redeemable.
const confirmTokenTTL = 5 * time.Minute

type pendingReturn struct {
	bookID   int64
	memberID int64
	expires  time.Time
}

// LoansController serves borrow, return and loan listing endpoints.
// Returns are a two-step flow: the first request issues a confirm
// token describing the loan about to close, the second redeems it.
type LoansController struct {
	library *library.Service
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]pendingReturn
}

func NewLoansController(svc *library.Service) *LoansController {
	return &LoansController{
		library: svc,
		now:     time.Now,
		pending: make(map[string]pendingReturn),
	}
}

type borrowRequest struct {
	BookID   int64 `json:"book_id" binding:"required"`
	MemberID int64 `json:"member_id" binding:"required"`
}

type returnRequest struct {
	BookID       int64  `json:"book_id" binding:"required"`
	MemberID     int64  `json:"member_id" binding:"required"`
	ConfirmToken string `json:"confirm_token"`
}

// List returns loan records decorated with titles, names and fines.
// The status filter accepts "open" and "overdue"; default is all.
func (lc *LoansController) List(c *gin.Context) {
	loans := lc.library.Loans()

	switch c.Query("status") {
	case "open":
		loans = filterLoans(loans, func(l library.LoanView) bool { return l.Open() })
	case "overdue":
		loans = filterLoans(loans, func(l library.LoanView) bool { return l.Overdue })
	}

	page, perPage := parsePagination(c)
	start, end := pageBounds(len(loans), page, perPage)
	c.IndentedJSON(200, paginated(loans[start:end], len(loans), page, perPage))
}

// Borrow opens a loan for a member.
func (lc *LoansController) Borrow(c *gin.Context) {
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id and member_id are required")
		return
	}

	loan, err := lc.library.Borrow(req.BookID, req.MemberID)
	if err != nil {
		respondDomainError(c, err, "borrow")
		return
	}
	respondCreated(c, loan)
}

// Return closes a loan. Without a confirm token it answers with one,
// plus the loan that would close, and performs no mutation. With a
// valid token it executes the return.
func (lc *LoansController) Return(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id and member_id are required")
		return
	}

	if req.ConfirmToken == "" {
		lc.issueConfirmToken(c, req)
		return
	}

	if !lc.redeemToken(req.ConfirmToken, req.BookID, req.MemberID) {
		respondBadRequest(c, "confirm token is invalid or expired")
		return
	}

	loan, err := lc.library.Return(req.BookID, req.MemberID)
	if err != nil {
		respondDomainError(c, err, "return")
		return
	}
	c.IndentedJSON(200, loan)
}

// issueConfirmToken validates that an open loan exists for the book
// before handing out a token, so the caller learns about a bad request
// on the first step rather than the second.
func (lc *LoansController) issueConfirmToken(c *gin.Context, req returnRequest) {
	var open *library.LoanView
	for _, loan := range lc.library.Loans() {
		if loan.BookID == req.BookID && loan.Open() {
			open = &loan
			break
		}
	}
	if open == nil {
		respondNotFound(c, "open loan for book")
		return
	}

	token := uuid.NewString()
	lc.mu.Lock()
	lc.prunePendingLocked()
	lc.pending[token] = pendingReturn{
		bookID:   req.BookID,
		memberID: req.MemberID,
		expires:  lc.now().Add(confirmTokenTTL),
	}
	lc.mu.Unlock()

	c.IndentedJSON(200, gin.H{
		"confirm_token": token,
		"loan":          open,
		"expires_in":    confirmTokenTTL.String(),
	})
}

// redeemToken consumes the token if it matches the request and has not
// expired. Tokens are single-use either way.
func (lc *LoansController) redeemToken(token string, bookID, memberID int64) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	p, ok := lc.pending[token]
	if !ok {
		return false
	}
	delete(lc.pending, token)
	return p.bookID == bookID && p.memberID == memberID && p.expires.After(lc.now())
}

func (lc *LoansController) prunePendingLocked() {
	now := lc.now()
	for token, p := range lc.pending {
		if !p.expires.After(now) {
			delete(lc.pending, token)
		}
	}
}

func filterLoans(loans []library.LoanView, keep func(library.LoanView) bool) []library.LoanView {
	filtered := make([]library.LoanView, 0, len(loans))
	for _, l := range loans {
		if keep(l) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}
