package http

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/library"
)

// MembersController serves the membership register endpoints.
type MembersController struct {
	library *library.Service
}

func NewMembersController(svc *library.Service) *MembersController {
	return &MembersController{library: svc}
}

type memberRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// List returns members filtered by an optional search query. The query
// matches name, email and phone substrings, or an exact id.
func (mc *MembersController) List(c *gin.Context) {
	members := mc.library.SearchMembers(c.Query("q"))
	sortMembers(members, c.DefaultQuery("sort", "id"), c.DefaultQuery("order", "asc"))

	page, perPage := parsePagination(c)
	start, end := pageBounds(len(members), page, perPage)
	c.IndentedJSON(200, paginated(members[start:end], len(members), page, perPage))
}

// Get returns a single member with their open loan count.
func (mc *MembersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	member, err := mc.library.FindMember(id)
	if err != nil {
		respondDomainError(c, err, "find member")
		return
	}
	c.IndentedJSON(200, member)
}

// Create registers a new member.
func (mc *MembersController) Create(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	saved, err := mc.library.SaveMember(entities.Member{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondDomainError(c, err, "create member")
		return
	}
	respondCreated(c, saved)
}

// Update replaces an existing member's details.
func (mc *MembersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := mc.library.FindMember(id); err != nil {
		respondDomainError(c, err, "update member")
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	saved, err := mc.library.SaveMember(entities.Member{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondDomainError(c, err, "update member")
		return
	}
	c.IndentedJSON(200, saved)
}

// Delete removes a member from the register.
func (mc *MembersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := mc.library.DeleteMember(id); err != nil {
		respondDomainError(c, err, "delete member")
		return
	}
	respondSuccess(c, "member deleted")
}

func sortMembers(members []library.MemberView, key, order string) {
	less := func(a, b library.MemberView) bool { return a.ID < b.ID }
	switch key {
	case "name":
		less = func(a, b library.MemberView) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case "open_loans":
		less = func(a, b library.MemberView) bool { return a.OpenLoans < b.OpenLoans }
	}
	sort.SliceStable(members, func(i, j int) bool {
		if order == "desc" {
			return less(members[j], members[i])
		}
		return less(members[i], members[j])
	})
}
