package fakeapi

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/bell-client/model"
)

// Users returns every account ordered by id.
func (a *API) Users() []model.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	list := make([]model.User, 0, len(a.accounts))
	for _, acc := range a.accounts {
		list = append(list, acc.user)
	}
	slices.SortFunc(list, func(x, y model.User) int { return cmp.Compare(x.ID, y.ID) })
	return list
}

func compareUsers(field string, x, y model.User) int {
	switch field {
	case "email":
		return strings.Compare(x.Email, y.Email)
	case "role":
		return strings.Compare(string(x.Role), string(y.Role))
	case "createdAt", "created_at":
		return x.CreatedAt.Compare(y.CreatedAt)
	case "id":
		return cmp.Compare(x.ID, y.ID)
	default:
		return strings.Compare(x.Username, y.Username)
	}
}

// listUsers pages, sorts and filters. sort_by and sort_desc take comma
// separated lists, applied in order.
func (a *API) listUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	fields := strings.Split(c.DefaultQuery("sort_by", "username"), ",")
	desc := strings.Split(c.DefaultQuery("sort_desc", "false"), ",")
	search := strings.ToLower(c.Query("search"))

	matched := []model.User{}
	for _, u := range a.Users() {
		if search == "" || strings.Contains(strings.ToLower(u.Username), search) || strings.Contains(strings.ToLower(u.Email), search) {
			matched = append(matched, u)
		}
	}
	slices.SortStableFunc(matched, func(x, y model.User) int {
		for i, field := range fields {
			r := compareUsers(field, x, y)
			if i < len(desc) && desc[i] == "true" {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	c.JSON(http.StatusOK, model.UserPage{Users: matched[start:end], Total: total})
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortError(c, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func (a *API) createUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "Invalid input data")
		return
	}
	a.mu.RLock()
	usernameTaken := a.accountByUsername(req.Username) != nil
	emailTaken := a.accountByEmail(req.Email) != nil
	a.mu.RUnlock()
	switch {
	case usernameTaken:
		abortError(c, http.StatusConflict, "Username already exists")
		return
	case emailTaken:
		abortError(c, http.StatusConflict, "Email already exists")
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	c.JSON(http.StatusCreated, a.AddUser(req.Username, req.Email, req.Password, role, true))
}

func (a *API) updateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "Invalid input data")
		return
	}
	var hash string
	if req.Password != "" {
		var err error
		if hash, err = hashPassword(req.Password); err != nil {
			abortError(c, http.StatusInternalServerError, "Failed to update user")
			return
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	acc, found := a.accounts[id]
	if !found {
		abortError(c, http.StatusNotFound, "User not found")
		return
	}
	if other := a.accountByUsername(req.Username); other != nil && other != acc {
		abortError(c, http.StatusConflict, "Username already exists")
		return
	}
	if other := a.accountByEmail(req.Email); other != nil && other != acc {
		abortError(c, http.StatusConflict, "Email already exists")
		return
	}
	acc.user.Username = req.Username
	acc.user.Email = req.Email
	acc.user.Role = req.Role
	acc.user.IsActive = req.IsActive
	acc.user.UpdatedAt = time.Now().UTC()
	if hash != "" {
		acc.passwordHash = hash
	}
	c.JSON(http.StatusOK, acc.user)
}

func (a *API) deleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, found := a.accounts[id]; !found {
		abortError(c, http.StatusNotFound, "User not found")
		return
	}
	delete(a.accounts, id)
	c.JSON(http.StatusOK, model.MessageResponse{Message: "User deleted successfully"})
}
