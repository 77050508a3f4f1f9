package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/bell-client/model"
	"golang.org/x/crypto/bcrypt"
)

const ctxUserID = "user_id"

type account struct {
	user         model.User
	passwordHash string
	resetToken   string
}

func (acc *account) profile() model.UserProfile {
	return model.UserProfile{
		ID:                  acc.user.ID,
		Username:            acc.user.Username,
		Email:               acc.user.Email,
		Role:                acc.user.Role,
		IsActive:            acc.user.IsActive,
		ForcePasswordChange: acc.user.ForcePasswordChange,
		CreatedAt:           acc.user.CreatedAt,
		UpdatedAt:           acc.user.UpdatedAt,
	}
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(b), err
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AddUser creates an active account and returns it.
func (a *API) AddUser(username, email, password string, role model.RoleType, forcePasswordChange bool) model.User {
	hash, err := hashPassword(password)
	if err != nil {
		panic(err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now().UTC()
	acc := &account{
		user: model.User{
			ID:                  a.id(),
			Username:            username,
			Email:               email,
			Role:                role,
			IsActive:            true,
			ForcePasswordChange: forcePasswordChange,
			CreatedAt:           now,
			UpdatedAt:           now,
		},
		passwordHash: hash,
	}
	a.accounts[acc.user.ID] = acc
	return acc.user
}

// IssueToken signs a token for username, as a successful login would.
func (a *API) IssueToken(username string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc := a.accountByUsername(username)
	if acc == nil {
		return ""
	}
	token, err := a.sign(acc)
	if err != nil {
		panic(err)
	}
	return token
}

// Revoke makes later requests carrying token answer 401.
func (a *API) Revoke(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked[token] = true
}

// ResetToken returns the pending password reset token for email.
func (a *API) ResetToken(email string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if acc := a.accountByEmail(email); acc != nil {
		return acc.resetToken
	}
	return ""
}

// sign must be called with mu held.
func (a *API) sign(acc *account) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"user_id":               acc.user.ID,
		"username":              acc.user.Username,
		"role":                  string(acc.user.Role),
		"force_password_change": acc.user.ForcePasswordChange,
		"exp":                   time.Now().Add(a.tokenTTL).Unix(),
	})
	return token.SignedString(a.secret)
}

func (a *API) accountByUsername(username string) *account {
	for _, acc := range a.accounts {
		if acc.user.Username == username {
			return acc
		}
	}
	return nil
}

func (a *API) accountByEmail(email string) *account {
	for _, acc := range a.accounts {
		if acc.user.Email == email {
			return acc
		}
	}
	return nil
}

func (a *API) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			abortError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}
		a.mu.RLock()
		revoked := a.revoked[raw]
		a.mu.RUnlock()
		if revoked {
			abortError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims := jwtlib.MapClaims{}
		_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
			return a.secret, nil
		}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
		if err != nil {
			abortError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		id, ok := claims["user_id"].(float64)
		if !ok {
			abortError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		c.Set(ctxUserID, int64(id))
		c.Next()
	}
}

func (a *API) login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	acc := a.accountByUsername(req.Username)
	if acc == nil {
		abortError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !acc.user.IsActive {
		abortError(c, http.StatusUnauthorized, "Account is inactive")
		return
	}
	if !checkPassword(req.Password, acc.passwordHash) {
		abortError(c, http.StatusUnauthorized, "Invalid password")
		return
	}
	token, err := a.sign(acc)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, model.SessionData{Token: token, User: acc.profile()})
}

func (a *API) register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	a.mu.RLock()
	exists := a.accountByUsername(req.Username) != nil
	a.mu.RUnlock()
	if exists {
		abortError(c, http.StatusBadRequest, "Username already exists")
		return
	}
	user := a.AddUser(req.Username, req.Email, req.Password, req.Role, false)
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

func (a *API) forgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	a.mu.Lock()
	if acc := a.accountByEmail(req.Email); acc != nil {
		acc.resetToken = uuid.NewString()
	}
	a.mu.Unlock()
	c.JSON(http.StatusOK, model.MessageResponse{Message: "If the email exists, a password reset link has been sent"})
}

func (a *API) resetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.accounts {
		if acc.resetToken != "" && acc.resetToken == req.Token {
			acc.passwordHash = hash
			acc.resetToken = ""
			acc.user.ForcePasswordChange = false
			c.JSON(http.StatusOK, model.MessageResponse{Message: "Password has been reset successfully"})
			return
		}
	}
	abortError(c, http.StatusBadRequest, "Invalid or expired reset token")
}

func (a *API) me(c *gin.Context) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.accounts[c.GetInt64(ctxUserID)]
	if !ok {
		abortError(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, acc.profile())
}

func (a *API) changePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accounts[c.GetInt64(ctxUserID)]
	if !ok {
		abortError(c, http.StatusUnauthorized, "User not found")
		return
	}
	if !checkPassword(req.CurrentPassword, acc.passwordHash) {
		abortError(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	acc.passwordHash = hash
	acc.user.ForcePasswordChange = false
	acc.user.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Password changed successfully"})
}
