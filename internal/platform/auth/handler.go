package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ASSETRACK-backend/internal/platform/apierr"
)

type AuthHandler struct{ svc AuthService }

// RegisterPublicRoutes: トークン不要なのはログインのみ
func RegisterPublicRoutes(r gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	r.POST("/login", h.Login)
}

// RegisterRoutes: r は RequireAuth の内側であること
func RegisterRoutes(r gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	r.GET("/me", h.Me)
}

// RegisterAdminRoutes: r は RequireAuth と RequireRole(RoleAdmin) の内側であること
func RegisterAdminRoutes(r gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	r.GET("/accounts", h.ListAccounts)
	r.POST("/accounts", h.Register)
	r.PUT("/accounts/:id/disabled", h.SetDisabled)
	r.DELETE("/accounts/:id", h.DeleteAccount)
	r.PATCH("/accounts/:id", h.ChangeUsername) // “ユーザー名変更” = id変更
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AccountResponse struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	IsDisabled bool      `json:"is_disabled"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(a *Account) AccountResponse {
	return AccountResponse{ID: a.ID, Role: a.Role, IsDisabled: a.IsDisabled, CreatedAt: a.CreatedAt}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.FromBind(err)))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Printf("[ERROR] login %s: %v", req.ID, err)
		}
		c.JSON(http.StatusUnauthorized, apierr.Body(&apierr.APIError{
			Code:    apierr.CodeUnauthenticated,
			Message: "invalid username or password",
		}))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Login successful",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	acct, err := h.svc.Get(c.Request.Context(), Actor(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, apierr.Body(apierr.NotFound("account not found")))
			return
		}
		c.JSON(http.StatusInternalServerError, apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, toResponse(acct))
}

type RegisterRequest struct {
	ID       string  `json:"id" binding:"required,max=64"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     *string `json:"role,omitempty"` // 未指定なら user
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.FromBind(err)))
		return
	}

	role := RoleUser
	if req.Role != nil && *req.Role != "" {
		role = *req.Role
	}

	if err := h.svc.Register(c.Request.Context(), req.ID, req.Password, role); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, apierr.Body(apierr.Conflict("id already exists")))
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.InvalidField("role", "must be admin or user")))
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("id and password are required")))
		default:
			log.Printf("[ERROR] register %s: %v", req.ID, err)
			c.JSON(http.StatusInternalServerError, apierr.Body(err))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, apierr.Body(apierr.NotFound("account not found")))
			return
		}
		log.Printf("[ERROR] delete account %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, apierr.Body(err))
		return
	}

	c.Status(http.StatusNoContent)
}

type ChangeUsernameRequest struct {
	NewID string `json:"new_id" binding:"required,max=64"`
}

func (h *AuthHandler) ChangeUsername(c *gin.Context) {
	oldID := c.Param("id")

	var req ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.FromBind(err)))
		return
	}

	if err := h.svc.ChangeID(c.Request.Context(), oldID, req.NewID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, apierr.Body(apierr.NotFound("account not found")))
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, apierr.Body(apierr.Conflict("new id already exists")))
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.InvalidField("new_id", "this field is required")))
		default:
			log.Printf("[ERROR] change id %s: %v", oldID, err)
			c.JSON(http.StatusInternalServerError, apierr.Body(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "username changed"})
}

func (h *AuthHandler) ListAccounts(c *gin.Context) {
	accts, err := h.svc.List(c.Request.Context())
	if err != nil {
		log.Printf("[ERROR] list accounts: %v", err)
		c.JSON(http.StatusInternalServerError, apierr.Body(err))
		return
	}
	res := make([]AccountResponse, 0, len(accts))
	for i := range accts {
		res = append(res, toResponse(&accts[i]))
	}
	c.JSON(http.StatusOK, res)
}

type SetDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

func (h *AuthHandler) SetDisabled(c *gin.Context) {
	id := c.Param("id")

	var req SetDisabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.FromBind(err)))
		return
	}
	// 自分自身は無効化できない
	if *req.Disabled && id == Actor(c) {
		c.JSON(http.StatusConflict, apierr.Body(apierr.Conflict("cannot disable the acting account")))
		return
	}

	if err := h.svc.SetDisabled(c.Request.Context(), id, *req.Disabled); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, apierr.Body(apierr.NotFound("account not found")))
			return
		}
		log.Printf("[ERROR] set disabled %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, apierr.Body(err))
		return
	}
	c.Status(http.StatusNoContent)
}
