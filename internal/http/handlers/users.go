package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type UsersService interface {
	List(ctx context.Context) ([]user.User, error)
	CurrentUser(ctx context.Context, principalEmail string) (user.User, error)
	GetByID(ctx context.Context, current user.User, id int64) (user.User, error)
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Update(ctx context.Context, current user.User, id int64, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, current user.User, id int64) error
}

type UsersHandler struct {
	svc UsersService
}

func NewUsersHandler(svc UsersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func requestTimeout(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), 3*time.Second)
}

// resolveCurrentUser turns the authenticated principal stashed by the
// auth middleware into a full user record, passed explicitly to every
// guarded service call.
func resolveCurrentUser(ctx *gin.Context, identity UsersService) (user.User, bool) {
	email, ok := middlewares.EmailFromContext(ctx)

	if !ok || email == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return user.User{}, false
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	current, err := identity.CurrentUser(cctx, email)

	if err != nil {
		// principal references a user that no longer exists
		RespondUnAuthorized(ctx, "invalid_principal", "Session user no longer exists")
		return user.User{}, false
	}

	return current, true
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id < 1 {
		RespondBadRequest(ctx, "Invalid id", nil)
		return 0, false
	}

	return id, true
}

// ListUsers is mounted behind the admin role gate.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	users, err := h.svc.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	current, ok := resolveCurrentUser(ctx, h.svc)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, current)
}

func (h *UsersHandler) GetUserById(ctx *gin.Context) {
	// gin cannot mount /users/me next to /users/:id, so the alias is
	// dispatched here
	if ctx.Param("id") == "me" {
		h.Me(ctx)
		return
	}

	id, ok := parseID(ctx)

	if !ok {
		return
	}

	current, ok := resolveCurrentUser(ctx, h.svc)

	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	u, err := h.svc.GetByID(cctx, current, id)

	if err != nil {
		respondServiceError(ctx, err, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// CreateUser is the public registration endpoint.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	u, err := h.svc.Create(cctx, req)

	if err != nil {
		respondServiceError(ctx, err, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := parseID(ctx)

	if !ok {
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	current, ok := resolveCurrentUser(ctx, h.svc)

	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	u, err := h.svc.Update(cctx, current, id, req)

	if err != nil {
		respondServiceError(ctx, err, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx)

	if !ok {
		return
	}

	current, ok := resolveCurrentUser(ctx, h.svc)

	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	if err := h.svc.Delete(cctx, current, id); err != nil {
		respondServiceError(ctx, err, "Could not delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}
