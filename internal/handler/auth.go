package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"

	"github.com/trendmart/storefront/internal/domain/user"
)

type signUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// SignUp handles POST /api/auth/signup.
func (h *Handler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	u, token, err := h.users.SignUp(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return mapUserError(c, err)
	}
	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(u), Token: token})
}

// SignIn handles POST /api/auth/signin.
func (h *Handler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	u, token, err := h.users.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapUserError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(u), Token: token})
}

// GetProfile handles GET /api/auth/profile.
func (h *Handler) GetProfile(c echo.Context) error {
	u, err := h.users.Profile(c.Request().Context(), identityFrom(c).UserID)
	if err != nil {
		return mapUserError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	u, err := h.users.UpdateProfile(c.Request().Context(), identityFrom(c).UserID, user.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return mapUserError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// mapUserError converts user domain errors to API responses.
func mapUserError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		return writeError(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, user.ErrEmailTaken):
		return writeError(c, http.StatusConflict, "email already registered")
	case errors.Is(err, user.ErrNotFound):
		return writeError(c, http.StatusNotFound, "user not found")
	default:
		return err
	}
}
