package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Kariqs/amexan-storefront/middlewares"
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/services"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidInput        = "invalid input"
	msgUserAlreadyExists   = "user already exists"
	msgInvalidCredentials  = "invalid email or password"
	msgInternalServerError = "Internal server error"
	msgUserCreated         = "User created successfully."
	msgAuthRequired        = "Authentication required"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"success": false, "message": message})
}

// handleServiceError maps a service error onto a status code and the
// {success, message, redirectTo} body.
func handleServiceError(ctx *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	var mismatchErr *services.PaymentMismatchError

	switch {
	case errors.As(err, &validationErr):
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{
			"success":    false,
			"message":    validationErr.Message,
			"field":      validationErr.Field,
			"redirectTo": validationErr.RedirectTo,
		})
	case errors.As(err, &mismatchErr):
		sendErrorResponse(ctx, http.StatusPaymentRequired, mismatchErr.Error())
	case errors.Is(err, services.ErrNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrStateConflict), errors.Is(err, services.ErrInsufficientStock):
		sendErrorResponse(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, services.ErrUserAlreadyExists):
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
	case errors.Is(err, services.ErrMissingOwner):
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(ctx.Request.Context(), fallback, "error", err, "path", ctx.Request.URL.Path)
		sendErrorResponse(ctx, http.StatusInternalServerError, fallback)
	}
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

func requireIdentity(ctx *gin.Context) (*services.Identity, bool) {
	identity, ok := middlewares.GetIdentity(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgAuthRequired)
	}
	return identity, ok
}

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup handles user registration
func (c *AuthController) Signup(ctx *gin.Context) {
	var signUpData models.SignupData
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := c.auth.Register(ctx.Request.Context(), signUpData)
	if err != nil {
		handleServiceError(ctx, err, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"success": true, "message": msgUserCreated, "user": user})
}

// Login authenticates the user and hands the session cart over to them.
func (c *AuthController) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	token, identity, err := c.auth.Login(ctx.Request.Context(), loginData, middlewares.GetSessionCartID(ctx))
	if err != nil {
		handleServiceError(ctx, err, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "token": token, "user": identity})
}
