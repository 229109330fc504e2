package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"postboard/internal/otp"
	"postboard/internal/service"
	"postboard/internal/token"
	"postboard/internal/validate"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
	env         string
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger, env string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		env:         env,
	}
}

// serverError logs the cause and fails closed with a generic 500.
func (h *AuthHandler) serverError(c *gin.Context, op string, err error) {
	h.logger.Error("Auth operation failed", zap.String("operation", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong!"})
}

// validationError maps a validate.Error to the 401 + message contract.
// Returns false if err was not a validation failure.
func validationError(c *gin.Context, err error) bool {
	var ve *validate.Error
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": ve.Error()})
		return true
	}
	return false
}

// codeError maps one-time code failures. 404 for missing/expired is an
// inherited quirk of the API contract.
func codeError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, otp.ErrCodeMissing):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Something is wrong with code!"})
	case errors.Is(err, otp.ErrCodeExpired):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Code has been expired!"})
	case errors.Is(err, otp.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unexpected error occured!"})
	default:
		return false
	}
	return true
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	u, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrAlreadyExists):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User already exist"})
		default:
			h.serverError(c, "signup", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Signup Successfull",
		"result":  u,
	})
}

// Signin handles POST /api/auth/signin. The token goes out both in the
// body and in an Authorization cookie mirroring its expiry.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	tok, err := h.authService.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLogin):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password!"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials!"})
		default:
			h.serverError(c, "signin", err)
		}
		return
	}

	// gin URL-escapes the value, which the space in "Bearer " needs
	secure := h.env != "development"
	c.SetCookie(
		"Authorization",
		"Bearer "+tok,
		int(token.TTL.Seconds()),
		"/",
		"",
		secure, // Secure
		secure, // HttpOnly
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   tok,
		"message": "Logged in successfully",
	})
}

// Signout handles POST /api/auth/signout. Sessions are stateless, so
// signing out only clears the cookie.
func (h *AuthHandler) Signout(c *gin.Context) {
	c.SetCookie("Authorization", "", -1, "/", "", false, false)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Logged out successfully"})
}

// SendVerificationCode handles PATCH /api/auth/send-verification-code.
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	err := h.authService.SendVerificationCode(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User does not exist!"})
		case errors.Is(err, service.ErrAlreadyVerified):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "You are already verified!"})
		case errors.Is(err, service.ErrThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Code already sent. Try again later!"})
		case errors.Is(err, service.ErrSendFailed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Code sent failed!"})
		default:
			h.serverError(c, "sendVerificationCode", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Code sent!"})
}

// VerifyVerificationCode handles PATCH /api/auth/verify-verification-code.
func (h *AuthHandler) VerifyVerificationCode(c *gin.Context) {
	var req struct {
		Email        string `json:"email"`
		ProvidedCode string `json:"providedCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	err := h.authService.VerifyVerificationCode(c.Request.Context(), req.Email, req.ProvidedCode)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User does not exist!"})
		case errors.Is(err, service.ErrAlreadyVerified):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "You are already verified!"})
		case codeError(c, err):
		default:
			h.serverError(c, "verifyVerificationCode", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "your account has been verified!"})
}

// ChangePassword handles PATCH /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	claims := MustClaims(c)
	err := h.authService.ChangePassword(c.Request.Context(), claims.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User does not exist!"})
		case errors.Is(err, service.ErrNotVerified):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "You are not verified!"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials!"})
		default:
			h.serverError(c, "changePassword", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated"})
}

// SendForgotPasswordCode handles PATCH /api/auth/send-forgot-password-code.
func (h *AuthHandler) SendForgotPasswordCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	err := h.authService.SendForgotPasswordCode(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User does not exist!"})
		case errors.Is(err, service.ErrThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Code already sent. Try again later!"})
		case errors.Is(err, service.ErrSendFailed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Code sent failed!"})
		default:
			h.serverError(c, "sendForgotPasswordCode", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Code sent!"})
}

// VerifyForgotPasswordCode handles PATCH /api/auth/verify-forgot-password-code.
func (h *AuthHandler) VerifyForgotPasswordCode(c *gin.Context) {
	var req struct {
		Email        string `json:"email"`
		ProvidedCode string `json:"providedCode"`
		NewPassword  string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	err := h.authService.VerifyForgotPasswordCode(c.Request.Context(), req.Email, req.ProvidedCode, req.NewPassword)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User does not exist!"})
		case codeError(c, err):
		default:
			h.serverError(c, "verifyForgotPasswordCode", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password Updated!"})
}
