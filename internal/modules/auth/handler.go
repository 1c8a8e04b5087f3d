package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/pkg/response"
)

const RefreshCookie = "refresh_token"

// CookieSettings shape the session cookies set on login and refresh.
type CookieSettings struct {
	Secure    bool
	SameSite  http.SameSite
	Path      string
	AccessTTL time.Duration
}

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
	cookies CookieSettings
	log     *zap.Logger
}

func NewHandler(service *Service, cookies CookieSettings, log *zap.Logger) *Handler {
	if cookies.Path == "" {
		cookies.Path = "/"
	}
	return &Handler{service: service, cookies: cookies, log: log}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.POST("/login", h.Login)
		users.POST("/send-otp", h.SendOTP)
		users.POST("/verify-otp", h.VerifyOTP)
		users.POST("/refresh-token", h.RefreshToken)
		users.POST("/logout", h.Logout)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/profile", h.Profile)
}

// Login signs a user in with email and password.
// @Summary	Log in
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"email and password"
// @Success	200	{object}	map[string]interface{}
// @Failure	401	{object}	map[string]interface{}
// @Router		/users/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		h.internal(c, "LOGIN_FAILED", "Failed to login", err)
		return
	}
	h.writeSession(c, http.StatusOK, "Login successful", sess)
}

// SendOTP texts a one-time login code.
// @Summary	Send login code
// @Tags		Auth
// @Router		/users/send-otp [POST]
func (h *Handler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone number is required")
		return
	}

	if err := h.service.SendOTP(c.Request.Context(), req.Phone); err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			response.Error(c, http.StatusBadRequest, "INVALID_PHONE", "Enter a valid 10 digit phone number")
		case errors.Is(err, ErrOTPCooldown):
			response.Error(c, http.StatusTooManyRequests, "OTP_COOLDOWN", "Please wait before requesting another OTP")
		default:
			h.internal(c, "OTP_SEND_FAILED", "Failed to send OTP", err)
		}
		return
	}
	response.SuccessMessage(c, http.StatusOK, "OTP sent successfully", nil)
}

// VerifyOTP exchanges a login code for a session.
// @Summary	Verify login code
// @Tags		Auth
// @Router		/users/verify-otp [POST]
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone and OTP are required")
		return
	}

	sess, err := h.service.VerifyOTP(c.Request.Context(), req.Phone, req.OTP, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			response.Error(c, http.StatusBadRequest, "INVALID_PHONE", "Enter a valid 10 digit phone number")
		case errors.Is(err, ErrInvalidOTP):
			response.Error(c, http.StatusBadRequest, "INVALID_OTP", "Invalid or expired OTP")
		case errors.Is(err, ErrTooManyAttempts):
			response.Error(c, http.StatusTooManyRequests, "OTP_ATTEMPTS_EXCEEDED", "Too many attempts, request a new OTP")
		default:
			h.internal(c, "OTP_VERIFY_FAILED", "Failed to verify OTP", err)
		}
		return
	}
	h.writeSession(c, http.StatusOK, "Login successful", sess)
}

// RefreshToken rotates the refresh token from the cookie, or from the
// recoveryToken body field when no cookie is sent.
// @Summary	Refresh session
// @Tags		Auth
// @Router		/users/refresh-token [POST]
func (h *Handler) RefreshToken(c *gin.Context) {
	raw, _ := c.Cookie(RefreshCookie)
	if raw == "" {
		var req RefreshRequest
		_ = c.ShouldBindJSON(&req)
		raw = req.RecoveryToken
	}
	if raw == "" {
		response.Error(c, http.StatusUnauthorized, "REFRESH_TOKEN_MISSING", "Refresh token missing")
		return
	}

	sess, err := h.service.Refresh(c.Request.Context(), raw, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshTokenReused):
			h.clearCookies(c)
			response.Error(c, http.StatusUnauthorized, "REFRESH_TOKEN_REUSED", "Session revoked, please log in again")
		case errors.Is(err, ErrInvalidRefreshToken):
			h.clearCookies(c)
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Session expired, please log in again")
		default:
			h.internal(c, "REFRESH_FAILED", "Failed to refresh session", err)
		}
		return
	}
	h.writeSession(c, http.StatusOK, "Token refreshed", sess)
}

// Logout revokes the presented refresh token and clears the cookies.
// @Summary	Log out
// @Tags		Auth
// @Router		/users/logout [POST]
func (h *Handler) Logout(c *gin.Context) {
	raw, _ := c.Cookie(RefreshCookie)
	if raw == "" {
		var req LogoutRequest
		_ = c.ShouldBindJSON(&req)
		raw = req.RecoveryToken
	}

	err := h.service.Logout(c.Request.Context(), raw)
	h.clearCookies(c)
	if err != nil {
		h.internal(c, "LOGOUT_FAILED", "Failed to revoke session", err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, "Logged out successfully", nil)
}

// Profile returns the signed-in user.
// @Summary	Current user
// @Tags		Auth
// @Security	BearerAuth
// @Router		/users/profile [GET]
func (h *Handler) Profile(c *gin.Context) {
	userID := c.GetInt64("user_id")
	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "USER_NOT_FOUND", "User no longer exists")
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(user))
}

func (h *Handler) writeSession(c *gin.Context, status int, message string, sess *Session) {
	h.setCookie(c, middleware.AccessCookie, sess.AccessToken, int(h.cookies.AccessTTL.Seconds()))
	h.setCookie(c, RefreshCookie, sess.RefreshToken, int(h.service.cfg.RefreshTTL.Seconds()))

	c.JSON(status, gin.H{
		"success":     true,
		"message":     message,
		"accessToken": sess.AccessToken,
		"data": gin.H{
			"user":          toUserResponse(sess.User),
			"accessToken":   sess.AccessToken,
			"recoveryToken": sess.RefreshToken,
		},
	})
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cookies.Path,
		MaxAge:   maxAge,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: h.cookies.SameSite,
	})
}

func (h *Handler) clearCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessCookie, "", -1)
	h.setCookie(c, RefreshCookie, "", -1)
}

func (h *Handler) internal(c *gin.Context, code, message string, err error) {
	h.log.Error(message, zap.Error(err), zap.String("path", c.FullPath()))
	response.Error(c, http.StatusInternalServerError, code, message)
}

func clientMeta(c *gin.Context) ClientMeta {
	return ClientMeta{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}

func toUserResponse(u *domain.User) UserResponse {
	res := UserResponse{ID: u.ID, Name: u.Name, Role: string(u.Role)}
	if u.Email != nil {
		res.Email = *u.Email
	}
	if u.Phone != nil {
		res.Phone = *u.Phone
	}
	return res
}
