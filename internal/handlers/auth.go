package handlers

import (
	"log/slog"
	"net/http"

	"github.com/beingcrieative/mobmail-sub002/internal/authstate"
	"github.com/beingcrieative/mobmail-sub002/internal/gateway"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/labstack/echo/v4"
)

// AuthHandler exposes the authentication API. Every endpoint responds with
// the same normalized shape: {success, user, error}.
type AuthHandler struct {
	gateway *gateway.Gateway
	session *session.Manager
}

func NewAuthHandler(gw *gateway.Gateway, sm *session.Manager) *AuthHandler {
	return &AuthHandler{gateway: gw, session: sm}
}

// reconciler builds an auth-state store bound to this request's cookies.
// Auth state lives in the request, so the store is scoped to it too.
func (h *AuthHandler) reconciler(c echo.Context) *authstate.Store {
	return authstate.New(h.gateway.Bind(c.Request(), c))
}

type authResponse struct {
	Success bool         `json:"success"`
	User    *profileJSON `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type profileJSON struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func toAuthResponse(r gateway.Result) authResponse {
	resp := authResponse{Success: r.Success, Error: r.Error}
	if r.User != nil {
		resp.User = &profileJSON{
			ID:      r.User.ID,
			Email:   r.User.Email,
			Name:    r.User.Name,
			Company: r.User.Company,
			Phone:   r.User.Phone,
		}
	}
	return resp
}

func toStateResponse(s authstate.State) authResponse {
	resp := authResponse{Success: s.IsLoggedIn, Error: s.Error}
	if s.User != nil {
		resp.User = &profileJSON{
			ID:      s.User.ID,
			Email:   s.User.Email,
			Name:    s.User.Name,
			Company: s.User.Company,
			Phone:   s.User.Phone,
		}
	}
	return resp
}

func (h *AuthHandler) respond(c echo.Context, r gateway.Result) error {
	status := http.StatusOK
	if !r.Success {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, toAuthResponse(r))
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// HandleLogin authenticates against the identity provider and writes the
// marker cookies on success.
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, authResponse{Error: "Invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, authResponse{Error: "Email and password are required"})
	}

	result := h.gateway.Login(c.Request().Context(), c, gateway.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if result.Success {
		if err := h.session.SaveProfile(c, result.User); err != nil {
			slog.Error("failed to save profile session after login", "error", err)
		}
	}
	return h.respond(c, result)
}

type registerRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Company  string `json:"company" form:"company"`
	Phone    string `json:"phone" form:"phone"`
}

// HandleRegister creates an account and signs the user in.
func (h *AuthHandler) HandleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, authResponse{Error: "Invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, authResponse{Error: "Email and password are required"})
	}

	result := h.gateway.Register(c.Request().Context(), c, gateway.Registration{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Company:  req.Company,
		Phone:    req.Phone,
	})
	if result.Success {
		if err := h.session.SaveProfile(c, result.User); err != nil {
			slog.Error("failed to save profile session after registration", "error", err)
		}
	}
	return h.respond(c, result)
}

// HandleLogout ends the provider session and clears all local auth state.
// The marker cookies and the profile session are cleared even when the
// provider call fails.
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	state := h.reconciler(c).Logout(c.Request().Context())

	if err := h.session.ClearProfile(c); err != nil {
		slog.Error("failed to clear profile session on logout", "error", err)
	}

	resp := authResponse{Success: state.Error == "", Error: state.Error}
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, resp)
}

// HandleRefresh exchanges the current session token for a fresh one.
func (h *AuthHandler) HandleRefresh(c echo.Context) error {
	result := h.reconciler(c).RefreshSession(c.Request().Context())
	if result.Success {
		if err := h.session.SaveProfile(c, result.User); err != nil {
			slog.Error("failed to save profile session after refresh", "error", err)
		}
	}
	return h.respond(c, result)
}

type resetRequest struct {
	Email       string `json:"email" form:"email"`
	ResetToken  string `json:"reset_token" form:"reset_token"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// HandleResetPassword starts or completes a password reset depending on
// whether the request carries a reset token.
func (h *AuthHandler) HandleResetPassword(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, authResponse{Error: "Invalid request"})
	}

	var result gateway.Result
	switch {
	case req.ResetToken != "" && req.NewPassword != "":
		result = h.gateway.ConfirmPasswordReset(c.Request().Context(), req.ResetToken, req.NewPassword)
	case req.Email != "":
		result = h.gateway.RequestPasswordReset(c.Request().Context(), req.Email)
	default:
		return c.JSON(http.StatusBadRequest, authResponse{Error: "Email or reset token required"})
	}

	if !result.Success {
		return c.JSON(http.StatusBadRequest, toAuthResponse(result))
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// HandleStatus reports the reconciled auth state without mutating anything.
func (h *AuthHandler) HandleStatus(c echo.Context) error {
	state := h.reconciler(c).CheckAuthStatus(c.Request().Context())
	// An anonymous visitor is a valid answer, not an HTTP failure.
	return c.JSON(http.StatusOK, toStateResponse(state))
}

type consentRequest struct {
	Choice string `json:"choice" form:"choice"`
}

// HandleConsent records the visitor's cookie consent choice. Declining
// purges every non-essential cookie.
func (h *AuthHandler) HandleConsent(c echo.Context) error {
	var req consentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	var choice session.Consent
	switch req.Choice {
	case "accepted":
		choice = session.ConsentAccepted
	case "declined":
		choice = session.ConsentDeclined
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Choice must be accepted or declined"})
	}

	session.SetConsent(c.Request(), c, choice)
	return c.JSON(http.StatusOK, map[string]string{"consent": string(choice)})
}

// RegisterAuthRoutes mounts the auth API under the given group.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/auth/login", h.HandleLogin)
	g.POST("/auth/register", h.HandleRegister)
	g.POST("/auth/logout", h.HandleLogout)
	g.POST("/auth/refresh", h.HandleRefresh)
	g.POST("/auth/reset-password", h.HandleResetPassword)
	g.GET("/auth/status", h.HandleStatus)
	g.POST("/consent", h.HandleConsent)
}
