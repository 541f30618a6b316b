package admin

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartclinic/clinic/internal/platform/auth"
)

// TokenChecker gates the dashboard routes. Satisfied by auth.Tokens.
type TokenChecker interface {
	Validate(raw string, required auth.Role) bool
}

type Handler struct {
	svc    *Service
	tokens TokenChecker
}

func NewHandler(svc *Service, tokens TokenChecker) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes mounts the admin login and the dashboard gates. The
// dashboards carry the token as a path segment because the web client
// redirects through a plain link after login.
func (h *Handler) RegisterRoutes(public *echo.Group) {
	public.POST("/admin/login", h.Login)
	public.GET("/dashboard/admin/:token", h.AdminDashboard)
	public.GET("/dashboard/doctor/:token", h.DoctorDashboard)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, ErrBadCredentials) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) AdminDashboard(c echo.Context) error {
	return h.dashboard(c, auth.RoleAdmin)
}

func (h *Handler) DoctorDashboard(c echo.Context) error {
	return h.dashboard(c, auth.RoleDoctor)
}

func (h *Handler) dashboard(c echo.Context, role auth.Role) error {
	if !h.tokens.Validate(c.Param("token"), role) {
		return echo.NewHTTPError(http.StatusForbidden, "invalid token")
	}
	return c.JSON(http.StatusOK, map[string]string{"dashboard": string(role)})
}
