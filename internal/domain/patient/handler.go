package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smartclinic/clinic/internal/domain/appointment"
	"github.com/smartclinic/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/patients", h.Register)
	public.POST("/patients/login", h.Login)

	me := api.Group("/patients/me", auth.RequireRole(auth.RolePatient))
	me.GET("", h.Me)
	me.PUT("", h.UpdateMe)
	me.GET("/appointments", h.MyAppointments)
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}
	p := &Patient{Name: req.Name, Email: req.Email, Phone: req.Phone}
	err := h.svc.Register(c.Request().Context(), p, req.Password)
	if errors.Is(err, ErrDuplicateEmail) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, ErrBadCredentials) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Me(c echo.Context) error {
	p, err := h.current(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateMe(c echo.Context) error {
	p, err := h.current(c)
	if err != nil {
		return err
	}
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		p.PasswordHash = hash
	}
	if err := h.svc.Update(c.Request().Context(), p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

// MyAppointments serves GET /patients/me/appointments?doctor=Name&status=0.
func (h *Handler) MyAppointments(c echo.Context) error {
	p, err := h.current(c)
	if err != nil {
		return err
	}

	var status *appointment.Status
	if raw := c.QueryParam("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !appointment.Status(n).Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		st := appointment.Status(n)
		status = &st
	}

	appts, err := h.svc.Appointments(c.Request().Context(), p.ID, c.QueryParam("doctor"), status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"appointments": appts})
}

// current resolves the patient record behind the request's claims.
func (h *Handler) current(c echo.Context) (*Patient, error) {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	p, err := h.svc.GetByEmail(c.Request().Context(), claims.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return p, nil
}
