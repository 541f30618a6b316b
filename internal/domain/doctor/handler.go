package doctor

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smartclinic/clinic/internal/platform/auth"
	"github.com/smartclinic/clinic/pkg/timeslot"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the roster endpoints. public carries no auth
// middleware; api requires a valid token.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/doctors/login", h.Login)

	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id/availability", h.GetAvailability)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/doctors", h.CreateDoctor)
	adminGroup.PUT("/doctors/:id", h.UpdateDoctor)
	adminGroup.DELETE("/doctors/:id", h.DeleteDoctor)
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

// ListDoctors dispatches on the optional name, specialty and period query
// parameters; every combination maps to its own roster filter.
func (h *Handler) ListDoctors(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.QueryParam("name")
	specialty := c.QueryParam("specialty")

	hasPeriod := false
	var period timeslot.Period
	if p := c.QueryParam("period"); p != "" {
		parsed, err := timeslot.ParsePeriod(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		period, hasPeriod = parsed, true
	}

	var (
		res *FilterResult
		err error
	)
	switch {
	case name != "" && specialty != "" && hasPeriod:
		res, err = h.svc.FilterByNameSpecialtyAndPeriod(ctx, name, specialty, period)
	case name != "" && specialty != "":
		res, err = h.svc.FilterByNameAndSpecialty(ctx, name, specialty)
	case name != "" && hasPeriod:
		res, err = h.svc.FilterByNameAndPeriod(ctx, name, period)
	case specialty != "" && hasPeriod:
		res, err = h.svc.FilterBySpecialtyAndPeriod(ctx, specialty, period)
	case name != "":
		res, err = h.svc.FilterByName(ctx, name)
	case specialty != "":
		res, err = h.svc.FilterBySpecialty(ctx, specialty)
	case hasPeriod:
		res, err = h.svc.FilterByPeriod(ctx, period)
	default:
		res, err = h.svc.List(ctx)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetAvailability(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := time.ParseInLocation("2006-01-02", c.QueryParam("date"), time.Local)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), id, date)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string][]string{"available_times": slots})
}

type doctorRequest struct {
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Email          string   `json:"email"`
	Phone          *string  `json:"phone"`
	Password       string   `json:"password"`
	AvailableTimes []string `json:"available_times"`
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}
	d := &Doctor{
		Name:           req.Name,
		Specialty:      req.Specialty,
		Email:          req.Email,
		Phone:          req.Phone,
		AvailableTimes: req.AvailableTimes,
	}
	err := h.svc.Register(c.Request().Context(), d, req.Password)
	if errors.Is(err, ErrDuplicateEmail) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d := &Doctor{
		ID:             id,
		Name:           req.Name,
		Specialty:      req.Specialty,
		Email:          req.Email,
		Phone:          req.Phone,
		AvailableTimes: req.AvailableTimes,
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		d.PasswordHash = hash
	}
	err = h.svc.Update(c.Request().Context(), d)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
