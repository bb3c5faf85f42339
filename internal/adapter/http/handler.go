package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/zip-coverage/internal/coverage"
	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/selection"
	"github.com/gin-gonic/gin"
)

// CoverageService is the API's view of the coverage service.
type CoverageService interface {
	Brands() []domain.BrandInfo
	Geometry() ([]byte, error)
	Lookup(brand domain.Brand, zip string) (coverage.LookupResult, error)
	Styles(brand domain.Brand) (map[string]domain.Style, error)
	Partition(brand domain.Brand) (domain.Partition, error)
	Report(brand domain.Brand) (coverage.Report, error)
	Selection() (coverage.SelectionView, error)
	Toggle(brand domain.Brand) (coverage.SelectionView, error)
	SetFilter(brands []domain.Brand) (coverage.SelectionView, error)
	Locate(lat, lon float64, brand domain.Brand) (coverage.LookupResult, error)
}

// Handler serves the /api routes.
type Handler struct {
	svc    CoverageService
	logger *slog.Logger
}

// NewHandler creates a handler over svc.
func NewHandler(svc CoverageService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the API routes on g.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/brands", h.Brands)
	g.GET("/geometry", h.Geometry)
	g.GET("/availability/:brand/:zip", h.Availability)
	g.GET("/brands/:brand/styles", h.Styles)
	g.GET("/brands/:brand/report", h.Report)
	g.GET("/brands/:brand/report/pdf", h.ReportPDF)
	g.GET("/selection", h.Selection)
	g.POST("/selection/:brand", h.Toggle)
	g.PUT("/selection/filter", h.SetFilter)
	g.GET("/locate", h.Locate)
	g.GET("/locations", h.Locations)
}

// Brands handles GET /api/brands.
func (h *Handler) Brands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brands": h.svc.Brands()})
}

// Geometry handles GET /api/geometry.
func (h *Handler) Geometry(c *gin.Context) {
	data, err := h.svc.Geometry()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// Availability handles GET /api/availability/:brand/:zip.
func (h *Handler) Availability(c *gin.Context) {
	brand, ok := h.brandParam(c)
	if !ok {
		return
	}
	res, err := h.svc.Lookup(brand, c.Param("zip"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Styles handles GET /api/brands/:brand/styles.
func (h *Handler) Styles(c *gin.Context) {
	brand, ok := h.brandParam(c)
	if !ok {
		return
	}
	styles, err := h.svc.Styles(brand)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, styles)
}

// Report handles GET /api/brands/:brand/report.
func (h *Handler) Report(c *gin.Context) {
	brand, ok := h.brandParam(c)
	if !ok {
		return
	}
	p, err := h.svc.Partition(brand)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ReportPDF handles GET /api/brands/:brand/report/pdf.
func (h *Handler) ReportPDF(c *gin.Context) {
	brand, ok := h.brandParam(c)
	if !ok {
		return
	}
	rep, err := h.svc.Report(brand)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+rep.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", rep.PDF)
}

// Selection handles GET /api/selection.
func (h *Handler) Selection(c *gin.Context) {
	v, err := h.svc.Selection()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Toggle handles POST /api/selection/:brand.
func (h *Handler) Toggle(c *gin.Context) {
	brand, ok := h.brandParam(c)
	if !ok {
		return
	}
	v, err := h.svc.Toggle(brand)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type filterRequest struct {
	Brands []string `json:"brands"`
}

// SetFilter handles PUT /api/selection/filter.
func (h *Handler) SetFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	brands := make([]domain.Brand, 0, len(req.Brands))
	for _, s := range req.Brands {
		b, err := domain.ParseBrand(s)
		if err != nil {
			h.writeError(c, err)
			return
		}
		brands = append(brands, b)
	}
	v, err := h.svc.SetFilter(brands)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Locate handles GET /api/locate?lat=&lon=&brand=.
func (h *Handler) Locate(c *gin.Context) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lon'"})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return
	}

	var brand domain.Brand
	if s := c.Query("brand"); s != "" {
		if brand, err = domain.ParseBrand(s); err != nil {
			h.writeError(c, err)
			return
		}
	}

	res, err := h.svc.Locate(lat, lon, brand)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Locations handles GET /api/locations?q=.
func (h *Handler) Locations(c *gin.Context) {
	q := c.Query("q")
	suggestions := domain.SuggestLocations(q)
	loc, err := domain.ResolveLocation(q)
	if err != nil {
		if len(suggestions) == 0 {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": loc, "suggestions": suggestions})
}

func (h *Handler) brandParam(c *gin.Context) (domain.Brand, bool) {
	b, err := domain.ParseBrand(c.Param("brand"))
	if err != nil {
		h.writeError(c, err)
		return "", false
	}
	return b, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownBrand):
		status = http.StatusBadRequest
	case errors.Is(err, selection.ErrBrandHidden), errors.Is(err, selection.ErrFilterDisabled):
		status = http.StatusConflict
	case errors.Is(err, coverage.ErrExportDisabled),
		errors.Is(err, coverage.ErrNoZIP),
		errors.Is(err, domain.ErrUnsupportedLocation):
		status = http.StatusNotFound
	case errors.Is(err, coverage.ErrNotReady):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err, requestIDKey, c.GetString(requestIDKey))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
