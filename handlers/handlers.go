package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"municipal-reports-service/database"
	"municipal-reports-service/mapaggr"
	"municipal-reports-service/middleware"
	"municipal-reports-service/models"
	"municipal-reports-service/services"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// ReportsHandler exposes the report lifecycle and collaboration endpoints.
type ReportsHandler struct {
	reports   *database.ReportService
	officers  *database.OfficeService
	lifecycle *services.LifecycleService
	comments  *services.CommentService
}

// NewReportsHandler creates a new handler instance.
func NewReportsHandler(reports *database.ReportService, officers *database.OfficeService, lifecycle *services.LifecycleService, comments *services.CommentService) *ReportsHandler {
	return &ReportsHandler{
		reports:   reports,
		officers:  officers,
		lifecycle: lifecycle,
		comments:  comments,
	}
}

// HealthCheck returns a simple health status.
func (h *ReportsHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   "municipal-reports-service",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateReport accepts a citizen submission; the report starts in
// PENDING_APPROVAL.
func (h *ReportsHandler) CreateReport(c *gin.Context) {
	args := &models.CreateReportRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /reports call: %v", err)
		return
	}
	if !args.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category " + string(args.Category)})
		return
	}

	var submitterID *int64
	if !args.Anonymous {
		if id, ok := c.Get(middleware.ContextUserID); ok {
			uid := id.(int64)
			submitterID = &uid
		}
	}

	report, err := h.reports.CreateReport(c.Request.Context(), *args, submitterID)
	if err != nil {
		log.Errorf("Failed to create report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}
	c.JSON(http.StatusCreated, models.ReportResponse{Report: report})
}

// ListReports returns the reports assigned to an office, newest first.
func (h *ReportsHandler) ListReports(c *gin.Context) {
	office, has := c.GetQuery("office")
	if !has || office == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query param office"})
		return
	}
	reports, err := h.reports.ListByOffice(c.Request.Context(), office)
	if err != nil {
		log.Errorf("Failed to list reports for office %s: %v", office, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	c.JSON(http.StatusOK, gin.H{"office": office, "reports": reports})
}

// GetReport returns a single report.
func (h *ReportsHandler) GetReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	report, err := h.reports.GetReport(c.Request.Context(), id)
	if err != nil {
		log.Errorf("Failed to get report %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, models.ReportResponse{Report: report})
}

// ApproveReport moves a pending report to ASSIGNED, routing it to an office
// and its least-loaded officer.
func (h *ReportsHandler) ApproveReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	report, err := h.lifecycle.Approve(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReportResponse{Report: report})
}

// RejectReport moves a pending report to REJECTED with a mandatory reason.
func (h *ReportsHandler) RejectReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	args := &models.RejectReportRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /reject call: %v", err)
		return
	}
	report, err := h.lifecycle.Reject(c.Request.Context(), id, args.Reason)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReportResponse{Report: report})
}

// ChangeStatus applies a plain lifecycle transition.
func (h *ReportsHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	args := &models.ChangeStatusRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /status call: %v", err)
		return
	}
	report, err := h.lifecycle.ChangeStatus(c.Request.Context(), id, args.Status)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReportResponse{Report: report})
}

// AttachMaintainer attaches an external maintainer to an active report.
func (h *ReportsHandler) AttachMaintainer(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	args := &models.AttachMaintainerRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /maintainer call: %v", err)
		return
	}
	report, err := h.lifecycle.AttachMaintainer(c.Request.Context(), id, args.MaintainerID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReportResponse{Report: report})
}

// OverrideReport writes lifecycle fields directly for seed/import tooling.
func (h *ReportsHandler) OverrideReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	args := &models.OverrideRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /override call: %v", err)
		return
	}
	report, err := h.lifecycle.Override(c.Request.Context(), id, *args)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReportResponse{Report: report})
}

// AddComment appends a comment through the authorization guard. The author
// identity and type come from the token, never from the payload.
func (h *ReportsHandler) AddComment(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	args := &models.AddCommentRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /comments call: %v", err)
		return
	}

	authorID := c.GetInt64(middleware.ContextUserID)
	authorType := middleware.AuthorType(c.GetString(middleware.ContextRole))

	comment, err := h.comments.AddComment(c.Request.Context(), id, authorID, authorType, args.Content)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments returns the report's ledger in creation order.
func (h *ReportsHandler) ListComments(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}
	comments, err := h.comments.ListComments(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	c.JSON(http.StatusOK, models.CommentsResponse{ReportID: id, Comments: comments})
}

// AddOfficer registers a municipal officer in an office. Used by seed and
// staff administration tooling.
func (h *ReportsHandler) AddOfficer(c *gin.Context) {
	args := &models.AddOfficerRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /officers call: %v", err)
		return
	}
	officer, err := h.officers.AddOfficer(c.Request.Context(), args.Name, args.Office)
	if err != nil {
		log.Errorf("Failed to add officer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add officer"})
		return
	}
	c.JSON(http.StatusCreated, officer)
}

// GetMap aggregates report pins in the requested viewport for the
// dashboard map.
func (h *ReportsHandler) GetMap(c *gin.Context) {
	vp, ok := h.viewport(c)
	if !ok {
		return
	}

	points, err := h.reports.ListPositions(c.Request.Context(), vp)
	if err != nil {
		log.Errorf("Failed to list report positions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report positions"})
		return
	}

	aggr := mapaggr.NewAggregator(&vp)
	for _, p := range points {
		aggr.AddPoint(p)
	}
	c.JSON(http.StatusOK, aggr.ToArray())
}

func (h *ReportsHandler) reportID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return 0, false
	}
	return id, true
}

func (h *ReportsHandler) viewport(c *gin.Context) (mapaggr.ViewPort, bool) {
	var vp mapaggr.ViewPort
	params := map[string]*float64{
		"sw_lat": &vp.LatMin,
		"sw_lon": &vp.LonMin,
		"ne_lat": &vp.LatMax,
		"ne_lon": &vp.LonMax,
	}
	for name, dst := range params {
		raw, has := c.GetQuery(name)
		if !has {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query param " + name})
			return vp, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query param " + name})
			return vp, false
		}
		*dst = v
	}
	return vp, true
}

// renderError maps service error kinds onto HTTP statuses.
func (h *ReportsHandler) renderError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		transitionErr *services.InvalidTransitionError
		forbiddenErr  *services.ForbiddenError
		configErr     *services.ConfigurationError
	)
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":            transitionErr.Error(),
			"current_status":   transitionErr.From,
			"requested_status": transitionErr.To,
		})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenErr.Error()})
	case errors.As(err, &configErr):
		log.Errorf("Configuration error: %v", configErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": configErr.Error()})
	default:
		log.Errorf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
