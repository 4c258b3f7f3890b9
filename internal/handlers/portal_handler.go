package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/thesis-review-portal/internal/controller"
	"github.com/SAP-F-2025/thesis-review-portal/internal/gateway"
	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/render"
	"github.com/SAP-F-2025/thesis-review-portal/internal/utils"
	"github.com/SAP-F-2025/thesis-review-portal/internal/validator"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilename    = "theses.xlsx"
	searchTriggerKey  = "trigger"
	searchTriggerText = "input"
)

// PortalHandler serves the pages, actions and fragments of the portal.
type PortalHandler struct {
	BaseHandler
	controller  *controller.Controller
	storeHealth Prober
}

// NewPortalHandler builds the handler. storeHealth may be nil for stores that
// cannot become unavailable.
func NewPortalHandler(ctrl *controller.Controller, renderer *render.Renderer, v *validator.Validator, logger utils.Logger, storeHealth Prober) *PortalHandler {
	return &PortalHandler{
		BaseHandler: NewBaseHandler(logger, renderer, v),
		controller:  ctrl,
		storeHealth: storeHealth,
	}
}

// ===== PAGES =====

// Index renders the portal with the list loaded for stored credentials.
func (h *PortalHandler) Index(c *gin.Context) {
	h.LogRequest(c, "Rendering index")

	query := h.listQuery(c)
	view := newPageView()
	h.controller.Restore(c.Request.Context(), GetSession(c), view, query)

	h.renderPage(c, http.StatusOK, "index.html", view, query)
}

// ThesisDetail renders one thesis on its own page.
func (h *PortalHandler) ThesisDetail(c *gin.Context) {
	id, ok := thesisID(c)
	if !ok {
		c.String(http.StatusNotFound, "Thesis not found")
		return
	}
	h.LogRequest(c, "Rendering thesis detail", "thesis_id", id)

	view := newPageView()
	status := http.StatusOK
	if !h.controller.ThesisDetail(c.Request.Context(), GetSession(c), view, id) {
		status = http.StatusBadGateway
	}
	h.renderPage(c, status, "thesis.html", view, models.ListQuery{Status: models.StatusFilterAll})
}

// ===== ACTIONS =====

func (h *PortalHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Login")

	var form models.LoginRequest
	if !h.bindForm(c, &form) {
		return
	}

	view := newPageView()
	if err := h.controller.Login(c.Request.Context(), GetSession(c), view, form, h.listQuery(c)); err != nil {
		h.handleError(c, err)
		return
	}
	h.respondUpdate(c, http.StatusOK, view)
}

func (h *PortalHandler) Register(c *gin.Context) {
	h.LogRequest(c, "Register")

	var form models.RegisterRequest
	if !h.bindForm(c, &form) {
		return
	}

	view := newPageView()
	h.controller.Register(c.Request.Context(), view, form)
	h.respondUpdate(c, http.StatusOK, view)
}

func (h *PortalHandler) Logout(c *gin.Context) {
	h.LogRequest(c, "Logout")

	view := newPageView()
	if err := h.controller.Logout(c.Request.Context(), GetSession(c), view); err != nil {
		h.handleError(c, err)
		return
	}
	h.respondUpdate(c, http.StatusOK, view)
}

// SubmitThesis forwards the multipart upload dialog to the backend.
func (h *PortalHandler) SubmitThesis(c *gin.Context) {
	h.LogRequest(c, "Submitting thesis")

	var form models.SubmitThesisForm
	if !h.bindForm(c, &form) {
		return
	}

	upload := gateway.ThesisUpload{Title: form.Title, Content: form.Content}
	fileHeader, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.handleError(c, err)
		return
	}
	if fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.handleError(c, err)
			return
		}
		defer file.Close()
		upload.File = &gateway.FileUpload{Filename: fileHeader.Filename, Content: file}
	}

	view := newPageView()
	h.controller.SubmitThesis(c.Request.Context(), GetSession(c), view, upload, h.listQuery(c))
	h.respondUpdate(c, http.StatusOK, view)
}

// SubmitReview posts the inline review form of a pending thesis.
func (h *PortalHandler) SubmitReview(c *gin.Context) {
	id, ok := thesisID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, viewUpdate{Notifications: []string{"Invalid thesis id"}})
		return
	}
	h.LogRequest(c, "Submitting review", "thesis_id", id)

	var form models.ReviewForm
	if !h.bindForm(c, &form) {
		return
	}

	view := newPageView()
	h.controller.SubmitReview(c.Request.Context(), GetSession(c), view, id, form.Score, form.Comments, h.listQuery(c))
	h.respondUpdate(c, http.StatusOK, view)
}

func (h *PortalHandler) AssignTheses(c *gin.Context) {
	h.LogRequest(c, "Assigning theses")

	view := newPageView()
	h.controller.AssignTheses(c.Request.Context(), GetSession(c), view, h.listQuery(c))
	h.respondUpdate(c, http.StatusOK, view)
}

// ===== FRAGMENTS =====

// ThesisFragment reloads the list. Typing is debounced; a request superseded
// by a newer one answers 204 without a body.
func (h *PortalHandler) ThesisFragment(c *gin.Context) {
	query := h.listQuery(c)
	sess := GetSession(c)
	view := newPageView()

	var applied bool
	if c.Query(searchTriggerKey) == searchTriggerText {
		applied = h.controller.Search(c.Request.Context(), sess, view, query)
	} else {
		applied = h.controller.FilterStatus(c.Request.Context(), sess, view, query)
	}
	if !applied {
		h.LogRequest(c, "Thesis list request superseded")
		c.Status(http.StatusNoContent)
		return
	}
	h.respondUpdate(c, http.StatusOK, view)
}

func (h *PortalHandler) StatsFragment(c *gin.Context) {
	view := newPageView()
	h.controller.RefreshStats(c.Request.Context(), GetSession(c), view)
	h.respondUpdate(c, http.StatusOK, view)
}

// Export downloads the current list as an XLSX workbook.
func (h *PortalHandler) Export(c *gin.Context) {
	h.LogRequest(c, "Exporting thesis list")

	view := newPageView()
	var buf bytes.Buffer
	ok, err := h.controller.ExportThesisList(c.Request.Context(), GetSession(c), view, h.listQuery(c), &buf)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !ok {
		c.String(http.StatusBadGateway, strings.Join(view.Notifications(), "\n"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Health reports liveness and whether the credential store answers.
func (h *PortalHandler) Health(c *gin.Context) {
	if h.storeHealth != nil {
		if err := h.storeHealth.Ping(c.Request.Context()); err != nil {
			utils.GetLogger(c, h.logger).Warn("Credential store health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "thesis-review-portal",
				"error":   "credential store unavailable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "thesis-review-portal",
	})
}

func thesisID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
