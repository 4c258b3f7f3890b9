package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/render"
	"github.com/SAP-F-2025/thesis-review-portal/internal/utils"
	"github.com/SAP-F-2025/thesis-review-portal/internal/validator"
)

const (
	internalErrorMessage = "Internal server error"
	htmlContentType      = "text/html; charset=utf-8"
)

// BaseHandler carries what every handler needs to log, validate and answer.
type BaseHandler struct {
	logger    utils.Logger
	renderer  *render.Renderer
	validator *validator.Validator
}

func NewBaseHandler(logger utils.Logger, renderer *render.Renderer, v *validator.Validator) BaseHandler {
	return BaseHandler{
		logger:    logger,
		renderer:  renderer,
		validator: v,
	}
}

func (h *BaseHandler) LogRequest(c *gin.Context, message string, args ...any) {
	utils.GetLogger(c, h.logger).Debug(message, append([]any{"path", c.Request.URL.Path}, args...)...)
}

// handleError logs err and answers 500 in the format the caller expects.
func (h *BaseHandler) handleError(c *gin.Context, err error) {
	utils.GetLogger(c, h.logger).Error("Request handling failed", "error", err)
	_ = c.Error(err)
	if wantsUpdate(c) {
		c.JSON(http.StatusInternalServerError, viewUpdate{Notifications: []string{internalErrorMessage}})
		return
	}
	c.String(http.StatusInternalServerError, internalErrorMessage)
}

// bindForm binds and validates a posted form. Missing required fields are
// reported like the browser would and false is returned.
func (h *BaseHandler) bindForm(c *gin.Context, form interface{}) bool {
	if err := c.ShouldBind(form); err != nil {
		utils.GetLogger(c, h.logger).Warn("Failed to bind form", "error", err)
		c.JSON(http.StatusBadRequest, viewUpdate{Notifications: []string{"Invalid form data"}})
		return false
	}
	if errs := h.validator.Validate(form); errs != nil {
		c.JSON(http.StatusBadRequest, viewUpdate{Notifications: errs.Messages()})
		return false
	}
	return true
}

// listQuery reads the search text and status filter. Unknown filters fall
// back to all.
func (h *BaseHandler) listQuery(c *gin.Context) models.ListQuery {
	var query models.ListQuery
	if err := c.ShouldBind(&query); err != nil {
		utils.GetLogger(c, h.logger).Debug("Ignoring malformed list query", "error", err)
	}
	if errs := h.validator.Validate(&query); errs != nil {
		utils.GetLogger(c, h.logger).Debug("Unknown status filter, showing all", "status", query.Status)
	}
	return query.Normalized()
}

func (h *BaseHandler) respondUpdate(c *gin.Context, status int, view *pageView) {
	update, err := view.update(h.renderer)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(status, update)
}

// renderPage renders into a buffer first so a template failure still yields a
// clean 500.
func (h *BaseHandler) renderPage(c *gin.Context, status int, name string, view *pageView, query models.ListQuery) {
	page, err := view.page(h.renderer, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, name, page); err != nil {
		h.handleError(c, err)
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}

// wantsUpdate reports whether the browser script made the request.
func wantsUpdate(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "fetch"
}
