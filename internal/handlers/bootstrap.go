package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/thesis-review-portal/internal/controller"
	"github.com/SAP-F-2025/thesis-review-portal/internal/render"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
	"github.com/SAP-F-2025/thesis-review-portal/internal/utils"
	"github.com/SAP-F-2025/thesis-review-portal/internal/validator"
)

// FatalConnectivityMessage is the only thing shown when the backend cannot be
// reached at startup.
const FatalConnectivityMessage = "Cannot connect to the backend server, please make sure it is running"

var ErrBackendUnreachable = errors.New("backend unreachable")

// Prober checks that the backend answers.
type Prober interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Backend    Prober
	Controller *controller.Controller
	Sessions   *session.Manager
	Renderer   *render.Renderer
	Validator  *validator.Validator
	Logger     utils.Logger
	Options    Options
}

// Bootstrap probes the backend and builds the engine. When the probe fails the
// engine answers every request with the connectivity error page, no other
// route is attached, and the returned error wraps ErrBackendUnreachable.
func Bootstrap(ctx context.Context, deps Deps) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.Options.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	if err := deps.Backend.Ping(ctx); err != nil {
		deps.Logger.Error("Backend unreachable, serving connectivity error page only", "error", err)
		router.Use(gin.Recovery())
		router.NoRoute(fatalPage(deps.Renderer, deps.Logger))
		return router, fmt.Errorf("%w: %w", ErrBackendUnreachable, err)
	}

	SetupMiddleware(router, deps.Logger)
	handlerManager := NewHandlerManager(deps.Controller, deps.Sessions, deps.Renderer, deps.Validator, deps.Logger, deps.Options)
	handlerManager.SetupRoutes(router)
	return router, nil
}

func fatalPage(renderer *render.Renderer, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		err := renderer.Page(&buf, "fatal.html", render.Page{Notifications: []string{FatalConnectivityMessage}})
		if err != nil {
			logger.Error("Failed to render connectivity error page", "error", err)
			c.String(http.StatusServiceUnavailable, FatalConnectivityMessage)
			return
		}
		c.Data(http.StatusServiceUnavailable, htmlContentType, buf.Bytes())
	}
}
