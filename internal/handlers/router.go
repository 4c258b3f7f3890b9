package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/thesis-review-portal/internal/controller"
	"github.com/SAP-F-2025/thesis-review-portal/internal/render"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
	"github.com/SAP-F-2025/thesis-review-portal/internal/utils"
	"github.com/SAP-F-2025/thesis-review-portal/internal/validator"
)

// Options tunes the browser-facing surface.
type Options struct {
	Cookie            CookieConfig
	RequestsPerSecond float64
	Burst             int
	// StoreHealth is pinged by /health when set.
	StoreHealth Prober
	// TrustedProxies may set X-Forwarded-For. Empty means the peer address
	// is the client address.
	TrustedProxies []string
}

type HandlerManager struct {
	portalHandler *PortalHandler
	sessions      *session.Manager
	limiter       *RateLimiter
	cookie        CookieConfig
	logger        utils.Logger
}

func NewHandlerManager(
	ctrl *controller.Controller,
	sessions *session.Manager,
	renderer *render.Renderer,
	validator *validator.Validator,
	logger utils.Logger,
	opts Options,
) *HandlerManager {
	return &HandlerManager{
		portalHandler: NewPortalHandler(ctrl, renderer, validator, logger, opts.StoreHealth),
		sessions:      sessions,
		limiter:       NewRateLimiter(opts.RequestsPerSecond, opts.Burst),
		cookie:        opts.Cookie,
		logger:        logger,
	}
}

// SetupRoutes sets up all browser-facing routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.portalHandler.Health)
	router.StaticFS("/static", http.FS(render.Static()))

	portal := router.Group("/")
	portal.Use(RateLimitMiddleware(hm.limiter))
	portal.Use(SessionMiddleware(hm.sessions, hm.cookie, hm.logger))
	{
		// Pages
		portal.GET("/", hm.portalHandler.Index)
		portal.GET("/thesis/:id", hm.portalHandler.ThesisDetail)

		// Actions
		portal.POST("/login", hm.portalHandler.Login)
		portal.POST("/register", hm.portalHandler.Register)
		portal.POST("/logout", hm.portalHandler.Logout)
		portal.POST("/thesis", hm.portalHandler.SubmitThesis)
		portal.POST("/thesis/:id/review", hm.portalHandler.SubmitReview)
		portal.POST("/assign", hm.portalHandler.AssignTheses)

		// Fragments
		portal.GET("/fragments/thesis", hm.portalHandler.ThesisFragment)
		portal.GET("/fragments/stats", hm.portalHandler.StatsFragment)

		portal.GET("/export.xlsx", hm.portalHandler.Export)
	}
}
