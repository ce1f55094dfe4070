package router

import (
	"github.com/gin-gonic/gin"
	"github.com/vscpa/backend/internal/infrastructure/auth"
	"github.com/vscpa/backend/internal/infrastructure/config"
	"github.com/vscpa/backend/internal/infrastructure/logger"
	"github.com/vscpa/backend/internal/interfaces/http/handler"
	"github.com/vscpa/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the API's HTTP handlers
type Handlers struct {
	System      *handler.SystemHandler
	Auth        *handler.AuthHandler
	Member      *handler.MemberHandler
	Legislative *handler.LegislativeHandler
	PeerReview  *handler.PeerReviewHandler
	Reference   *handler.ReferenceHandler
	Catalog     *handler.CatalogHandler
}

// Deps are the collaborators the engine's middleware needs
type Deps struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Tracing     bool
	Logger      *zap.Logger
	Meter       metric.Meter
	JWT         *auth.JWTService
	Blacklist   auth.TokenBlacklist
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the full middleware chain and all routes
func NewEngine(deps Deps, h Handlers) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = deps.HTTP.CORSAllowOrigins
	if len(deps.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = deps.HTTP.CORSAllowMethods
	}
	if len(deps.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = deps.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: deps.ServiceName, Enabled: deps.Tracing}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(deps.Meter),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.Timeout(deps.HTTP.WriteTimeout),
	)
	if deps.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.HTTP.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)

	jwtCfg := middleware.DefaultJWTConfig(deps.JWT)
	jwtCfg.TokenBlacklist = deps.Blacklist
	jwtCfg.Logger = deps.Logger

	apiMiddleware := []gin.HandlerFunc{middleware.JWTAuthMiddlewareWithConfig(jwtCfg)}
	if deps.HTTP.RateLimitEnabled && deps.RateLimiter != nil {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(deps.RateLimiter))
	}
	apiMiddleware = append(apiMiddleware, middleware.TracingAttributeInjector())

	r := NewRouter(engine, WithAPIVersion("v1"), WithAPIMiddleware(apiMiddleware...))
	for _, group := range domainGroups(h) {
		r.Register(group)
	}
	r.Setup()
	return engine, nil
}

func domainGroups(h Handlers) []*DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.Group("system-info", "/system").GET("/info", h.System.GetSystemInfo)

	authGroup := NewDomainGroup("auth", "/auth").
		GET("/me", h.Auth.Me).
		POST("/logout", h.Auth.Logout)

	members := NewDomainGroup("members", "/members")
	members.GET("", middleware.RequireStaff(), h.Member.List)

	self := members.Group("member", "/:id").Use(middleware.RequireMemberAccess("id"))
	self.GET("", h.Member.Get).
		PUT("", h.Member.UpdateProfile).
		GET("/membership", h.Member.State).
		GET("/dues/balance", h.Member.DuesBalance).
		GET("/dues/rate", h.Member.DuesRate).
		GET("/legislators", h.Legislative.Get).
		POST("/legislators/sync", h.Legislative.Sync).
		POST("/legislators/push", h.Legislative.Push).
		GET("/sync/history", h.Member.SyncHistory)

	staffOnly := members.Group("member-admin", "/:id").Use(middleware.RequireStaff())
	staffOnly.POST("/membership/recompute", h.Member.Recompute).
		POST("/sync/push", h.Member.Push)

	firms := NewDomainGroup("firms", "/firms").
		Use(middleware.RequireStaff()).
		GET("/:code/peer-review", h.PeerReview.Info)

	sync := NewDomainGroup("sync", "/sync").
		Use(middleware.RequireStaff()).
		POST("/persons/:amnet_id/pull", h.Member.Pull).
		POST("/terms", h.Reference.RefreshTerms).
		POST("/firms", h.Reference.SyncFirms)

	catalog := NewDomainGroup("catalog", "/catalog").
		Use(middleware.RequireStaff()).
		GET("/events/:code", h.Catalog.Event).
		GET("/products/:code", h.Catalog.Product)

	return []*DomainGroup{system, authGroup, members, firms, sync, catalog}
}
