package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staywise/internal/infra/config"
	"staywise/internal/infra/obs"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Confirm(c *gin.Context)
	ListMine(c *gin.Context)
}

type PaymentWebhookHTTP interface {
	Receive(c *gin.Context)
}

type PricingHTTP interface {
	Suggestion(c *gin.Context)
	Apply(c *gin.Context)
}

type SearchHTTP interface {
	Rank(c *gin.Context)
}

type CalendarHTTP interface {
	Get(c *gin.Context)
	Block(c *gin.Context)
	Unblock(c *gin.Context)
}

type Handlers struct {
	Reservation    ReservationHTTP
	PaymentWebhook PaymentWebhookHTTP
	Pricing        PricingHTTP
	Search         SearchHTTP
	Calendar       CalendarHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", "X-User-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.POST("/reservations/:id/cancel", h.Reservation.Cancel)
		api.POST("/reservations/:id/confirm", h.Reservation.Confirm)
		api.GET("/me/reservations", h.Reservation.ListMine)
	}
	if h.PaymentWebhook != nil {
		api.POST("/payments/webhook", h.PaymentWebhook.Receive)
	}
	if h.Search != nil {
		api.GET("/search", h.Search.Rank)
	}
	if h.Calendar != nil {
		api.GET("/listings/:id/calendar", h.Calendar.Get)
	}
	hostGroup := api.Group("/host/listings")
	if h.Pricing != nil {
		hostGroup.GET("/:id/price-suggestion", h.Pricing.Suggestion)
		hostGroup.POST("/:id/price", h.Pricing.Apply)
	}
	if h.Calendar != nil {
		hostGroup.POST("/:id/calendar/block", h.Calendar.Block)
		hostGroup.DELETE("/:id/calendar/block/:date", h.Calendar.Unblock)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
