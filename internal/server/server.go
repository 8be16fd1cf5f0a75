package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"fitpass/internal/auth"
	"fitpass/internal/billing"
	"fitpass/internal/booking"
	"fitpass/internal/config"
	"fitpass/internal/email"
	"fitpass/internal/gym"
	"fitpass/internal/ledger"
	"fitpass/internal/member"
	"fitpass/internal/membership"
	"fitpass/internal/plan"
	"fitpass/internal/user"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())

	userHandler := user.NewHandler(db, cfg.JWTSecret, cfg.JWTRefreshSecret)
	gymHandler := gym.NewHandler(db)
	memberHandler := member.NewHandler(db)
	planHandler := plan.NewHandler(db)
	membershipHandler := membership.NewHandler(db)
	ledgerHandler := ledger.NewHandler(db)
	bookingHandler := booking.NewHandler(db, emailService)

	gymRepo := gym.NewRepository(db)
	planRepo := plan.NewRepository(db)
	resolver := billing.NewResolver(gymRepo)
	processor := billing.NewStripeProcessor(cfg.StripeSecretKey)
	syncer := billing.NewSyncer(planRepo, resolver, processor)
	checkout := billing.NewCheckout(syncer, resolver, processor, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	billingHandler := billing.NewHandler(checkout, syncer, member.NewRepository(db), planRepo)

	lifecycle := membership.NewLifecycle(membership.NewRepository(db), planRepo, emailService)
	webhookHandler := billing.NewWebhookHandler(cfg.StripeWebhookSecret, billing.NewEventRepository(db), lifecycle)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	router.POST("/webhooks/stripe", webhookHandler.Handle)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/gyms", gymHandler.ListGyms)
		protected.POST("/gyms/:gymID/join", memberHandler.Join)
		protected.GET("/gyms/:gymID/slots", gymHandler.ListClassSlots)
		protected.GET("/gyms/:gymID/plans", planHandler.ListByGym)
		protected.GET("/gyms/:gymID/memberships", membershipHandler.ListMyMemberships)
		protected.GET("/gyms/:gymID/credits", ledgerHandler.GetBalance)
		protected.GET("/gyms/:gymID/credits/transactions", ledgerHandler.ListMyTransactions)
		protected.GET("/gyms/:gymID/bookings", bookingHandler.GetMyBookings)
		protected.POST("/gyms/:gymID/plans/:planID/checkout", billingHandler.CreateCheckout)
		protected.POST("/slots/:slotID/book", bookingHandler.BookSlot)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)
	}

	staffMiddleware := auth.RequireRole("staff", "admin")
	gymScope := RequireGymScope()
	admin := router.Group("/admin")
	admin.Use(authMiddleware, staffMiddleware)
	{
		admin.POST("/gyms", gymHandler.CreateGym)
		admin.GET("/gyms", gymHandler.ListGyms)
		admin.POST("/gyms/:gymID/connect", gymScope, gymHandler.ConnectGymAccount)
		admin.POST("/gyms/:gymID/locations", gymScope, gymHandler.CreateLocation)
		admin.GET("/gyms/:gymID/locations", gymScope, gymHandler.ListLocations)
		admin.POST("/locations/:locationID/connect", gymHandler.ConnectLocationAccount)
		admin.POST("/gyms/:gymID/slots", gymScope, gymHandler.CreateClassSlot)
		admin.GET("/gyms/:gymID/members", gymScope, memberHandler.ListByGym)
		admin.PATCH("/members/:memberID/status", memberHandler.UpdateStatus)
		admin.POST("/gyms/:gymID/plans", gymScope, planHandler.Create)
		admin.PUT("/plans/:planID", planHandler.Update)
		admin.POST("/plans/:planID/sync", billingHandler.SyncPlan)
		admin.POST("/members/:memberID/credits", ledgerHandler.AdjustCredits)
		admin.GET("/gyms/:gymID/transactions", gymScope, ledgerHandler.ListGymTransactions)
		admin.GET("/gyms/:gymID/bookings", gymScope, bookingHandler.GetGymBookings)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
