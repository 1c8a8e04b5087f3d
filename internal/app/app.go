// Package app assembles the development backend: repositories, services,
// handlers and the gin router that serves them.
package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/modules/admin"
	"storefront/internal/modules/auth"
	"storefront/internal/modules/cart"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/offer"
	jwtsvc "storefront/internal/pkg/jwt"
	"storefront/internal/repository"
)

type Options struct {
	DB     *gorm.DB
	Config *config.BackendConfig
	Logger *zap.Logger

	// Now overrides the clock of every time-dependent service. It must
	// return UTC times.
	Now func() time.Time

	// OTPSender defaults to logging codes to Logger.
	OTPSender auth.OTPSender
}

type Server struct {
	Router *gin.Engine
	Hub    *offer.Hub
	JWT    *jwtsvc.Service
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	db := opts.DB

	var jwtOpts []jwtsvc.Option
	if opts.Now != nil {
		jwtOpts = append(jwtOpts, jwtsvc.WithClock(opts.Now))
	}
	j := jwtsvc.New(cfg.JWTSecret, cfg.AccessTTL, jwtOpts...)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	promoRepo := repository.NewPromotionRepository(db)

	sender := opts.OTPSender
	if sender == nil {
		sender = auth.NewDevConsoleSender(log)
	}
	authService := auth.NewService(userRepo, tokenRepo, otpRepo, j, sender, auth.Settings{
		RefreshPepper:  cfg.RefreshPepper,
		RefreshTTL:     cfg.RefreshTTL,
		OTPPepper:      cfg.OTPPepper,
		OTPTTL:         cfg.OTPTTL,
		OTPResend:      cfg.OTPResend,
		OTPMaxAttempts: cfg.OTPMaxAttempts,
	}, log.Named("auth"))
	authHandler := auth.NewHandler(authService, auth.CookieSettings{
		Secure:    cfg.CookieSecure,
		SameSite:  cfg.SameSite(),
		Path:      cfg.CookiePath,
		AccessTTL: cfg.AccessTTL,
	}, log.Named("auth"))

	catalogHandler := catalog.NewHandler(catalog.NewService(productRepo, promoRepo), log.Named("catalog"))

	cartService := cart.NewService(cartRepo, productRepo, promoRepo, log.Named("cart"))
	cartHandler := cart.NewHandler(cartService, log.Named("cart"))

	hub := offer.NewHub(log.Named("offer"))
	offerService := offer.NewService(promoRepo, hub, log.Named("offer"))
	offerHandler := offer.NewHandler(offerService, hub, cfg.AllowedOrigins, log.Named("offer"))

	adminHandler := admin.NewHandler(admin.NewService(promoRepo, offerService), log.Named("admin"))

	if opts.Now != nil {
		authService.SetClock(opts.Now)
		cartService.SetClock(opts.Now)
		offerService.SetClock(opts.Now)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		authHandler.RegisterPublicRoutes(api)
		catalogHandler.RegisterRoutes(api)
		offerHandler.RegisterRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			cartHandler.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			adminHandler.RegisterRoutes(adminGroup)
		}
	}

	return &Server{Router: r, Hub: hub, JWT: j}
}
