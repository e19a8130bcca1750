package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/auth/handler"
	"github.com/adhikari-dikshant/kanban/internal/auth/resolver"
	"github.com/adhikari-dikshant/kanban/internal/config"
	"github.com/adhikari-dikshant/kanban/internal/events"
	"github.com/adhikari-dikshant/kanban/internal/identity"
	"github.com/adhikari-dikshant/kanban/internal/middleware"
	"github.com/adhikari-dikshant/kanban/internal/profile"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	provider, err := identity.New(ctx, identity.Config{
		BaseURL:      cfg.AuthBaseURL,
		Issuer:       cfg.AuthIssuer,
		ClientID:     cfg.AuthClientID,
		ClientSecret: cfg.AuthClientSecret,
		RedirectURL:  cfg.AuthRedirectURL,
	})
	if err != nil {
		return nil, nil, err
	}

	profileStore := profile.NewPostgresStore(infra.DB)
	callbackResolver := resolver.New(provider, profileStore)
	bus := events.NewBus(infra.Redis.Client)

	authHandler := handler.NewHandler(
		provider,
		callbackResolver,
		profileStore,
		bus,
		cfg.Production(),
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected Dashboard Sections
	// ----------------------------

	admin := router.Group(auth.PathAdminHome)
	admin.Use(middleware.RequireRole(provider, auth.RoleAdmin))
	admin.GET("", sectionHome("admin"))

	user := router.Group(auth.PathUserHome)
	user.Use(middleware.RequireRole(provider, auth.RoleUser))
	user.GET("", sectionHome("user"))

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if err := infra.Redis.Close(); err != nil {
			return err
		}
		return infra.DB.Close()
	}, nil
}

// sectionHome is the minimal dashboard landing; page content is out of
// scope, routing is not.
func sectionHome(section string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)
		c.JSON(200, gin.H{
			"section": section,
			"user_id": u.ID,
			"email":   u.Email,
		})
	}
}
