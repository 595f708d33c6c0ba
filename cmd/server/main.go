package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ovotrack/auth-service/internal/config"
	"github.com/ovotrack/auth-service/internal/database"
	"github.com/ovotrack/auth-service/internal/handler"
	"github.com/ovotrack/auth-service/internal/identity"
	"github.com/ovotrack/auth-service/internal/queue"
	"github.com/ovotrack/auth-service/internal/repository"
	"github.com/ovotrack/auth-service/internal/router"
	"github.com/ovotrack/auth-service/internal/service"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Google sign-in is active only when client ids are configured; a
	// deployment without them runs password auth only.
	var verifier service.AssertionVerifier
	if auds := cfg.GoogleAudiences(); len(auds) > 0 {
		v, err := identity.NewGoogleVerifier(auds)
		if err != nil {
			log.Fatalf("google verifier: %v", err)
		}
		verifier = v
	} else {
		log.Println("GOOGLE_OAUTH_CLIENT_IDS empty; google sign-in disabled")
	}

	auth := service.NewAuthService(cfg, users, tokens, verifier, queue.NewActivityPublisher())

	// The activity consumer owns its reconnect loop and runs for the life
	// of the process.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOriginList(),
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, auth), cfg, config.NewRedisClient())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
