package main

import (
	"log"
	"net/http"
	"time"

	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/xaitan80/liga-voley/internal/auth"
	"github.com/xaitan80/liga-voley/internal/clubs"
	"github.com/xaitan80/liga-voley/internal/config"
	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/enrollments"
	"github.com/xaitan80/liga-voley/internal/events"
	"github.com/xaitan80/liga-voley/internal/matches"
	"github.com/xaitan80/liga-voley/internal/transfers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Abrir DB (modernc driver name: "sqlite") y migrar con goose
	sqlDB, gdb, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer sqlDB.Close()
	tx := dbpkg.NewTxManager(gdb)

	// Stores and services
	users := auth.NewRepository(sqlDB)
	registry := clubs.NewRepo(gdb)
	enrollmentRepo := enrollments.NewRepo(gdb)
	eventRepo := events.NewRepo(gdb)

	eventSvc := events.NewService(eventRepo, enrollmentRepo)
	enrollmentSvc := enrollments.NewService(enrollmentRepo, eventRepo, registry)
	matchSvc := matches.NewService(matches.NewRepo(gdb), eventSvc, tx).
		WithStrictBestOfFive(cfg.StrictBestOfFive)
	transferSvc := transfers.NewService(transfers.NewRepo(gdb), registry, clubs.NewMembership(gdb), tx, loc)

	// HTTP
	r := gin.Default()
	// Only the configured proxies may set X-Forwarded-For
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatalf("trusted proxies: %v", err)
	}

	protect := auth.RequireUser(users)
	admin := auth.RequireAdmin(users)

	auth.RegisterRoutes(r, users, auth.Options{
		TTL:          cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
		AdminEmails:  cfg.AdminEmails,
	})
	auth.RegisterAdminRoutes(r, users)
	clubs.RegisterRoutes(r, registry, protect)
	events.RegisterRoutes(r, eventSvc, protect, loc)
	enrollments.RegisterRoutes(r, enrollmentSvc, protect, admin)
	matches.RegisterRoutes(r, matchSvc, registry, protect, loc)
	transfers.RegisterRoutes(r, transferSvc, protect, admin, loc)

	r.GET("/healthz", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// The dashboard SPA runs on its own origin and sends the session cookie.
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Escuchando en %s (zona %s)", cfg.Addr, loc)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
