package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dukaan/auth"
	"dukaan/cart"
	"dukaan/catalog"
	"dukaan/config"
	"dukaan/db"
	"dukaan/feedback"
	"dukaan/middleware"
	"dukaan/orders"
	"dukaan/prescriptions"
	"dukaan/ratelim"
	"dukaan/rdx"
	"dukaan/reviews"
	"dukaan/routes"
	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	store, err := db.Connect(startCtx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := store.EnsureIndexes(startCtx); err != nil {
		log.Fatalf("❌ %v", err)
	}
	conn, err := rdx.Connect(startCtx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := utils.EnsureDir(cfg.UploadDir); err != nil {
		log.Fatalf("❌ upload dir: %v", err)
	}

	sessions := auth.NewSessionStore(conn, cfg.SessionSecret, cfg.SessionTTL)
	products := catalog.NewCachedStore(catalog.NewMongoStore(store), conn, cfg.CatalogCacheTTL)
	ledger := orders.NewMongoLedger(store)
	engine := cart.NewEngine(cart.NewMongoStore(store), products, ledger, store)

	rateLimiter := ratelim.NewRateLimiter(cfg.LoginRatePerMin)
	done := make(chan struct{})
	go rateLimiter.Run(done)

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Deps{
		Auth:          middleware.NewAuth(sessions),
		RateLimiter:   rateLimiter,
		UploadDir:     cfg.UploadDir,
		Users:         auth.NewHandler(auth.NewMongoUserStore(store), sessions, cfg.CookieSecure, cfg.RequestTimeout),
		Catalog:       catalog.NewHandler(products, cfg.RequestTimeout),
		Cart:          cart.NewHandler(engine, cfg.RequestTimeout),
		Orders:        orders.NewHandler(ledger, cfg.SessionSecret, cfg.RequestTimeout),
		Reviews:       reviews.NewHandler(reviews.NewMongoStore(store), products, cfg.RequestTimeout),
		Feedback:      feedback.NewHandler(feedback.NewMongoStore(store), cfg.RequestTimeout),
		Prescriptions: prescriptions.NewHandler(prescriptions.NewMongoStore(store), prescriptions.NewImageSaver(cfg.UploadDir), cfg.RequestTimeout),
	})

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Logging(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		close(done)
	})

	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Graceful shutdown failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		log.Printf("failed to close Redis: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		log.Printf("failed to disconnect MongoDB: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
