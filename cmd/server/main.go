// Command server runs the HTTP API of §6: the full peer-to-peer
// rental marketplace surface wired against a Postgres-backed Store
// and an optional Redis availability cache.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"lalan-be/internal/auth"
	"lalan-be/internal/availability"
	"lalan-be/internal/booking"
	"lalan-be/internal/catalog"
	"lalan-be/internal/category"
	"lalan-be/internal/clock"
	"lalan-be/internal/config"
	"lalan-be/internal/expirer"
	"lalan-be/internal/httpapi"
	"lalan-be/internal/messaging"
	"lalan-be/internal/review"
	"lalan-be/internal/store/postgres"
	"lalan-be/internal/utils"
)

/*
main
menjalankan aplikasi server dengan inisialisasi dan shutdown graceful
*/
func main() {
	config.LoadEnv()
	cfg, err := config.DatabaseConfig()
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	db := cfg.DB
	defer db.Close()
	log.Printf(
		"Database connected → host=%s port=%s db=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)

	var rdb *redis.Client
	if os.Getenv("REDIS_HOST") != "" {
		config.InitRedis()
		rdb = config.Redis
	} else {
		log.Println("REDIS_HOST not set, availability cache disabled")
	}

	clk := clock.System{}

	users := postgres.NewUserStore(db)
	categories := postgres.NewCategoryStore(db)
	items := postgres.NewItemStore(db)
	bookings := postgres.NewBookingStore(db)
	reviews := postgres.NewReviewStore(db)
	conversations := postgres.NewConversationStore(db)

	storage := utils.NewImageStoreFromEnv()

	svc := httpapi.Services{
		Auth:         auth.NewService(users, config.GetJWTSecret(), clk),
		Catalog:      catalog.NewService(items),
		Category:     category.NewService(categories),
		Booking:      booking.NewService(bookings, items, clk),
		Review:       review.NewService(reviews, bookings),
		Messaging:    messaging.NewService(conversations, bookings, clk),
		Availability: availability.NewProjector(bookings, rdb),
		Storage:      storage,
	}

	exp := expirer.New(bookings, clk, 48*time.Hour)
	sched := expirer.NewScheduler(exp)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	if err := sched.Start(schedCtx, config.GetEnv("EXPIRER_CRON", "@every 10m")); err != nil {
		log.Fatalf("failed to start expirer scheduler: %v", err)
	}
	defer func() {
		sched.Stop()
		schedCancel()
	}()

	router := httpapi.NewRouter(svc)

	addr := ":" + config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		log.Printf("Server running at http://localhost%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	<-c
	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
