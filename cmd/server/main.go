package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pharmacare/pos/internal/adapter/handler"
	"github.com/pharmacare/pos/internal/adapter/storage"
	"github.com/pharmacare/pos/internal/core/domain"
	"github.com/pharmacare/pos/internal/core/service"
	"github.com/pharmacare/pos/internal/port"
)

type config struct {
	httpAddr    string
	mysqlDSN    string
	mysqlDBName string
	redisAddr   string
	workerCount int
	queueSize   int
	business    service.BusinessInfo
}

func loadConfig() config {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	return config{
		httpAddr:    getenv("HTTP_ADDR", ":8080"),
		mysqlDSN:    getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/pharmacy?parseTime=true"),
		mysqlDBName: getenv("MYSQL_DB_NAME", "pharmacy"),
		redisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		workerCount: getenvInt("WORKER_COUNT", 4),
		queueSize:   getenvInt("SALE_QUEUE_SIZE", 1024),
		business: service.BusinessInfo{
			Name:    getenv("BUSINESS_NAME", "PharmaCare"),
			Address: getenv("BUSINESS_ADDRESS", "Tabata Street"),
			Phone:   getenv("BUSINESS_PHONE", "+255 613 004 338"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.mysqlDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.Migrate(cfg.mysqlDBName); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	log.Println("schema up to date")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")
	redisAdapter := storage.NewRedisAdapter(rdb)

	// Hydrate the in-memory catalog from the system of record
	catalog := storage.NewMemoryCatalog()
	inventoryService := service.NewInventoryService(catalog, mysqlAdapter)
	loaded, err := inventoryService.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}
	log.Printf("loaded %d medicines into catalog", loaded)

	// Initialize services
	saleService := service.NewSaleService(catalog, redisAdapter, cfg.queueSize)
	cartService := service.NewCartService(catalog, saleService)
	reportService := service.NewReportService(mysqlAdapter)

	// Start persistence workers
	var wg sync.WaitGroup
	for i := 0; i < cfg.workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, saleService.GetSaleQueue(), mysqlAdapter)
		}(i)
	}
	log.Printf("started %d workers", cfg.workerCount)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(inventoryService, cartService, reportService, cfg.business)
	httpServer := &http.Server{
		Addr:    cfg.httpAddr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.httpAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	// Close sale queue and wait for workers to drain it
	saleService.Close()
	wg.Wait()
	log.Println("workers stopped")

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}

// workerLoop persists finalized sales. A failure here does not undo the
// in-memory sale: the counter transaction already happened, so the
// record is logged for operator recovery instead.
func workerLoop(id int, queue <-chan domain.Sale, db port.SaleRepository) {
	for sale := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := db.CreateSale(ctx, sale); err != nil {
			log.Printf("worker %d: CRITICAL failed to save sale %s: %v", id, sale.TransactionID, err)
		} else {
			log.Printf("worker %d: saved sale %s", id, sale.TransactionID)
		}

		cancel()
	}
}
