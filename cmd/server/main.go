package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pos-service/config"
	"pos-service/internal/api"
	"pos-service/internal/broker"
	"pos-service/internal/redisclient"
	"pos-service/internal/service"
	"pos-service/internal/store"
	"pos-service/internal/store/memstore"
	"pos-service/internal/store/sqlstore"
	"pos-service/internal/util"
	"pos-service/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting pos service")

	tp, err := util.InitTracer("pos-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	var st store.Store
	if cfg.Database.DSN == "" {
		st = memstore.New()
		log.Println("Using in-memory store")
	} else {
		sqlStore, err := sqlstore.New(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if cfg.Database.Seed {
			if err := sqlStore.Seed(context.Background()); err != nil {
				log.Printf("Failed to seed database: %v", err)
			}
		}
		st = sqlStore
		log.Printf("Database connected: driver=%s", cfg.Database.Driver)
	}
	defer st.Close()

	var redisClient *redisclient.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	var producer *broker.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		log.Println("Kafka producer initialized")
	}
	eventPublisher := broker.NewEventPublisher(producer)

	catalogService := service.NewCatalogService(st, cfg.Stock.AlertLevel)
	saleService := service.NewSaleService(st, eventPublisher)
	invoiceService := service.NewInvoiceService(st, eventPublisher, redisClient)
	reportService := service.NewReportService(st, cfg)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var stockWorker *worker.StockWorker
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		stockWorker = worker.NewStockWorker(consumer, st, redisClient, cfg.Stock.AlertLevel)
		go func() {
			if err := stockWorker.Start(workerCtx); err != nil {
				log.Printf("Stock worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(catalogService, saleService, invoiceService, reportService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if stockWorker != nil {
		stockWorker.Stop()
	}

	log.Println("Server exited")
}
