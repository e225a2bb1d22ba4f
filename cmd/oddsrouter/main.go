package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ndrandal/odds-router/internal/archive"
	"github.com/ndrandal/odds-router/internal/boostapply"
	"github.com/ndrandal/odds-router/internal/booststrategy"
	"github.com/ndrandal/odds-router/internal/broker"
	"github.com/ndrandal/odds-router/internal/config"
	"github.com/ndrandal/odds-router/internal/docstore"
	"github.com/ndrandal/odds-router/internal/marketmap"
	"github.com/ndrandal/odds-router/internal/opsfeed"
	"github.com/ndrandal/odds-router/internal/relstore"
	"github.com/ndrandal/odds-router/internal/restapi"
	"github.com/ndrandal/odds-router/internal/router"
	"github.com/ndrandal/odds-router/internal/tenantindex"
)

func main() {
	cfg := config.Load()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("odds router starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	// Relational store: tenants + boost catalog
	pg, err := relstore.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pg.Close()

	if err := pg.RunMigrations(ctx); err != nil {
		log.Fatalf("postgres migrations failed: %v", err)
	}

	tenantStore := relstore.NewTenantStore(pg.Pool())
	boostStore := relstore.NewBoostStore(pg.Pool())

	// Market mapping cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer rdb.Close()
	marketMap := marketmap.NewRedisCache(rdb)

	// Document store: feed archive
	doc, err := docstore.NewStore(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connection failed: %v", err)
	}
	defer doc.Close(context.Background())

	if err := doc.Migrate(ctx); err != nil {
		log.Fatalf("mongo index setup failed: %v", err)
	}

	// Tenant/profile index, refreshed on a schedule
	tenantIdx := tenantindex.New(tenantStore)
	go tenantindex.RunRefresher(ctx, tenantIdx, cfg.TenantsRefreshInterval)

	// Boost resolution
	strategies := booststrategy.NewDefault()
	applicator := boostapply.New(strategies)

	// Broker
	seedBrokers := strings.Split(cfg.KafkaBrokers, ",")
	kafkaAdapter, err := broker.NewKafkaAdapter(seedBrokers, cfg.KafkaTopicFn)
	if err != nil {
		log.Fatalf("kafka client init failed: %v", err)
	}
	defer kafkaAdapter.Close()

	// Feed archiver (optional)
	var archiver *archive.Archiver
	if cfg.FeedLogEnabled {
		archiver = archive.New(doc.DB(), cfg.ArchiveOverflowDir, cfg.ArchiveMaxOverflowGB)
		go archiver.RunOverflowRotation(ctx, cfg.ArchiveRotateInterval)
		go docstore.RunRetention(ctx, doc, cfg.FeedLogRetainDays)
	}

	// Operational telemetry feed + REST stats counters
	opsMgr := opsfeed.NewManager(cfg.OpsFeedSendBuffer)
	stats := restapi.NewStats()

	pub := &router.Publisher{
		Index:      tenantIdx,
		Boosts:     boostStore,
		MarketMap:  marketMap,
		Applicator: applicator,
		Broker:     kafkaAdapter,
		Telemetry:  router.Tee(opsMgr, stats),
	}
	if archiver != nil {
		pub.Archiver = archiver
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ops-feed", opsfeed.Handler(opsMgr))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","opsFeedClients":%d}`, opsMgr.ClientCount())
	})

	apiServer := restapi.NewServer(tenantIdx, stats, opsMgr, pub)
	apiServer.Register(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
		if archiver != nil {
			archiver.Wait()
		}
	}()

	log.Printf("HTTP server listening on http://%s", addr)
	log.Printf("operational feed: ws://%s/ops-feed", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	log.Println("odds router stopped")
}
