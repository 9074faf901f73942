package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Skufu/MedIntel/internal/analysis"
	"github.com/Skufu/MedIntel/internal/history"
	"github.com/Skufu/MedIntel/internal/knowledge"
)

const (
	storeMemory   = "memory"
	storeSQLite   = "sqlite"
	storePostgres = "postgres"
)

type Config struct {
	Port              string
	Store             string
	DatabaseURL       string
	SQLitePath        string
	KnowledgeBasePath string
	StaticDir         string
	TrustedProxies    []string
	RateLimit         int
	CacheTTL          time.Duration
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	kb, err := loadKnowledge(cfg.KnowledgeBasePath)
	if err != nil {
		log.Fatalf("knowledge base error: %v", err)
	}
	log.Printf("knowledge base %s loaded with %d conditions", kb.Version(), len(kb.Conditions()))

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("history store failed: %v", err)
	}
	defer store.Close()
	log.Printf("history store: %s", cfg.Store)

	staticRoot := cfg.StaticDir
	if staticRoot == "" {
		staticRoot = detectStaticRoot()
	}

	router := setupRouter(deps{
		analyzer:   analysis.New(kb),
		store:      store,
		cache:      newResultCache(cfg.CacheTTL),
		limiter:    newRateLimiter(cfg.RateLimit, time.Minute),
		staticRoot: staticRoot,
		proxies:    cfg.TrustedProxies,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Printf("server listening on :%s", cfg.Port)
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Store:             strings.ToLower(os.Getenv("HISTORY_STORE")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        getEnv("SQLITE_PATH", "medintel.db"),
		KnowledgeBasePath: os.Getenv("KNOWLEDGE_BASE_PATH"),
		StaticDir:         os.Getenv("STATIC_DIR"),
	}

	if cfg.Store == "" {
		cfg.Store = storeMemory
		if strings.EqualFold(getEnv("ENABLE_DB", "false"), "true") {
			cfg.Store = storePostgres
		}
	}

	switch cfg.Store {
	case storeMemory, storeSQLite:
	case storePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when HISTORY_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("HISTORY_STORE must be memory, sqlite or postgres, got %q", cfg.Store)
	}

	limit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "30"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a positive integer")
	}
	cfg.RateLimit = limit

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative")
	}
	cfg.CacheTTL = ttl

	proxies, err := parseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}
	cfg.TrustedProxies = proxies

	return cfg, nil
}

// parseTrustedProxies reads a comma-separated list of IPs or CIDRs. An empty
// list means no proxy is trusted and the client IP is the peer address.
func parseTrustedProxies(raw string) ([]string, error) {
	var proxies []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
		}
		proxies = append(proxies, p)
	}
	return proxies, nil
}

func loadKnowledge(path string) (*knowledge.Base, error) {
	if path == "" {
		return knowledge.Default()
	}
	return knowledge.LoadFile(path)
}

func openStore(ctx context.Context, cfg *Config) (history.Store, error) {
	switch cfg.Store {
	case storeSQLite:
		return history.OpenSQLite(cfg.SQLitePath)
	case storePostgres:
		return history.ConnectPostgres(ctx, cfg.DatabaseURL)
	default:
		return history.NewMemoryStore(), nil
	}
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// detectStaticRoot looks for the web UI's index.html in the working
// directory and up to two parents.
func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "."
	}

	candidates := []string{
		startDir,
		filepath.Join(startDir, "web"),
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "index.html")) {
			return dir
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
