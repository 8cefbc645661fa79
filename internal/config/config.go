package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Backends lists the accepted ADDRESSBOOK_STORAGE values.
var Backends = []string{StorageFile, StorageRedis, StorageSQLite, StorageMemory}

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Storage    string // file | redis | sqlite | memory
	StorageKey string // key of the slot holding the collection
	DataDir    string // file backend directory
	SQLitePath string // sqlite database file

	// Seed & backups
	SeedFile       string        // YAML/JSON contacts merged on start (optional, empty = disabled)
	ReloadInterval time.Duration // interval to reload the seed file (0 = manual only)
	BackupFile     string        // snapshot target (optional, empty = disabled)
	BackupInterval time.Duration // interval between snapshots

	// Import limits
	MaxImportBytes    int64 // max import body size
	ImportBurst       int   // import requests allowed in a burst per IP
	ImportRefillPerMn int   // import tokens refilled per IP per minute

	// Redis (only read when Storage == redis)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts   []string // optional, restrict /api/contacts to specific Host headers
	AllowedCIDRS   []string // optional, restrict /infra, /metrics, /readyz, /api/reload to IPs/CIDRs
	AllowedOrigins []string // optional, CORS origins for a browser front-end ("*" for any)
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("ADDRESSBOOK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("ADDRESSBOOK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("ADDRESSBOOK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("ADDRESSBOOK_PRETTY_LOG", true),

		// Storage
		Storage:    strings.ToLower(getenv("ADDRESSBOOK_STORAGE", StorageFile)),
		StorageKey: getenv("ADDRESSBOOK_STORAGE_KEY", "addressBookContacts"),
		DataDir:    getenv("ADDRESSBOOK_DATA_DIR", "./data"),

		// Seed & backups
		SeedFile:       getenv("ADDRESSBOOK_SEED_FILE", ""),
		ReloadInterval: mustDuration("ADDRESSBOOK_RELOAD_INTERVAL", 0),
		BackupFile:     getenv("ADDRESSBOOK_BACKUP_FILE", ""),
		BackupInterval: mustDuration("ADDRESSBOOK_BACKUP_INTERVAL", time.Hour),

		// Import limits
		MaxImportBytes:    int64(getenvInt("ADDRESSBOOK_MAX_IMPORT_BYTES", 5<<20)),
		ImportBurst:       getenvInt("ADDRESSBOOK_IMPORT_BURST", 5),
		ImportRefillPerMn: getenvInt("ADDRESSBOOK_IMPORT_PER_MINUTE", 10),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("ADDRESSBOOK_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("ADDRESSBOOK_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("ADDRESSBOOK_ALLOWED_ORIGINS", "")),
		TrustProxy:     mustBool("ADDRESSBOOK_TRUST_PROXY", false),
	}
	cfg.SQLitePath = getenv("ADDRESSBOOK_SQLITE_PATH", filepath.Join(cfg.DataDir, "addressbook.db"))

	switch cfg.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	case StorageRedis:
		cfg.LoadRedis()
	default:
		panic(fmt.Sprintf("❌ FATAL: ADDRESSBOOK_STORAGE must be one of %s, got %q",
			strings.Join(Backends, ", "), cfg.Storage))
	}

	if cfg.MaxImportBytes <= 0 {
		panic("❌ FATAL: ADDRESSBOOK_MAX_IMPORT_BYTES must be > 0")
	}
	if cfg.BackupFile != "" && cfg.BackupInterval <= 0 {
		panic("❌ FATAL: ADDRESSBOOK_BACKUP_INTERVAL must be > 0 when ADDRESSBOOK_BACKUP_FILE is set")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// LoadRedis fills the redis settings from the environment. Load calls it
// for the redis backend; the migrate command calls it when redis is the target.
func (cfg *Config) LoadRedis() {
	cfg.RedisAddr = requireEnv("ADDRESSBOOK_REDIS_ADDR")
	cfg.RedisUser = getenv("ADDRESSBOOK_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("ADDRESSBOOK_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("ADDRESSBOOK_REDIS_PASSWORD", "")
	cfg.RedisDB = requireEnvInt("ADDRESSBOOK_REDIS_DB")
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: ADDRESSBOOK_REDIS_PASSWORD is required when ADDRESSBOOK_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
