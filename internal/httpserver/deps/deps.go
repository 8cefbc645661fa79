package deps

import (
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	AllowedCIDRS   []string         // IPs allowed to access healthz/readyz/infra/reload
	AllowedOrigins []string         // CORS origins allowed to call /api (empty = same-origin only)
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Contacts       *contacts.Store  // The contact collection
	StorageBackend string           // Backend name, reported by /infra
	SeedFile       string           // Seed file path (empty if seeding is disabled)
	BackupFile     string           // Backup file path (empty if backups are disabled)
	MaxImportBytes int64            // Upper bound for import request bodies
	ImportLimit    ImportRateLimit  // Per-IP limits for the import endpoint
	ReloadTrigger  chan struct{}    // Channel to trigger a manual seed reload (nil if seeding is disabled)
}

// ImportRateLimit bounds how often a single client may import.
type ImportRateLimit struct {
	Burst     int
	PerMinute int
}

// Now returns the current time using TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
