package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/stockledger/internal/database"
	"github.com/aristath/stockledger/internal/httpapi"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// QuotaReporter reports the remaining quote API budget
type QuotaReporter interface {
	GetRemainingRequests() int
}

// SystemHandlers serves host and database status
type SystemHandlers struct {
	log       zerolog.Logger
	ledgerDB  *database.DB
	quota     QuotaReporter
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, ledgerDB *database.DB, quota QuotaReporter) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		ledgerDB:  ledgerDB,
		quota:     quota,
		startedAt: time.Now(),
	}
}

// DatabaseStatus describes the ledger database
type DatabaseStatus struct {
	Driver          string  `json:"driver"`
	SizeMB          float64 `json:"size_mb"`
	WALSizeMB       float64 `json:"wal_size_mb"`
	OpenConnections int     `json:"open_connections"`
	InUse           int     `json:"in_use"`
	Idle            int     `json:"idle"`
	Error           string  `json:"error,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status          string         `json:"status"`
	CPUPercent      float64        `json:"cpu_percent"`
	MemoryPercent   float64        `json:"memory_percent"`
	HostUptimeSec   uint64         `json:"host_uptime_seconds"`
	UptimeSec       int64          `json:"uptime_seconds"`
	Goroutines      int            `json:"goroutines"`
	QuotesRemaining int            `json:"quotes_remaining"`
	Database        DatabaseStatus `json:"database"`
	LastChecked     string         `json:"last_checked"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:        "ok",
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		UptimeSec:     int64(time.Since(h.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	if uptime, err := host.Uptime(); err == nil {
		response.HostUptimeSec = uptime
	}
	if h.quota != nil {
		response.QuotesRemaining = h.quota.GetRemainingRequests()
	}

	if h.ledgerDB != nil {
		response.Database.Driver = string(h.ledgerDB.Driver())
		stats, err := h.ledgerDB.GetStats(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to collect database stats")
			response.Status = "degraded"
			response.Database.Error = "stats unavailable"
		} else {
			response.Database.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
			response.Database.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
			response.Database.OpenConnections = stats.OpenConnections
			response.Database.InUse = stats.InUse
			response.Database.Idle = stats.Idle
		}
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, response)
}

// getSystemStats calculates CPU and RAM usage percentages over a short sampling window
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
