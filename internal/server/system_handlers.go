package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/oneglance/internal/database"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log      zerolog.Logger
	cryptoDB *database.DB
	stocksDB *database.DB
	started  time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, cryptoDB, stocksDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:      log.With().Str("component", "system_handlers").Logger(),
		cryptoDB: cryptoDB,
		stocksDB: stocksDB,
		started:  time.Now(),
	}
}

// HealthResponse is the health endpoint payload
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CryptoDB      string  `json:"crypto_db"`
	StocksDB      string  `json:"stocks_db"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
}

// HandleHealth reports process and database health. Returns 503 when
// either database fails its check. The default check is a fast ping;
// ?deep=true additionally runs a SQLite integrity check, which scans
// the whole file and is meant for operators, not load balancers.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	deep := r.URL.Query().Get("deep") == "true"

	resp := HealthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.started).Seconds(),
		CryptoDB:      "ok",
		StocksDB:      "ok",
	}

	status := http.StatusOK
	if err := h.checkDB(r.Context(), h.cryptoDB, deep); err != nil {
		resp.Status = "degraded"
		resp.CryptoDB = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.checkDB(r.Context(), h.stocksDB, deep); err != nil {
		resp.Status = "degraded"
		resp.StocksDB = err.Error()
		status = http.StatusServiceUnavailable
	}

	resp.CPUPercent, resp.RAMPercent = h.getSystemStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}

func (h *SystemHandlers) checkDB(ctx context.Context, db *database.DB, deep bool) error {
	if deep {
		return db.HealthCheck(ctx)
	}
	return db.QuickCheck(ctx)
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a 100ms sampling interval so the health endpoint stays fast.
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
