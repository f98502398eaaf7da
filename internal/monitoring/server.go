package monitoring

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"telecrm-backend/pkg/utils"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Server exposes ops stats on a side port, separate from the API so a
// wedged API process can still be inspected.
type Server struct {
	db      *pgxpool.Pool
	port    int
	started time.Time
}

type Stats struct {
	DatabaseStatus    string  `json:"database_status"`
	ActiveConnections int32   `json:"active_connections"`
	IdleConnections   int32   `json:"idle_connections"`
	ResponseTimeMs    int64   `json:"response_time_ms"`
	DBSize            string  `json:"db_size"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`
	Uptime            string  `json:"uptime"`
}

func NewServer(db *pgxpool.Pool, port int) *Server {
	return &Server{db: db, port: port, started: time.Now()}
}

// Start blocks serving the monitoring endpoints
func (s *Server) Start() {
	r := mux.NewRouter()
	r.HandleFunc("/stats", s.stats).Methods("GET")

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("[Monitoring] listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Printf("[Monitoring] server stopped: %v", err)
	}
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{Uptime: time.Since(s.started).Truncate(time.Second).String()}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := s.db.Ping(ctx); err != nil {
		stats.DatabaseStatus = "unhealthy"
	} else {
		stats.DatabaseStatus = "healthy"
	}
	stats.ResponseTimeMs = time.Since(start).Milliseconds()

	pool := s.db.Stat()
	stats.ActiveConnections = pool.AcquiredConns()
	stats.IdleConnections = pool.IdleConns()

	var size string
	if err := s.db.QueryRow(ctx,
		`SELECT pg_size_pretty(pg_database_size(current_database()))`).Scan(&size); err == nil {
		stats.DBSize = size
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsed = formatBytes(vm.Used)
		stats.MemoryTotal = formatBytes(vm.Total)
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskUsed = formatBytes(du.Used)
		stats.DiskTotal = formatBytes(du.Total)
	}

	utils.JSON(w, http.StatusOK, stats)
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
