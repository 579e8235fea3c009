package gateway

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/wagate/backend/internal/session"
)

type healthResponse struct {
	State         session.State `json:"state"`
	Ready         bool          `json:"ready"`
	Observers     int           `json:"observers"`
	UptimeSeconds float64       `json:"uptimeSeconds"`
	CPUPercent    float64       `json:"cpuPercent,omitempty"`
	RSSBytes      uint64        `json:"rssBytes,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		State:         s.sess.Current(),
		Ready:         s.sess.IsReady(),
		Observers:     s.hub.Count(),
		UptimeSeconds: time.Since(s.started).Seconds(),
	}

	// Process stats are best-effort; health must answer even if the
	// platform probe fails.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			resp.CPUPercent = cpu
		}
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			resp.RSSBytes = mem.RSS
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
