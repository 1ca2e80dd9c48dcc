// Package monitoring turns a running simulation into a small HTTP server so
// that pipeline occupancy and process resource usage can be watched from
// outside.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/Yushi-Xing/axi-pipeline/pipeline"
)

// Monitor can turn a simulation into a server and allows external
// monitoring of the simulation.
type Monitor struct {
	portNumber int

	lock      sync.Mutex
	pipelines []*pipeline.Pipeline
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterPipeline adds a pipeline to be monitored.
func (m *Monitor) RegisterPipeline(p *pipeline.Pipeline) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.pipelines = append(m.pipelines, p)
}

// StartServer starts the monitoring server and returns the address it
// listens on. If openBrowser is set, the status page is opened in the
// system browser.
func (m *Monitor) StartServer(openBrowser bool) string {
	r := mux.NewRouter()
	r.HandleFunc("/api/pipelines", m.listPipelines)
	r.HandleFunc("/api/resources", m.listResources)

	listener, err := net.Listen("tcp",
		fmt.Sprintf("localhost:%d", m.portNumber))
	if err != nil {
		panic(err)
	}

	url := "http://" + listener.Addr().String()
	fmt.Fprintf(os.Stderr, "Monitoring server listening at %s\n", url)

	go func() {
		err := http.Serve(listener, r)
		if err != nil {
			panic(err)
		}
	}()

	if openBrowser {
		_ = browser.OpenURL(url + "/api/pipelines")
	}

	return url
}

type pipelineStatus struct {
	Name      string `json:"name"`
	Depth     int    `json:"depth"`
	Width     int    `json:"width"`
	Occupancy int    `json:"occupancy"`
	Tick      uint64 `json:"tick"`
}

func (m *Monitor) listPipelines(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	statuses := make([]pipelineStatus, 0, len(m.pipelines))
	for _, p := range m.pipelines {
		statuses = append(statuses, pipelineStatus{
			Name:      p.Name(),
			Depth:     p.Depth(),
			Width:     p.PayloadWidth(),
			Occupancy: p.Occupancy(),
			Tick:      p.Tick(),
		})
	}

	writeJSON(w, statuses)
}

type resourceStatus struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemoryRSS  uint64  `json:"memory_rss"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := resourceStatus{}

	if cpu, err := proc.CPUPercent(); err == nil {
		status.CPUPercent = cpu
	}

	if mem, err := proc.MemoryInfo(); err == nil {
		status.MemoryRSS = mem.RSS
	}

	writeJSON(w, status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
