package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/cpu"
)

// RegisterProcessMetrics registers the CPU and memory usage of the node.
func RegisterProcessMetrics(registry prometheus.Registerer) error {
	return register(registry,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "process_cpu_usage",
			Help: "CPU (System) usage since the last scrape.",
		}, cpuUsage),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "process_mem_usage_bytes",
			Help: "memory usage [bytes].",
		}, memUsage),
	)
}

func cpuUsage() float64 {
	percent, err := cpu.Percent(0, false)
	if err != nil || len(percent) == 0 {
		return 0
	}

	return percent[0]
}

func memUsage() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return float64(m.Alloc)
}
