package metrics

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessCollector отдаёт загрузку CPU и память процесса через gopsutil
type ProcessCollector struct {
	start time.Time
	proc  *process.Process

	cpuDesc        *prometheus.Desc
	rssDesc        *prometheus.Desc
	heapDesc       *prometheus.Desc
	goroutinesDesc *prometheus.Desc
	uptimeDesc     *prometheus.Desc
}

// NewProcessCollector создаёт коллектор для текущего процесса
func NewProcessCollector() (*ProcessCollector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}
	return &ProcessCollector{
		start:          time.Now(),
		proc:           proc,
		cpuDesc:        prometheus.NewDesc("breaknblocks_process_cpu_percent", "Загрузка CPU процессом, проценты.", nil, nil),
		rssDesc:        prometheus.NewDesc("breaknblocks_process_rss_bytes", "Резидентная память процесса.", nil, nil),
		heapDesc:       prometheus.NewDesc("breaknblocks_process_heap_alloc_bytes", "Занятая куча Go.", nil, nil),
		goroutinesDesc: prometheus.NewDesc("breaknblocks_process_goroutines", "Число горутин.", nil, nil),
		uptimeDesc:     prometheus.NewDesc("breaknblocks_process_uptime_seconds", "Время работы сервера.", nil, nil),
	}, nil
}

// Describe реализует prometheus.Collector
func (c *ProcessCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuDesc
	ch <- c.rssDesc
	ch <- c.heapDesc
	ch <- c.goroutinesDesc
	ch <- c.uptimeDesc
}

// Collect реализует prometheus.Collector
func (c *ProcessCollector) Collect(ch chan<- prometheus.Metric) {
	if pct, err := c.CPUPercent(); err == nil {
		ch <- prometheus.MustNewConstMetric(c.cpuDesc, prometheus.GaugeValue, pct)
	}
	if mem, err := c.proc.MemoryInfo(); err == nil {
		ch <- prometheus.MustNewConstMetric(c.rssDesc, prometheus.GaugeValue, float64(mem.RSS))
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	ch <- prometheus.MustNewConstMetric(c.heapDesc, prometheus.GaugeValue, float64(ms.HeapAlloc))
	ch <- prometheus.MustNewConstMetric(c.goroutinesDesc, prometheus.GaugeValue, float64(runtime.NumGoroutine()))
	ch <- prometheus.MustNewConstMetric(c.uptimeDesc, prometheus.GaugeValue, c.Uptime().Seconds())
}

// CPUPercent возвращает загрузку CPU процессом. Если метрика процесса
// недоступна, возвращает загрузку системы.
func (c *ProcessCollector) CPUPercent() (float64, error) {
	pct, err := c.proc.CPUPercent()
	if err == nil {
		return pct, nil
	}
	system, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(system) == 0 {
		return 0, fmt.Errorf("no cpu samples")
	}
	return system[0], nil
}

// Uptime возвращает время с момента создания коллектора
func (c *ProcessCollector) Uptime() time.Duration {
	return time.Since(c.start)
}

// FormatUptime форматирует длительность как "1д 2ч 3м 4с"
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}
