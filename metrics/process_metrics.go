// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ioCounters maps the /proc/[pid]/io keys to the exported counters.
var ioCounters = []struct {
	key  string
	name string
	help string
}{
	{"syscr", "read_syscalls_total", "Total number of read I/O operations (syscalls such as read and pread)."},
	{"syscw", "write_syscalls_total", "Total number of write I/O operations (syscalls such as write and pwrite)."},
	{"read_bytes", "read_bytes_total", "Total number of bytes read from the storage layer."},
	{"write_bytes", "write_bytes_total", "Total number of bytes written to the storage layer."},
}

// IOCollector collects the ledger process I/O counters from /proc/[pid]/io,
// mostly the level db and sqlite traffic. CPU, memory and fd metrics come from
// the default process collector.
type IOCollector struct {
	path  string
	descs map[string]*prometheus.Desc
}

// NewIOCollector creates a new IOCollector for the current process.
func NewIOCollector() *IOCollector {
	c := &IOCollector{
		path:  fmt.Sprintf("/proc/%d/io", os.Getpid()),
		descs: make(map[string]*prometheus.Desc, len(ioCounters)),
	}
	for _, counter := range ioCounters {
		c.descs[counter.key] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", counter.name), counter.help, nil, nil)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *IOCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, counter := range ioCounters {
		ch <- c.descs[counter.key]
	}
}

// Collect implements prometheus.Collector.
func (c *IOCollector) Collect(ch chan<- prometheus.Metric) {
	file, err := os.Open(c.path)
	if err != nil {
		return
	}
	defer file.Close()

	values, err := parseIOStats(file)
	if err != nil {
		logger.Debug("unable to read io stats", "err", err)
		return
	}
	for key, desc := range c.descs {
		if v, ok := values[key]; ok {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
		}
	}
}

// parseIOStats reads "key: value" lines, skipping malformed ones.
func parseIOStats(r io.Reader) (map[string]int64, error) {
	values := make(map[string]int64)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			logger.Warn("unable to parse io value", "line", scanner.Text(), "err", err)
			continue
		}
		values[strings.TrimSpace(key)] = v
	}
	return values, scanner.Err()
}

var registered atomic.Bool

// registerIOCollector registers the IOCollector once.
func registerIOCollector() {
	if registered.CompareAndSwap(false, true) {
		prometheus.MustRegister(NewIOCollector())
	}
}
