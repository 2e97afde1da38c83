package shim

import (
	"sync/atomic"
	"time"
)

// flushMetrics writes a metrics snapshot, at most once per metricsInterval.
// Intercepted calls arrive many times per second and each flush is a file
// replace, so the cap keeps the shim's I/O invisible next to the host's.
func (s *Shim) flushMetrics() {
	if s.metricsPath == "" || s.metrics == nil {
		return
	}
	now := time.Now().UnixNano()
	last := atomic.LoadInt64(&s.lastFlush)
	if last != 0 && now-last < int64(metricsInterval) {
		return
	}
	if !atomic.CompareAndSwapInt64(&s.lastFlush, last, now) {
		return
	}
	if err := s.metrics.WriteFile(s.metricsPath); err != nil {
		s.log.Debugf("metrics write failed: %v", err)
	}
}
