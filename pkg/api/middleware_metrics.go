package api

import (
	"time"
)

// metricsInterval is how often runtime gauges are refreshed.
const metricsInterval = 10 * time.Second

// updateMetricsPeriodically refreshes uptime and runtime gauges until
// StopMetrics is called.
func (s *Server) updateMetricsPeriodically() {
	defer s.metricsWg.Done()

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	s.metricsRegistry.UpdateSystemMetrics(s.startTime)
	for {
		select {
		case <-s.metricsStopCh:
			return
		case <-ticker.C:
			s.metricsRegistry.UpdateSystemMetrics(s.startTime)
		}
	}
}

// StopMetrics stops the runtime gauge goroutine and waits for it to exit.
func (s *Server) StopMetrics() {
	s.metricsStopOnce.Do(func() { close(s.metricsStopCh) })
	s.metricsWg.Wait()
}
