// Package health aggregates named component checks into health, readiness
// and liveness reports.
package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Scope selects the reports a check contributes to. Scopes combine with |.
type Scope uint8

const (
	ScopeHealth Scope = 1 << iota
	ScopeReady
	ScopeLive
)

// Check is the result of one component check.
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// Response is an aggregated report; the worst check status wins.
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    time.Duration    `json:"uptime_seconds"`
}

type registration struct {
	scope Scope
	fn    CheckFunc
}

// Checker holds registered checks. Safe for concurrent use.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]registration
	started time.Time
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{
		checks:  make(map[string]registration),
		started: time.Now(),
	}
}

// Register adds or replaces the check called name in every scope of scope.
func (c *Checker) Register(name string, scope Scope, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = registration{scope: scope, fn: fn}
}

// Names lists the checks registered in scope, sorted.
func (c *Checker) Names(scope Scope) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for name, reg := range c.checks {
		if reg.scope&scope != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Run executes every check registered in scope.
func (c *Checker) Run(scope Scope) Response {
	c.mu.RLock()
	selected := make(map[string]CheckFunc, len(c.checks))
	for name, reg := range c.checks {
		if reg.scope&scope != 0 {
			selected[name] = reg.fn
		}
	}
	c.mu.RUnlock()

	resp := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(selected)),
		Uptime:    time.Since(c.started).Round(time.Second),
	}
	for name, fn := range selected {
		start := time.Now()
		check := fn()
		if check.Name == "" {
			check.Name = name
		}
		check.Duration = time.Since(start)
		check.LastChecked = start
		resp.Checks[name] = check

		if check.Status.rank() > resp.Status.rank() {
			resp.Status = check.Status
		}
	}
	return resp
}

// Handler serves Run(scope) as JSON. Unhealthy is always 503; degraded is
// 503 only when strict is set, which readiness probes want.
func (c *Checker) Handler(scope Scope, strict bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := c.Run(scope)

		code := http.StatusOK
		if resp.Status == StatusUnhealthy || (strict && resp.Status != StatusHealthy) {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(resp)
	}
}
