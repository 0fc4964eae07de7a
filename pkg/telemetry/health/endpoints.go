package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"golang.org/x/time/rate"
)

// Endpoint paths registered by Register.
const (
	PathLiveness  = "/health"
	PathReadiness = "/ready"
	PathVersion   = "/version"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "1.0.0")
	Version string `json:"version"`

	// Commit is the git commit hash
	Commit string `json:"commit"`

	// BuildTime is when the binary was built
	BuildTime string `json:"build_time"`

	// GoVersion is the Go version used to build
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns an HTTP handler for the liveness probe endpoint.
//
// Example response:
//
//	{"status": "ok", "timestamp": "2026-01-20T10:30:00Z"}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler returns an HTTP handler for the readiness probe endpoint.
// It returns 200 when every check passes and 503 otherwise.
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "strategies": {"status": "unhealthy", "message": "no strategies registered", "duration_ms": 0.01},
//	        "weights_backend": {"status": "ok", "duration_ms": 0.4}
//	    },
//	    "timestamp": "2026-01-20T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r) {
			return
		}

		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if !status.Ready() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	}
}

// VersionHandler returns an HTTP handler for the version information endpoint.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, info)
	}
}

// Register mounts the liveness, readiness and version endpoints on mux.
//
// Usage:
//
//	mux := http.NewServeMux()
//	checker := health.New(5 * time.Second)
//	checker.Register(mux, version.Info())
func (c *Checker) Register(mux *http.ServeMux, info VersionInfo) {
	mux.HandleFunc(PathLiveness, c.LivenessHandler())
	mux.HandleFunc(PathReadiness, c.ReadinessHandler())
	mux.HandleFunc(PathVersion, VersionHandler(info.Version, info.Commit, info.BuildTime))
}

// RateLimitedHandler wraps a handler with a token bucket so probes cannot
// be used to hammer the checks.
func RateLimitedHandler(handler http.HandlerFunc, requestsPerSecond int) http.HandlerFunc {
	if requestsPerSecond <= 0 {
		return handler
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)

	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		handler(w, r)
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
