package observability

import (
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"ruangbelajar/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	prefix         = "ruangbelajar_"
	unmatchedRoute = "unmatched"
)

type key struct {
	Method string
	Path   string
	Status int
}

type stat struct {
	Count     int64
	LatencyMS float64
}

// Collector keeps per-route request counters and writes one log line per
// request.
type Collector struct {
	db  *sql.DB
	log *logger.Logger

	mu           sync.RWMutex
	requestStats map[key]stat
	startedAt    time.Time
}

func NewCollector(db *sql.DB, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		db:           db,
		log:          log,
		requestStats: make(map[key]stat),
		startedAt:    time.Now(),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		latencyMS := float64(time.Since(start).Microseconds()) / 1000.0
		path := normalizedPath(r.URL.Path)
		c.record(r.Method, routeLabel(r), rec.status, latencyMS)

		q := r.URL.Query()
		kv := []interface{}{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", path,
			"status", rec.status,
			"latency_ms", latencyMS,
			"remote_ip", strings.TrimSpace(r.RemoteAddr),
		}
		if v := q.Get("materiId"); v != "" {
			kv = append(kv, "topic_id", v)
		}
		if v := q.Get("user_id"); v != "" {
			kv = append(kv, "user_id", v)
		}
		switch {
		case rec.status >= 500:
			c.log.Error("http request", kv...)
		case rec.status >= 400:
			c.log.Warn("http request", kv...)
		default:
			c.log.Info("http request", kv...)
		}
	})
}

func (c *Collector) record(method, path string, status int, latencyMS float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key{Method: method, Path: path, Status: status}
	s := c.requestStats[k]
	s.Count++
	s.LatencyMS += latencyMS
	c.requestStats[k] = s
}

func (c *Collector) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	statsCopy := make(map[key]stat, len(c.requestStats))
	for k, v := range c.requestStats {
		statsCopy[k] = v
	}
	startedAt := c.startedAt
	c.mu.RUnlock()

	keys := make([]key, 0, len(statsCopy))
	for k := range statsCopy {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Method != keys[j].Method {
			return keys[i].Method < keys[j].Method
		}
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Status < keys[j].Status
	})

	var sb strings.Builder
	sb.WriteString("# ruangbelajar metrics\n")
	gauge(&sb, "uptime_seconds", fmt.Sprintf("%.0f", time.Since(startedAt).Seconds()))

	sb.WriteString("# TYPE " + prefix + "http_requests_total counter\n")
	sb.WriteString("# TYPE " + prefix + "http_request_latency_ms_sum counter\n")
	sb.WriteString("# TYPE " + prefix + "http_request_latency_ms_avg gauge\n")
	for _, k := range keys {
		s := statsCopy[k]
		labels := fmt.Sprintf("method=%q,path=%q,status=\"%d\"", k.Method, k.Path, k.Status)
		fmt.Fprintf(&sb, "%shttp_requests_total{%s} %d\n", prefix, labels, s.Count)
		fmt.Fprintf(&sb, "%shttp_request_latency_ms_sum{%s} %.3f\n", prefix, labels, s.LatencyMS)
		avg := 0.0
		if s.Count > 0 {
			avg = s.LatencyMS / float64(s.Count)
		}
		fmt.Fprintf(&sb, "%shttp_request_latency_ms_avg{%s} %.3f\n", prefix, labels, avg)
	}

	if c.db != nil {
		dbs := c.db.Stats()
		gauge(&sb, "db_open_connections", strconv.Itoa(dbs.OpenConnections))
		gauge(&sb, "db_in_use_connections", strconv.Itoa(dbs.InUse))
		gauge(&sb, "db_idle_connections", strconv.Itoa(dbs.Idle))
		sb.WriteString("# TYPE " + prefix + "db_wait_count counter\n")
		fmt.Fprintf(&sb, "%sdb_wait_count %d\n", prefix, dbs.WaitCount)
		sb.WriteString("# TYPE " + prefix + "db_wait_duration_ms counter\n")
		fmt.Fprintf(&sb, "%sdb_wait_duration_ms %.3f\n", prefix, float64(dbs.WaitDuration.Microseconds())/1000.0)
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}

func gauge(sb *strings.Builder, name, value string) {
	sb.WriteString("# TYPE " + prefix + name + " gauge\n")
	sb.WriteString(prefix + name + " " + value + "\n")
}

// routeLabel is the matched chi pattern. Requests that matched no route
// share one label so stray URLs cannot grow the metric set.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return normalizedPath(r.URL.Path)
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

// normalizedPath folds numeric and UUID segments into {id} so metric
// cardinality stays bounded.
func normalizedPath(path string) string {
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
			continue
		}
		if _, err := uuid.Parse(p); err == nil {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
