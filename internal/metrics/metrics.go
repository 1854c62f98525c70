package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "educrm", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"route", "code"})
	WorkflowErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "educrm", Name: "workflow_errors_total", Help: "Errors per workflow",
	}, []string{"workflow"})
	MembershipSyncs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "educrm", Name: "membership_syncs_total", Help: "Completed membership reconciliations",
	})
	LessonsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "educrm", Name: "lessons_generated_total", Help: "Lessons created by the generator",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "educrm", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, WorkflowErrors, MembershipSyncs, LessonsGenerated, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
