package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"dtek-outage-monitor/internal/models"
)

// Recorder holds the metrics of the latest run. Each run is a batch job, so
// the values are pushed to a Pushgateway instead of being scraped.
type Recorder struct {
	reg *prometheus.Registry

	lastAction *prometheus.GaugeVec
	success    prometheus.Gauge
	duration   prometheus.Gauge
	outage     prometheus.Gauge
	lastRun    prometheus.Gauge

	pushURL string
	job     string
}

func New(pushURL, job string) *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		lastAction: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dtek_run_last_action",
			Help: "Action taken by the latest run (1 for the action taken, 0 otherwise); undecided when the run failed before deciding",
		}, []string{"action"}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dtek_run_success",
			Help: "Whether the latest run finished without error (1=ok)",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dtek_run_duration_seconds",
			Help: "Duration of the latest run",
		}),
		outage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dtek_outage_active",
			Help: "Whether the latest snapshot reported an outage (1=outage)",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dtek_run_last_timestamp_seconds",
			Help: "Unix time of the latest run",
		}),
		pushURL: pushURL,
		job:     job,
	}
	r.reg.MustRegister(r.lastAction, r.success, r.duration, r.outage, r.lastRun)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) Observe(res models.RunResult, runErr error) {
	for _, a := range models.Actions {
		v := 0.0
		if a == res.Action {
			v = 1
		}
		r.lastAction.WithLabelValues(a.String()).Set(v)
	}
	r.success.Set(boolValue(runErr == nil))
	r.outage.Set(boolValue(res.OutageActive))
	r.duration.Set(res.Duration.Seconds())
	r.lastRun.SetToCurrentTime()
}

// Push sends the registry to the Pushgateway. It is a no-op without a URL.
func (r *Recorder) Push(ctx context.Context) error {
	if r.pushURL == "" {
		return nil
	}
	return push.New(r.pushURL, r.job).Gatherer(r.reg).PushContext(ctx)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
