package handlers

import (
	"bytes"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"

	"cctvinsight/internal/analysis"
)

var (
	recordsLoaded    prometheus.Gauge
	cameraEvents     *prometheus.GaugeVec
	sourceBytes      prometheus.Gauge
	downloadDuration prometheus.Gauge
	requestsTotal    *prometheus.CounterVec

	metricsOnce sync.Once
)

// knownPaths keeps the request counter's path label bounded.
var knownPaths = map[string]bool{
	"/": true, "/healthz": true, "/metrics": true, "/static/app.css": true,
	"/api/figures": true, "/api/tables/cameras": true, "/api/tables/daily": true, "/api/tables/hourly": true,
}

// InitPrometheusMetrics registers the dashboard's collectors with the default
// registry. Safe to call more than once.
func InitPrometheusMetrics() {
	metricsOnce.Do(func() {
		recordsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cctvinsight",
			Name:      "records_loaded",
			Help:      "Number of frame-missing events in the loaded log.",
		})
		cameraEvents = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cctvinsight",
				Name:      "camera_events",
				Help:      "Frame-missing events per camera in the loaded log.",
			},
			[]string{"view_id"},
		)
		sourceBytes = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cctvinsight",
			Name:      "source_bytes",
			Help:      "Size of the downloaded event log in bytes.",
		})
		downloadDuration = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cctvinsight",
			Name:      "source_download_seconds",
			Help:      "Time taken to download the event log.",
		})
		requestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cctvinsight",
				Name:      "http_requests_total",
				Help:      "HTTP requests served by the dashboard.",
			},
			[]string{"path", "status"},
		)
		prometheus.MustRegister(recordsLoaded, cameraEvents, sourceBytes, downloadDuration, requestsTotal)
	})
}

// ObserveDownload records the size and duration of the startup download.
func ObserveDownload(n int64, took time.Duration) {
	if sourceBytes == nil {
		return
	}
	sourceBytes.Set(float64(n))
	downloadDuration.Set(took.Seconds())
}

// ObserveTables publishes the loaded record count and per-camera totals.
func ObserveTables(t analysis.Tables) {
	if recordsLoaded == nil {
		return
	}
	recordsLoaded.Set(float64(t.Records))
	cameraEvents.Reset()
	for _, c := range t.Cameras {
		cameraEvents.WithLabelValues(c.ViewID).Set(float64(c.Frequency))
	}
}

func observeRequest(path string, status int) {
	if requestsTotal == nil {
		return
	}
	if !knownPaths[path] {
		path = "other"
	}
	requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// MetricsHandler serves the default registry in text format. An optional
// "view_id" query parameter keeps only that camera's series in families
// labelled by camera.
func MetricsHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		viewID := string(ctx.QueryArgs().Peek("view_id"))

		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to gather metrics")
			return
		}

		filtered := metricFamilies
		if viewID != "" {
			filtered = filterByLabel(metricFamilies, "view_id", viewID)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

// filterByLabel keeps families without the label untouched and, in families
// that carry it, only the metrics whose label equals value.
func filterByLabel(families []*dto.MetricFamily, name, value string) []*dto.MetricFamily {
	out := make([]*dto.MetricFamily, 0, len(families))
	for _, mf := range families {
		hasLabel := false
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == name {
					hasLabel = true
					break
				}
			}
			if hasLabel {
				break
			}
		}

		if !hasLabel {
			out = append(out, mf)
			continue
		}

		var kept []*dto.Metric
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == name && l.GetValue() == value {
					kept = append(kept, m)
					break
				}
			}
		}
		if len(kept) == 0 {
			continue
		}

		out = append(out, &dto.MetricFamily{
			Name:   mf.Name,
			Help:   mf.Help,
			Type:   mf.Type,
			Metric: kept,
		})
	}
	return out
}
