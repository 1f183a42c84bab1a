package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel   = "error_type"
	transportLabel = "transport"

	transportSSE       = "sse"
	transportWebsocket = "websocket"
)

var (
	rendersStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathtracer_web_renders_started",
		Help: "The number of renders started by web clients.",
	}, []string{
		transportLabel,
	})

	renderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathtracer_web_render_errors",
		Help: "The errors that occurred while serving a render.",
	}, []string{
		transportLabel,
		errTypeLabel,
	})

	liveBytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathtracer_web_live_bytes_sent",
		Help: "The number of buffer bytes streamed over websocket connections.",
	})
)
