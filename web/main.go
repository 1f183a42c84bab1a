package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/df07/go-progressive-pathtracer/web/server"
	"github.com/segmentio/encoding/json"
)

// The web server version number. Set at build.
var version = "v0.1.0"

type config struct {
	Addr       string `cli:"" env:"PATHTRACER_WEB_ADDR"        help:"Listening address for render requests."`
	AdminAddr  string `cli:"" env:"PATHTRACER_WEB_ADMIN_ADDR"  help:"Listening address for metrics and health checks."`
	MaxWidth   int    `cli:"" env:"PATHTRACER_WEB_MAX_WIDTH"   help:"Largest image width a client may request."`
	MaxHeight  int    `cli:"" env:"PATHTRACER_WEB_MAX_HEIGHT"  help:"Largest image height a client may request."`
	MaxSamples int    `cli:"" env:"PATHTRACER_WEB_MAX_SAMPLES" help:"Largest samples per pixel a client may request."`
	Workers    int    `cli:"" env:"PATHTRACER_WEB_WORKERS"     help:"Parallel workers per render. 0 uses every CPU."`
	LogLevel   string `cli:"" env:"PATHTRACER_WEB_LOG_LEVEL"   help:"Log level (debug|info|warning|error)."`
	LogIndent  bool   `cli:"" env:"PATHTRACER_WEB_LOG_INDENT"  help:"Indent logs."`
	Version    bool   `cli:"" env:"-"                          help:"Show version."`
	Help       bool   `cli:"" env:"-"                          help:"Show help."`
}

func main() {
	defaults := server.DefaultConfig()
	conf := config{
		Addr:       ":8080",
		AdminAddr:  ":18190",
		MaxWidth:   defaults.MaxWidth,
		MaxHeight:  defaults.MaxHeight,
		MaxSamples: defaults.MaxSamples,
		LogLevel:   logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Serves progressive path traced renders over server-sent events and websockets.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if conf.MaxWidth <= 0 || conf.MaxHeight <= 0 || conf.MaxSamples <= 0 {
		logs.Fatal(errors.New("server limits must be positive").
			WithTag("max_width", conf.MaxWidth).
			WithTag("max_height", conf.MaxHeight).
			WithTag("max_samples", conf.MaxSamples))
	}

	s := server.NewServer(server.Config{
		MaxWidth:   conf.MaxWidth,
		MaxHeight:  conf.MaxHeight,
		MaxSamples: conf.MaxSamples,
		Workers:    conf.Workers,
	})

	logs.WithTag("version", version).
		WithTag("addr", conf.Addr).
		WithTag("admin_addr", conf.AdminAddr).
		Info("starting path tracer web server")

	server.ListenAndServe(ctx,
		&http.Server{
			Addr:    conf.Addr,
			Handler: metrics.HTTPHandler(s.Handler(), server.MetricsPathFormatter),
		},
		&http.Server{
			Addr:    conf.AdminAddr,
			Handler: s.AdminHandler(),
		},
	)
}
