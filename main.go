package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/segmentio/encoding/json"
)

// The renderer version number. Set at build.
var version = "v0.1.0"

type config struct {
	Scene     string `cli:"" env:"PATHTRACER_SCENE"      help:"Scene to render (see -help for the list)."`
	Output    string `cli:"" env:"PATHTRACER_OUTPUT"     help:"PNG output path. Defaults to output/<scene>/render_<timestamp>.png."`
	Width     int    `cli:"" env:"PATHTRACER_WIDTH"      help:"Image width. 0 keeps the scene default."`
	Height    int    `cli:"" env:"PATHTRACER_HEIGHT"     help:"Image height. 0 keeps the scene default."`
	Samples   int    `cli:"" env:"PATHTRACER_SAMPLES"    help:"Samples per pixel."`
	Passes    int    `cli:"" env:"PATHTRACER_PASSES"     help:"Progressive passes; each pass is logged."`
	Workers   int    `cli:"" env:"PATHTRACER_WORKERS"    help:"Parallel workers. 0 uses every CPU."`
	Seed      int    `cli:"" env:"PATHTRACER_SEED"       help:"Seed for scene layout and sampling."`
	LogLevel  string `cli:"" env:"PATHTRACER_LOG_LEVEL"  help:"Log level (debug|info|warning|error)."`
	LogIndent bool   `cli:"" env:"PATHTRACER_LOG_INDENT" help:"Indent logs."`
	Version   bool   `cli:"" env:"-"                     help:"Show version."`
	Help      bool   `cli:"" env:"-"                     help:"Show help."`
}

func main() {
	conf := config{
		Scene:    "random-spheres",
		Samples:  50,
		Passes:   7,
		Seed:     42,
		LogLevel: logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help(fmt.Sprintf("Renders a built-in scene to a PNG. Scenes: %v.", scene.Names())).
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

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	if err := run(ctx, conf); err != nil {
		logs.Fatal(err)
	}
}

func validateConfig(conf config) error {
	if conf.Width < 0 || conf.Height < 0 {
		return errors.New("image size cannot be negative").
			WithTag("width", conf.Width).
			WithTag("height", conf.Height)
	}
	if conf.Samples <= 0 {
		return errors.New("samples must be positive").WithTag("samples", conf.Samples)
	}
	if conf.Passes <= 0 {
		return errors.New("passes must be positive").WithTag("passes", conf.Passes)
	}
	return nil
}

// createScene looks up a scene and applies any size override
func createScene(name string, seed uint64, width, height int) (*scene.Definition, error) {
	d, err := scene.Lookup(name, seed)
	if err != nil {
		return nil, err
	}

	d.Fit(width, height)
	return d, nil
}

func run(ctx context.Context, conf config) error {
	d, err := createScene(conf.Scene, uint64(conf.Seed), conf.Width, conf.Height)
	if err != nil {
		return err
	}

	s, camera, err := d.Build(core.NewSeededSampler(uint64(conf.Seed), 1))
	if err != nil {
		return errors.New("building scene failed").
			WithTag("scene", d.Name).
			Wrap(err)
	}

	logs.WithTag("version", version).
		WithTag("scene", d.Name).
		WithTag("primitives", d.GetPrimitiveCount()).
		WithTag("width", d.Width).
		WithTag("height", d.Height).
		WithTag("samples", conf.Samples).
		Info("starting render")

	progressiveConfig := renderer.DefaultProgressiveConfig()
	progressiveConfig.MaxSamplesPerPixel = conf.Samples
	progressiveConfig.MaxPasses = min(conf.Passes, conf.Samples)
	progressiveConfig.NumWorkers = conf.Workers
	progressiveConfig.Seed = uint64(conf.Seed)

	pr := renderer.NewProgressiveRaytracer(s, camera, d.Skybox, d.Width, d.Height, progressiveConfig)

	startTime := time.Now()
	passChan, errChan := pr.RenderProgressive(ctx)

	var last *image.RGBA
	for result := range passChan {
		last = result.Image
	}
	if err := <-errChan; err != nil {
		if last == nil {
			return err
		}
		logs.Warn(errors.New("render stopped early, saving the last pass").Wrap(err))
	}
	if last == nil {
		return errors.New("render produced no image").WithTag("scene", d.Name)
	}

	output := conf.Output
	if output == "" {
		timestamp := time.Now().Format("20060102_150405")
		output = filepath.Join("output", d.Name, fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := savePNG(output, last); err != nil {
		return err
	}

	logs.WithTag("path", output).
		WithTag("samples", pr.Samples()).
		WithTag("duration", time.Since(startTime).String()).
		Info("render saved")
	return nil
}

func savePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New("creating output directory failed").
			WithTag("path", path).
			Wrap(err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.New("creating output file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return errors.New("encoding png failed").
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}
