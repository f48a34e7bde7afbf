package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/loaders"
	"github.com/df07/go-embree/pkg/renderer"
	"github.com/df07/go-embree/pkg/scene"
)

// options holds the parsed command line.
type options struct {
	scene    string
	width    int
	height   int
	workers  int
	samples  int
	tileSize int
	ply      string
	texture  string
	out      string
	threads  int
	isa      string
	quality  string
	label    bool
	verbose  bool
	list     bool
	help     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseOptions(args []string, output io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("go-embree", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.scene, "scene", "default", "Scene preset (see -list)")
	fs.IntVar(&opts.width, "width", 400, "Image width in pixels")
	fs.IntVar(&opts.height, "height", 225, "Image height in pixels")
	fs.IntVar(&opts.workers, "workers", 0, "Tile render workers (0 = one per CPU)")
	fs.IntVar(&opts.samples, "samples", 4, "Jittered samples per pixel")
	fs.IntVar(&opts.tileSize, "tile", renderer.DefaultTileSize, "Tile edge length in pixels")
	fs.StringVar(&opts.ply, "ply", "", "PLY mesh to render (selects the mesh scene)")
	fs.StringVar(&opts.texture, "texture", "", "Image to texture the center sphere or mesh with")
	fs.StringVar(&opts.out, "out", "", "Output PNG (default output/<scene>/render_<timestamp>.png)")
	fs.IntVar(&opts.threads, "threads", 0, "Engine build threads (0 = engine default)")
	fs.StringVar(&opts.isa, "isa", "", "Restrict the engine instruction set")
	fs.StringVar(&opts.quality, "quality", "medium", "BVH build quality: low, medium or high")
	fs.BoolVar(&opts.label, "label", false, "Stamp render statistics onto the image")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log engine and render details")
	fs.BoolVar(&opts.list, "list", false, "List scene presets and exit")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return options{}, fs, err
	}
	if opts.ply != "" {
		opts.scene = "mesh"
	}
	if opts.width <= 0 || opts.height <= 0 {
		return options{}, fs, fmt.Errorf("invalid image size %dx%d", opts.width, opts.height)
	}
	if _, err := parseQuality(opts.quality); err != nil {
		return options{}, fs, err
	}
	return opts, fs, nil
}

func parseQuality(s string) (embree.BuildQuality, error) {
	for _, q := range []embree.BuildQuality{embree.BuildQualityLow, embree.BuildQualityMedium, embree.BuildQualityHigh} {
		if strings.EqualFold(s, q.String()) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("unknown build quality %q", s)
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Embree Scene Renderer")
	fmt.Fprintln(w, "Usage: go-embree [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	printScenes(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.png unless -out is given")
}

func printScenes(w io.Writer) {
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.List() {
		fmt.Fprintf(w, "  %-10s - %s\n", info.ID, info.Description)
	}
}

// outputPath returns the PNG path for a render, creating its directory.
func outputPath(opts options, now time.Time) (string, error) {
	path := opts.out
	if path == "" {
		name := fmt.Sprintf("render_%s.png", now.Format("20060102_150405"))
		path = filepath.Join("output", opts.scene, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return path, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, fs, err := parseOptions(args, io.Discard)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHelp(stdout, fs)
			return nil
		}
		return err
	}
	if opts.help {
		printHelp(stdout, fs)
		return nil
	}
	if opts.list {
		printScenes(stdout)
		return nil
	}

	if opts.verbose {
		embree.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer embree.SetLogger(nil)
	}

	fmt.Fprintln(stdout, "Starting Embree Scene Renderer...")

	device, err := embree.Open(embree.Config{Threads: opts.threads, ISA: opts.isa})
	if err != nil {
		return err
	}
	defer device.Release()
	fmt.Fprintf(stdout, "Using %s engine\n", device.EngineName())

	sceneOpts := scene.Options{PLYPath: opts.ply}
	sceneOpts.Quality, _ = parseQuality(opts.quality)
	if opts.texture != "" {
		tex, err := loaders.LoadTexture(opts.texture)
		if err != nil {
			return err
		}
		sceneOpts.Texture = tex
	}

	buildStart := time.Now()
	s, err := scene.Build(device, opts.scene, sceneOpts)
	if err != nil {
		return err
	}
	defer s.Release()
	if err := device.Err(); err != nil {
		return fmt.Errorf("building scene: %w", err)
	}
	fmt.Fprintf(stdout, "Built %s scene: %d geometries, %d primitives in %v\n",
		s.Info.DisplayName, s.GeometryCount(), s.PrimitiveCount(), time.Since(buildStart))

	img, stats, err := renderer.Render(ctx, s, renderer.Config{
		Width:           opts.width,
		Height:          opts.height,
		TileSize:        opts.tileSize,
		Workers:         opts.workers,
		SamplesPerPixel: opts.samples,
		Camera:          s.Camera,
		Shading:         renderer.DefaultShading(),
		Albedo:          s.Albedo,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Fprintf(stdout, "Render completed in %v (%.1f Mrays/s, %.0f%% hit)\n",
		stats.Elapsed, stats.RaysPerSecond()/1e6, 100*stats.HitRatio())

	if opts.label {
		renderer.DrawLabel(img, stats.Summary())
	}

	filename, err := outputPath(opts, time.Now())
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encode PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Render saved as %s\n", filename)
	return nil
}
