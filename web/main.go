package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/loaders"
	"github.com/df07/go-embree/pkg/scene"
	"github.com/df07/go-embree/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	threads := flag.Int("threads", 0, "Engine worker threads (0 = engine default)")
	plyPath := flag.String("ply", "", "PLY file for the mesh scene")
	texture := flag.String("texture", "", "Texture image for textured surfaces")
	verbose := flag.Bool("verbose", false, "Log engine and build details")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	console := server.NewConsole(200)
	text := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	embree.SetLogger(slog.New(console.Handler(slog.LevelInfo, text)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, *port, *threads, *plyPath, *texture, console); err != nil {
		embree.Logger().Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// serve runs the web server until ctx is cancelled, then drains active
// requests and releases the engine.
func serve(ctx context.Context, port, threads int, plyPath, texture string, console *server.Console) error {
	device, err := embree.Open(embree.Config{Threads: threads})
	if err != nil {
		return fmt.Errorf("opening device: %w", err)
	}
	defer device.Release()

	options := scene.Options{PLYPath: plyPath, Quality: embree.BuildQualityMedium}
	if texture != "" {
		if options.Texture, err = loaders.LoadTexture(texture); err != nil {
			return fmt.Errorf("loading texture: %w", err)
		}
	}

	webServer := server.NewServer(port, device, options, console)
	defer webServer.Close()

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		stopped <- webServer.Shutdown(shutdownCtx)
	}()

	embree.Logger().Info("visit the server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := webServer.Start(); err != nil {
		return err
	}
	return <-stopped
}
