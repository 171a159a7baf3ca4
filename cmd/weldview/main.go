// Command weldview plots weld recordings (time, position, force and an
// optional active flag) from CSV files.
//
//	weldview [serve]                      start the local web UI
//	weldview render -o chart.svg FILE...  render files to an image
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/weldview/internal/config"
	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/JonMunkholm/weldview/internal/logging"
	"github.com/JonMunkholm/weldview/internal/render"
	"github.com/JonMunkholm/weldview/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "env_file", envLoaded)

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg)
	case "render":
		err = runRender(cfg, args, os.Stdout)
	case "-h", "--help", "help":
		fmt.Fprintln(os.Stderr, "usage: weldview [serve] | weldview render [-o chart.svg] FILE...")
		return
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func batchOptions(cfg *config.Config) core.BatchOptions {
	return core.BatchOptions{
		MaxFileSize: cfg.Upload.MaxFileSize,
		Concurrency: cfg.Upload.ReadConcurrency,
	}
}

func chartRenderer(cfg *config.Config) render.ChartRenderer {
	return render.ChartRenderer{Width: cfg.Chart.Width, Height: cfg.Chart.Height}
}

func serve(cfg *config.Config) error {
	charts := render.NewCache(chartRenderer(cfg))
	controller := core.NewController(core.NewSession(), charts,
		core.RegionPolicy{MergeGap: cfg.Chart.MergeGap}, batchOptions(cfg))
	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	server := web.NewServer(cfg, controller, charts, limiter)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"max_file_size", cfg.Upload.MaxFileSize,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"region_merge_gap", cfg.Chart.MergeGap,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := limiter.WaitForDrain(ctx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			}
		}
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "url", "http://"+cfg.Server.Addr()+"/")
	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	slog.Info("server stopped")
	return nil
}
