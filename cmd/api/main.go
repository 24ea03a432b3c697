package main

import (
	"context"
	"errors"
	"io/fs"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JackWithOneEye/pcviewer/cmd/web"
	"github.com/JackWithOneEye/pcviewer/internal/animation"
	"github.com/JackWithOneEye/pcviewer/internal/config"
	"github.com/JackWithOneEye/pcviewer/internal/database"
	"github.com/JackWithOneEye/pcviewer/internal/engine"
	"github.com/JackWithOneEye/pcviewer/internal/sample"
	"github.com/JackWithOneEye/pcviewer/internal/server"
	"github.com/JackWithOneEye/pcviewer/internal/viewer"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Serve a rotating point-cloud cube to browser and terminal viewers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".env", cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.String("host", "0.0.0.0", "bind host for both servers")
	f.Uint("port", 8765, "WebSocket port")
	f.Uint("http-port", 8000, "viewer asset port")
	f.Bool("show-axes", true, "ask viewers to draw axes")
	f.Bool("show-rings", true, "ask viewers to draw plane rings")
	f.String("db", "", "sqlite session journal (empty disables)")
	f.Int("frames", 30, "frames in the sample animation")
	f.Int("points", 1000, "points per frame in the sample animation")
	f.String("log-level", "info", "trace, debug, info, warn or error")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not serve")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	zerolog.SetGlobalLevel(cfg.LogLevel())
	gin.SetMode(gin.ReleaseMode)

	points, colors := sample.RotatingCube(cfg.SampleFrames(), cfg.SamplePoints(), rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	buffer, err := animation.Validate(points, colors)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid animation")
	}
	log.Info().
		Int("frames", buffer.FrameCount()).
		Int("points", buffer.PointCount()).
		Msg("animation loaded")

	journal, err := database.NewDatabaseService(cfg)
	if err != nil {
		return err
	}
	defer journal.Close()

	stream := server.NewServer(cfg, engine.NewEngine(cfg, buffer), server.NewRegistry(), journal)
	if err := stream.Listen(); err != nil {
		log.Fatal().Err(err).Msg("could not start stream server")
	}

	assets, err := fs.Sub(web.Static, "static")
	if err != nil {
		return err
	}
	assetServer := viewer.NewServer(cfg, assets, journal)

	log.Info().Str("addr", stream.Addr().String()).Msg("stream server listening")
	log.Info().Str("addr", assetServer.Addr).Msg("viewer listening")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := stream.Serve(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := assetServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(stream.Shutdown(sctx), assetServer.Shutdown(sctx))
	})
	return g.Wait()
}
