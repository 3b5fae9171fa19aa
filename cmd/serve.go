package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cavusmuhammed68/ICC-IEEE/api/simulation"
	"github.com/cavusmuhammed68/ICC-IEEE/app"
	coremetrics "github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/jobs/ecokpi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dispatch API and Prometheus metrics",
	RunE:  tracked("serve", runServe),
}

func init() {
	serveCmd.Flags().String("addr", "", "API listen address, overrides api.addr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.New("serve")
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.API.Addr = addr
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	ecoStore := eco.NewMemoryStore()
	ecoSink, err := metrics.NewEcoSink(ecoStore, cfg.Metrics.EmissionFactor, nil)
	if err != nil {
		return fmt.Errorf("eco sink: %w", err)
	}
	svc, err := app.New(cfg, app.WithSink(coremetrics.NewMultiSink(sink, ecoSink)))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()

	if n, err := ecokpi.Backfill(ctx, svc.Store(), ecoStore, trace.Query{}); err != nil {
		log.Warnf("eco kpi backfill: %v", err)
	} else if n > 0 {
		log.Infof("eco kpis rebuilt from %d stored runs", n)
	}

	gin.SetMode(gin.ReleaseMode)
	api := simulation.NewServer(svc, simulation.WithEcoStore(ecoStore, cfg.Metrics.EmissionFactor))
	srv := &http.Server{Addr: cfg.API.Addr, Handler: api.Handler(), ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Metrics.ListenAddr != "" {
		g.Go(func() error { return metrics.StartPromServer(ctx, cfg.Metrics.ListenAddr) })
	}
	g.Go(func() error {
		log.Infof("serving API on %s", cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
