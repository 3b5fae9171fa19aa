package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/config"
	"github.com/cavusmuhammed68/ICC-IEEE/core/dispatch"
	"github.com/cavusmuhammed68/ICC-IEEE/core/events"
	coremetrics "github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	coremqtt "github.com/cavusmuhammed68/ICC-IEEE/core/mqtt"
	"github.com/cavusmuhammed68/ICC-IEEE/core/recovery"
	"github.com/cavusmuhammed68/ICC-IEEE/core/series"
	"github.com/cavusmuhammed68/ICC-IEEE/core/shifting"
	"github.com/cavusmuhammed68/ICC-IEEE/core/stats"
	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/mqtt"
	"github.com/cavusmuhammed68/ICC-IEEE/internal/eventbus"
)

// Service wires the dispatch core to its output collaborators: metrics
// sinks, the trace store, the MQTT publisher and the run event bus.
type Service struct {
	cfg   *config.Config
	sink  coremetrics.MetricsSink
	store trace.Store
	pub   coremqtt.Publisher
	bus   *eventbus.TypedBus[events.RunEvent]
	log   logger.Logger
	now   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithSink replaces the configured metrics sinks.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithStore replaces the configured trace store.
func WithStore(s trace.Store) Option { return func(svc *Service) { svc.store = s } }

// WithPublisher replaces the configured MQTT publisher.
func WithPublisher(p coremqtt.Publisher) Option { return func(svc *Service) { svc.pub = p } }

// WithClock sets the time source used for run timestamps.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// New creates a Service from the configuration. Collaborators not replaced
// through options are built from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	svc := &Service{
		cfg: cfg,
		bus: eventbus.NewTyped[events.RunEvent](),
		log: logger.New("service"),
		now: time.Now,
	}
	for _, o := range opts {
		o(svc)
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.store == nil {
		store, err := trace.NewStore(cfg.Trace)
		if err != nil {
			return nil, fmt.Errorf("trace store: %w", err)
		}
		svc.store = store
	}
	if svc.pub == nil && cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.pub = client
	}
	if rec, ok := svc.sink.(metrics.FailureRecorder); ok {
		metrics.StartEventCollector(context.Background(), svc.bus, rec)
	}
	return svc, nil
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Events returns the run lifecycle bus.
func (s *Service) Events() *eventbus.TypedBus[events.RunEvent] { return s.bus }

// Store returns the trace store.
func (s *Service) Store() trace.Store { return s.store }

// RunOutput is everything derived from one dispatch run.
type RunOutput struct {
	ID      string                 `json:"id"`
	Variant string                 `json:"variant"`
	Horizon []model.TimeStep       `json:"-"`
	Result  *dispatch.Result       `json:"result"`
	Shifted []float64              `json:"shifted_load,omitempty"`
	Load    stats.Load             `json:"load"`
	Energy  stats.Energy           `json:"energy"`
	Market  *stats.Market          `json:"market,omitempty"`
	Records []model.DispatchRecord `json:"-"`
}

// RunVariant builds the horizon and dispatches the named variant.
func (s *Service) RunVariant(ctx context.Context, variant string, steps []model.TimeStep) (*RunOutput, error) {
	dcfg, err := s.cfg.Variant(variant)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, dcfg, steps)
}

// Run builds the horizon from steps and dispatches it with dcfg. The
// standalone variant is followed by load shifting; the market variant gets
// price statistics.
// Every run publishes a started event followed by completed or failed.
func (s *Service) Run(ctx context.Context, dcfg dispatch.Config, steps []model.TimeStep) (*RunOutput, error) {
	id := trace.NewRunID()
	variant := dcfg.Name
	if variant == "" {
		variant = dispatch.VariantStandalone
	}
	s.bus.Publish(events.RunEvent{Kind: events.RunStarted, RunID: id, Variant: variant, Time: s.now()})

	out, err := s.execute(ctx, id, dcfg, steps)
	if err != nil {
		s.bus.Publish(events.RunEvent{Kind: events.RunFailed, RunID: id, Variant: variant, Err: err.Error(), Time: s.now()})
		return nil, err
	}
	return out, nil
}

func (s *Service) execute(ctx context.Context, id string, dcfg dispatch.Config, steps []model.TimeStep) (*RunOutput, error) {
	start := time.Now()
	horizon, err := series.Build(steps, s.cfg.Series)
	if err != nil {
		return nil, fmt.Errorf("build horizon: %w", err)
	}
	var sinkErr error
	observer := dispatch.ObserverFunc(func(variant string, rec model.DispatchRecord) {
		if err := s.sink.RecordStep(coremetrics.StepEvent{RunID: id, Variant: variant, Record: rec, Time: s.now()}); err != nil && sinkErr == nil {
			sinkErr = err
		}
	})
	sim, err := dispatch.NewSimulator(dcfg, dispatch.WithLogger(logger.New("dispatch")), dispatch.WithObserver(observer))
	if err != nil {
		return nil, err
	}
	res, err := sim.Run(horizon)
	if err != nil {
		return nil, err
	}
	if sinkErr != nil {
		s.log.Warnf("metrics sink: %v", sinkErr)
	}

	out := &RunOutput{
		ID:      id,
		Variant: res.Variant,
		Horizon: horizon,
		Result:  res,
		Records: res.Records,
		Energy:  stats.EnergyStats(res.Records),
	}
	demand := shifting.Demands(res.Records)
	optimised := shifting.OptimisedLoads(res.Records)
	out.Load = stats.LoadStats(demand, optimised)
	switch res.Variant {
	case dispatch.VariantStandalone:
		shifted, err := shifting.New(s.cfg.Shifting.FlexibleLoadRatio).Shift(optimised, demand)
		if err != nil {
			return nil, fmt.Errorf("load shifting: %w", err)
		}
		out.Shifted = shifted
		out.Load = stats.LoadStats(demand, shifted)
	case dispatch.VariantMarket:
		m := stats.MarketStats(res.Records, s.cfg.Dispatch.PriceScale)
		out.Market = &m
	}

	sum := coremetrics.RunSummary{
		RunID:       id,
		Variant:     res.Variant,
		Steps:       len(res.Records),
		FinalSoCKWh: res.Battery.SoCKWh,
		FuelLeftKWh: res.FuelCell.EnergyKWh,
		Load:        out.Load,
		Energy:      out.Energy,
		Market:      out.Market,
		Duration:    time.Since(start),
		Time:        s.now(),
	}
	if err := s.sink.RecordRun(sum); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(); err != nil {
			s.log.Warnf("metrics flush: %v", err)
		}
	}

	rec := trace.RunRecord{
		ID:        id,
		Timestamp: sum.Time,
		Variant:   res.Variant,
		Steps:     sum.Steps,
		FinalSoC:  sum.FinalSoCKWh,
		FuelLeft:  sum.FuelLeftKWh,
		Load:      out.Load,
		Energy:    out.Energy,
		Market:    out.Market,
		Records:   res.Records,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("trace store: %w", err)
	}
	if s.pub != nil {
		if err := s.pub.PublishRun(rec); err != nil {
			s.log.Errorf("mqtt publish: %v", err)
		}
	}
	s.bus.Publish(events.RunEvent{Kind: events.RunCompleted, RunID: id, Variant: res.Variant, Summary: &sum, Time: sum.Time})
	return out, nil
}

// RecoveryOutput holds both recovery profiles and their dispatch.
type RecoveryOutput struct {
	Adaptive       RecoveryRun `json:"adaptive"`
	RuleBased      RecoveryRun `json:"rule_based"`
	StepCapKW      float64     `json:"step_cap_kw"`
	BatteryEnergy  float64     `json:"battery_energy"`
	FuelCellEnergy float64     `json:"fuel_cell_energy"`
	Minutes        int         `json:"minutes"`
}

// RecoveryRun is the dispatch of one recovery profile.
type RecoveryRun struct {
	Curve   []float64        `json:"curve"`
	Rows    []recovery.Row   `json:"rows"`
	Summary recovery.Summary `json:"summary"`
}

// Recovery dispatches the configured system against the adaptive sigmoid and
// the rule-based profile.
func (s *Service) Recovery(ctx context.Context) (*RecoveryOutput, error) {
	return s.RecoveryWith(ctx, s.cfg.Recovery)
}

// RecoveryWith is Recovery with an explicit recovery configuration.
func (s *Service) RecoveryWith(ctx context.Context, rc config.RecoveryConfig) (*RecoveryOutput, error) {
	rc.SetDefaults()
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	out := &RecoveryOutput{
		StepCapKW:      rc.System.StepCap,
		BatteryEnergy:  rc.System.BatteryEnergy,
		FuelCellEnergy: rc.System.FuelCellEnergy,
		Minutes:        rc.Minutes,
	}
	var err error
	if out.Adaptive, err = s.recoveryRun(ctx, rc.Sigmoid, rc); err != nil {
		return nil, err
	}
	if out.RuleBased, err = s.recoveryRun(ctx, rc.RuleBased, rc); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) recoveryRun(ctx context.Context, c recovery.Curve, rc config.RecoveryConfig) (RecoveryRun, error) {
	if err := ctx.Err(); err != nil {
		return RecoveryRun{}, err
	}
	curve := recovery.Sample(c, rc.Minutes)
	tr, err := recovery.Dispatch(rc.System, curve, dispatch.WithLogger(logger.New("recovery")))
	if err != nil {
		return RecoveryRun{}, err
	}
	return RecoveryRun{Curve: curve, Rows: tr.Rows, Summary: recovery.Summarize(tr, curve)}, nil
}

// Close releases the store, the metrics sink, the publisher connection and
// the event bus.
func (s *Service) Close() error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	if d, ok := s.pub.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	return errors.Join(errs...)
}
