// Package app wires the engine together: configuration, logging, metric
// sinks, the live battery manager and the telemetry publisher. It is also the
// validation boundary: query parameters are checked here, once, so the core
// algorithms stay total functions over well-formed inputs.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aau-energy/microgrid/config"
	"github.com/aau-energy/microgrid/core/battery"
	"github.com/aau-energy/microgrid/core/events"
	coremetrics "github.com/aau-energy/microgrid/core/metrics"
	"github.com/aau-energy/microgrid/core/model"
	"github.com/aau-energy/microgrid/core/schedule"
	"github.com/aau-energy/microgrid/core/series"
	"github.com/aau-energy/microgrid/infra/logger"
	"github.com/aau-energy/microgrid/infra/metrics"
	"github.com/aau-energy/microgrid/infra/mqtt"
	"github.com/aau-energy/microgrid/internal/eventbus"
)

// Service owns the live battery state and answers energy-window and
// simulation queries over caller-supplied series.
type Service struct {
	Battery *battery.Manager

	bus         *eventbus.TypedBus[events.SocUpdated]
	log         logger.Logger
	sink        coremetrics.MetricsSink
	telemetry   mqtt.StatusPublisher
	scheduleCfg schedule.Config
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	step := time.Duration(cfg.Battery.SimStepMinutes) * time.Minute
	sim, err := battery.NewSimulator(cfg.Battery.CapacityKWh, cfg.Battery.InitialSocKWh,
		cfg.Battery.ChargeEff, cfg.Battery.DischargeEff, step)
	if err != nil {
		return nil, fmt.Errorf("battery simulator: %w", err)
	}

	bus := eventbus.NewTyped[events.SocUpdated]()
	manager := battery.NewManager(sim, bus, sink, logg)

	var telemetry mqtt.StatusPublisher
	if cfg.Telemetry.Enabled {
		telemetry, err = mqtt.NewPahoPublisher(cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("telemetry publisher: %w", err)
		}
	}

	return &Service{
		Battery:     manager,
		bus:         bus,
		log:         logg,
		sink:        sink,
		telemetry:   telemetry,
		scheduleCfg: cfg.Schedule,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the background exporters and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			s.forwardStatus(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.telemetry != nil {
		s.telemetry.Close()
	}
	return nil
}

func (s *Service) forwardStatus(ev events.SocUpdated) {
	if s.telemetry == nil {
		return
	}
	status := model.BatteryStatus{
		NowSocKWh:   ev.NewSocKWh,
		CapacityKWh: ev.CapacityKWh,
		SocPct:      100.0 * ev.NewSocKWh / ev.CapacityKWh,
		AsOf:        ev.At,
	}
	if err := s.telemetry.PublishStatus(status); err != nil {
		s.log.Warnf("publish battery status: %v", err)
	}
}

// EnergyWindows resamples the series to the configured grid and searches for
// the earliest windows delivering needKWh. A power floor equal to the average
// demand is applied when requireFloor is set. Series from independent sources
// are sorted defensively before the search.
func (s *Service) EnergyWindows(raw model.Series, needKWh float64, requireFloor bool, floorKW float64) (schedule.SearchResult, error) {
	if needKWh <= 0 {
		return schedule.SearchResult{}, fmt.Errorf("need_kwh must be positive, got %g", needKWh)
	}
	if requireFloor && floorKW < 0 {
		return schedule.SearchResult{}, fmt.Errorf("power floor must be non-negative, got %g", floorKW)
	}
	started := time.Now()
	sorted := raw.SortCopy()
	step := time.Duration(s.scheduleCfg.StepMinutes) * time.Minute
	grid := series.InterpolateToGrid(sorted, step)
	res := schedule.FindWindows(grid, schedule.SearchParams{
		NeedKWh:      needKWh,
		StepMinutes:  s.scheduleCfg.StepMinutes,
		MinPowerKW:   floorKW,
		FloorEnabled: requireFloor,
		MaxWindows:   s.scheduleCfg.MaxWindows,
	})
	s.record("energy_windows", len(res.Windows), res.Reason, started)
	return res, nil
}

// GreenWindows reports runs where generation covers the load for at least the
// configured minimum block.
func (s *Service) GreenWindows(gen model.Series, loadKW float64, load model.Series) ([]model.GreenWindow, error) {
	if loadKW < 0 {
		return nil, fmt.Errorf("load must be non-negative, got %g", loadKW)
	}
	started := time.Now()
	windows := schedule.GreenWindows(gen.SortCopy(), schedule.MarginParams{
		LoadKW:          loadKW,
		Load:            load.SortCopy(),
		MinBlockMinutes: s.scheduleCfg.MinBlockMinutes,
	})
	s.record("green_windows", len(windows), "", started)
	return windows, nil
}

// Combined aligns the wind and solar channels onto the union of their
// timestamps (nearest join) and reports per-point totals with the net margin
// against loadKW, plus total and per-day energy summaries.
func (s *Service) Combined(wind, solar model.Series, loadKW float64) ([]series.CombinedPoint, series.Summary, error) {
	if loadKW < 0 {
		return nil, series.Summary{}, fmt.Errorf("load must be non-negative, got %g", loadKW)
	}
	started := time.Now()
	points := series.Combine(wind.SortCopy(), solar.SortCopy(), loadKW)
	summary := series.Summarize(points)
	s.record("combined", len(points), "", started)
	return points, summary, nil
}

// CombinedEnergyWindows runs the window search over the summed wind+solar
// channel after aligning the two sources.
func (s *Service) CombinedEnergyWindows(wind, solar model.Series, needKWh float64, requireFloor bool, floorKW float64) (schedule.SearchResult, error) {
	points := series.Combine(wind.SortCopy(), solar.SortCopy(), 0)
	return s.EnergyWindows(series.TotalSeries(points), needKWh, requireFloor, floorKW)
}

// RuntimeEstimate projects the battery under a constant load; the live state
// is untouched.
func (s *Service) RuntimeEstimate(forecast model.Series, loadKW float64, start time.Time) (model.RuntimeEstimate, error) {
	started := time.Now()
	est, err := s.Battery.EstimateRuntime(forecast.SortCopy(), loadKW, start)
	if err != nil {
		return model.RuntimeEstimate{}, err
	}
	s.record("runtime", 0, "", started)
	return est, nil
}

// SocTargetETAs answers time-to-target queries. Targets may be given in kWh,
// percent of capacity, or both; percent targets are converted here.
func (s *Service) SocTargetETAs(forecast model.Series, targetsKWh, targetsPct []float64, baseLoadKW float64, start time.Time) ([]model.SocTargetETA, error) {
	capacity := s.Battery.Status(start).CapacityKWh
	targets := append([]float64(nil), targetsKWh...)
	for _, pct := range targetsPct {
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("target percent must be in [0,100], got %g", pct)
		}
		targets = append(targets, capacity*pct/100.0)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one target is required")
	}
	started := time.Now()
	etas, err := s.Battery.TargetETAs(forecast.SortCopy(), targets, baseLoadKW, start)
	if err != nil {
		return nil, err
	}
	s.record("soc_targets", len(etas), "", started)
	return etas, nil
}

func (s *Service) record(kind string, windows int, reason string, started time.Time) {
	err := s.sink.RecordQuery([]coremetrics.QueryResult{{
		Kind:     kind,
		Windows:  windows,
		Reason:   reason,
		Duration: time.Since(started),
		At:       started,
	}})
	if err != nil {
		s.log.Warnf("record query: %v", err)
	}
}
