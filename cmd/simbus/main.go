// Command simbus runs the trading simulator demo: a stub venue per symbol,
// the cancellation supervisor, and an L2 collector, all paced against the
// wall clock. A cron feed injects limit orders so the expiry workflow runs
// continuously, and an HTTP endpoint serves health, stats, and Prometheus
// metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/GoCodeAlone/simbus/bus"
	"github.com/GoCodeAlone/simbus/cancelfairy"
	"github.com/GoCodeAlone/simbus/config"
	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/fixed"
	"github.com/GoCodeAlone/simbus/market"
	"github.com/GoCodeAlone/simbus/simtime"
)

const supervisorID event.AgentID = 999

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("simbus exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	runID := uuid.New().String()
	logger = logger.With("run_id", runID)
	logger.Info("starting simbus",
		"symbols", cfg.Symbols, "speed_factor", cfg.SpeedFactor, "http_addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bus.New(
		bus.WithLogger(logger),
		bus.WithGracePeriod(simtime.Duration(cfg.GraceMS)*simtime.Millisecond),
		bus.WithInjectQueueSize(cfg.InjectQueueSize),
		bus.WithObserver(func(_ context.Context, ce cloudevents.Event) {
			logger.Debug("bus event", "type", ce.Type(), "data", string(ce.Data()))
		}),
	)

	// Agents: one stub venue per symbol (first one takes the conventional
	// adapter id 0), the supervisor, and a collector per symbol.
	nextID := event.AgentID(0)
	for _, symbol := range cfg.Symbols {
		if err := b.Register(ctx, nextID, market.NewStubExchange(symbol, logger)); err != nil {
			return fmt.Errorf("registering venue for %s: %w", symbol, err)
		}
		nextID++
	}

	if err := b.Register(ctx, supervisorID, cancelfairy.New(logger)); err != nil {
		return fmt.Errorf("registering supervisor: %w", err)
	}

	collectorID := event.AgentID(100)
	for _, symbol := range cfg.Symbols {
		coll := market.NewL2Collector(symbol, func(d event.Delivery, book *event.LTwoOrderBookEvent) {
			logger.Debug("book snapshot",
				"symbol", book.Symbol, "bids", len(book.Bids), "asks", len(book.Asks), "at", d.Now.String())
		})
		if err := b.Register(ctx, collectorID, coll); err != nil {
			return fmt.Errorf("registering collector for %s: %w", symbol, err)
		}
		collectorID++
	}

	// Metrics.
	registry := prometheus.NewRegistry()
	if err := registry.Register(bus.NewPrometheusCollector(b, cfg.Metrics.Namespace)); err != nil {
		return fmt.Errorf("registering prometheus collector: %w", err)
	}
	if cfg.Metrics.StatsdAddr != "" {
		exporter, err := bus.NewDatadogStatsdExporter(
			b, cfg.Metrics.Namespace, cfg.Metrics.StatsdAddr,
			time.Duration(cfg.Metrics.FlushIntervalMS)*time.Millisecond, []string{"run_id:" + runID})
		if err != nil {
			return fmt.Errorf("creating statsd exporter: %w", err)
		}
		go exporter.Run(ctx)
	}

	// HTTP surface.
	if cfg.HTTPAddr != "" {
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: newRouter(b, registry), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Cron feed: a limit order every second keeps the expiry workflow busy;
	// a stats line every ten.
	feed := newOrderFeed(b, cfg, logger)
	c := cron.New()
	if _, err := c.AddFunc("@every 1s", feed.injectOrder); err != nil {
		return fmt.Errorf("scheduling order feed: %w", err)
	}
	if _, err := c.AddFunc("@every 10s", func() {
		s := b.Stats()
		logger.Info("bus stats",
			"published", s.Published, "dispatched", s.Dispatched,
			"delivered", s.Delivered, "faults", s.HandlerFaults,
			"queue", b.QueueSize(), "now", b.Now().String())
	}); err != nil {
		return fmt.Errorf("scheduling stats job: %w", err)
	}
	c.Start()
	defer c.Stop()

	// Live speed retune from the config file.
	if configPath != "" {
		w, err := config.Watch(configPath, logger, func(updated *config.Config) {
			b.SetSpeedFactor(updated.SpeedFactor)
		})
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
	}

	// Drive the bus until interrupted. Pace returns when the queue idles
	// past the grace period; the cron feed keeps producing, so retry until
	// shutdown.
	for ctx.Err() == nil {
		if err := b.Pace(ctx, cfg.SpeedFactor); err != nil {
			return fmt.Errorf("pacing: %w", err)
		}
	}

	logger.Info("simbus stopped", "now", b.Now().String(), "dispatched", b.Stats().Dispatched)
	return nil
}

// orderFeed injects demo limit orders from the cron goroutine.
type orderFeed struct {
	bus     *bus.Bus
	cfg     *config.Config
	logger  *slog.Logger
	nextCID atomic.Uint64
}

func newOrderFeed(b *bus.Bus, cfg *config.Config, logger *slog.Logger) *orderFeed {
	return &orderFeed{bus: b, cfg: cfg, logger: logger}
}

func (f *orderFeed) injectOrder() {
	cid := f.nextCID.Add(1)
	symbol := f.cfg.Symbols[int(cid)%len(f.cfg.Symbols)]

	side := fixed.Buy
	if cid%2 == 0 {
		side = fixed.Sell
	}
	order := &event.LimitOrderEvent{
		Meta:     event.NewMeta(f.bus.Now()),
		Symbol:   symbol,
		CID:      cid,
		Side:     side,
		Price:    fixed.PriceFromFloat(50_000).ApplyBasisPoints(int64(cid%21) - 10),
		Quantity: fixed.QuantityFromFloat(0.1),
		Timeout:  simtime.Duration(f.cfg.OrderTimeoutMS) * simtime.Millisecond,
	}

	stream := event.StreamID("feed_" + symbol)
	if err := f.bus.Inject(event.KindLimitOrder.SymbolTopic(symbol), order, stream); err != nil {
		f.logger.Warn("order feed inject failed", "error", err, "cid", cid)
	}
}

// newRouter builds the HTTP surface: health, stats, Prometheus metrics.
func newRouter(b *bus.Bus, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.HealthSnapshot())
	})
	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.Stats())
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
