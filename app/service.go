// Package app assembles the scheduling service from configuration: stores,
// availability source, engines, downstream bridges and the daemon loops.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rotaops/rota/api"
	"github.com/rotaops/rota/app/plugins"
	"github.com/rotaops/rota/auth"
	"github.com/rotaops/rota/config"
	"github.com/rotaops/rota/connectors"
	"github.com/rotaops/rota/connectors/clients/staffdir"
	confactory "github.com/rotaops/rota/connectors/factory"
	"github.com/rotaops/rota/core/availability"
	corechat "github.com/rotaops/rota/core/chat"
	"github.com/rotaops/rota/core/journal"
	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/mirror"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/monitoring"
	"github.com/rotaops/rota/core/override"
	"github.com/rotaops/rota/core/roster"
	corestore "github.com/rotaops/rota/core/store"
	"github.com/rotaops/rota/infra/chat"
	"github.com/rotaops/rota/infra/logger"
	"github.com/rotaops/rota/infra/metrics"
	inframon "github.com/rotaops/rota/infra/monitoring"
	"github.com/rotaops/rota/infra/notion"
	"github.com/rotaops/rota/infra/store"
	"github.com/rotaops/rota/internal/eventbus"
)

// Service orchestrates the scheduling engines and their downstream
// surfaces. Chat, presence, mirror and identity sync are optional: each
// activates only when its config section is filled in.
type Service struct {
	cfg *config.Config

	store    corestore.Store
	roster   *roster.Engine
	override *override.Engine
	journal  journal.Store
	sink     coremetrics.MetricsSink
	syncer   mirror.Syncer
	bridge   *chat.Bridge
	presence *chat.RedisPresence
	bus      eventbus.EventBus
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	st, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	bus := eventbus.New()

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	sf, ok := plugins.Sources[cfg.Availability.Type]
	if !ok {
		return nil, fmt.Errorf("unknown availability source %q", cfg.Availability.Type)
	}
	source, err := sf(cfg.Availability.Type, cfg.Availability.Conf, st)
	if err != nil {
		return nil, fmt.Errorf("availability source: %w", err)
	}
	var oracle roster.Oracle
	if source != nil {
		oracle = availability.NewOracle(source, logger.New("availability"))
	}

	jf, ok := plugins.Journals[cfg.Journal.Type]
	if !ok {
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
	jstore, err := jf(cfg.Journal.Type, cfg.Journal.Conf)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}

	var bridge *chat.Bridge
	if cfg.Chat.Broker != "" {
		bridge, err = chat.NewBridge(cfg.Chat, bus)
		if err != nil {
			return nil, fmt.Errorf("chat bridge: %w", err)
		}
	}

	var presence *chat.RedisPresence
	if cfg.Presence.Addr != "" {
		presence = chat.NewRedisPresence(cfg.Presence, bus)
	}

	var syncer mirror.Syncer = mirror.NopSyncer{}
	if cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		syncer = notion.NewClient(cfg.Notion, st)
	}

	rosterEng, err := roster.NewEngine(st, st, oracle, sink, bus, logger.New("roster"))
	if err != nil {
		return nil, fmt.Errorf("roster engine: %w", err)
	}
	rosterEng.SetJournal(jstore)

	ovr, err := override.NewEngine(st, st, st, rosterEng, syncer, messengerFor(bridge), sink, bus, logger.New("override"))
	if err != nil {
		return nil, fmt.Errorf("override engine: %w", err)
	}
	ovr.SetJournal(jstore)

	return &Service{
		cfg:      cfg,
		store:    st,
		roster:   rosterEng,
		override: ovr,
		journal:  jstore,
		sink:     sink,
		syncer:   syncer,
		bridge:   bridge,
		presence: presence,
		bus:      bus,
		log:      logg,
	}, nil
}

// Run starts the daemon loops and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if addr := s.cfg.API.Addr; addr != "" {
		router := api.NewRouter(api.Deps{Schedule: s.store, Overrides: s.store, Journal: s.journal}, s.cfg.API.Token)
		go func() {
			if err := api.Start(ctx, addr, router); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}

	if s.cfg.Identity.Connector != "" {
		if n, err := s.SyncDirectory(ctx); err != nil {
			s.log.Warnf("directory sync failed: %v", err)
		} else {
			s.log.Infof("directory sync: %d engineers", n)
		}
		if iv := s.cfg.Identity.SyncIntervalSeconds; iv > 0 {
			go s.loop(ctx, time.Duration(iv)*time.Second, func() {
				if _, err := s.SyncDirectory(ctx); err != nil {
					s.log.Warnf("directory sync failed: %v", err)
				}
			})
		}
	}

	s.generateTick(ctx)
	go s.loop(ctx, time.Duration(s.cfg.Schedule.GenerateIntervalSeconds)*time.Second, func() {
		s.generateTick(ctx)
	})

	if s.presence != nil {
		s.presenceTick(ctx)
		go s.loop(ctx, time.Duration(s.cfg.Schedule.PresenceIntervalSeconds)*time.Second, func() {
			s.presenceTick(ctx)
		})
	}

	<-ctx.Done()
	return nil
}

// messengerFor keeps a nil bridge out of the Messenger interface, so the
// override engine sees a true nil and substitutes its no-op messenger.
func messengerFor(b *chat.Bridge) corechat.Messenger {
	if b == nil {
		return nil
	}
	return b
}

func (s *Service) loop(ctx context.Context, every time.Duration, fn func()) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

func (s *Service) generateTick(ctx context.Context) {
	if _, _, err := s.Generate(ctx, s.cfg.Schedule.LookaheadDays); err != nil {
		s.log.Errorf("schedule generation failed: %v", err)
	}
}

func (s *Service) presenceTick(ctx context.Context) {
	if err := s.PushPresence(ctx); err != nil {
		s.log.Warnf("presence push failed: %v", err)
	}
}

// Generate extends the base schedule by lookaheadDays and best-effort
// mirrors the generated window.
func (s *Service) Generate(ctx context.Context, lookaheadDays int) ([]model.Assignment, *roster.Report, error) {
	if lookaheadDays <= 0 {
		lookaheadDays = s.cfg.Schedule.LookaheadDays
	}
	rows, report, err := s.roster.Generate(ctx, lookaheadDays)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "roster"})
		return nil, nil, err
	}
	if len(rows) > 0 {
		if _, err := s.syncer.SyncRange(ctx, report.WindowStart, report.WindowEnd); err != nil {
			s.log.Warnf("mirror sync after generation failed: %v", err)
		}
	}
	return rows, report, nil
}

// ApplyOverride runs one override request through the pipeline.
func (s *Service) ApplyOverride(ctx context.Context, req override.Request) override.Result {
	return s.override.Apply(ctx, req)
}

// RemoveOverride deletes override rows for the rotation in [start, end].
func (s *Service) RemoveOverride(ctx context.Context, start, end time.Time, rotation model.Rotation) (int, error) {
	return s.override.Remove(ctx, start, end, rotation)
}

// Effective returns the schedule for [start, end] with overrides applied.
func (s *Service) Effective(ctx context.Context, start, end time.Time) ([]model.Assignment, error) {
	return s.store.Effective(ctx, start, end)
}

// Reset wipes every base assignment. Overrides survive.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}

// SyncMirror pushes the effective window [start, end] to the document
// mirror. A no-op result when no mirror is configured.
func (s *Service) SyncMirror(ctx context.Context, start, end time.Time) (mirror.SyncResult, error) {
	return s.syncer.SyncRange(ctx, start, end)
}

// Repair re-creates missing schema objects and drops invalid rows.
func (s *Service) Repair(ctx context.Context) error {
	return s.store.Repair(ctx)
}

// PushPresence publishes the effective on-call window to the chat
// presence store. A no-op when presence is not configured.
func (s *Service) PushPresence(ctx context.Context) error {
	if s.presence == nil {
		return nil
	}
	start := model.Day(time.Now())
	end := start.AddDate(0, 0, s.cfg.Schedule.PresenceDays-1)
	window, err := s.store.Effective(ctx, start, end)
	if err != nil {
		return fmt.Errorf("effective window: %w", err)
	}
	return s.presence.SetOnCall(ctx, window)
}

// SyncDirectory fetches the roster from the identity connector and
// upserts it, soft-deleting engineers absent upstream.
func (s *Service) SyncDirectory(ctx context.Context) (int, error) {
	cli, err := confactory.NewIdentityClient(s.cfg.Identity.Connector)
	if err != nil {
		return 0, err
	}
	var authClient *auth.ClientCred
	if s.cfg.Identity.Auth.AuthURL != "" {
		authClient = auth.NewClientCred(s.cfg.Identity.Auth)
	}
	opts := []connectors.Option{staffdir.WithBaseURL(s.cfg.Identity.BaseURL)}
	if s.cfg.Identity.Team != "" {
		opts = append(opts, staffdir.WithTeam(s.cfg.Identity.Team))
	}
	resp, err := cli.Fetch(authClient, opts...)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "identity"})
		return 0, fmt.Errorf("identity fetch: %w", err)
	}
	engineers, err := resp.Engineers()
	if err != nil {
		return 0, fmt.Errorf("identity decode: %w", err)
	}
	if err := s.store.SyncEngineers(ctx, engineers); err != nil {
		return 0, fmt.Errorf("directory upsert: %w", err)
	}
	return len(engineers), nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bridge != nil {
		s.bridge.Close()
	}
	var firstErr error
	if s.presence != nil {
		if err := s.presence.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	monitoring.Flush(2 * time.Second)
	return firstErr
}
