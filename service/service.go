package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-logtrail/command"
	"github.com/goliatone/go-logtrail/display"
	"github.com/goliatone/go-logtrail/handler"
	"github.com/goliatone/go-logtrail/logs"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-logtrail/query"
	"github.com/goliatone/go-logtrail/registry"
	"github.com/goliatone/go-masker"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// Service is the entry point for go-logtrail. It wires the repository, the
// tracked-type registry, the logrus hook and the command/query facades
// supplied by the host application.
type Service struct {
	cfg      Config
	commands Commands
	queries  Queries
	hook     *handler.Hook
	repo     types.RecordRepository
	sink     types.RecordSink
}

// Commands exposes the service command handlers.
type Commands struct {
	Log *command.LogCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	LogFeed   *query.LogFeedQuery
	LogStats  *query.LogStatsQuery
	ObjectLog *query.ObjectLogQuery
}

// Config captures all required dependencies so callers can provide their own
// instances. When DB is set, the default bun repository and relation resolver
// are built for any that are missing.
type Config struct {
	DB                   *bun.DB
	Repository           types.RecordRepository
	Sink                 types.RecordSink
	Registry             *registry.Registry
	Resolver             display.Resolver
	Hooks                types.Hooks
	Clock                types.Clock

	// Logger receives diagnostics from the command, queries and hook. When it
	// writes through the logrus logger the hook is attached to, use
	// handler.NewLogrusLogger; other adapters would feed sink failures back
	// into the hook.
	Logger types.Logger

	CaptureRequestParams bool
	FeatureGate          featuregate.FeatureGate
	Masker               *masker.Masker
	Levels               []logrus.Level
	ActorResolver        handler.ActorResolver
	EmitExtra            handler.EmitExtraFunc
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)

	repo := norm.Repository
	sink := norm.Sink
	if norm.DB != nil && (repo == nil || sink == nil) {
		store, err := logs.NewRepository(logs.RepositoryConfig{DB: norm.DB, Clock: norm.Clock})
		if err != nil {
			norm.Logger.Error("go-logtrail: log repository initialization failed", err)
		} else {
			if repo == nil {
				repo = store
			}
			if sink == nil {
				sink = store
			}
		}
	}
	if repo == nil {
		if cast, ok := sink.(types.RecordRepository); ok {
			repo = cast
		}
	}
	if sink == nil {
		if cast, ok := repo.(types.RecordSink); ok {
			sink = cast
		}
	}
	if norm.Resolver == nil && norm.DB != nil {
		if resolver, err := display.NewBunResolver(norm.DB); err == nil {
			norm.Resolver = resolver
		} else {
			norm.Logger.Error("go-logtrail: relation resolver initialization failed", err)
		}
	}

	s := &Service{
		cfg:  norm,
		repo: repo,
		sink: sink,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	s.hook = s.buildHook()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.MustNew()
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Hook returns the logrus hook that persists entries through the log command.
// It is nil when no sink could be wired.
func (s *Service) Hook() *handler.Hook {
	if s == nil {
		return nil
	}
	return s.hook
}

// Registry returns the tracked-type registry shared by the hook and queries.
func (s *Service) Registry() *registry.Registry {
	if s == nil {
		return nil
	}
	return s.cfg.Registry
}

// Sink returns the configured sink so transports can write records without
// going through logrus.
func (s *Service) Sink() types.RecordSink {
	if s == nil {
		return nil
	}
	return s.sink
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.sink != nil &&
		s.repo != nil &&
		s.hook != nil
}

// HealthCheck surfaces missing configuration and pings the database when one
// was supplied.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.sink == nil {
		return types.ErrMissingSink
	}
	if s.repo == nil {
		return types.ErrMissingRepository
	}
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.DB != nil {
		if err := s.cfg.DB.PingContext(ctx); err != nil {
			return repository.MapDatabaseError(err, repository.DetectDriver(s.cfg.DB))
		}
	}
	return nil
}

func (s *Service) buildCommands() Commands {
	return Commands{
		Log: command.NewLogCommand(command.LogConfig{
			Sink:   s.sink,
			Hooks:  s.cfg.Hooks,
			Clock:  s.cfg.Clock,
			Logger: s.cfg.Logger,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		LogFeed:  query.NewLogFeedQuery(s.repo),
		LogStats: query.NewLogStatsQuery(s.repo),
		ObjectLog: query.NewObjectLogQuery(query.ObjectLogConfig{
			Repository: s.repo,
			Registry:   s.cfg.Registry,
			Resolver:   s.cfg.Resolver,
			Logger:     s.cfg.Logger,
		}),
	}
}

func (s *Service) buildHook() *handler.Hook {
	if s.sink == nil {
		return nil
	}
	hook, err := handler.NewHook(handler.Config{
		Sink:                 s.commands.Log,
		Registry:             s.cfg.Registry,
		Levels:               s.cfg.Levels,
		CaptureRequestParams: s.cfg.CaptureRequestParams,
		FeatureGate:          s.cfg.FeatureGate,
		Masker:               s.cfg.Masker,
		ActorResolver:        s.cfg.ActorResolver,
		EmitExtra:            s.cfg.EmitExtra,
		Logger:               s.cfg.Logger,
	})
	if err != nil {
		s.cfg.Logger.Error("go-logtrail: logging hook initialization failed", err)
		return nil
	}
	return hook
}
