package di

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/auth"
	"github.com/goliatone/go-storefront/bff"
	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/internal/config"
	"github.com/goliatone/go-storefront/internal/metrics"
	"github.com/goliatone/go-storefront/internal/mocktransport"
	"github.com/goliatone/go-storefront/query"
	"github.com/goliatone/go-storefront/querykey"
	"github.com/goliatone/go-storefront/session"
	"github.com/goliatone/go-storefront/storefront"
	"github.com/goliatone/go-storefront/uistore"
)

// UserAgent identifies upstream calls made by the storefront.
const UserAgent = "go-storefront"

// Container wires the storefront components into one process: a single
// shared cache and query client, the upstream client, and the HTTP surface
// built on them.
type Container struct {
	config       config.Config
	log          logrus.FieldLogger
	cacheService cache.CacheService
	queries      *query.Client
	metrics      *metrics.Collector
	upstream     *api.Client
	storefront   *storefront.Service
	sessions     *session.Store
	auth         *auth.Hook
	uiStorage    uistore.Storage
	server       *bff.Server
	mocked       bool
}

// NewContainer builds every component for cfg. The in-memory upstream replaces
// the real one when cfg enables mocking and the build carries it.
func NewContainer(cfg config.Config, log logrus.FieldLogger) (*Container, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	cacheService, err := cacheinfra.NewSturdycService(cfg.Cache())
	if err != nil {
		return nil, err
	}

	collector := metrics.New()
	queries := query.NewClient(cacheService, query.WithLogger(log.WithField("component", "query")))
	if err := collector.Subscribe(queries.Bus()); err != nil {
		return nil, err
	}

	apiCfg := api.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: UserAgent,
	}
	mocked := cfg.MockingEnabled() && mocktransport.Available
	if mocked {
		apiCfg.Transport = mocktransport.Transport()
		log.Warn("upstream API is mocked in process")
	}
	upstream := api.NewClient(apiCfg, log.WithField("component", "api"))

	svc := storefront.New(upstream, queries,
		storefront.WithKeys(querykey.Default),
		storefront.WithImages(api.ImageResolver{BaseURL: cfg.ImageBaseURL}),
		storefront.WithLogger(log.WithField("component", "storefront")),
	)

	sessions, err := session.NewStore(session.Config{
		Secret:     cfg.AuthSecret,
		CookieName: cfg.SessionCookie,
	})
	if err != nil {
		return nil, err
	}

	storageCfg := uistore.Config{Dir: cfg.UIStateDir}
	if cfg.RedisAddr != "" {
		storageCfg.Redis = &uistore.RedisConfig{Addr: cfg.RedisAddr}
	}
	uiStorage, err := uistore.NewStorage(storageCfg)
	if err != nil {
		return nil, err
	}

	hook := auth.NewHook(svc, cfg.RoleNamespace)
	server := bff.New(bff.Deps{
		Sessions:   sessions,
		Backend:    upstream,
		Storefront: svc,
		Auth:       hook,
		UIStorage:  uiStorage,
		Metrics:    collector,
		Log:        log.WithField("component", "bff"),
	})

	return &Container{
		config:       cfg,
		log:          log,
		cacheService: cacheService,
		queries:      queries,
		metrics:      collector,
		upstream:     upstream,
		storefront:   svc,
		sessions:     sessions,
		auth:         hook,
		uiStorage:    uiStorage,
		server:       server,
		mocked:       mocked,
	}, nil
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config { return c.config }

// CacheService returns the shared cache.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

// Queries returns the shared query client.
func (c *Container) Queries() *query.Client { return c.queries }

// Metrics returns the Prometheus collector.
func (c *Container) Metrics() *metrics.Collector { return c.metrics }

// Upstream returns the upstream API client.
func (c *Container) Upstream() *api.Client { return c.upstream }

// Storefront returns the data hook service.
func (c *Container) Storefront() *storefront.Service { return c.storefront }

// Sessions returns the session cookie store.
func (c *Container) Sessions() *session.Store { return c.sessions }

// Auth returns the authorization hook.
func (c *Container) Auth() *auth.Hook { return c.auth }

// UIStorage returns the UI store backend.
func (c *Container) UIStorage() uistore.Storage { return c.uiStorage }

// Server returns the HTTP surface.
func (c *Container) Server() *bff.Server { return c.server }

// Mocked reports whether the upstream is served in process.
func (c *Container) Mocked() bool { return c.mocked }

// Close releases resources held by the container.
func (c *Container) Close() error {
	if closer, ok := c.uiStorage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
