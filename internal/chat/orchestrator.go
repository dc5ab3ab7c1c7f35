// Package chat coordinates the answer pipeline: resolve intent, fetch
// grounding data through the cache, compose the prompt, call the model.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dcs-solutions/zabbix-chat/internal/cache"
	"github.com/dcs-solutions/zabbix-chat/internal/intent"
	"github.com/dcs-solutions/zabbix-chat/internal/metrics"
	"github.com/dcs-solutions/zabbix-chat/internal/zabbix"
)

// ErrEmptyMessage signals a caller contract violation: the message must be
// non-empty. Every other failure is absorbed into the reply text.
var ErrEmptyMessage = errors.New("message must not be empty")

// Fixed conversational texts. Failures read as natural-language degradation,
// never as stack traces.
const (
	declineText = "Lo siento, solo puedo ayudarte con consultas sobre Zabbix y el " +
		"monitoreo de la infraestructura. ¿Querés saber el estado de algún host o los problemas activos?"

	generationUnavailableText = "Lo siento, el servicio de IA no está disponible en este " +
		"momento. Por favor, intentá más tarde."

	degradedText = "Lo siento, no tengo acceso a la información de monitoreo ni al servicio " +
		"de IA en este momento. Por favor, intentá más tarde."

	noDataNote = "No hay datos de monitoreo disponibles en este momento " +
		"(no tengo acceso a esa información en este momento)."
)

// Store is the read-only view of the Zabbix database the orchestrator needs.
// *zabbix.Repository satisfies it; tests substitute fakes.
type Store interface {
	Hosts(ctx context.Context) ([]zabbix.Host, error)
	HostByName(ctx context.Context, name string) (*zabbix.Host, error)
	SearchHosts(ctx context.Context, pattern string) ([]zabbix.HostAvailability, error)
	HostAvailabilityList(ctx context.Context) ([]zabbix.HostAvailability, error)
	ActiveProblems(ctx context.Context) ([]zabbix.Problem, error)
	ProblemsBySeverity(ctx context.Context, severity int) ([]zabbix.Problem, error)
	TopProblematicHosts(ctx context.Context, limit int) ([]zabbix.ProblemHost, error)
	CriticalSummary(ctx context.Context) (*zabbix.CriticalSummary, error)
	Triggers(ctx context.Context, hostID int64) ([]zabbix.Trigger, error)
	Items(ctx context.Context, hostID int64) ([]zabbix.Item, error)
	AlertsSince(ctx context.Context, since time.Time) ([]zabbix.Alert, error)
	LatestData(ctx context.Context, hostID int64, limit int) ([]zabbix.LatestValue, error)
	RecentEvents(ctx context.Context, since time.Time, limit int) ([]zabbix.Event, error)
	SystemStats(ctx context.Context) (*zabbix.SystemStats, error)
	MaintenanceWindows(ctx context.Context) ([]zabbix.MaintenanceWindow, error)
	NetworkDevices(ctx context.Context) ([]zabbix.NetworkDevice, error)
	Ping(ctx context.Context) error
}

// Completer is the text-completion service behind the reply.
type Completer interface {
	Complete(ctx context.Context, system, contextData, userMessage string) (string, error)
	Ping(ctx context.Context) error
	Model() string
}

// Config holds orchestrator tunables.
type Config struct {
	TTLHosts    time.Duration
	TTLProblems time.Duration
}

// Reply is the structured answer for one message.
type Reply struct {
	Response           string   `json:"response"`
	DataSources        []string `json:"data_sources"`
	SQLQueriesExecuted int      `json:"sql_queries_executed"`
	QueryTime          float64  `json:"query_time"`
	Intents            []string `json:"intents_detected,omitempty"`
	SessionID          string   `json:"session_id"`
}

// Health is the combined liveness report.
type Health struct {
	Status         string `json:"status"`
	DBReachable    bool   `json:"db_reachable"`
	ModelReachable bool   `json:"model_reachable"`
	CacheSize      int    `json:"cache_size"`
	Sessions       int    `json:"sessions"`
}

// Orchestrator is the core coordinator. All collaborators are injected; it
// holds no hidden globals.
type Orchestrator struct {
	store    Store
	llm      Completer
	cache    *cache.Cache
	resolver *intent.Resolver
	sessions *sessionRegistry
	cfg      Config
	logger   *zap.Logger
}

// New creates an orchestrator.
func New(store Store, completer Completer, c *cache.Cache, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTLHosts <= 0 {
		cfg.TTLHosts = 5 * time.Minute
	}
	if cfg.TTLProblems <= 0 {
		cfg.TTLProblems = time.Minute
	}
	return &Orchestrator{
		store:    store,
		llm:      completer,
		cache:    c,
		resolver: intent.NewResolver(),
		sessions: newSessionRegistry(),
		cfg:      cfg,
		logger:   logger,
	}
}

// HandleMessage processes one user message. It never returns an error for
// domain-level failures (no data, no generation); those degrade inside the
// reply. Only an empty message is rejected.
func (o *Orchestrator) HandleMessage(ctx context.Context, message, sessionID string) (*Reply, error) {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrEmptyMessage
	}

	sessionID = o.sessions.touch(sessionID)
	log := o.logger.With(zap.String("session_id", sessionID))
	log.Info("processing message", zap.Int("length", len(message)))

	plan := o.resolver.Resolve(message)
	if plan.OutOfDomain {
		// No grounding to offer; decline without burning a model call.
		log.Info("message out of domain, declining")
		metrics.ChatRequestsTotal.WithLabelValues("declined").Inc()
		metrics.ChatRequestDuration.Observe(time.Since(start).Seconds())
		return &Reply{
			Response:    declineText,
			DataSources: []string{},
			QueryTime:   time.Since(start).Seconds(),
			SessionID:   sessionID,
		}, nil
	}

	facts := o.executePlan(ctx, plan, log)

	contextData := buildContext(facts)
	if len(facts.sections) == 0 {
		contextData = noDataNote
	}

	llmStart := time.Now()
	response, err := o.llm.Complete(ctx, systemInstructions, contextData, message)
	metrics.LLMRequestDuration.Observe(time.Since(llmStart).Seconds())

	outcome := "answered"
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(o.llm.Model(), "error").Inc()
		log.Warn("completion failed", zap.Error(err))
		if len(facts.sections) == 0 {
			// Neither data nor generation: fully degraded.
			response = degradedText
			outcome = "degraded"
		} else {
			response = generationUnavailableText
			outcome = "degraded"
		}
	} else {
		metrics.LLMRequestsTotal.WithLabelValues(o.llm.Model(), "ok").Inc()
	}

	elapsed := time.Since(start)
	metrics.ChatRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.ChatRequestDuration.Observe(elapsed.Seconds())
	log.Info("message processed",
		zap.Strings("data_sources", facts.sources),
		zap.Int("sql_queries", facts.sqlQueries),
		zap.Duration("elapsed", elapsed),
	)

	return &Reply{
		Response:           response,
		DataSources:        facts.sources,
		SQLQueriesExecuted: facts.sqlQueries,
		QueryTime:          elapsed.Seconds(),
		Intents:            plan.Intents,
		SessionID:          sessionID,
	}, nil
}

// ClearCache removes all cached query results and returns how many entries
// were dropped.
func (o *Orchestrator) ClearCache() int {
	n := o.cache.Clear()
	o.logger.Info("cache cleared", zap.Int("entries_removed", n))
	return n
}

// Status is the data-source snapshot for the status endpoint.
type Status struct {
	Connected bool                    `json:"connected"`
	CacheSize int                     `json:"cache_size"`
	Stats     *zabbix.SystemStats     `json:"stats,omitempty"`
	Critical  *zabbix.CriticalSummary `json:"critical,omitempty"`
}

// Status reports database reachability with current system totals.
func (o *Orchestrator) Status(ctx context.Context) Status {
	st := Status{CacheSize: o.cache.Len()}
	stats, err := o.store.SystemStats(ctx)
	if err != nil {
		return st
	}
	st.Connected = true
	st.Stats = stats
	if crit, err := o.store.CriticalSummary(ctx); err == nil {
		st.Critical = crit
	}
	return st
}

// Health combines a cheap database ping with a cheap model ping.
func (o *Orchestrator) Health(ctx context.Context) Health {
	h := Health{
		DBReachable:    o.store.Ping(ctx) == nil,
		ModelReachable: o.llm.Ping(ctx) == nil,
		CacheSize:      o.cache.Len(),
		Sessions:       o.sessions.len(),
	}
	if h.DBReachable && h.ModelReachable {
		h.Status = "ok"
	} else {
		h.Status = "degraded"
	}
	return h
}
