package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dcs-solutions/zabbix-chat/internal/intent"
	"github.com/dcs-solutions/zabbix-chat/internal/metrics"
	"github.com/dcs-solutions/zabbix-chat/internal/zabbix"
)

// factSet is everything one plan execution collected: one section of
// grounding material per successful step, plus the execution metadata the
// reply envelope reports.
type factSet struct {
	sections   []section
	sources    []string
	sqlQueries int
}

// volatileOps use the short problems TTL; everything else uses the hosts
// TTL. Inventory changes on the order of minutes, problem state on the order
// of seconds.
var volatileOps = map[intent.Op]bool{
	intent.OpActiveProblems:  true,
	intent.OpProblemsBySev:   true,
	intent.OpTopProblemHosts: true,
	intent.OpCriticalSummary: true,
	intent.OpAlerts:          true,
	intent.OpLatestData:      true,
	intent.OpRecentEvents:    true,
	intent.OpSystemStats:     true,
}

func (o *Orchestrator) ttlFor(op intent.Op) time.Duration {
	if volatileOps[op] {
		return o.cfg.TTLProblems
	}
	return o.cfg.TTLHosts
}

// executePlan runs every step, serving from cache where possible. A failed
// step is logged and skipped; the remaining steps still run so the reply can
// be grounded on whatever survived.
func (o *Orchestrator) executePlan(ctx context.Context, plan intent.Plan, log *zap.Logger) factSet {
	facts := factSet{sources: []string{}}

	// The host lookup step, when present, is always first in the plan; its
	// result scopes the host-specific steps that follow.
	var host *zabbix.Host

	for _, step := range plan.Steps {
		key := step.Key()
		if cached, ok := o.cache.Get(key); ok {
			metrics.CacheHitsTotal.Inc()
			sec := cached.(section)
			facts.sections = append(facts.sections, sec)
			facts.sources = append(facts.sources, string(step.Op))
			if step.Op == intent.OpHostInfo {
				host = sec.host
			}
			continue
		}
		metrics.CacheMissesTotal.Inc()

		// Failed steps are not counted: sqlQueries reports queries that
		// actually produced grounding data, mirroring sources.
		sec, err := o.fetch(ctx, step, host)
		if err != nil {
			metrics.SQLQueriesTotal.WithLabelValues(string(step.Op), "error").Inc()
			log.Warn("step failed", zap.String("operation", string(step.Op)), zap.Error(err))
			continue
		}
		metrics.SQLQueriesTotal.WithLabelValues(string(step.Op), "ok").Inc()
		facts.sqlQueries++

		if step.Op == intent.OpHostInfo {
			host = sec.host
		}
		o.cache.Set(key, sec, o.ttlFor(step.Op))
		facts.sections = append(facts.sections, sec)
		facts.sources = append(facts.sources, string(step.Op))
	}
	return facts
}

// fetch dispatches one step to the store and formats the rows into a
// context section.
func (o *Orchestrator) fetch(ctx context.Context, step intent.Step, host *zabbix.Host) (section, error) {
	switch step.Op {
	case intent.OpHosts:
		rows, err := o.store.Hosts(ctx)
		if err != nil {
			return section{}, err
		}
		return hostsSection(rows), nil

	case intent.OpHostInfo:
		h, err := o.store.HostByName(ctx, step.Params.HostName)
		if err != nil {
			return section{}, err
		}
		if h == nil {
			// No exact match; offer close names so the answer can point the
			// user at the host they probably meant.
			if matches, serr := o.store.SearchHosts(ctx, step.Params.HostName); serr == nil && len(matches) > 0 {
				return hostSearchSection(step.Params.HostName, matches), nil
			}
		}
		return hostInfoSection(step.Params.HostName, h), nil

	case intent.OpHostAvailability:
		rows, err := o.store.HostAvailabilityList(ctx)
		if err != nil {
			return section{}, err
		}
		return availabilitySection(rows), nil

	case intent.OpActiveProblems:
		rows, err := o.store.ActiveProblems(ctx)
		if err != nil {
			return section{}, err
		}
		return problemsSection("Problemas activos", rows), nil

	case intent.OpProblemsBySev:
		rows, err := o.store.ProblemsBySeverity(ctx, step.Params.Severity)
		if err != nil {
			return section{}, err
		}
		return problemsSection("Problemas por severidad", rows), nil

	case intent.OpTopProblemHosts:
		rows, err := o.store.TopProblematicHosts(ctx, step.Params.Limit)
		if err != nil {
			return section{}, err
		}
		return topHostsSection(rows), nil

	case intent.OpCriticalSummary:
		s, err := o.store.CriticalSummary(ctx)
		if err != nil {
			return section{}, err
		}
		return criticalSummarySection(s), nil

	case intent.OpTriggers:
		rows, err := o.store.Triggers(ctx, hostID(host))
		if err != nil {
			return section{}, err
		}
		return triggersSection(rows), nil

	case intent.OpItems:
		rows, err := o.store.Items(ctx, hostID(host))
		if err != nil {
			return section{}, err
		}
		return itemsSection(rows), nil

	case intent.OpAlerts:
		rows, err := o.store.AlertsSince(ctx, time.Now().Add(-step.Params.Window))
		if err != nil {
			return section{}, err
		}
		return alertsSection(rows), nil

	case intent.OpLatestData:
		rows, err := o.store.LatestData(ctx, hostID(host), step.Params.Limit)
		if err != nil {
			return section{}, err
		}
		return latestDataSection(rows), nil

	case intent.OpRecentEvents:
		rows, err := o.store.RecentEvents(ctx, time.Now().Add(-step.Params.Window), step.Params.Limit)
		if err != nil {
			return section{}, err
		}
		return eventsSection(rows), nil

	case intent.OpSystemStats:
		s, err := o.store.SystemStats(ctx)
		if err != nil {
			return section{}, err
		}
		return statsSection(s), nil

	case intent.OpNetworkDevices:
		rows, err := o.store.NetworkDevices(ctx)
		if err != nil {
			return section{}, err
		}
		return devicesSection(rows), nil

	case intent.OpMaintenance:
		rows, err := o.store.MaintenanceWindows(ctx)
		if err != nil {
			return section{}, err
		}
		return maintenanceSection(rows), nil
	}
	return section{}, zabbix.ErrUnavailable
}

func hostID(h *zabbix.Host) int64 {
	if h == nil {
		return 0
	}
	return h.HostID
}
