// Package intent maps free-text messages onto the fixed set of Zabbix query
// operations. Classification is keyword heuristics on purpose; a smarter
// classifier can replace Resolver without touching any other component.
package intent

import (
	"fmt"
	"time"
)

// Op identifies one Schema Query Library operation.
type Op string

const (
	OpHosts            Op = "hosts"
	OpHostInfo         Op = "host_info"
	OpHostAvailability Op = "host_availability"
	OpActiveProblems   Op = "active_problems"
	OpProblemsBySev    Op = "problems_by_severity"
	OpTopProblemHosts  Op = "top_problematic_hosts"
	OpCriticalSummary  Op = "critical_summary"
	OpTriggers         Op = "triggers"
	OpItems            Op = "items"
	OpAlerts           Op = "alerts"
	OpLatestData       Op = "latest_data"
	OpRecentEvents     Op = "recent_events"
	OpSystemStats      Op = "system_stats"
	OpNetworkDevices   Op = "network_devices"
	OpMaintenance      Op = "maintenance"
)

// Params are the only values a message may feed into a query. They are typed;
// raw message text never reaches SQL.
type Params struct {
	HostName string
	Limit    int
	Window   time.Duration
	Severity int
}

// Key returns a cache-key-safe signature of the parameters.
func (p Params) Key() string {
	return fmt.Sprintf("h=%s|l=%d|w=%s|s=%d", p.HostName, p.Limit, p.Window, p.Severity)
}

// Step is one planned operation.
type Step struct {
	Op     Op
	Params Params
}

// Key returns the cache key for this step.
func (s Step) Key() string {
	return string(s.Op) + "|" + s.Params.Key()
}

// Plan is the ordered, deduplicated set of operations derived from one
// message. An empty plan with OutOfDomain set means the message is unrelated
// to monitoring and should be declined without querying anything.
type Plan struct {
	Steps       []Step
	Intents     []string
	HostName    string
	OutOfDomain bool
}

// add appends a step unless an identical one is already planned.
func (p *Plan) add(step Step) {
	for _, existing := range p.Steps {
		if existing.Key() == step.Key() {
			return
		}
	}
	p.Steps = append(p.Steps, step)
}
