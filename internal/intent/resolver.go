package intent

import (
	"regexp"
	"strings"
	"time"
)

// Keyword patterns per intent category, Spanish first since that is what the
// operators write, with the English equivalents they mix in.
var categoryPatterns = map[string][]string{
	"hosts": {
		`hosts?`, `servidores?`, `máquinas?`, `maquinas?`, `equipos?`,
		`sistemas?`, `dispositivos?`, `computers?`,
	},
	"problems": {
		`problemas?`, `problems?`, `alertas?`, `errores?`, `fallos?`,
		`incidentes?`, `issues?`, `críticos?`, `criticos?`, `urgentes?`,
	},
	"triggers": {
		`triggers?`, `disparadores?`, `activadores?`,
	},
	"items": {
		`items?`, `métricas?`, `metricas?`, `mediciones?`,
	},
	"alerts": {
		`notificaciones?`, `avisos?`, `alertas?`,
	},
	"status": {
		`estado`, `estatus`, `situación`, `situacion`, `resumen`,
		`overview`, `dashboard`, `disponibilidad`,
	},
	"history": {
		`histórico`, `historico`, `historial`, `tendencias?`, `evolución`,
		`evolucion`, `últimos datos`, `ultimos datos`,
	},
	"network": {
		`\bred\b`, `network`, `conectividad`, `switch`, `router`,
		`access point`, `\bap\b`, `mikrotik`, `cisco`,
	},
	"maintenance": {
		`mantenimientos?`, `maintenance`, `ventana de mantenimiento`,
	},
	"general": {
		`zabbix`, `monitore?o`, `monitoring`, `infraestructura`,
		`infrastructure`,
	},
}

// Availability-flavored phrasing narrows a hosts question to the
// availability operation ("hosts caídos" is about reachability, not
// inventory).
var downPatterns = []string{
	`caídos?`, `caidos?`, `\bdown\b`, `no disponibles?`, `apagados?`,
	`unavailable`, `desconectados?`, `inaccesibles?`,
}

var criticalPatterns = []string{
	`críticos?`, `criticos?`, `critical`, `disaster`, `desastre`,
}

// Host references must be explicit; a bare word is never treated as a host
// name.
var hostNamePatterns = []string{
	`host[:\s]+([a-zA-Z0-9\-\.]+)`,
	`servidor[:\s]+([a-zA-Z0-9\-\.]+)`,
	`máquina[:\s]+([a-zA-Z0-9\-\.]+)`,
	`maquina[:\s]+([a-zA-Z0-9\-\.]+)`,
	`equipo[:\s]+([a-zA-Z0-9\-\.]+)`,
}

// Resolver derives Query Plans from messages.
type Resolver struct {
	categories map[string][]*regexp.Regexp
	down       []*regexp.Regexp
	critical   []*regexp.Regexp
	hostNames  []*regexp.Regexp
}

// NewResolver compiles the pattern tables.
func NewResolver() *Resolver {
	r := &Resolver{categories: make(map[string][]*regexp.Regexp)}
	for category, patterns := range categoryPatterns {
		for _, p := range patterns {
			r.categories[category] = append(r.categories[category], regexp.MustCompile(p))
		}
	}
	for _, p := range downPatterns {
		r.down = append(r.down, regexp.MustCompile(p))
	}
	for _, p := range criticalPatterns {
		r.critical = append(r.critical, regexp.MustCompile(p))
	}
	for _, p := range hostNamePatterns {
		r.hostNames = append(r.hostNames, regexp.MustCompile(p))
	}
	return r
}

// Resolve classifies the message and builds its Query Plan. Messages matching
// several categories get the union of their plans; messages matching none are
// flagged out-of-domain with an empty plan.
func (r *Resolver) Resolve(message string) Plan {
	lower := strings.ToLower(message)

	var plan Plan
	for _, category := range []string{
		// Fixed order so identical messages produce identical plans.
		"hosts", "problems", "triggers", "items", "alerts",
		"status", "history", "network", "maintenance", "general",
	} {
		if r.matchesAny(lower, r.categories[category]) {
			plan.Intents = append(plan.Intents, category)
		}
	}

	if len(plan.Intents) == 0 {
		plan.OutOfDomain = true
		return plan
	}

	plan.HostName = r.extractHostName(lower)
	hostScoped := plan.HostName != ""
	if hostScoped {
		plan.add(Step{Op: OpHostInfo, Params: Params{HostName: plan.HostName}})
	}

	down := r.matchesAny(lower, r.down)
	critical := r.matchesAny(lower, r.critical)

	for _, category := range plan.Intents {
		switch category {
		case "hosts":
			if down {
				plan.add(Step{Op: OpHostAvailability})
			} else {
				plan.add(Step{Op: OpHosts})
			}
		case "problems":
			plan.add(Step{Op: OpActiveProblems})
			plan.add(Step{Op: OpCriticalSummary})
			plan.add(Step{Op: OpTopProblemHosts, Params: Params{Limit: 10}})
			if critical {
				plan.add(Step{Op: OpProblemsBySev, Params: Params{Severity: 5}})
			}
		case "triggers":
			plan.add(Step{Op: OpTriggers, Params: Params{HostName: plan.HostName}})
		case "items":
			if hostScoped {
				plan.add(Step{Op: OpItems, Params: Params{HostName: plan.HostName}})
			}
		case "alerts":
			plan.add(Step{Op: OpAlerts, Params: Params{Window: 24 * time.Hour}})
		case "status":
			plan.add(Step{Op: OpSystemStats})
			plan.add(Step{Op: OpHostAvailability})
			plan.add(Step{Op: OpCriticalSummary})
		case "history":
			if hostScoped {
				plan.add(Step{Op: OpLatestData, Params: Params{HostName: plan.HostName, Limit: 10}})
			}
			plan.add(Step{Op: OpRecentEvents, Params: Params{Window: 24 * time.Hour, Limit: 100}})
		case "network":
			plan.add(Step{Op: OpNetworkDevices})
		case "maintenance":
			plan.add(Step{Op: OpMaintenance})
		case "general":
			plan.add(Step{Op: OpHosts})
			plan.add(Step{Op: OpActiveProblems})
			plan.add(Step{Op: OpSystemStats})
		}
	}

	return plan
}

func (r *Resolver) matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func (r *Resolver) extractHostName(text string) string {
	for _, p := range r.hostNames {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
