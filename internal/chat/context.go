package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/dcs-solutions/zabbix-chat/internal/zabbix"
)

// systemInstructions scope the model to the monitoring domain and fix the
// answer style. The grounding data travels in the user turn, not here.
const systemInstructions = `Sos el asistente de monitoreo de infraestructura de DCS Solutions, ` +
	`conectado en tiempo real a la base de datos de Zabbix.

REGLAS:
- Respondé SOLO con los datos de monitoreo provistos en el contexto. No inventes hosts, problemas ni métricas.
- Si el contexto indica que no hay datos disponibles, decilo claramente y sugerí reintentar más tarde.
- Respondé en el idioma de la pregunta (español o inglés).
- Sé concreto: nombres de hosts, cantidades, severidades y horarios exactos cuando estén en el contexto.
- Severidades Zabbix: 0=No clasificado, 1=Información, 2=Advertencia, 3=Media, 4=Alta, 5=Desastre.
- Si la pregunta no es sobre monitoreo de infraestructura, indicá amablemente que solo podés ayudar con Zabbix.`

// maxItemsPerSection caps how many rows of each result reach the prompt.
// Enough to answer, small enough to keep the prompt bounded.
const maxItemsPerSection = 5

// section is one block of grounding context: a label, up to
// maxItemsPerSection formatted lines, and the true row count.
type section struct {
	label string
	lines []string
	total int

	// host carries the resolved host through the cache so later steps in the
	// same plan can scope to it.
	host *zabbix.Host
}

// buildContext renders the collected sections into the plain-text grounding
// block sent with the user turn.
func buildContext(facts factSet) string {
	var b strings.Builder
	b.WriteString("DATOS DE MONITOREO EN TIEMPO REAL:\n")
	for _, sec := range facts.sections {
		fmt.Fprintf(&b, "\n%s (%d en total):\n", sec.label, sec.total)
		for _, line := range sec.lines {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
		if sec.total > len(sec.lines) {
			fmt.Fprintf(&b, "- ... y %d más\n", sec.total-len(sec.lines))
		}
	}
	return b.String()
}

func capLines(lines []string) []string {
	if len(lines) > maxItemsPerSection {
		return lines[:maxItemsPerSection]
	}
	return lines
}

func severityName(sev int) string {
	switch sev {
	case zabbix.SeverityInformation:
		return "Información"
	case zabbix.SeverityWarning:
		return "Advertencia"
	case zabbix.SeverityAverage:
		return "Media"
	case zabbix.SeverityHigh:
		return "Alta"
	case zabbix.SeverityDisaster:
		return "Desastre"
	default:
		return "No clasificado"
	}
}

func clockString(clock int64) string {
	if clock == 0 {
		return "desconocido"
	}
	return time.Unix(clock, 0).Format("2006-01-02 15:04")
}

func hostsSection(rows []zabbix.Host) section {
	lines := make([]string, 0, len(rows))
	for _, h := range rows {
		line := fmt.Sprintf("%s (%s)", h.Name, h.Host)
		if h.GroupName.Valid && h.GroupName.String != "" {
			line += ", grupo " + h.GroupName.String
		}
		lines = append(lines, line)
	}
	return section{label: "Hosts monitoreados", lines: capLines(lines), total: len(rows)}
}

func hostInfoSection(requested string, h *zabbix.Host) section {
	if h == nil {
		return section{
			label: "Host solicitado",
			lines: []string{fmt.Sprintf("no se encontró ningún host llamado %q", requested)},
			total: 1,
		}
	}
	state := "monitoreado"
	if h.Status != 0 {
		state = "deshabilitado"
	}
	line := fmt.Sprintf("%s (%s): %s", h.Name, h.Host, state)
	if h.Error != "" {
		line += ", error: " + h.Error
	}
	return section{label: "Host solicitado", lines: []string{line}, total: 1, host: h}
}

func hostSearchSection(requested string, rows []zabbix.HostAvailability) section {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, fmt.Sprintf("no hay un host llamado exactamente %q; nombres similares:", requested))
	for _, h := range rows {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", h.Name, h.Host, h.AvailabilityStatus))
	}
	return section{label: "Host solicitado", lines: capLines(lines), total: len(rows)}
}

func availabilitySection(rows []zabbix.HostAvailability) section {
	lines := make([]string, 0, len(rows))
	down := 0
	for _, h := range rows {
		if h.Available == zabbix.AvailabilityUnavailable {
			down++
		}
	}
	// Surface the unavailable hosts first; those are what the question is
	// usually about.
	for _, h := range rows {
		if h.Available != zabbix.AvailabilityUnavailable {
			continue
		}
		line := fmt.Sprintf("%s: %s", h.Name, h.AvailabilityStatus)
		if h.Error != "" {
			line += " (" + h.Error + ")"
		}
		lines = append(lines, line)
	}
	for _, h := range rows {
		if h.Available == zabbix.AvailabilityUnavailable {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s, %s", h.Name, h.AvailabilityStatus, h.MonitoringStatus))
	}
	sec := section{
		label: fmt.Sprintf("Disponibilidad de hosts (%d caídos)", down),
		lines: capLines(lines),
		total: len(rows),
	}
	return sec
}

func problemsSection(label string, rows []zabbix.Problem) section {
	lines := make([]string, 0, len(rows))
	for _, p := range rows {
		ack := ""
		if p.Acknowledged == 1 {
			ack = ", reconocido"
		}
		lines = append(lines, fmt.Sprintf("%s: %s (severidad %s, desde %s%s)",
			p.HostName, p.TriggerDescription, severityName(p.Severity), clockString(p.Clock), ack))
	}
	return section{label: label, lines: capLines(lines), total: len(rows)}
}

func topHostsSection(rows []zabbix.ProblemHost) section {
	lines := make([]string, 0, len(rows))
	for _, h := range rows {
		lines = append(lines, fmt.Sprintf("%s: %d problemas, severidad máxima %s",
			h.HostName, h.ProblemCount, severityName(h.MaxSeverity)))
	}
	return section{label: "Hosts con más problemas", lines: capLines(lines), total: len(rows)}
}

func criticalSummarySection(s *zabbix.CriticalSummary) section {
	lines := []string{
		fmt.Sprintf("problemas críticos (desastre): %d", s.CriticalProblems),
		fmt.Sprintf("problemas de severidad alta: %d", s.HighProblems),
		fmt.Sprintf("hosts no disponibles: %d", s.UnavailableHosts),
		fmt.Sprintf("hosts deshabilitados: %d", s.DisabledHosts),
		fmt.Sprintf("alertas en las últimas 24h: %d", s.RecentAlerts),
		fmt.Sprintf("mantenimientos activos: %d", s.MaintenanceActive),
	}
	return section{label: "Resumen crítico", lines: lines, total: len(lines)}
}

func triggersSection(rows []zabbix.Trigger) section {
	lines := make([]string, 0, len(rows))
	for _, t := range rows {
		lines = append(lines, fmt.Sprintf("%s: %s (prioridad %s)",
			t.HostName, t.Description, severityName(t.Priority)))
	}
	return section{label: "Triggers configurados", lines: capLines(lines), total: len(rows)}
}

func itemsSection(rows []zabbix.Item) section {
	lines := make([]string, 0, len(rows))
	for _, it := range rows {
		line := fmt.Sprintf("%s: %s (%s)", it.HostName, it.Name, it.Key)
		if it.Units != "" {
			line += ", unidad " + it.Units
		}
		lines = append(lines, line)
	}
	return section{label: "Items monitoreados", lines: capLines(lines), total: len(rows)}
}

func alertsSection(rows []zabbix.Alert) section {
	lines := make([]string, 0, len(rows))
	for _, a := range rows {
		host := "sin host"
		if a.HostName.Valid {
			host = a.HostName.String
		}
		lines = append(lines, fmt.Sprintf("%s: %s (enviada %s a %s)",
			host, a.Subject, clockString(a.Clock), a.SendTo))
	}
	return section{label: "Alertas enviadas", lines: capLines(lines), total: len(rows)}
}

func latestDataSection(rows []zabbix.LatestValue) section {
	lines := make([]string, 0, len(rows))
	for _, v := range rows {
		val := "sin valor"
		if v.Value.Valid {
			val = fmt.Sprintf("%.2f %s", v.Value.Float64, v.Units)
		}
		when := "desconocido"
		if v.Clock.Valid {
			when = clockString(v.Clock.Int64)
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", v.Name, strings.TrimSpace(val), when))
	}
	return section{label: "Últimos valores", lines: capLines(lines), total: len(rows)}
}

func eventsSection(rows []zabbix.Event) section {
	lines := make([]string, 0, len(rows))
	for _, e := range rows {
		host := "sin host"
		if e.HostName.Valid {
			host = e.HostName.String
		}
		state := "resuelto"
		if e.Value == 1 {
			state = "problema"
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s, %s)",
			host, e.Name, state, clockString(e.Clock)))
	}
	return section{label: "Eventos recientes", lines: capLines(lines), total: len(rows)}
}

func statsSection(s *zabbix.SystemStats) section {
	lines := []string{
		fmt.Sprintf("hosts monitoreados: %d", s.TotalHosts),
		fmt.Sprintf("problemas activos: %d", s.ActiveProblems),
		fmt.Sprintf("alertas en las últimas 24h: %d", s.RecentAlerts),
		fmt.Sprintf("items habilitados: %d", s.TotalItems),
		fmt.Sprintf("triggers habilitados: %d", s.TotalTriggers),
	}
	return section{label: "Estadísticas del sistema", lines: lines, total: len(lines)}
}

func devicesSection(rows []zabbix.NetworkDevice) section {
	lines := make([]string, 0, len(rows))
	for _, d := range rows {
		addr := ""
		if d.IP.Valid && d.IP.String != "" {
			addr = " (" + d.IP.String
			if d.Port.Valid && d.Port.String != "" {
				addr += ":" + d.Port.String
			}
			addr += ")"
		}
		state := "disponible"
		if d.Available == zabbix.AvailabilityUnavailable {
			state = "no disponible"
		} else if d.Available == zabbix.AvailabilityUnknown {
			state = "estado desconocido"
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", d.Name, addr, state))
	}
	return section{label: "Equipos de red", lines: capLines(lines), total: len(rows)}
}

func maintenanceSection(rows []zabbix.MaintenanceWindow) section {
	lines := make([]string, 0, len(rows))
	for _, m := range rows {
		lines = append(lines, fmt.Sprintf("%s (%s): %s, desde %s hasta %s",
			m.Name, m.HostName, m.Status, clockString(m.ActiveSince), clockString(m.ActiveTill)))
	}
	return section{label: "Ventanas de mantenimiento", lines: capLines(lines), total: len(rows)}
}
