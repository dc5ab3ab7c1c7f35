package intent

import (
	"testing"
	"time"
)

func planOps(p Plan) map[Op]bool {
	ops := make(map[Op]bool, len(p.Steps))
	for _, s := range p.Steps {
		ops[s.Op] = true
	}
	return ops
}

func TestResolveOutOfDomain(t *testing.T) {
	r := NewResolver()

	for _, msg := range []string{
		"¿qué hora es?",
		"cuéntame un chiste",
		"what is the capital of France",
		"hola",
	} {
		plan := r.Resolve(msg)
		if !plan.OutOfDomain {
			t.Errorf("Resolve(%q) should be out of domain, intents=%v", msg, plan.Intents)
		}
		if len(plan.Steps) != 0 {
			t.Errorf("Resolve(%q) should produce an empty plan, got %d steps", msg, len(plan.Steps))
		}
	}
}

func TestResolveProblems(t *testing.T) {
	r := NewResolver()

	plan := r.Resolve("¿Cuántos hosts están con problemas?")
	if plan.OutOfDomain {
		t.Fatal("problems question flagged out of domain")
	}

	ops := planOps(plan)
	if !ops[OpActiveProblems] {
		t.Error("expected active_problems in plan")
	}
	if !ops[OpCriticalSummary] {
		t.Error("expected critical_summary in plan")
	}
	// "hosts" also matches; union-of-plans policy.
	if !ops[OpHosts] {
		t.Error("expected hosts in plan")
	}
}

func TestResolveHostsDown(t *testing.T) {
	r := NewResolver()

	plan := r.Resolve("listame los servidores caídos")
	ops := planOps(plan)
	if !ops[OpHostAvailability] {
		t.Error("down-flavored hosts question should plan host_availability")
	}
	if ops[OpHosts] {
		t.Error("down-flavored hosts question should not plan the plain inventory")
	}
}

func TestResolveCriticalSeverity(t *testing.T) {
	r := NewResolver()

	plan := r.Resolve("mostrame los problemas críticos")
	var found bool
	for _, s := range plan.Steps {
		if s.Op == OpProblemsBySev {
			found = true
			if s.Params.Severity != 5 {
				t.Errorf("severity = %d, want 5", s.Params.Severity)
			}
		}
	}
	if !found {
		t.Error("expected problems_by_severity step for critical phrasing")
	}
}

func TestResolveHostName(t *testing.T) {
	r := NewResolver()

	plan := r.Resolve("¿qué triggers tiene el host DC-Asterisk?")
	if plan.HostName != "dc-asterisk" {
		t.Errorf("HostName = %q, want dc-asterisk", plan.HostName)
	}

	ops := planOps(plan)
	if !ops[OpHostInfo] {
		t.Error("expected host_info step when a host is named")
	}
	if !ops[OpTriggers] {
		t.Error("expected triggers step")
	}
}

func TestResolveItemsRequireHost(t *testing.T) {
	r := NewResolver()

	// Items without a named host cannot be scoped, so no items step.
	plan := r.Resolve("mostrame las métricas")
	if ops := planOps(plan); ops[OpItems] {
		t.Error("items step planned without a host")
	}

	plan = r.Resolve("mostrame las métricas del servidor: Grafana")
	if ops := planOps(plan); !ops[OpItems] {
		t.Error("expected items step for host-scoped metrics question")
	}
}

func TestResolveAlertsWindow(t *testing.T) {
	r := NewResolver()

	plan := r.Resolve("¿hubo notificaciones?")
	for _, s := range plan.Steps {
		if s.Op == OpAlerts && s.Params.Window != 24*time.Hour {
			t.Errorf("alerts window = %s, want 24h", s.Params.Window)
		}
	}
}

func TestResolveDeduplicates(t *testing.T) {
	r := NewResolver()

	// "estado" and "problemas" both contribute critical_summary; it must
	// appear once.
	plan := r.Resolve("resumen del estado y problemas de zabbix")
	var n int
	for _, s := range plan.Steps {
		if s.Op == OpCriticalSummary {
			n++
		}
	}
	if n != 1 {
		t.Errorf("critical_summary planned %d times, want 1", n)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver()

	msg := "estado de la red y problemas de los servidores"
	first := r.Resolve(msg)
	for i := 0; i < 10; i++ {
		again := r.Resolve(msg)
		if len(again.Steps) != len(first.Steps) {
			t.Fatalf("plan length changed between runs: %d vs %d", len(again.Steps), len(first.Steps))
		}
		for j := range again.Steps {
			if again.Steps[j].Key() != first.Steps[j].Key() {
				t.Fatalf("step %d differs between runs", j)
			}
		}
	}
}

func TestStepKeyIncludesParams(t *testing.T) {
	a := Step{Op: OpTriggers, Params: Params{HostName: "grafana"}}
	b := Step{Op: OpTriggers}
	if a.Key() == b.Key() {
		t.Error("steps with different params must have different keys")
	}
}
