package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dcs-solutions/zabbix-chat/internal/cache"
	"github.com/dcs-solutions/zabbix-chat/internal/llm"
	"github.com/dcs-solutions/zabbix-chat/internal/zabbix"
)

// fakeStore counts every database hit and optionally fails selected
// operations with the data-source sentinel.
type fakeStore struct {
	mu       sync.Mutex
	calls    map[string]int
	fail     map[string]bool
	problems []zabbix.Problem
	hosts    []zabbix.Host
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
		hosts: []zabbix.Host{
			{HostID: 1, Host: "dc-asterisk", Name: "DC-Asterisk"},
			{HostID: 2, Host: "dc-mysql", Name: "DC-MySQL"},
		},
		problems: []zabbix.Problem{
			{EventID: 1, HostName: "DC-Asterisk", TriggerDescription: "High CPU", Severity: 4, Clock: 1700000000},
			{EventID: 2, HostName: "DC-MySQL", TriggerDescription: "Disk full", Severity: 5, Clock: 1700000100},
			{EventID: 3, HostName: "DC-Firewall", TriggerDescription: "ICMP loss", Severity: 3, Clock: 1700000200},
		},
	}
}

func (f *fakeStore) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.fail[op] {
		return zabbix.ErrUnavailable
	}
	return nil
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) Hosts(ctx context.Context) ([]zabbix.Host, error) {
	if err := f.record("hosts"); err != nil {
		return nil, err
	}
	return f.hosts, nil
}

func (f *fakeStore) HostByName(ctx context.Context, name string) (*zabbix.Host, error) {
	if err := f.record("host_info"); err != nil {
		return nil, err
	}
	for i := range f.hosts {
		if strings.EqualFold(f.hosts[i].Host, name) {
			return &f.hosts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SearchHosts(ctx context.Context, pattern string) ([]zabbix.HostAvailability, error) {
	if err := f.record("search_hosts"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) HostAvailabilityList(ctx context.Context) ([]zabbix.HostAvailability, error) {
	if err := f.record("host_availability"); err != nil {
		return nil, err
	}
	return []zabbix.HostAvailability{
		{HostID: 1, Name: "DC-Asterisk", Available: zabbix.AvailabilityAvailable, AvailabilityStatus: "Disponible", MonitoringStatus: "Monitoreado"},
	}, nil
}

func (f *fakeStore) ActiveProblems(ctx context.Context) ([]zabbix.Problem, error) {
	if err := f.record("active_problems"); err != nil {
		return nil, err
	}
	return f.problems, nil
}

func (f *fakeStore) ProblemsBySeverity(ctx context.Context, severity int) ([]zabbix.Problem, error) {
	if err := f.record("problems_by_severity"); err != nil {
		return nil, err
	}
	var out []zabbix.Problem
	for _, p := range f.problems {
		if p.Severity == severity {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) TopProblematicHosts(ctx context.Context, limit int) ([]zabbix.ProblemHost, error) {
	if err := f.record("top_problematic_hosts"); err != nil {
		return nil, err
	}
	return []zabbix.ProblemHost{{HostID: 1, HostName: "DC-Asterisk", ProblemCount: 2, MaxSeverity: 4}}, nil
}

func (f *fakeStore) CriticalSummary(ctx context.Context) (*zabbix.CriticalSummary, error) {
	if err := f.record("critical_summary"); err != nil {
		return nil, err
	}
	return &zabbix.CriticalSummary{CriticalProblems: 1, HighProblems: 1}, nil
}

func (f *fakeStore) Triggers(ctx context.Context, hostID int64) ([]zabbix.Trigger, error) {
	if err := f.record("triggers"); err != nil {
		return nil, err
	}
	return []zabbix.Trigger{{TriggerID: 1, HostName: "DC-Asterisk", Description: "High CPU", Priority: 4}}, nil
}

func (f *fakeStore) Items(ctx context.Context, hostID int64) ([]zabbix.Item, error) {
	if err := f.record("items"); err != nil {
		return nil, err
	}
	return []zabbix.Item{{ItemID: 1, HostName: "DC-Asterisk", Name: "CPU load", Key: "system.cpu.load"}}, nil
}

func (f *fakeStore) AlertsSince(ctx context.Context, since time.Time) ([]zabbix.Alert, error) {
	if err := f.record("alerts"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) LatestData(ctx context.Context, hostID int64, limit int) ([]zabbix.LatestValue, error) {
	if err := f.record("latest_data"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) RecentEvents(ctx context.Context, since time.Time, limit int) ([]zabbix.Event, error) {
	if err := f.record("recent_events"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) SystemStats(ctx context.Context) (*zabbix.SystemStats, error) {
	if err := f.record("system_stats"); err != nil {
		return nil, err
	}
	return &zabbix.SystemStats{TotalHosts: 2, ActiveProblems: 3}, nil
}

func (f *fakeStore) MaintenanceWindows(ctx context.Context) ([]zabbix.MaintenanceWindow, error) {
	if err := f.record("maintenance"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) NetworkDevices(ctx context.Context) ([]zabbix.NetworkDevice, error) {
	if err := f.record("network_devices"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.fail["ping"] {
		return zabbix.ErrUnavailable
	}
	return nil
}

// fakeCompleter echoes the grounding context back so tests can assert what
// reached the model.
type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	err   error
	last  string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, contextData, userMessage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = contextData
	if f.err != nil {
		return "", f.err
	}
	return contextData, nil
}

func (f *fakeCompleter) Ping(ctx context.Context) error { return f.err }
func (f *fakeCompleter) Model() string                  { return "fake-model" }

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestOrchestrator(store *fakeStore, completer *fakeCompleter) *Orchestrator {
	return New(store, completer, cache.New(), Config{
		TTLHosts:    5 * time.Minute,
		TTLProblems: time.Minute,
	}, zap.NewNop())
}

func TestHandleMessageEmpty(t *testing.T) {
	o := newTestOrchestrator(newFakeStore(), &fakeCompleter{})
	if _, err := o.HandleMessage(context.Background(), "   ", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestHandleMessageOutOfDomain(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{}
	o := newTestOrchestrator(store, completer)

	reply, err := o.HandleMessage(context.Background(), "¿qué hora es en Tokio?", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply.Response != declineText {
		t.Errorf("expected decline text, got %q", reply.Response)
	}
	if store.totalCalls() != 0 {
		t.Errorf("out-of-domain message hit the database %d times", store.totalCalls())
	}
	if completer.callCount() != 0 {
		t.Errorf("out-of-domain message hit the model %d times", completer.callCount())
	}
	if reply.SessionID == "" {
		t.Error("expected a generated session id")
	}
}

func TestHandleMessageProblems(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{}
	o := newTestOrchestrator(store, completer)

	reply, err := o.HandleMessage(context.Background(), "¿Cuántos hosts están con problemas?", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply.Response, "Problemas activos (3 en total)") {
		t.Errorf("grounding context missing problem count: %q", reply.Response)
	}
	if !strings.Contains(reply.Response, "Disk full") {
		t.Errorf("grounding context missing problem detail: %q", reply.Response)
	}
	if !contains(reply.DataSources, "active_problems") {
		t.Errorf("data_sources = %v, want active_problems listed", reply.DataSources)
	}
	if !contains(reply.Intents, "problems") {
		t.Errorf("intents = %v, want problems", reply.Intents)
	}
	if reply.SQLQueriesExecuted != store.totalCalls() {
		t.Errorf("sql_queries_executed = %d, store saw %d calls",
			reply.SQLQueriesExecuted, store.totalCalls())
	}
	if reply.QueryTime < 0 {
		t.Errorf("query_time = %f", reply.QueryTime)
	}
}

func TestHandleMessageCachesRepeatedQueries(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{}
	o := newTestOrchestrator(store, completer)

	const msg = "mostrame los problemas activos"
	first, err := o.HandleMessage(context.Background(), msg, "")
	if err != nil {
		t.Fatalf("first HandleMessage: %v", err)
	}
	second, err := o.HandleMessage(context.Background(), msg, first.SessionID)
	if err != nil {
		t.Fatalf("second HandleMessage: %v", err)
	}

	if got := store.count("active_problems"); got != 1 {
		t.Errorf("active_problems queried %d times, want 1", got)
	}
	if second.SQLQueriesExecuted != 0 {
		t.Errorf("second request executed %d queries, want 0", second.SQLQueriesExecuted)
	}
	// Cache hits still count as data sources; the reply was grounded on them.
	if len(second.DataSources) != len(first.DataSources) {
		t.Errorf("data_sources changed across cache hit: %v vs %v",
			first.DataSources, second.DataSources)
	}
}

func TestHandleMessagePartialFailure(t *testing.T) {
	store := newFakeStore()
	store.fail["critical_summary"] = true
	store.fail["top_problematic_hosts"] = true
	completer := &fakeCompleter{}
	o := newTestOrchestrator(store, completer)

	reply, err := o.HandleMessage(context.Background(), "problemas activos", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply.Response, "Problemas activos") {
		t.Errorf("expected reply grounded on surviving data, got %q", reply.Response)
	}
	if contains(reply.DataSources, "critical_summary") {
		t.Errorf("failed step listed as data source: %v", reply.DataSources)
	}
	if !contains(reply.DataSources, "active_problems") {
		t.Errorf("surviving step missing from data sources: %v", reply.DataSources)
	}
	// Only the surviving step counts as an executed query.
	if reply.SQLQueriesExecuted != 1 {
		t.Errorf("sql_queries_executed = %d, want 1", reply.SQLQueriesExecuted)
	}
}

func TestHandleMessageGenerationUnavailable(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{err: llm.ErrUnavailable}
	o := newTestOrchestrator(store, completer)

	reply, err := o.HandleMessage(context.Background(), "problemas activos", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply.Response != generationUnavailableText {
		t.Errorf("expected generation fallback, got %q", reply.Response)
	}
	// Data was still fetched; metadata reflects that.
	if !contains(reply.DataSources, "active_problems") {
		t.Errorf("data_sources = %v", reply.DataSources)
	}
}

func TestHandleMessageFullyDegraded(t *testing.T) {
	store := newFakeStore()
	for _, op := range []string{"hosts", "active_problems", "critical_summary", "top_problematic_hosts", "system_stats", "host_availability"} {
		store.fail[op] = true
	}
	completer := &fakeCompleter{err: llm.ErrUnavailable}
	o := newTestOrchestrator(store, completer)

	reply, err := o.HandleMessage(context.Background(), "problemas activos", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply.Response != degradedText {
		t.Errorf("expected fully degraded apology, got %q", reply.Response)
	}
	if len(reply.DataSources) != 0 {
		t.Errorf("no step succeeded but data_sources = %v", reply.DataSources)
	}
	if reply.SQLQueriesExecuted != 0 {
		t.Errorf("no step succeeded but sql_queries_executed = %d", reply.SQLQueriesExecuted)
	}
}

func TestHandleMessageNoDataNote(t *testing.T) {
	store := newFakeStore()
	for _, op := range []string{"hosts", "active_problems", "critical_summary", "top_problematic_hosts"} {
		store.fail[op] = true
	}
	completer := &fakeCompleter{}
	o := newTestOrchestrator(store, completer)

	if _, err := o.HandleMessage(context.Background(), "problemas activos", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(completer.last, "No hay datos de monitoreo disponibles") {
		t.Errorf("model context = %q, want explicit no-data note", completer.last)
	}
}

func TestHandleMessageSessionReuse(t *testing.T) {
	o := newTestOrchestrator(newFakeStore(), &fakeCompleter{})

	first, err := o.HandleMessage(context.Background(), "problemas activos", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	second, err := o.HandleMessage(context.Background(), "estado del sistema", first.SessionID)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session id changed: %q vs %q", first.SessionID, second.SessionID)
	}
}

func TestClearCache(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store, &fakeCompleter{})

	if _, err := o.HandleMessage(context.Background(), "problemas activos", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if n := o.ClearCache(); n == 0 {
		t.Error("expected cached entries to be cleared")
	}

	before := store.count("active_problems")
	if _, err := o.HandleMessage(context.Background(), "problemas activos", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if got := store.count("active_problems"); got != before+1 {
		t.Errorf("expected refetch after clear, calls went %d -> %d", before, got)
	}
}

func TestHealth(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store, &fakeCompleter{})

	if h := o.Health(context.Background()); h.Status != "ok" || !h.DBReachable || !h.ModelReachable {
		t.Errorf("healthy deps reported %+v", h)
	}

	store.fail["ping"] = true
	if h := o.Health(context.Background()); h.Status != "degraded" || h.DBReachable {
		t.Errorf("unreachable db reported %+v", h)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
