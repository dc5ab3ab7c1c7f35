package zabbix

import "database/sql"

// Severity levels as stored in problem.severity / triggers.priority.
const (
	SeverityNotClassified = 0
	SeverityInformation   = 1
	SeverityWarning       = 2
	SeverityAverage       = 3
	SeverityHigh          = 4
	SeverityDisaster      = 5
)

// Host availability values as stored in hosts.available.
const (
	AvailabilityUnknown     = 0
	AvailabilityAvailable   = 1
	AvailabilityUnavailable = 2
)

// Host is a monitored host row.
type Host struct {
	HostID       int64          `db:"hostid"`
	Host         string         `db:"host"`
	Name         string         `db:"name"`
	Status       int            `db:"status"`
	Error        string         `db:"error"`
	DisableUntil int64          `db:"disable_until"`
	GroupName    sql.NullString `db:"hostgroup_name"`
}

// HostAvailability is a host row with decoded availability state.
type HostAvailability struct {
	HostID             int64  `db:"hostid"`
	Host               string `db:"host"`
	Name               string `db:"name"`
	Status             int    `db:"status"`
	Available          int    `db:"available"`
	Error              string `db:"error"`
	AvailabilityStatus string `db:"availability_status"`
	MonitoringStatus   string `db:"monitoring_status"`
}

// Problem is an active problem joined with its trigger and host.
type Problem struct {
	EventID            int64          `db:"eventid"`
	ObjectID           int64          `db:"objectid"`
	Clock              int64          `db:"clock"`
	Acknowledged       int            `db:"acknowledged"`
	Severity           int            `db:"severity"`
	Host               string         `db:"host"`
	HostName           string         `db:"hostname"`
	TriggerDescription string         `db:"trigger_description"`
	Priority           int            `db:"priority"`
	EventName          sql.NullString `db:"event_name"`
}

// ProblemHost aggregates active problem counts per host.
type ProblemHost struct {
	HostID       int64  `db:"hostid"`
	Host         string `db:"host"`
	HostName     string `db:"hostname"`
	ProblemCount int    `db:"problem_count"`
	MaxSeverity  int    `db:"max_severity"`
	Available    int    `db:"available"`
	Status       int    `db:"status"`
}

// Trigger is a trigger definition joined with its host.
type Trigger struct {
	TriggerID   int64  `db:"triggerid"`
	Expression  string `db:"expression"`
	Description string `db:"description"`
	Status      int    `db:"status"`
	Priority    int    `db:"priority"`
	State       int    `db:"state"`
	Error       string `db:"error"`
	Host        string `db:"host"`
	HostName    string `db:"hostname"`
}

// Item is an item definition joined with its host.
type Item struct {
	ItemID    int64  `db:"itemid"`
	Name      string `db:"name"`
	Key       string `db:"key_"`
	Type      int    `db:"type"`
	ValueType int    `db:"value_type"`
	Units     string `db:"units"`
	Status    int    `db:"status"`
	State     int    `db:"state"`
	Error     string `db:"error"`
	Delay     string `db:"delay"`
	Host      string `db:"host"`
	HostName  string `db:"hostname"`
}

// Alert is a sent notification joined with its host and user.
type Alert struct {
	AlertID  int64          `db:"alertid"`
	ActionID int64          `db:"actionid"`
	EventID  int64          `db:"eventid"`
	Clock    int64          `db:"clock"`
	SendTo   string         `db:"sendto"`
	Subject  string         `db:"subject"`
	Message  string         `db:"message"`
	Status   int            `db:"status"`
	Retries  int            `db:"retries"`
	Error    string         `db:"error"`
	Host     sql.NullString `db:"host"`
	HostName sql.NullString `db:"hostname"`
	Username sql.NullString `db:"username"`
}

// LatestValue is the newest recorded measurement for an item.
type LatestValue struct {
	ItemID    int64           `db:"itemid"`
	Name      string          `db:"name"`
	Key       string          `db:"key_"`
	ValueType int             `db:"value_type"`
	Units     string          `db:"units"`
	Clock     sql.NullInt64   `db:"clock"`
	Value     sql.NullFloat64 `db:"value"`
}

// Event is a raw event row joined with its trigger and host where resolvable.
type Event struct {
	EventID            int64          `db:"eventid"`
	Source             int            `db:"source"`
	Object             int            `db:"object"`
	ObjectID           int64          `db:"objectid"`
	Clock              int64          `db:"clock"`
	Value              int            `db:"value"`
	Acknowledged       int            `db:"acknowledged"`
	Name               string         `db:"name"`
	Severity           int            `db:"severity"`
	Host               sql.NullString `db:"host"`
	HostName           sql.NullString `db:"hostname"`
	TriggerDescription sql.NullString `db:"trigger_description"`
}

// MaintenanceWindow is a maintenance definition joined with an affected host.
type MaintenanceWindow struct {
	MaintenanceID int64  `db:"maintenanceid"`
	Name          string `db:"maintenance_name"`
	Description   string `db:"description"`
	ActiveSince   int64  `db:"active_since"`
	ActiveTill    int64  `db:"active_till"`
	Type          int    `db:"maintenance_type"`
	Host          string `db:"host"`
	HostName      string `db:"hostname"`
	Status        string `db:"status"`
}

// NetworkDevice is a network-gear host with its main interface.
type NetworkDevice struct {
	HostID    int64          `db:"hostid"`
	Host      string         `db:"host"`
	Name      string         `db:"name"`
	Status    int            `db:"status"`
	Available int            `db:"available"`
	Error     string         `db:"error"`
	IP        sql.NullString `db:"ip"`
	Port      sql.NullString `db:"port"`
	IfaceType sql.NullInt64  `db:"interface_type"`
}

// SystemStats holds deployment-wide totals. Serialized by the status
// endpoint, hence the json tags.
type SystemStats struct {
	TotalHosts     int `db:"total_hosts" json:"total_hosts"`
	ActiveProblems int `db:"active_problems" json:"active_problems"`
	RecentAlerts   int `db:"recent_alerts" json:"recent_alerts"`
	TotalItems     int `db:"total_items" json:"total_items"`
	TotalTriggers  int `db:"total_triggers" json:"total_triggers"`
}

// CriticalSummary counts the conditions an operator cares about first.
type CriticalSummary struct {
	CriticalProblems  int `db:"critical_problems" json:"critical_problems"`
	HighProblems      int `db:"high_problems" json:"high_problems"`
	UnavailableHosts  int `db:"unavailable_hosts" json:"unavailable_hosts"`
	DisabledHosts     int `db:"disabled_hosts" json:"disabled_hosts"`
	RecentAlerts      int `db:"recent_alerts" json:"recent_alerts"`
	MaintenanceActive int `db:"maintenance_active" json:"maintenance_active"`
}
