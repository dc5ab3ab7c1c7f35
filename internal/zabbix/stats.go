package zabbix

import (
	"context"
	"time"
)

// SystemStats returns deployment-wide totals in a single round trip.
func (r *Repository) SystemStats(ctx context.Context) (*SystemStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM hosts WHERE status = 0 AND flags = 0) AS total_hosts,
			(SELECT COUNT(*) FROM problem WHERE source = 0 AND object = 0) AS active_problems,
			(SELECT COUNT(*) FROM alerts WHERE clock >= ?) AS recent_alerts,
			(SELECT COUNT(*) FROM items WHERE status = 0 AND flags = 0) AS total_items,
			(SELECT COUNT(*) FROM triggers WHERE status = 0 AND flags = 0) AS total_triggers`

	hourAgo := time.Now().Add(-time.Hour).Unix()

	var stats SystemStats
	if err := r.db.GetContext(ctx, &stats, query, hourAgo); err != nil {
		return nil, unavailable("system stats", err)
	}
	return &stats, nil
}

// CriticalSummary counts the conditions that should lead any status answer:
// disaster/high problems, unreachable hosts, and active maintenance.
func (r *Repository) CriticalSummary(ctx context.Context) (*CriticalSummary, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM problem WHERE source = 0 AND object = 0 AND severity = 5) AS critical_problems,
			(SELECT COUNT(*) FROM problem WHERE source = 0 AND object = 0 AND severity = 4) AS high_problems,
			(SELECT COUNT(*) FROM hosts WHERE available = 2 AND status = 0 AND flags = 0) AS unavailable_hosts,
			(SELECT COUNT(*) FROM hosts WHERE status = 1 AND flags = 0) AS disabled_hosts,
			(SELECT COUNT(*) FROM alerts WHERE clock >= ?) AS recent_alerts,
			(SELECT COUNT(*) FROM maintenances WHERE active_since <= ? AND active_till >= ?) AS maintenance_active`

	now := time.Now().Unix()
	hourAgo := time.Now().Add(-time.Hour).Unix()

	var summary CriticalSummary
	if err := r.db.GetContext(ctx, &summary, query, hourAgo, now, now); err != nil {
		return nil, unavailable("critical summary", err)
	}
	return &summary, nil
}

// MaintenanceWindows returns maintenance definitions still relevant today:
// active, scheduled, or completed within the last 24 hours.
func (r *Repository) MaintenanceWindows(ctx context.Context) ([]MaintenanceWindow, error) {
	const query = `
		SELECT
			m.maintenanceid,
			m.name AS maintenance_name,
			m.description,
			m.active_since,
			m.active_till,
			m.maintenance_type,
			h.host,
			h.name AS hostname,
			CASE
				WHEN m.active_since <= ? AND m.active_till >= ? THEN 'Active'
				WHEN m.active_since > ? THEN 'Scheduled'
				ELSE 'Completed'
			END AS status
		FROM maintenances m
		JOIN maintenances_hosts mh ON m.maintenanceid = mh.maintenanceid
		JOIN hosts h ON mh.hostid = h.hostid
		WHERE m.active_till >= ?
		ORDER BY m.active_since DESC`

	now := time.Now().Unix()
	dayAgo := now - 86400

	var windows []MaintenanceWindow
	if err := r.db.SelectContext(ctx, &windows, query, now, now, now, dayAgo); err != nil {
		return nil, unavailable("maintenance windows", err)
	}
	return windows, nil
}
