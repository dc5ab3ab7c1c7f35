package zabbix

import (
	"context"
	"time"
)

// AlertsSince returns notifications sent after the given time, newest first.
func (r *Repository) AlertsSince(ctx context.Context, since time.Time) ([]Alert, error) {
	const query = `
		SELECT
			a.alertid,
			a.actionid,
			a.eventid,
			a.clock,
			a.sendto,
			a.subject,
			a.message,
			a.status,
			a.retries,
			a.error,
			h.host,
			h.name AS hostname,
			u.username
		FROM alerts a
		LEFT JOIN events e ON a.eventid = e.eventid
		LEFT JOIN triggers t ON e.objectid = t.triggerid
		LEFT JOIN functions f ON t.triggerid = f.triggerid
		LEFT JOIN items i ON f.itemid = i.itemid
		LEFT JOIN hosts h ON i.hostid = h.hostid
		LEFT JOIN users u ON a.userid = u.userid
		WHERE a.clock >= ?
		ORDER BY a.clock DESC`

	var alerts []Alert
	if err := r.db.SelectContext(ctx, &alerts, query, since.Unix()); err != nil {
		return nil, unavailable("alerts", err)
	}
	return alerts, nil
}

// LatestData returns the newest measurement per item for a host, looking at
// the numeric and string history tables over the last hour.
func (r *Repository) LatestData(ctx context.Context, hostID int64, limit int) ([]LatestValue, error) {
	const query = `
		SELECT
			i.itemid,
			i.name,
			i.key_,
			i.value_type,
			i.units,
			hy.clock,
			hy.value
		FROM items i
		JOIN (
			SELECT itemid, MAX(clock) AS max_clock
			FROM history
			WHERE clock > ?
			GROUP BY itemid
			UNION ALL
			SELECT itemid, MAX(clock) AS max_clock
			FROM history_uint
			WHERE clock > ?
			GROUP BY itemid
		) latest ON i.itemid = latest.itemid
		LEFT JOIN history hy ON i.itemid = hy.itemid AND hy.clock = latest.max_clock
		WHERE i.hostid = ?
		AND i.status = 0
		ORDER BY hy.clock DESC
		LIMIT ?`

	if limit <= 0 {
		limit = 10
	}
	hourAgo := time.Now().Add(-time.Hour).Unix()

	var values []LatestValue
	if err := r.db.SelectContext(ctx, &values, query, hourAgo, hourAgo, hostID, limit); err != nil {
		return nil, unavailable("latest data", err)
	}
	return values, nil
}

// RecentEvents returns events recorded after the given time, newest first.
func (r *Repository) RecentEvents(ctx context.Context, since time.Time, limit int) ([]Event, error) {
	const query = `
		SELECT
			e.eventid,
			e.source,
			e.object,
			e.objectid,
			e.clock,
			e.value,
			e.acknowledged,
			e.name,
			e.severity,
			h.host,
			h.name AS hostname,
			t.description AS trigger_description
		FROM events e
		LEFT JOIN triggers t ON e.objectid = t.triggerid AND e.object = 0
		LEFT JOIN functions f ON t.triggerid = f.triggerid
		LEFT JOIN items i ON f.itemid = i.itemid
		LEFT JOIN hosts h ON i.hostid = h.hostid
		WHERE e.clock >= ?
		ORDER BY e.clock DESC
		LIMIT ?`

	if limit <= 0 {
		limit = 100
	}
	var events []Event
	if err := r.db.SelectContext(ctx, &events, query, since.Unix(), limit); err != nil {
		return nil, unavailable("recent events", err)
	}
	return events, nil
}
