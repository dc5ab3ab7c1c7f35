package zabbix

import "context"

// problemSelect joins active problems with their trigger and host.
// source = 0, object = 0 restricts to trigger-generated problems.
const problemSelect = `
	SELECT
		p.eventid,
		p.objectid,
		p.clock,
		p.acknowledged,
		p.severity,
		h.host,
		h.name AS hostname,
		t.description AS trigger_description,
		t.priority,
		e.name AS event_name
	FROM problem p
	JOIN triggers t ON p.objectid = t.triggerid
	JOIN functions f ON t.triggerid = f.triggerid
	JOIN items i ON f.itemid = i.itemid
	JOIN hosts h ON i.hostid = h.hostid
	LEFT JOIN events e ON p.eventid = e.eventid
	WHERE p.source = 0
	AND p.object = 0`

// ActiveProblems returns all active problems, most severe and newest first.
func (r *Repository) ActiveProblems(ctx context.Context) ([]Problem, error) {
	query := problemSelect + `
	ORDER BY p.severity DESC, p.clock DESC`

	var problems []Problem
	if err := r.db.SelectContext(ctx, &problems, query); err != nil {
		return nil, unavailable("active problems", err)
	}
	return problems, nil
}

// ProblemsBySeverity returns active problems at exactly the given severity.
func (r *Repository) ProblemsBySeverity(ctx context.Context, severity int) ([]Problem, error) {
	query := problemSelect + `
	AND p.severity = ?
	ORDER BY p.clock DESC`

	var problems []Problem
	if err := r.db.SelectContext(ctx, &problems, query, severity); err != nil {
		return nil, unavailable("problems by severity", err)
	}
	return problems, nil
}

// TopProblematicHosts returns the hosts carrying the most active problems.
func (r *Repository) TopProblematicHosts(ctx context.Context, limit int) ([]ProblemHost, error) {
	const query = `
		SELECT
			h.hostid,
			h.host,
			h.name AS hostname,
			COUNT(p.eventid) AS problem_count,
			MAX(p.severity) AS max_severity,
			h.available,
			h.status
		FROM hosts h
		LEFT JOIN items i ON h.hostid = i.hostid
		LEFT JOIN functions f ON i.itemid = f.itemid
		LEFT JOIN triggers t ON f.triggerid = t.triggerid
		LEFT JOIN problem p ON t.triggerid = p.objectid AND p.source = 0 AND p.object = 0
		WHERE h.status = 0 AND h.flags = 0
		GROUP BY h.hostid, h.host, h.name, h.available, h.status
		HAVING problem_count > 0
		ORDER BY problem_count DESC, max_severity DESC
		LIMIT ?`

	if limit <= 0 {
		limit = 10
	}
	var hosts []ProblemHost
	if err := r.db.SelectContext(ctx, &hosts, query, limit); err != nil {
		return nil, unavailable("top problematic hosts", err)
	}
	return hosts, nil
}
