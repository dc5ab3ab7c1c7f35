package zabbix

import (
	"context"
	"database/sql"
	"errors"
)

// Hosts returns all actively monitored hosts with their host group.
// status = 0 filters to monitored hosts; flags = 0 excludes discovered and
// templated pseudo-hosts.
func (r *Repository) Hosts(ctx context.Context) ([]Host, error) {
	const query = `
		SELECT
			h.hostid,
			h.host,
			h.name,
			h.status,
			h.error,
			h.disable_until,
			hg.name AS hostgroup_name
		FROM hosts h
		LEFT JOIN hosts_groups hgh ON h.hostid = hgh.hostid
		LEFT JOIN hstgrp hg ON hgh.groupid = hg.groupid
		WHERE h.status = 0
		AND h.flags = 0
		ORDER BY h.name`

	var hosts []Host
	if err := r.db.SelectContext(ctx, &hosts, query); err != nil {
		return nil, unavailable("hosts", err)
	}
	return hosts, nil
}

// HostByName finds a single host whose technical or visible name contains
// name. Returns nil when no host matches.
func (r *Repository) HostByName(ctx context.Context, name string) (*Host, error) {
	const query = `
		SELECT
			h.hostid,
			h.host,
			h.name,
			h.status,
			h.error,
			h.disable_until,
			NULL AS hostgroup_name
		FROM hosts h
		WHERE (h.host LIKE ? OR h.name LIKE ?)
		AND h.status = 0
		AND h.flags = 0
		LIMIT 1`

	pattern := "%" + name + "%"
	var host Host
	err := r.db.GetContext(ctx, &host, query, pattern, pattern)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("host by name", err)
	}
	return &host, nil
}

// SearchHosts returns hosts whose name, technical name, or description
// matches pattern.
func (r *Repository) SearchHosts(ctx context.Context, pattern string) ([]HostAvailability, error) {
	const query = `
		SELECT
			h.hostid,
			h.host,
			h.name,
			h.status,
			h.available,
			h.error,
			CASE h.available
				WHEN 1 THEN 'Available'
				WHEN 2 THEN 'Not Available'
				ELSE 'Unknown'
			END AS availability_status,
			CASE h.status
				WHEN 0 THEN 'Monitored'
				WHEN 1 THEN 'Not Monitored'
				ELSE 'Unknown'
			END AS monitoring_status
		FROM hosts h
		WHERE h.flags = 0
		AND (h.host LIKE ? OR h.name LIKE ? OR h.description LIKE ?)
		ORDER BY h.name`

	p := "%" + pattern + "%"
	var hosts []HostAvailability
	if err := r.db.SelectContext(ctx, &hosts, query, p, p, p); err != nil {
		return nil, unavailable("search hosts", err)
	}
	return hosts, nil
}

// HostAvailabilityList returns every real host with decoded availability and
// monitoring state, least-available first.
func (r *Repository) HostAvailabilityList(ctx context.Context) ([]HostAvailability, error) {
	const query = `
		SELECT
			h.hostid,
			h.host,
			h.name,
			h.status,
			h.available,
			h.error,
			CASE h.available
				WHEN 1 THEN 'Available'
				WHEN 2 THEN 'Not Available'
				ELSE 'Unknown'
			END AS availability_status,
			CASE h.status
				WHEN 0 THEN 'Monitored'
				WHEN 1 THEN 'Not Monitored'
				ELSE 'Unknown'
			END AS monitoring_status
		FROM hosts h
		WHERE h.flags = 0
		ORDER BY h.available ASC, h.name`

	var hosts []HostAvailability
	if err := r.db.SelectContext(ctx, &hosts, query); err != nil {
		return nil, unavailable("host availability", err)
	}
	return hosts, nil
}

// NetworkDevices returns network-gear hosts with their main interface.
func (r *Repository) NetworkDevices(ctx context.Context) ([]NetworkDevice, error) {
	const query = `
		SELECT
			h.hostid,
			h.host,
			h.name,
			h.status,
			h.available,
			h.error,
			i.ip,
			i.port,
			i.type AS interface_type
		FROM hosts h
		LEFT JOIN interface i ON h.hostid = i.hostid AND i.main = 1
		WHERE h.flags = 0
		AND (h.name LIKE '%Switch%'
			OR h.name LIKE '%Router%'
			OR h.name LIKE '%AP %'
			OR h.name LIKE '%MikroTik%'
			OR h.name LIKE '%Cisco%'
			OR h.name LIKE '%Forti%'
			OR h.name LIKE 'AP %'
			OR h.name LIKE '%by SNMP%')
		ORDER BY h.name`

	var devices []NetworkDevice
	if err := r.db.SelectContext(ctx, &devices, query); err != nil {
		return nil, unavailable("network devices", err)
	}
	return devices, nil
}
