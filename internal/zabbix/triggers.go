package zabbix

import "context"

// Triggers returns trigger definitions, for one host when hostID > 0 or for
// the whole deployment otherwise.
func (r *Repository) Triggers(ctx context.Context, hostID int64) ([]Trigger, error) {
	const baseQuery = `
		SELECT
			t.triggerid,
			t.expression,
			t.description,
			t.status,
			t.priority,
			t.state,
			t.error,
			h.host,
			h.name AS hostname
		FROM triggers t
		JOIN functions f ON t.triggerid = f.triggerid
		JOIN items i ON f.itemid = i.itemid
		JOIN hosts h ON i.hostid = h.hostid
		WHERE t.flags = 0`

	var (
		triggers []Trigger
		err      error
	)
	if hostID > 0 {
		err = r.db.SelectContext(ctx, &triggers,
			baseQuery+` AND h.hostid = ? ORDER BY t.priority DESC`, hostID)
	} else {
		err = r.db.SelectContext(ctx, &triggers,
			baseQuery+` ORDER BY t.priority DESC, h.name`)
	}
	if err != nil {
		return nil, unavailable("triggers", err)
	}
	return triggers, nil
}

// Items returns all non-discovered items for a host.
func (r *Repository) Items(ctx context.Context, hostID int64) ([]Item, error) {
	const query = `
		SELECT
			i.itemid,
			i.name,
			i.key_,
			i.type,
			i.value_type,
			i.units,
			i.status,
			i.state,
			i.error,
			i.delay,
			h.host,
			h.name AS hostname
		FROM items i
		JOIN hosts h ON i.hostid = h.hostid
		WHERE i.hostid = ?
		AND i.flags = 0
		ORDER BY i.name`

	var items []Item
	if err := r.db.SelectContext(ctx, &items, query, hostID); err != nil {
		return nil, unavailable("items", err)
	}
	return items, nil
}
