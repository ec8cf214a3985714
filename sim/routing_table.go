package sim

import "golang.org/x/exp/slices"

type route struct {
	timestamp int64
	link      *Link
}

// RouteEntry is a read-only view of one routing table row.
type RouteEntry struct {
	HostID    string
	Timestamp int64
	LinkID    string
}

// RoutingTable maps destination hosts to the link on which the freshest
// announcement from that host arrived.
type RoutingTable struct {
	routes map[string]route
}

// NewRoutingTable creates an empty table.
func NewRoutingTable() *RoutingTable {
	return &RoutingTable{routes: make(map[string]route)}
}

// Update adopts link for host if timestamp is strictly newer than the stored
// one, or if host is unknown. It reports whether the table changed.
func (t *RoutingTable) Update(host string, timestamp int64, link *Link) bool {
	if r, ok := t.routes[host]; ok && timestamp <= r.timestamp {
		return false
	}
	t.routes[host] = route{timestamp: timestamp, link: link}
	return true
}

// Get returns the outbound link for host.
func (t *RoutingTable) Get(host string) (*Link, bool) {
	r, ok := t.routes[host]
	if !ok {
		return nil, false
	}
	return r.link, true
}

// Timestamp returns the freshest accepted timestamp for host.
func (t *RoutingTable) Timestamp(host string) (int64, bool) {
	r, ok := t.routes[host]
	return r.timestamp, ok
}

// Len returns the number of known hosts.
func (t *RoutingTable) Len() int { return len(t.routes) }

// Entries returns the table sorted by host ID.
func (t *RoutingTable) Entries() []RouteEntry {
	entries := make([]RouteEntry, 0, len(t.routes))
	for host, r := range t.routes {
		e := RouteEntry{HostID: host, Timestamp: r.timestamp}
		if r.link != nil {
			e.LinkID = r.link.ID
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b RouteEntry) int {
		switch {
		case a.HostID < b.HostID:
			return -1
		case a.HostID > b.HostID:
			return 1
		}
		return 0
	})
	return entries
}
