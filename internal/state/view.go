package state

import (
	"sort"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
	"github.com/auto-route/docker-gateway-sync/internal/registry"
)

// Entry is one confirmed publication: the record the registry holds and the
// lease it was confirmed under. A zero lease means the record is believed
// present but its lease is unconfirmed (seeded from enumeration, or the last
// renewal failed); such entries are re-published rather than renewed.
type Entry struct {
	Record domain.RouteRecord
	Lease  registry.Lease
}

// View is the reconciler's belief about what is currently published. It only
// reflects confirmed writes and deletes: failed operations leave it
// untouched so the next cycle retries them. The view is owned by the single
// control loop and needs no locking.
type View struct {
	entries map[string]Entry
}

func NewView() *View {
	return &View{entries: make(map[string]Entry)}
}

func (v *View) Get(domainName string) (Entry, bool) {
	e, ok := v.entries[domainName]
	return e, ok
}

func (v *View) Set(domainName string, e Entry) {
	v.entries[domainName] = e
}

// ClearLease keeps the record but drops its lease confirmation, forcing the
// next cycle through the publish path.
func (v *View) ClearLease(domainName string) {
	if e, ok := v.entries[domainName]; ok {
		e.Lease = 0
		v.entries[domainName] = e
	}
}

func (v *View) Delete(domainName string) {
	delete(v.entries, domainName)
}

// Domains returns the tracked domains in sorted order so per-cycle apply
// order is deterministic.
func (v *View) Domains() []string {
	domains := make([]string, 0, len(v.entries))
	for d := range v.entries {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

func (v *View) Len() int {
	return len(v.entries)
}

// Seed populates the view from enumerated registry contents. Leases are
// unknown at that point, so every seeded entry re-publishes on first touch.
func (v *View) Seed(records []domain.RouteRecord) {
	for _, rec := range records {
		v.entries[rec.Domain] = Entry{Record: rec}
	}
}
