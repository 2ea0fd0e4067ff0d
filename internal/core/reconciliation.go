package core

import (
	"sort"
	"strings"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/auto-dns/portainer-dns-sync/internal/powerdns"
	"github.com/auto-dns/portainer-dns-sync/internal/util"
)

// Diff classifies records by full identity. A record whose values changed
// shows up in both Added and Removed.
type Diff struct {
	Added   []domain.Record
	Removed []domain.Record
}

func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// DiffRecordSets compares the desired set with the last applied one.
func DiffRecordSets(next, baseline *domain.RecordSet) Diff {
	nextIDs := next.Identities()
	baselineIDs := baseline.Identities()

	var diff Diff
	for _, rec := range next.Records() {
		if _, ok := baselineIDs[rec.Identity()]; !ok {
			diff.Added = append(diff.Added, rec)
		}
	}
	for _, rec := range baseline.Records() {
		if _, ok := nextIDs[rec.Identity()]; !ok {
			diff.Removed = append(diff.Removed, rec)
		}
	}
	return diff
}

// BuildTransaction deletes every managed rrset in the zone that is no longer
// desired, then replaces every desired rrset. The provider keeps rrsets absent
// from a PATCH, so stale ones need an explicit DELETE.
func BuildTransaction(zone *powerdns.Zone, desired *domain.RecordSet) []powerdns.RRSet {
	managed := util.Filter(zone.RRSets, func(r powerdns.RRSet) bool {
		return domain.IsManagedKind(r.Type)
	})

	deletes := make([]powerdns.RRSet, 0, len(managed))
	seen := make(map[string]struct{}, len(managed))
	for _, r := range managed {
		kind, _ := domain.ParseKind(r.Type)
		name := strings.ToLower(powerdns.Relative(r.Name))
		key := domain.RecordKey(name, kind)
		if _, dup := seen[key]; dup || desired.Has(name, kind) {
			continue
		}
		seen[key] = struct{}{}
		deletes = append(deletes, powerdns.RRSet{
			Name:       powerdns.Canonical(name),
			Type:       string(kind),
			Changetype: powerdns.ChangeDelete,
		})
	}
	sort.Slice(deletes, func(i, j int) bool {
		if deletes[i].Name != deletes[j].Name {
			return deletes[i].Name < deletes[j].Name
		}
		return deletes[i].Type < deletes[j].Type
	})

	replaces := util.Map(desired.Records(), toReplaceRRSet)
	return append(deletes, replaces...)
}

func toReplaceRRSet(rec domain.Record) powerdns.RRSet {
	records := util.Map(rec.Values, func(v string) powerdns.Record {
		if rec.IsCNAME() {
			v = powerdns.Canonical(v)
		}
		return powerdns.Record{Content: v, Disabled: false}
	})
	return powerdns.RRSet{
		Name:       powerdns.Canonical(rec.Name),
		Type:       string(rec.Type),
		TTL:        rec.TTL,
		Changetype: powerdns.ChangeReplace,
		Records:    records,
	}
}
