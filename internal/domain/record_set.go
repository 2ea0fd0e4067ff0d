package domain

import (
	"sort"

	"github.com/auto-dns/portainer-dns-sync/internal/util"
)

// rrsetKey addresses one rrset inside a RecordSet.
type rrsetKey struct {
	name string
	kind RecordKind
}

// RecordSet holds at most one Record per (name, type).
// The zero value is not usable; use NewRecordSet.
type RecordSet struct {
	records *util.DefaultMap[rrsetKey, Record]
}

func NewRecordSet() *RecordSet {
	return &RecordSet{records: util.NewDefaultMap(func(k rrsetKey) Record {
		return Record{Name: k.name, Type: k.kind, TTL: DefaultTTL}
	})}
}

// Add merges value into the rrset for (name, kind), creating it if needed.
// Nothing is stored when the value is invalid.
func (rs *RecordSet) Add(name string, kind RecordKind, value string) error {
	if _, err := NewFromKind(kind, name, value); err != nil {
		return err
	}
	key := rrsetKey{name: name, kind: kind}
	rec := rs.records.Get(key)
	if kind == RecordCNAME && len(rec.Values) > 0 {
		// a name aliases one target; keep the smallest so enumeration order does not matter
		if value < rec.Values[0] {
			rec.Values = []string{value}
		}
	} else {
		rec = rec.withValue(value)
	}
	rs.records.Set(key, rec)
	return nil
}

// Put stores rec as-is, replacing any record with the same key.
func (rs *RecordSet) Put(rec Record) {
	rs.records.Set(rrsetKey{name: rec.Name, kind: rec.Type}, rec)
}

// Remove drops the rrset for (name, kind) if present.
func (rs *RecordSet) Remove(name string, kind RecordKind) {
	rs.records.Delete(rrsetKey{name: name, kind: kind})
}

// Clone returns an independent copy of the set.
func (rs *RecordSet) Clone() *RecordSet {
	out := NewRecordSet()
	for _, rec := range rs.Records() {
		out.Put(rec)
	}
	return out
}

func (rs *RecordSet) Has(name string, kind RecordKind) bool {
	_, ok := rs.records.Peek(rrsetKey{name: name, kind: kind})
	return ok
}

func (rs *RecordSet) Get(name string, kind RecordKind) (Record, bool) {
	return rs.records.Peek(rrsetKey{name: name, kind: kind})
}

func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return rs.records.Len()
}

// Records returns the records sorted by name, then type.
func (rs *RecordSet) Records() []Record {
	if rs == nil {
		return nil
	}
	out := rs.records.Values()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Identities returns the set of full record identities.
func (rs *RecordSet) Identities() map[string]Record {
	out := make(map[string]Record, rs.Len())
	for _, r := range rs.Records() {
		out[r.Identity()] = r
	}
	return out
}

// Equal compares both sets by value, independent of insertion order.
func (rs *RecordSet) Equal(other *RecordSet) bool {
	if rs.Len() != other.Len() {
		return false
	}
	for _, rec := range other.Records() {
		mine, ok := rs.Get(rec.Name, rec.Type)
		if !ok || !mine.Equal(rec) {
			return false
		}
	}
	return true
}
