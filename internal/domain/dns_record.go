package domain

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"strings"
)

type RecordKind string

const (
	RecordA     RecordKind = "A"
	RecordAAAA  RecordKind = "AAAA"
	RecordCNAME RecordKind = "CNAME"
)

// DefaultTTL is applied to every generated record.
const DefaultTTL = 60

// Record is one rrset: every value published for a (name, type) pair.
type Record struct {
	Name   string
	Type   RecordKind
	TTL    int
	Values []string
}

func NewA(name string, ipv4s ...string) (Record, error) {
	if !isValidHostname(name) {
		return Record{}, fmt.Errorf("invalid A name: %s", name)
	}
	for _, v := range ipv4s {
		ip := net.ParseIP(v)
		if ip == nil || ip.To4() == nil {
			return Record{}, fmt.Errorf("invalid IPv4: %s", v)
		}
	}
	return newRecord(name, RecordA, ipv4s), nil
}

func NewAAAA(name string, ipv6s ...string) (Record, error) {
	if !isValidHostname(name) {
		return Record{}, fmt.Errorf("invalid AAAA name: %s", name)
	}
	for _, v := range ipv6s {
		ip := net.ParseIP(v)
		if ip == nil || ip.To16() == nil || ip.To4() != nil {
			return Record{}, fmt.Errorf("invalid IPv6: %s", v)
		}
	}
	return newRecord(name, RecordAAAA, ipv6s), nil
}

func NewCNAME(name, target string) (Record, error) {
	if !isValidHostname(name) || !isValidHostname(target) {
		return Record{}, fmt.Errorf("invalid CNAME: %s -> %s", name, target)
	}
	return newRecord(name, RecordCNAME, []string{target}), nil
}

func newRecord(name string, kind RecordKind, values []string) Record {
	r := Record{Name: name, Type: kind, TTL: DefaultTTL}
	for _, v := range values {
		r = r.withValue(v)
	}
	return r
}

// withValue returns a copy of r with v merged into its sorted value set.
func (r Record) withValue(v string) Record {
	idx, found := slices.BinarySearch(r.Values, v)
	if found {
		return r
	}
	values := make([]string, 0, len(r.Values)+1)
	values = append(values, r.Values[:idx]...)
	values = append(values, v)
	values = append(values, r.Values[idx:]...)
	r.Values = values
	return r
}

// RecordKey identifies an rrset, i.e. the unit the provider replaces or deletes.
func RecordKey(name string, kind RecordKind) string {
	return fmt.Sprintf("%s|%s", name, kind)
}

// Identity is the full comparison tuple of the record, values included.
func (r Record) Identity() string {
	return fmt.Sprintf("%s|%s|%d|%s", r.Name, r.Type, r.TTL, strings.Join(r.Values, ","))
}

func (r Record) Render() string {
	if len(r.Values) == 0 {
		return fmt.Sprintf("[%s] %s -> <no value>", r.Type, r.Name)
	}
	return fmt.Sprintf("[%s] %s -> %s", r.Type, r.Name, strings.Join(r.Values, ", "))
}

func (r Record) Equal(o Record) bool {
	return r.Identity() == o.Identity()
}

var hostnameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9_](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9])?)*$`)

func isValidHostname(h string) bool {
	return len(h) > 0 && len(h) <= 255 && hostnameRegexp.MatchString(h)
}

func (r Record) IsCNAME() bool { return r.Type == RecordCNAME }
