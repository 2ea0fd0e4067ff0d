package powerdns

// ChangeType values understood by the zone PATCH endpoint.
const (
	ChangeReplace = "REPLACE"
	ChangeDelete  = "DELETE"
)

// Zone is the part of a PowerDNS zone document this tool reads.
type Zone struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name,omitempty"`
	Serial int     `json:"serial,omitempty"`
	RRSets []RRSet `json:"rrsets"`
}

// RRSet is a set of resource records with the same name and type.
// DELETE entries carry neither TTL nor records.
type RRSet struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	TTL        int      `json:"ttl,omitempty"`
	Changetype string   `json:"changetype,omitempty"`
	Records    []Record `json:"records,omitempty"`
}

// Record is a single resource record within an RRSet.
type Record struct {
	Content  string `json:"content"`
	Disabled bool   `json:"disabled"`
}

type patchRequest struct {
	RRSets []RRSet `json:"rrsets"`
}
