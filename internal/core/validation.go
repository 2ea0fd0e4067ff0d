package core

import (
	"fmt"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/rs/zerolog"
)

// ValidateRecordSet returns the records that can be published together.
//
// Rules enforced:
//  1. A/AAAA and CNAME records may not coexist for the same name; the CNAME is dropped.
//  2. CNAME chains that loop back through another name are reported but kept.
//     A name aliasing itself is expected when the base zone equals the DNS zone.
func ValidateRecordSet(rs *domain.RecordSet, logger zerolog.Logger) *domain.RecordSet {
	valid := rs.Clone()
	for _, rec := range rs.Records() {
		if err := validateRecord(rec, rs); err != nil {
			logger.Warn().Err(err).Msg("Skipping invalid record")
			valid.Remove(rec.Name, rec.Type)
		}
	}

	for _, err := range findCNAMECycles(valid) {
		logger.Warn().Err(err).Msg("CNAME cycle in desired records")
	}
	return valid
}

func validateRecord(rec domain.Record, rs *domain.RecordSet) error {
	if rec.IsCNAME() && (rs.Has(rec.Name, domain.RecordA) || rs.Has(rec.Name, domain.RecordAAAA)) {
		return NewRecordValidationError(fmt.Sprintf("%s - cannot add a CNAME when A/AAAA records exist with the same name", rec.Render()))
	}
	return nil
}

func findCNAMECycles(rs *domain.RecordSet) []error {
	forward := map[string]string{}
	for _, rec := range rs.Records() {
		if rec.IsCNAME() && rec.Values[0] != rec.Name {
			forward[rec.Name] = rec.Values[0]
		}
	}

	var errs []error
	reported := map[string]struct{}{}
	for _, rec := range rs.Records() {
		if _, done := reported[rec.Name]; done || !rec.IsCNAME() {
			continue
		}
		seen := map[string]struct{}{}
		cur := rec.Name
		for {
			next, ok := forward[cur]
			if !ok {
				break
			}
			if _, s := seen[cur]; s {
				for name := range seen {
					reported[name] = struct{}{}
				}
				errs = append(errs, NewRecordValidationError(fmt.Sprintf("CNAME cycle detected starting at: %s", rec.Name)))
				break
			}
			seen[cur] = struct{}{}
			cur = next
		}
	}
	return errs
}
