package core

import (
	"strings"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/auto-dns/portainer-dns-sync/internal/util"
	"github.com/rs/zerolog"
)

// Zones names the managed zone and the zone endpoint aliases resolve into.
type Zones struct {
	DNSZone  string
	BaseZone string
}

func (z Zones) base() string {
	if z.BaseZone == "" {
		return z.DNSZone
	}
	return z.BaseZone
}

var labelReplacer = strings.NewReplacer(" ", "-", ".", "-")

// SanitizeLabel turns a display name into a single lowercase DNS label.
func SanitizeLabel(name string) string {
	return strings.Trim(labelReplacer.Replace(strings.ToLower(strings.TrimSpace(name))), "-")
}

// BuildRecordSet derives the desired records for every endpoint and container.
// Structural gaps in the inventory fail the whole build; individual records with
// invalid names or addresses are logged and skipped. Legacy link aliases such as
// "/app/db" are not published: the linked container publishes its own name.
func BuildRecordSet(endpoints []domain.Endpoint, zones Zones, logger zerolog.Logger) (*domain.RecordSet, error) {
	rs := domain.NewRecordSet()

	add := func(endpoint, name string, kind domain.RecordKind, value string) {
		if err := rs.Add(name, kind, value); err != nil {
			logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Skipping invalid record")
		}
	}

	for _, ep := range endpoints {
		label := SanitizeLabel(ep.Name)
		if label == "" {
			return nil, domain.NewNormalizationError("endpoint %d has no usable name (%q)", ep.ID, ep.Name)
		}
		endpointDomain := label + "." + zones.DNSZone
		add(ep.Name, endpointDomain, domain.RecordCNAME, label+"."+zones.base())

		for _, c := range ep.Containers {
			if c.ID == "" {
				return nil, domain.NewNormalizationError("container without id on endpoint %q", ep.Name)
			}
			fqdn := strings.ToLower(c.ShortID()) + "." + endpointDomain

			for _, name := range c.Names {
				trimmed := strings.TrimPrefix(name, "/")
				if strings.Contains(trimmed, "/") {
					// legacy link alias, published by the linked container itself
					logger.Debug().Str("name", name).Str("container", c.ShortID()).Msg("Skipping link alias")
					continue
				}
				alias := SanitizeLabel(trimmed)
				if alias == "" {
					continue
				}
				add(ep.Name, alias+"."+endpointDomain, domain.RecordCNAME, fqdn)
			}

			if c.HostNetwork {
				add(ep.Name, fqdn, domain.RecordCNAME, endpointDomain)
				continue
			}

			for _, network := range util.SortedKeys(c.Networks) {
				attachment := c.Networks[network]
				if attachment.IPv4 != "" {
					add(ep.Name, fqdn, domain.RecordA, attachment.IPv4)
				}
				if attachment.IPv6 != "" {
					add(ep.Name, fqdn, domain.RecordAAAA, attachment.IPv6)
				}
			}
		}
	}

	return rs, nil
}
