package core

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labZones = Zones{DNSZone: "lab.internal", BaseZone: "lab.internal"}

func prodNode() domain.Endpoint {
	return domain.Endpoint{
		ID:   1,
		Name: "Prod Node",
		Containers: []domain.Container{
			{
				ID:       "abcdef123456",
				Names:    []string{"/web"},
				Networks: map[string]domain.NetworkAttachment{"bridge": {IPv4: "10.0.0.5"}},
			},
		},
	}
}

func TestBuildRecordSet_EndToEndScenario(t *testing.T) {
	rs, err := BuildRecordSet([]domain.Endpoint{prodNode()}, labZones, zerolog.Nop())
	require.NoError(t, err)

	want := domain.NewRecordSet()
	require.NoError(t, want.Add("prod-node.lab.internal", domain.RecordCNAME, "prod-node.lab.internal"))
	require.NoError(t, want.Add("web.prod-node.lab.internal", domain.RecordCNAME, "abcdef.prod-node.lab.internal"))
	require.NoError(t, want.Add("abcdef.prod-node.lab.internal", domain.RecordA, "10.0.0.5"))

	assert.True(t, want.Equal(rs), "got %v", rs.Records())
	assert.Equal(t, 3, rs.Len())
	for _, rec := range rs.Records() {
		assert.Equal(t, domain.DefaultTTL, rec.TTL)
	}
}

func TestBuildRecordSet_BaseZoneAlias(t *testing.T) {
	zones := Zones{DNSZone: "docker.example.com", BaseZone: "example.com"}
	rs, err := BuildRecordSet([]domain.Endpoint{{ID: 1, Name: "nas"}}, zones, zerolog.Nop())
	require.NoError(t, err)

	rec, ok := rs.Get("nas.docker.example.com", domain.RecordCNAME)
	require.True(t, ok)
	assert.Equal(t, []string{"nas.example.com"}, rec.Values)

	rs, err = BuildRecordSet([]domain.Endpoint{{ID: 1, Name: "nas"}}, Zones{DNSZone: "lab.internal"}, zerolog.Nop())
	require.NoError(t, err)
	rec, ok = rs.Get("nas.lab.internal", domain.RecordCNAME)
	require.True(t, ok)
	assert.Equal(t, []string{"nas.lab.internal"}, rec.Values)
}

func TestBuildRecordSet_HostNetworkExclusion(t *testing.T) {
	ep := domain.Endpoint{
		ID:   1,
		Name: "edge",
		Containers: []domain.Container{{
			ID:          "123456abcdef",
			Names:       []string{"/agent"},
			HostNetwork: true,
			Networks: map[string]domain.NetworkAttachment{
				"host":   {},
				"bridge": {IPv4: "172.17.0.2", IPv6: "fd00::2"},
			},
		}},
	}

	rs, err := BuildRecordSet([]domain.Endpoint{ep}, labZones, zerolog.Nop())
	require.NoError(t, err)

	fqdn := "123456.edge.lab.internal"
	rec, ok := rs.Get(fqdn, domain.RecordCNAME)
	require.True(t, ok)
	assert.Equal(t, []string{"edge.lab.internal"}, rec.Values)
	assert.False(t, rs.Has(fqdn, domain.RecordA))
	assert.False(t, rs.Has(fqdn, domain.RecordAAAA))

	var forContainer int
	for _, r := range rs.Records() {
		if r.Name == fqdn {
			forContainer++
		}
	}
	assert.Equal(t, 1, forContainer)
}

func TestBuildRecordSet_AddressMerge(t *testing.T) {
	ep := domain.Endpoint{
		ID:   1,
		Name: "node",
		Containers: []domain.Container{{
			ID: "abcdef123456",
			Networks: map[string]domain.NetworkAttachment{
				"frontend": {IPv4: "10.0.0.5", IPv6: "fd00::5"},
				"backend":  {IPv4: "10.0.1.5"},
				"empty":    {},
			},
		}},
	}

	rs, err := BuildRecordSet([]domain.Endpoint{ep}, labZones, zerolog.Nop())
	require.NoError(t, err)

	a, ok := rs.Get("abcdef.node.lab.internal", domain.RecordA)
	require.True(t, ok)
	assert.Equal(t, []string{"10.0.0.5", "10.0.1.5"}, a.Values)

	aaaa, ok := rs.Get("abcdef.node.lab.internal", domain.RecordAAAA)
	require.True(t, ok)
	assert.Equal(t, []string{"fd00::5"}, aaaa.Values)
}

func TestBuildRecordSet_NoAddressesNoRecord(t *testing.T) {
	ep := domain.Endpoint{ID: 1, Name: "node", Containers: []domain.Container{{
		ID:       "abcdef123456",
		Networks: map[string]domain.NetworkAttachment{"none": {}},
	}}}

	rs, err := BuildRecordSet([]domain.Endpoint{ep}, labZones, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, rs.Has("abcdef.node.lab.internal", domain.RecordA))
	assert.False(t, rs.Has("abcdef.node.lab.internal", domain.RecordAAAA))
}

func TestBuildRecordSet_DeterministicUnderPermutation(t *testing.T) {
	endpoints := []domain.Endpoint{
		prodNode(),
		{
			ID:   2,
			Name: "Backup Node",
			Containers: []domain.Container{
				{ID: "111111aaaaaa", Names: []string{"/db", "/db-primary"}, Networks: map[string]domain.NetworkAttachment{
					"a": {IPv4: "10.1.0.2"}, "b": {IPv4: "10.2.0.2", IPv6: "fd00::2"}, "c": {IPv6: "fd00::3"},
				}},
				{ID: "222222bbbbbb", Names: []string{"/cache"}, Networks: map[string]domain.NetworkAttachment{"a": {IPv4: "10.1.0.3"}}},
				{ID: "333333cccccc", Names: []string{"/agent"}, HostNetwork: true},
			},
		},
	}

	reference, err := BuildRecordSet(endpoints, labZones, zerolog.Nop())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]domain.Endpoint, len(endpoints))
		for j, ep := range endpoints {
			containers := append([]domain.Container(nil), ep.Containers...)
			rng.Shuffle(len(containers), func(a, b int) { containers[a], containers[b] = containers[b], containers[a] })
			for k := range containers {
				names := append([]string(nil), containers[k].Names...)
				rng.Shuffle(len(names), func(a, b int) { names[a], names[b] = names[b], names[a] })
				containers[k].Names = names
			}
			ep.Containers = containers
			shuffled[j] = ep
		}
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := BuildRecordSet(shuffled, labZones, zerolog.Nop())
		require.NoError(t, err)
		assert.True(t, reference.Equal(got), "permutation %d differs", i)
	}
}

func TestBuildRecordSet_Sanitization(t *testing.T) {
	ep := domain.Endpoint{ID: 1, Name: "Rack 2.Shelf", Containers: []domain.Container{{
		ID:       "ABCDEF123456",
		Names:    []string{"/My App", "/webapp/db"},
		Networks: map[string]domain.NetworkAttachment{},
	}}}

	rs, err := BuildRecordSet([]domain.Endpoint{ep}, labZones, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, rs.Has("rack-2-shelf.lab.internal", domain.RecordCNAME))
	rec, ok := rs.Get("my-app.rack-2-shelf.lab.internal", domain.RecordCNAME)
	require.True(t, ok)
	assert.Equal(t, []string{"abcdef.rack-2-shelf.lab.internal"}, rec.Values)
	assert.Equal(t, 2, rs.Len(), "link alias must not be published")
}

func TestBuildRecordSet_InvalidRecordSkipped(t *testing.T) {
	ep := domain.Endpoint{ID: 1, Name: "node", Containers: []domain.Container{{
		ID:       "abcdef123456",
		Networks: map[string]domain.NetworkAttachment{"bridge": {IPv4: "not-an-ip"}},
	}}}

	rs, err := BuildRecordSet([]domain.Endpoint{ep}, labZones, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, rs.Has("abcdef.node.lab.internal", domain.RecordA))
}

func TestBuildRecordSet_MalformedInput(t *testing.T) {
	tests := []struct {
		name     string
		endpoint domain.Endpoint
	}{
		{"blank endpoint name", domain.Endpoint{ID: 3, Name: "  "}},
		{"container without id", domain.Endpoint{ID: 3, Name: "node", Containers: []domain.Container{{Names: []string{"/x"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRecordSet([]domain.Endpoint{tt.endpoint}, labZones, zerolog.Nop())
			var normErr *domain.NormalizationError
			assert.True(t, errors.As(err, &normErr), "got %v", err)
		})
	}
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "prod-node", SanitizeLabel("Prod Node"))
	assert.Equal(t, "a-b-c", SanitizeLabel("a.b c"))
	assert.Equal(t, "web", SanitizeLabel(" web "))
	assert.Equal(t, "", SanitizeLabel(" . "))
}
