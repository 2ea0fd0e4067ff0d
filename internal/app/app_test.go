package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/auto-dns/portainer-dns-sync/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryFixture = `[{"Id": 1, "Name": "Prod Node", "Snapshots": [{"DockerSnapshotRaw": {"Containers": [
  {"Id": "abcdef123456", "Names": ["/web"], "HostConfig": {"NetworkMode": "bridge"},
   "NetworkSettings": {"Networks": {"bridge": {"IPAddress": "10.0.0.5"}}}}
]}}]}]`

type fakePowerDNS struct {
	mu       sync.Mutex
	patches  []map[string]any
	rectify  int
	zoneJSON string
}

func (f *fakePowerDNS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/servers/localhost/zones/lab.internal.":
		_, _ = io.WriteString(w, f.zoneJSON)
	case r.Method == http.MethodPatch && r.URL.Path == "/api/v1/servers/localhost/zones/lab.internal.":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.patches = append(f.patches, body)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPut && r.URL.Path == "/api/v1/servers/localhost/zones/lab.internal./rectify":
		f.rectify++
		_, _ = io.WriteString(w, `{"result": "Rectified"}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestConfig(portainerURL, powerdnsURL string) *config.Config {
	return &config.Config{
		App:       config.AppConfig{PollInterval: time.Second},
		DNS:       config.DNSConfig{Zone: "lab.internal", BaseZone: "lab.internal"},
		Portainer: config.PortainerConfig{APIEndpoint: portainerURL + "/api", APIToken: "ptr", Timeout: time.Second},
		PowerDNS:  config.PowerDNSConfig{APIEndpoint: powerdnsURL + "/api/v1", APIToken: "pdns", ServerID: "localhost", Timeout: time.Second},
		Logging:   config.LoggingConfig{Level: "DEBUG"},
		Etcd:      config.EtcdConfig{LockKey: "portainer-dns-sync"},
	}
}

func TestApp_RunOnceSyncsZone(t *testing.T) {
	portainer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/endpoints", r.URL.Path)
		assert.Equal(t, "ptr", r.Header.Get("X-API-Key"))
		_, _ = io.WriteString(w, inventoryFixture)
	}))
	defer portainer.Close()

	pdns := &fakePowerDNS{zoneJSON: `{"name": "lab.internal.", "rrsets": [
		{"name": "lab.internal.", "type": "SOA", "ttl": 3600, "records": [{"content": "ns1. admin. 1 3600 600 86400 60", "disabled": false}]},
		{"name": "old.lab.internal.", "type": "CNAME", "ttl": 60, "records": [{"content": "gone.lab.internal.", "disabled": false}]}
	]}`}
	powerdnsSrv := httptest.NewServer(pdns)
	defer powerdnsSrv.Close()

	a, err := New(newTestConfig(portainer.URL, powerdnsSrv.URL), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.RunOnce(context.Background()))

	pdns.mu.Lock()
	defer pdns.mu.Unlock()
	require.Len(t, pdns.patches, 1)
	assert.Equal(t, 1, pdns.rectify)

	rrsets, ok := pdns.patches[0]["rrsets"].([]any)
	require.True(t, ok)
	require.Len(t, rrsets, 4)

	first := rrsets[0].(map[string]any)
	assert.Equal(t, "old.lab.internal.", first["name"])
	assert.Equal(t, "DELETE", first["changetype"])

	names := map[string]string{}
	for _, rr := range rrsets[1:] {
		m := rr.(map[string]any)
		assert.Equal(t, "REPLACE", m["changetype"])
		names[m["name"].(string)] = m["type"].(string)
	}
	assert.Equal(t, map[string]string{
		"abcdef.prod-node.lab.internal.": "A",
		"prod-node.lab.internal.":        "CNAME",
		"web.prod-node.lab.internal.":    "CNAME",
	}, names)
}

func TestApp_RunOnceReportsProviderFailure(t *testing.T) {
	portainer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer portainer.Close()
	powerdnsSrv := httptest.NewServer(&fakePowerDNS{zoneJSON: `{"rrsets": []}`})
	defer powerdnsSrv.Close()

	a, err := New(newTestConfig(portainer.URL, powerdnsSrv.URL), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Error(t, a.RunOnce(context.Background()))
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	portainer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer portainer.Close()
	powerdnsSrv := httptest.NewServer(&fakePowerDNS{zoneJSON: `{"rrsets": []}`})
	defer powerdnsSrv.Close()

	a, err := New(newTestConfig(portainer.URL, powerdnsSrv.URL), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
