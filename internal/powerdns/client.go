package powerdns

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/auto-dns/portainer-dns-sync/internal/apiclient"
	"github.com/auto-dns/portainer-dns-sync/internal/config"
	"github.com/rs/zerolog"
)

// Client talks to the zone resource of the PowerDNS authoritative HTTP API.
type Client struct {
	api     *apiclient.Client
	zoneURL string
	logger  zerolog.Logger
}

// NewClient targets {api_endpoint}/servers/{server_id}/zones/{zone}.
func NewClient(cfg *config.PowerDNSConfig, zone string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		api:     apiclient.New(httpClient, cfg.APIToken, cfg.Timeout),
		zoneURL: fmt.Sprintf("%s/servers/%s/zones/%s", cfg.APIEndpoint, url.PathEscape(cfg.ServerID), url.PathEscape(Canonical(zone))),
		logger:  logger.With().Str("component", "powerdns").Str("zone", Canonical(zone)).Logger(),
	}
}

func (c *Client) ZoneURL() string {
	return c.zoneURL
}

// GetZone returns the current rrsets of the zone.
func (c *Client) GetZone(ctx context.Context) (*Zone, error) {
	c.logger.Debug().Msg("Fetching zone")
	resp, err := c.api.Do(ctx, http.MethodGet, c.zoneURL, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIError(OpFetch, resp.StatusCode, resp.Body)
	}
	var zone Zone
	if err := json.Unmarshal(resp.Body, &zone); err != nil {
		return nil, fmt.Errorf("decode zone: %w", err)
	}
	c.logger.Debug().Int("rrsets", len(zone.RRSets)).Msg("Fetched zone")
	return &zone, nil
}

// PatchZone submits rrset changes; PowerDNS applies them in order.
func (c *Client) PatchZone(ctx context.Context, rrsets []RRSet) error {
	c.logger.Debug().Int("rrsets", len(rrsets)).Msg("Patching zone")
	resp, err := c.api.Do(ctx, http.MethodPatch, c.zoneURL, patchRequest{RRSets: rrsets})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return NewAPIError(OpUpdate, resp.StatusCode, resp.Body)
	}
	return nil
}

// RectifyZone asks PowerDNS to recompute ordering and auth metadata after raw edits.
func (c *Client) RectifyZone(ctx context.Context) error {
	c.logger.Debug().Msg("Rectifying zone")
	resp, err := c.api.Do(ctx, http.MethodPut, c.zoneURL+"/rectify", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return NewAPIError(OpRectify, resp.StatusCode, resp.Body)
	}
	return nil
}
