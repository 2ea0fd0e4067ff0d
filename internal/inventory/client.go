package inventory

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/auto-dns/portainer-dns-sync/internal/apiclient"
	"github.com/auto-dns/portainer-dns-sync/internal/config"
	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/rs/zerolog"
)

// PortainerClient lists endpoints and their container snapshots from the Portainer API.
type PortainerClient struct {
	api     *apiclient.Client
	baseURL string
	logger  zerolog.Logger
}

func NewPortainerClient(cfg *config.PortainerConfig, httpClient *http.Client, logger zerolog.Logger) *PortainerClient {
	return &PortainerClient{
		api:     apiclient.New(httpClient, cfg.APIToken, cfg.Timeout),
		baseURL: cfg.APIEndpoint,
		logger:  logger.With().Str("component", "portainer").Logger(),
	}
}

func (pc *PortainerClient) ListEndpoints(ctx context.Context) ([]domain.Endpoint, error) {
	url := pc.baseURL + "/endpoints"
	pc.logger.Debug().Str("url", url).Msg("Fetching endpoints")

	resp, err := pc.api.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewFetchError(resp.StatusCode, resp.Body)
	}

	var wire []portainerEndpoint
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, domain.NewNormalizationError("decode endpoints: %v", err)
	}

	endpoints := make([]domain.Endpoint, 0, len(wire))
	for _, e := range wire {
		endpoint, err := fromPortainerEndpoint(e)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, endpoint)
	}
	pc.logger.Debug().Int("endpoints", len(endpoints)).Msg("Fetched endpoints")
	return endpoints, nil
}
