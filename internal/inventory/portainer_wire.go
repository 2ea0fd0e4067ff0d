package inventory

import (
	"strings"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/docker/docker/api/types/container"
)

const hostNetwork = "host"

// portainerEndpoint is the subset of Portainer's endpoint listing that carries container state.
type portainerEndpoint struct {
	ID        int                 `json:"Id"`
	Name      string              `json:"Name"`
	Snapshots []portainerSnapshot `json:"Snapshots"`
}

type portainerSnapshot struct {
	DockerSnapshotRaw *dockerSnapshotRaw `json:"DockerSnapshotRaw"`
}

// dockerSnapshotRaw embeds Docker Engine API payloads verbatim.
type dockerSnapshotRaw struct {
	Containers []container.Summary `json:"Containers"`
}

func fromPortainerEndpoint(e portainerEndpoint) (domain.Endpoint, error) {
	if strings.TrimSpace(e.Name) == "" {
		return domain.Endpoint{}, domain.NewNormalizationError("endpoint %d has no name", e.ID)
	}
	if len(e.Snapshots) == 0 {
		return domain.Endpoint{}, domain.NewNormalizationError("endpoint %q has no snapshot", e.Name)
	}
	raw := e.Snapshots[0].DockerSnapshotRaw
	if raw == nil || raw.Containers == nil {
		return domain.Endpoint{}, domain.NewNormalizationError("endpoint %q snapshot has no container list", e.Name)
	}

	endpoint := domain.Endpoint{
		ID:         e.ID,
		Name:       e.Name,
		Containers: make([]domain.Container, 0, len(raw.Containers)),
	}
	for _, c := range raw.Containers {
		ctr, err := fromContainerSummary(e.Name, c)
		if err != nil {
			return domain.Endpoint{}, err
		}
		endpoint.Containers = append(endpoint.Containers, ctr)
	}
	return endpoint, nil
}

func fromContainerSummary(endpointName string, c container.Summary) (domain.Container, error) {
	if c.ID == "" {
		return domain.Container{}, domain.NewNormalizationError("container without Id on endpoint %q", endpointName)
	}
	if c.NetworkSettings == nil {
		return domain.Container{}, domain.NewNormalizationError("container %s on endpoint %q has no network settings", c.ID, endpointName)
	}

	ctr := domain.Container{
		ID:          c.ID,
		Names:       c.Names,
		Networks:    make(map[string]domain.NetworkAttachment, len(c.NetworkSettings.Networks)),
		HostNetwork: c.HostConfig.NetworkMode == hostNetwork,
	}
	for name, settings := range c.NetworkSettings.Networks {
		if name == hostNetwork {
			ctr.HostNetwork = true
		}
		if settings == nil {
			ctr.Networks[name] = domain.NetworkAttachment{}
			continue
		}
		ctr.Networks[name] = domain.NetworkAttachment{
			IPv4: settings.IPAddress,
			IPv6: settings.GlobalIPv6Address,
		}
	}
	return ctr, nil
}
