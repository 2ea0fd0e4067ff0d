package domain

// Endpoint is a host managed by the inventory platform, with the containers seen on it.
type Endpoint struct {
	ID         int
	Name       string
	Containers []Container
}

type Container struct {
	ID          string
	Names       []string
	Networks    map[string]NetworkAttachment
	HostNetwork bool
}

// NetworkAttachment is the addressing of a container on one network. Either address may be empty.
type NetworkAttachment struct {
	IPv4 string
	IPv6 string
}

const shortIDLength = 6

func (c Container) ShortID() string {
	if len(c.ID) < shortIDLength {
		return c.ID
	}
	return c.ID[:shortIDLength]
}
