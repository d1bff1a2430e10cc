package shopify

import (
	"fmt"
	"net/url"
	"strings"
)

// DomainPolicy decides the host of checkout URLs handed to shoppers.
type DomainPolicy struct {
	host string
}

// AsProvided keeps the URL returned by the platform.
func AsProvided() DomainPolicy {
	return DomainPolicy{}
}

// ForceHost rewrites the hostname of every checkout URL to host.
func ForceHost(host string) DomainPolicy {
	return DomainPolicy{host: strings.TrimSpace(host)}
}

// ParseDomainPolicy maps a configuration value onto a policy. An empty value
// or "as_provided" keeps URLs unchanged; anything else is a forced host.
func ParseDomainPolicy(value string) DomainPolicy {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "as_provided") {
		return AsProvided()
	}
	return ForceHost(value)
}

// Host returns the forced host, or "" for AsProvided.
func (p DomainPolicy) Host() string {
	return p.host
}

func (p DomainPolicy) String() string {
	if p.host == "" {
		return "as_provided"
	}
	return "force_host(" + p.host + ")"
}

// Apply rewrites only the hostname of raw. Scheme, port, path, query and
// fragment are preserved.
func (p DomainPolicy) Apply(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid checkout url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid checkout url %q: missing scheme or host", raw)
	}
	if p.host == "" {
		return raw, nil
	}

	if port := u.Port(); port != "" {
		u.Host = p.host + ":" + port
	} else {
		u.Host = p.host
	}
	return u.String(), nil
}
