package telemetry

import (
	"fmt"
	"net/url"
	"strings"
)

// DSN is a parsed ingestion endpoint URL of the form
// scheme://publickey@host[:port]/project.
type DSN struct {
	// Scheme is http or https.
	Scheme string

	// PublicKey is the credential embedded in the URL's user info.
	PublicKey string

	// Host is the ingestion host, including the port when present.
	Host string

	// Project is the project identifier (the URL path, without the slash).
	Project string
}

// ParseDSN parses and validates an ingestion DSN.
func ParseDSN(raw string) (*DSN, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid DSN %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid DSN %q: missing host", raw)
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("invalid DSN %q: missing public key", raw)
	}

	project := strings.Trim(u.Path, "/")
	if project == "" {
		return nil, fmt.Errorf("invalid DSN %q: missing project", raw)
	}

	return &DSN{
		Scheme:    u.Scheme,
		PublicKey: u.User.Username(),
		Host:      u.Host,
		Project:   project,
	}, nil
}

// Endpoint returns the exporter target address (host, with the default OTLP
// gRPC port when the DSN does not carry one).
func (d *DSN) Endpoint() string {
	if strings.Contains(d.Host, ":") {
		return d.Host
	}
	return d.Host + ":4317"
}

// Headers returns the authentication headers derived from the DSN credential.
func (d *DSN) Headers() map[string]string {
	return map[string]string{
		"x-observe-key":     d.PublicKey,
		"x-observe-project": d.Project,
	}
}
