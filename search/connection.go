package search

import (
	"net/url"
	"strings"
	"time"

	"github.com/rflorenc/azure-search-workbench/faults"
)

// DefaultAPIVersion is sent as api-version when a Connection leaves it empty.
const DefaultAPIVersion = "2020-06-30"

// Environment variables read by internal/config.
const (
	EnvURL        = "AZURE_SEARCH_URL"
	EnvQueryKey   = "AZURE_SEARCH_API_KEY"
	EnvAdminKey   = "AZURE_SEARCH_ADMIN_API_KEY"
	EnvAPIVersion = "AZURE_SEARCH_API_VERSION"
)

// Connection describes one search service endpoint and its keys.
type Connection struct {
	URL        string        `yaml:"url" json:"url"`
	QueryKey   string        `yaml:"query_key" json:"query_key"`
	AdminKey   string        `yaml:"admin_key" json:"admin_key"`
	APIVersion string        `yaml:"api_version" json:"api_version"`
	Insecure   bool          `yaml:"insecure" json:"insecure"` // skip TLS verification
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
}

// BaseURL returns the service URL without a trailing slash.
func (c Connection) BaseURL() string {
	return strings.TrimRight(c.URL, "/")
}

// Version returns the api-version to send.
func (c Connection) Version() string {
	if c.APIVersion == "" {
		return DefaultAPIVersion
	}
	return c.APIVersion
}

// Validate checks the URL and admin key. The query key is only required by
// query operations and is checked when one is issued.
func (c Connection) Validate() error {
	if c.URL == "" {
		return faults.Configf("search service URL is not set (%s)", EnvURL)
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return faults.Configf("search service URL %q must be an absolute http(s) URL", c.URL)
	}
	if c.AdminKey == "" {
		return faults.Configf("admin API key is not set (%s)", EnvAdminKey)
	}
	return nil
}

func (c Connection) key(admin bool) (string, error) {
	if admin {
		if c.AdminKey == "" {
			return "", faults.Configf("admin API key is not set (%s)", EnvAdminKey)
		}
		return c.AdminKey, nil
	}
	if c.QueryKey == "" {
		return "", faults.Configf("query API key is not set (%s)", EnvQueryKey)
	}
	return c.QueryKey, nil
}
