package mathpix

import (
	"strings"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// Config holds the settings for a Mathpix API client.
type Config struct {
	// AppID and AppKey are the API credentials.
	AppID  string
	AppKey string

	// BaseURL is the API root. Empty means DefaultBaseURL.
	BaseURL string

	// AnonymiseUploads replaces the local filename with a random one
	// at submission, keeping document titles out of the remote account.
	AnonymiseUploads bool
}

// Validate checks that the config can authenticate.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AppID) == "" || strings.TrimSpace(c.AppKey) == "" {
		return domain.ErrNoCredentials
	}
	return nil
}

// baseURL returns the normalised API root.
func (c Config) baseURL() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}
