package configuration

import (
	"strings"

	"playlist-exporter/domain/apperror"
)

// DefaultOutputPath is the file written by the export command when no path is configured
const DefaultOutputPath = "youtube_playlist.csv"

// Export holds the playlist export settings
type Export struct {
	APIKey      string `json:"apiKey" mapstructure:"apiKey"`
	AccessToken string `json:"accessToken" mapstructure:"accessToken"`
	PlaylistID  string `json:"playlistId" mapstructure:"playlistId"`
	OutputPath  string `json:"outputPath" mapstructure:"outputPath"`
	PageSize    int64  `json:"pageSize" mapstructure:"pageSize"`
	BatchSize   int    `json:"batchSize" mapstructure:"batchSize"`
	Endpoint    string `json:"endpoint" mapstructure:"endpoint"`
	Ingest      bool   `json:"ingest" mapstructure:"ingest"`
}

// HasCredential reports whether an API key or an access token is available
func (e Export) HasCredential() bool {
	return e.APIKey != "" || e.AccessToken != ""
}

// ValidateExport checks the settings needed to talk to the API.
// The playlist ID is only required for the CLI export; the server takes it from the URL.
func (c *Config) ValidateExport(requirePlaylist bool) error {
	if !c.Export.HasCredential() {
		return apperror.ErrMissingCredential
	}
	if requirePlaylist && strings.TrimSpace(c.Export.PlaylistID) == "" {
		return apperror.ErrMissingPlaylistID
	}
	return nil
}

func initExport(c *Config) {
	c.Export.APIKey = stripPlaceholder(c.Export.APIKey)
	c.Export.AccessToken = stripPlaceholder(c.Export.AccessToken)
	c.Export.PlaylistID = stripPlaceholder(strings.TrimSpace(c.Export.PlaylistID))
	if c.Export.OutputPath == "" {
		c.Export.OutputPath = DefaultOutputPath
	}
	if c.Export.PageSize <= 0 || c.Export.PageSize > DefaultPageSize {
		c.Export.PageSize = DefaultPageSize
	}
	if c.Export.BatchSize <= 0 || c.Export.BatchSize > DefaultBatchSize {
		c.Export.BatchSize = DefaultBatchSize
	}
}

// stripPlaceholder drops template values such as YOUR_YOUTUBE_API_KEY left in sample config files
func stripPlaceholder(value string) string {
	if strings.HasPrefix(value, "YOUR_") || strings.HasPrefix(strings.ToLower(value), "your_") {
		return ""
	}
	return value
}
