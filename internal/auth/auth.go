// Package auth loads hosted-backend credentials. Credential storage itself
// is an external concern; this package only reads what the backend CLIs
// already persist.
package auth

import (
	"encoding/json"
	"os"

	"github.com/naoko-ai/naoko/internal/config"
	"github.com/naoko-ai/naoko/internal/logging"
	"github.com/naoko-ai/naoko/internal/util"
)

// Token retrieves an API token from a JSON auth file, accepting any of the
// key names the backend CLIs use. A missing or unreadable file yields "",
// not an error: the hosted tier treats absent credentials as "skip this
// backend", never as a run failure.
func Token(authFile string, logger *logging.Logger) string {
	if logger == nil {
		logger = logging.NopLogger()
	}
	path := config.ExpandHome(authFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read auth file", "path", path, "error", err)
		}
		return ""
	}

	var creds struct {
		APIKey      string `json:"api_key"`
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		logger.Warn("failed to parse auth file", "path", path, "error", err)
		return ""
	}

	token := creds.APIKey
	if token == "" {
		token = creds.Token
	}
	if token == "" {
		token = creds.AccessToken
	}
	if token == "" {
		logger.Warn("no token found in auth file", "path", path)
		return ""
	}

	logger.Debug("loaded hosted backend token", "prefix", util.MaskToken(token))
	return token
}
