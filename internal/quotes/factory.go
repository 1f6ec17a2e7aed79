package quotes

import (
	"fmt"
	"strings"

	"github.com/wonny/qmoney/pkg/config"
	"github.com/wonny/qmoney/pkg/httputil"
	"github.com/wonny/qmoney/pkg/logger"
)

// Providers lists the supported provider names
func Providers() []string {
	return []string{ProviderTiingo, ProviderAlphavantage}
}

// NewService builds the provider named by name.
// An empty name falls back to cfg.Provider; an unknown name is an error.
func NewService(name string, cfg config.QuoteConfig, httpClient *httputil.Client, log *logger.Logger) (Service, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = strings.ToLower(cfg.Provider)
	}

	switch name {
	case ProviderTiingo:
		return NewTiingoClient(httpClient, cfg.TiingoBaseURL, cfg.TiingoToken, log), nil
	case ProviderAlphavantage:
		return NewAlphavantageClient(httpClient, cfg.AlphavantageBaseURL, cfg.AlphavantageAPIKey, log), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownProvider, name, strings.Join(Providers(), ", "))
	}
}
