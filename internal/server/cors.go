package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/uvify/apiserver/config"
)

// originPolicy decides which browser origins may call the API: an
// exact allow-list plus wildcard subdomain suffixes ("*.uvify.app").
type originPolicy struct {
	exact    map[string]struct{}
	suffixes []string
}

func newOriginPolicy(cfg config.CORSConfig) *originPolicy {
	exact := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		exact[strings.TrimRight(strings.ToLower(origin), "/")] = struct{}{}
	}

	suffixes := make([]string, 0, len(cfg.AllowedOriginSuffixes))
	for _, suffix := range cfg.AllowedOriginSuffixes {
		suffix = strings.ToLower(strings.TrimPrefix(suffix, "*"))
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		suffixes = append(suffixes, suffix)
	}

	return &originPolicy{exact: exact, suffixes: suffixes}
}

// Allow implements the go-chi/cors AllowOriginFunc signature.
func (p *originPolicy) Allow(r *http.Request, origin string) bool {
	normalized := strings.TrimRight(strings.ToLower(origin), "/")
	if _, ok := p.exact[normalized]; ok {
		return true
	}

	if u, err := url.Parse(normalized); err == nil {
		host := u.Hostname()
		for _, suffix := range p.suffixes {
			if strings.HasSuffix(host, suffix) {
				return true
			}
		}
	}

	slog.Warn("cors origin rejected", "origin", origin)
	return false
}
