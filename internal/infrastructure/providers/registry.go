package providers

import (
	"fmt"
	"net/http"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/config"
)

// Registry maps each provider to its adapter. Providers without a client id
// are left out, so lookups for them report ErrProviderNotConfigured.
type Registry struct {
	adapters map[channel.Provider]channel.ProviderAdapter
}

// CallbackURLFunc returns the redirect URI registered for a provider.
type CallbackURLFunc func(provider string) string

func NewRegistry(cfg config.OAuthConfig, callbackURL CallbackURLFunc, httpClient *http.Client) *Registry {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultHTTPTimeout)
	}

	r := &Registry{adapters: make(map[channel.Provider]channel.ProviderAdapter)}
	register := func(creds config.ProviderCredentials, p channel.Provider, build func(config.ProviderCredentials, string, *http.Client) channel.ProviderAdapter) {
		if !creds.IsConfigured() {
			return
		}
		r.adapters[p] = build(creds, callbackURL(p.String()), httpClient)
	}

	register(cfg.TikTok, channel.ProviderTikTok, func(c config.ProviderCredentials, u string, h *http.Client) channel.ProviderAdapter {
		return NewTikTokAdapter(c, u, h)
	})
	register(cfg.Instagram, channel.ProviderInstagram, func(c config.ProviderCredentials, u string, h *http.Client) channel.ProviderAdapter {
		return NewInstagramAdapter(c, u, h)
	})
	register(cfg.YouTube, channel.ProviderYouTube, func(c config.ProviderCredentials, u string, h *http.Client) channel.ProviderAdapter {
		return NewYouTubeAdapter(c, u, h)
	})
	register(cfg.Twitter, channel.ProviderTwitter, func(c config.ProviderCredentials, u string, h *http.Client) channel.ProviderAdapter {
		return NewTwitterAdapter(c, u, h)
	})
	register(cfg.Facebook, channel.ProviderFacebook, func(c config.ProviderCredentials, u string, h *http.Client) channel.ProviderAdapter {
		return NewFacebookAdapter(c, u, h)
	})

	return r
}

// NewStaticRegistry wraps a fixed set of adapters.
func NewStaticRegistry(adapters ...channel.ProviderAdapter) *Registry {
	r := &Registry{adapters: make(map[channel.Provider]channel.ProviderAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Provider()] = a
	}
	return r
}

func (r *Registry) Adapter(provider channel.Provider) (channel.ProviderAdapter, error) {
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: %q", channel.ErrUnsupportedProvider, provider)
	}
	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrProviderNotConfigured, provider)
	}
	return a, nil
}

// Configured lists the providers that have an adapter.
func (r *Registry) Configured() []channel.Provider {
	out := make([]channel.Provider, 0, len(r.adapters))
	for _, p := range channel.Providers() {
		if _, ok := r.adapters[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
