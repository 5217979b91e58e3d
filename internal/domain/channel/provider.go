package channel

import (
	"fmt"
	"strings"
)

// Provider identifies a social platform a channel is linked to.
type Provider string

const (
	ProviderTikTok    Provider = "tiktok"
	ProviderInstagram Provider = "instagram"
	ProviderYouTube   Provider = "youtube"
	ProviderTwitter   Provider = "twitter"
	ProviderFacebook  Provider = "facebook"
)

var allProviders = []Provider{
	ProviderTikTok,
	ProviderInstagram,
	ProviderYouTube,
	ProviderTwitter,
	ProviderFacebook,
}

// Providers returns every supported provider in a stable order.
func Providers() []Provider {
	out := make([]Provider, len(allProviders))
	copy(out, allProviders)
	return out
}

// ParseProvider accepts a provider name in any case. "x" is accepted as Twitter.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "x" {
		return ProviderTwitter, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
	return p, nil
}

func (p Provider) IsValid() bool {
	for _, known := range allProviders {
		if p == known {
			return true
		}
	}
	return false
}

// UsesPKCE reports whether the provider's authorize step carries a PKCE challenge.
func (p Provider) UsesPKCE() bool {
	return p == ProviderTikTok || p == ProviderTwitter
}

func (p Provider) String() string {
	return string(p)
}
