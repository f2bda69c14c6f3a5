package api

import "strings"

// PlaceholderImage is served when an image cannot be resolved.
const PlaceholderImage = "/images/placeholder.png"

// ImageResolver turns stored image keys into absolute asset URLs.
type ImageResolver struct {
	BaseURL string
}

// Resolve returns the asset URL for key. Without a base URL or key the
// placeholder is returned; absolute URLs pass through.
func (r ImageResolver) Resolve(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	base := strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
	if base == "" {
		return PlaceholderImage
	}
	return base + "/" + strings.TrimLeft(key, "/")
}

// Product returns p with ImageURL resolved.
func (r ImageResolver) Product(p Product) Product {
	p.ImageURL = r.Resolve(p.ImageKey)
	return p
}

// Funding returns f with ImageURL resolved.
func (r ImageResolver) Funding(f Funding) Funding {
	f.ImageURL = r.Resolve(f.ImageKey)
	return f
}
