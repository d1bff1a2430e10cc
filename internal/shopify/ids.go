package shopify

import "strings"

const (
	gidPrefix        = "gid://"
	variantGIDPrefix = "gid://shopify/ProductVariant/"
)

// NormalizeVariantID returns id as a ProductVariant global id. Ids that
// already carry a gid:// scheme are returned unchanged.
func NormalizeVariantID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, gidPrefix) {
		return id
	}
	return variantGIDPrefix + id
}

// NumericID returns the segment after the last "/" of a global id.
func NumericID(gid string) string {
	if i := strings.LastIndex(gid, "/"); i >= 0 {
		return gid[i+1:]
	}
	return gid
}
