package bamext

import (
	"bytes"
	"strings"

	"cloud.google.com/go/storage"
)

var (
	// placeholderMD5 is the MD5 hash for a virtual blob-object used to denote
	// folders in GCS; the blob only contains the text "placeholder".
	placeholderMD5 = []byte{0x6a, 0x99, 0xc5, 0x75, 0xab, 0x87, 0xf8, 0xc7, 0xd1, 0xed, 0x1e, 0x52, 0xe7, 0xe3, 0x49, 0xce}
)

// FilterOutVirtualGcsFolders is a predicate function which removes the GCS
// virtual folders by requiring the name to end with "/" and the hash to match
// "placeholder" content.
func FilterOutVirtualGcsFolders(objAttr *storage.ObjectAttrs) bool {
	return !(strings.HasSuffix(objAttr.Name, "/") && bytes.Equal(objAttr.MD5, placeholderMD5))
}

// CombineFilters creates an object-filter function by "AND"-ing all filters.
func CombineFilters(filters ...func(*storage.ObjectAttrs) bool) func(*storage.ObjectAttrs) bool {
	return func(o *storage.ObjectAttrs) bool {
		for _, f := range filters {
			if !f(o) {
				return false
			}
		}
		return true
	}
}
