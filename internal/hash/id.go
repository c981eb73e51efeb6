package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// NameID computes the ID of a SAS name. SAS names are case-insensitive, so the
// name is upper-cased before hashing.
func NameID(name string) uint64 {
	return xxhash.Sum64String(strings.ToUpper(name))
}
