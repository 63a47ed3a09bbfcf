package bytecode

import "github.com/cespare/xxhash/v2"

// Fingerprint returns a 64-bit hash of the unit and all nested units. Two
// units with the same fingerprint were compiled to the same bytes, tables
// and metadata.
func (c *Code) Fingerprint() (uint64, error) {
	data, err := Marshal(c)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
