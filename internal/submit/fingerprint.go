package submit

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the values of a row in header order. Two rows with the
// same cell contents under the same headers share a fingerprint.
func Fingerprint(headers []string, values map[string]string) string {
	d := xxhash.New()

	for _, h := range headers {
		_, _ = d.WriteString(h)
		_, _ = d.Write([]byte{0x1f})
		_, _ = d.WriteString(values[h])
		_, _ = d.Write([]byte{0x1e})
	}

	return fmt.Sprintf("%016x", d.Sum64())
}
