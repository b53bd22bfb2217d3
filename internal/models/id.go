package models

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	PrefixSnapshot = "s"
	PrefixBackup   = "b"
	PrefixIssue    = "i"

	idAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
	idSuffixLen  = 6
	idTimeLayout = "20060102_150405"

	// TimestampLayout is the UTC second-precision form used in records.
	TimestampLayout = "2006-01-02T15:04:05Z"
)

// NewID generates an id of the form <prefix>_<YYYYMMDD_HHMMSS>_<suffix>.
func NewID(prefix string, now time.Time) string {
	return prefix + "_" + now.UTC().Format(idTimeLayout) + "_" + randSuffix(idSuffixLen)
}

// Timestamp formats t for storage in a record.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func randSuffix(n int) string {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(idAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// Fall back to the clock if crypto/rand fails (extremely unlikely)
			out[i] = idAlphabet[time.Now().UnixNano()%int64(len(idAlphabet))]
			continue
		}
		out[i] = idAlphabet[idx.Int64()]
	}
	return string(out)
}
