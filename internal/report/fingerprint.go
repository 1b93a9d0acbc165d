package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

// Fingerprint computes a stable identity for a batch of raw records.
// Combined with the rubric hash and cutoff it keys the derived-report cache:
// same inputs, same report, so a hit is always safe to serve.
func Fingerprint(records []contracts.RawRecord) (string, error) {
	h := sha256.New()

	// json.Marshal sorts map keys, so each record serializes canonically.
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("fingerprint record %d: %w", i, err)
		}
		h.Write(data)
		h.Write([]byte{0}) // record separator
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
