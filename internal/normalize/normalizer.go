package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

// timestampLayouts are the spellings the feed has used over the product's
// lifetime, tried in order. All layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04",
	"02-01-2006",
}

// Normalizer extracts the canonical store id, timestamp, and answer map
// from a raw feed record.
// ⭐ SSOT: 레코드 정규화는 여기서만 — 타임스탬프 파싱 실패 시 현재 시각
// 대체 금지, 무조건 거부.
type Normalizer struct {
	aliases contracts.AliasTable
	logger  *logger.Logger
}

// NewNormalizer creates a normalizer bound to an alias table.
func NewNormalizer(aliases contracts.AliasTable, log *logger.Logger) *Normalizer {
	return &Normalizer{aliases: aliases, logger: log}
}

// Normalize converts one raw record into a Submission. A record with a
// missing store id or an unparsable timestamp is rejected with a
// MalformedRecordError: substituting "now" for a broken timestamp would
// silently move the observation into the wrong monthly bucket.
func (n *Normalizer) Normalize(rec contracts.RawRecord) (contracts.Submission, error) {
	storeID, err := n.resolveStoreID(rec.Fields)
	if err != nil {
		return contracts.Submission{}, err
	}

	submittedAt, err := n.resolveTimestamp(rec.Fields)
	if err != nil {
		return contracts.Submission{}, err
	}

	return contracts.Submission{
		StoreID:     storeID,
		SubmittedAt: submittedAt,
		Answers:     n.answerFields(rec.Fields),
		Remarks:     rec.Remarks,
		PhotoRefs:   rec.PhotoRefs,
	}, nil
}

// NormalizeBatch normalizes every record it can and reports the rest.
// Partial success: rejected records are excluded and listed, never silently
// dropped and never aborting the batch.
func (n *Normalizer) NormalizeBatch(records []contracts.RawRecord) ([]contracts.Submission, []contracts.RejectedRecord) {
	submissions := make([]contracts.Submission, 0, len(records))
	var rejected []contracts.RejectedRecord

	for i, rec := range records {
		sub, err := n.Normalize(rec)
		if err != nil {
			rejected = append(rejected, contracts.RejectedRecord{Index: i, Reason: err.Error()})
			continue
		}
		submissions = append(submissions, sub)
	}

	if len(rejected) > 0 && n.logger != nil {
		n.logger.WithFields(map[string]interface{}{
			"rejected": len(rejected),
			"total":    len(records),
		}).Warn("Some records could not be normalized")
	}

	return submissions, rejected
}

// resolveStoreID locates the store identifier among its historical
// spellings. Empty after trimming counts as missing.
func (n *Normalizer) resolveStoreID(fields map[string]interface{}) (string, error) {
	raw, ok := n.aliases.Resolve(fields, contracts.FieldStoreID)
	if !ok {
		return "", &contracts.MalformedRecordError{Field: contracts.FieldStoreID, Reason: "field not found"}
	}

	storeID := strings.TrimSpace(stringValue(raw))
	if storeID == "" {
		return "", &contracts.MalformedRecordError{Field: contracts.FieldStoreID, Reason: "empty value"}
	}

	return storeID, nil
}

// resolveTimestamp locates and parses the submission instant.
func (n *Normalizer) resolveTimestamp(fields map[string]interface{}) (time.Time, error) {
	raw, ok := n.aliases.Resolve(fields, contracts.FieldSubmittedAt)
	if !ok {
		return time.Time{}, &contracts.MalformedRecordError{Field: contracts.FieldSubmittedAt, Reason: "field not found"}
	}

	ts, ok := parseTimestamp(raw)
	if !ok {
		return time.Time{}, &contracts.MalformedRecordError{
			Field:  contracts.FieldSubmittedAt,
			Reason: "unparsable value " + strings.TrimSpace(stringValue(raw)),
		}
	}

	return ts, nil
}

// answerFields copies every field that is not a store-id or timestamp
// spelling. Remarks and photo references inside the field map pass through
// untouched; the evaluator ignores keys it has no question for.
func (n *Normalizer) answerFields(fields map[string]interface{}) map[string]interface{} {
	reserved := make(map[string]bool)
	for _, canonical := range []string{contracts.FieldStoreID, contracts.FieldSubmittedAt} {
		reserved[strings.ToLower(canonical)] = true
		for _, alias := range n.aliases[canonical] {
			reserved[strings.ToLower(alias)] = true
		}
	}

	answers := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if reserved[strings.ToLower(k)] {
			continue
		}
		answers[k] = v
	}

	return answers
}

// parseTimestamp accepts the value types the feed delivers: an already
// parsed time, a unix-seconds number, or a string in a known layout.
func parseTimestamp(raw interface{}) (time.Time, bool) {
	switch t := raw.(type) {
	case time.Time:
		return t, !t.IsZero()
	case float64:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.Unix(t, 0).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// stringValue renders a field value for identifier use. Legacy exports
// occasionally deliver numeric store codes.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
