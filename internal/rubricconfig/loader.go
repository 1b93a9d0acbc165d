package rubricconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

// Document is the externally supplied rubric configuration: the checklist
// definition plus the alias table of historical field spellings. Loaded
// once per session and treated as immutable; hot-reload is handing a fresh
// Document to the next call.
type Document struct {
	Rubric  contracts.Rubric     `json:"rubric" yaml:"rubric"`
	Aliases contracts.AliasTable `json:"aliases" yaml:"aliases"`
}

// Load reads a YAML rubric document and returns it with the raw bytes.
// KnownFields(true): a typo'd or stale field fails loudly instead of
// silently dropping a question weight.
func Load(path string) (*Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read rubric config: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, data, err
	}

	return doc, data, nil
}

// Parse decodes and validates a rubric document from raw YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInvalidRubric, err)
	}

	if err := doc.Rubric.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Hash generates a deterministic SHA-256 over the document's canonical
// JSON. Used as the rubric-version component of derived-value cache keys:
// same document, same hash, byte for byte.
func Hash(doc *Document) (string, error) {
	jsonBytes, err := json.Marshal(struct {
		Rubric  contracts.Rubric `json:"rubric"`
		Aliases []aliasPair      `json:"aliases"`
	}{
		Rubric:  doc.Rubric,
		Aliases: sortedAliases(doc.Aliases),
	})
	if err != nil {
		return "", fmt.Errorf("hash rubric config: %w", err)
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// aliasPair fixes map ordering for hash reproducibility.
type aliasPair struct {
	Canonical string   `json:"canonical"`
	Spellings []string `json:"spellings"`
}

func sortedAliases(a contracts.AliasTable) []aliasPair {
	pairs := make([]aliasPair, 0, len(a))
	for canonical, spellings := range a {
		pairs = append(pairs, aliasPair{Canonical: canonical, Spellings: spellings})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Canonical < pairs[j].Canonical })
	return pairs
}
