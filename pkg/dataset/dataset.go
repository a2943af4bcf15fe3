// Package dataset parses the drug knowledge CSVs into an in-memory
// catalog and answers structured drug search and symptom matching
// queries against it.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/medassist-ai/medassist/backend/internal/util"

	"golang.org/x/sync/singleflight"
)

// DrugRecord is one row of the drug catalog.
type DrugRecord struct {
	Name        string   `json:"name"`
	Conditions  []string `json:"conditions"`
	Symptoms    []string `json:"symptoms"`
	SideEffects []string `json:"side_effects"`
	Description string   `json:"description,omitempty"`
}

// Catalog holds the parsed drug records plus lowercase lookup structures.
// Read-only after construction, safe for concurrent use.
type Catalog struct {
	records []DrugRecord
	byName  map[string]int
}

// ParseCatalog reads catalog CSV content. Expected header columns:
// drug_name, conditions, symptoms, side_effects and optionally
// description; the list columns are semicolon-separated. Unknown columns
// are ignored, rows with an empty drug name are skipped.
func ParseCatalog(content []byte) (*Catalog, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["drug_name"]; !ok {
		return nil, fmt.Errorf("catalog header missing drug_name column")
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return util.CleanText(record[i])
	}

	c := &Catalog{byName: make(map[string]int)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		name := field(record, "drug_name")
		if name == "" {
			continue
		}

		rec := DrugRecord{
			Name:        name,
			Conditions:  splitList(field(record, "conditions")),
			Symptoms:    splitList(field(record, "symptoms")),
			SideEffects: splitList(field(record, "side_effects")),
			Description: field(record, "description"),
		}
		c.byName[strings.ToLower(name)] = len(c.records)
		c.records = append(c.records, rec)
	}

	if len(c.records) == 0 {
		return nil, fmt.Errorf("catalog contains no drug records")
	}
	return c, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Len returns the number of catalog records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns all catalog records in file order.
func (c *Catalog) Records() []DrugRecord {
	return c.records
}

// Get looks up a record by case-insensitive drug name.
func (c *Catalog) Get(name string) (DrugRecord, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DrugRecord{}, false
	}
	return c.records[i], true
}

// Loader fetches and parses catalogs from raw content providers, caching
// the parsed result and collapsing concurrent loads of the same key.
type Loader struct {
	fetch func(key string) ([]byte, error)

	cache   map[string]*Catalog
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewLoader creates a Loader around a fetch function, typically reading
// from object storage.
func NewLoader(fetch func(key string) ([]byte, error)) *Loader {
	return &Loader{
		fetch: fetch,
		cache: make(map[string]*Catalog),
	}
}

// Load returns the parsed catalog for key, fetching and parsing it at
// most once per process regardless of concurrency.
func (l *Loader) Load(key string) (*Catalog, error) {
	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.fetch(key)
		if err != nil {
			return nil, err
		}

		catalog, err := ParseCatalog(content)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = catalog
		l.cacheMu.Unlock()

		return catalog, nil
	})

	if err != nil {
		return nil, err
	}
	return result.(*Catalog), nil
}
