package instruments

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// csvRow mirrors the broker's scrip master columns we care about.
type csvRow struct {
	SecurityID string `csv:"SECURITY_ID"`
	Name       string `csv:"UNDERLYING_SYMBOL"`
}

// Record is one immutable instrument reference entry.
type Record struct {
	SecurityID  string
	DisplayName string
	SearchName  string // normalized: lowercase, suffixes and punctuation stripped
	AbbrevName  string // SearchName with common corporate words abbreviated
}

// Catalog holds the instrument reference table, loaded once at startup.
// Records keep their source order so tie-breaks are stable.
type Catalog struct {
	records []Record
}

// corporate suffix tokens dropped during normalization
var suffixTokens = []string{"limited", "ltd"}

// abbreviations applied to build the abbreviation form
var abbrevWords = map[string]string{
	"industries":    "ind",
	"technologies":  "tech",
	"technology":    "tech",
	"corporation":   "corp",
	"enterprises":   "ent",
	"international": "intl",
	"laboratories":  "labs",
}

// LoadCatalog reads the instrument master CSV and precomputes search forms.
func LoadCatalog(ctx context.Context, path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instrument master: %w", err)
	}
	defer f.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse instrument master: %w", err)
	}

	c := &Catalog{records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		if row.SecurityID == "" || row.Name == "" {
			continue
		}
		search := Normalize(row.Name)
		c.records = append(c.records, Record{
			SecurityID:  row.SecurityID,
			DisplayName: row.Name,
			SearchName:  search,
			AbbrevName:  abbreviate(search),
		})
	}

	if len(c.records) == 0 {
		return nil, fmt.Errorf("instrument master %s contained no usable rows", path)
	}

	logger.Info(ctx, "Instrument catalog loaded", "path", path, "records", len(c.records))
	return c, nil
}

// NewCatalog builds a catalog from in-memory records (tests, fixtures).
func NewCatalog(records []Record) *Catalog {
	return &Catalog{records: records}
}

// NewRecord precomputes the search forms for a display name.
func NewRecord(securityID, displayName string) Record {
	search := Normalize(displayName)
	return Record{
		SecurityID:  securityID,
		DisplayName: displayName,
		SearchName:  search,
		AbbrevName:  abbreviate(search),
	}
}

// Len returns the number of loaded records.
func (c *Catalog) Len() int { return len(c.records) }

// Normalize lowercases a spoken or listed name and strips corporate
// suffixes and punctuation, matching the precomputed search names.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(".", "", ",", "", "'", "").Replace(s)

	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		if isSuffixToken(w) {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func isSuffixToken(w string) bool {
	for _, t := range suffixTokens {
		if w == t {
			return true
		}
	}
	return false
}

func abbreviate(search string) string {
	words := strings.Fields(search)
	changed := false
	for i, w := range words {
		if short, ok := abbrevWords[w]; ok {
			words[i] = short
			changed = true
		}
	}
	if !changed {
		return ""
	}
	return strings.Join(words, " ")
}

func (r Record) ref() types.InstrumentRef {
	return types.InstrumentRef{SecurityID: r.SecurityID, DisplayName: r.DisplayName}
}
