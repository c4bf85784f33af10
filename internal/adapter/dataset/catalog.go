// Package dataset loads the static regional groundwater dataset and answers
// state, district and city lookups against it.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/groundwater-insights/internal/analysis"
	"github.com/couchcryptid/groundwater-insights/internal/domain"
)

//go:embed data/regions.json
var embedded []byte

// ErrNotFound is returned when a state, district or city is not in the dataset.
var ErrNotFound = errors.New("region not found")

// Record is one region's entry. City is empty for district-level records.
type Record struct {
	State     string  `json:"state"`
	District  string  `json:"district"`
	City      string  `json:"city,omitempty"`
	Year      int     `json:"year,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	domain.RegionMetrics

	HistoricalLevels []domain.HistoricalLevelPoint `json:"historicalLevels,omitempty"`
	MonthlyRainfall  []domain.MonthlyRainfallPoint `json:"monthlyRainfall,omitempty"`
}

// Key identifies the record as state/district[/city], lowercased.
func (r Record) Key() string {
	return regionKey(r.State, r.District, r.City)
}

// Name is the human-readable region name, most specific first.
func (r Record) Name() string {
	if r.City != "" {
		return r.City + ", " + r.District + ", " + r.State
	}
	return r.District + ", " + r.State
}

// Request turns the record into an analysis request.
func (r Record) Request() analysis.Request {
	return analysis.Request{
		Region:  r.Name(),
		Metrics: r.RegionMetrics,
		History: r.HistoricalLevels,
		Monthly: r.MonthlyRainfall,
	}
}

// Match is a search hit. Level is "state", "district" or "city".
type Match struct {
	Level    string `json:"level"`
	Name     string `json:"name"`
	State    string `json:"state"`
	District string `json:"district,omitempty"`
	City     string `json:"city,omitempty"`
}

type district struct {
	name   string
	cities []*Record
}

type state struct {
	name      string
	districts []*district
}

// Catalog is an immutable, indexed view of the dataset. It is safe for
// concurrent use.
type Catalog struct {
	records []Record
	states  []*state
	byKey   map[string]*Record
}

// Default loads the dataset compiled into the binary.
func Default(logger *slog.Logger) (*Catalog, error) {
	return Load(bytes.NewReader(embedded), logger)
}

// LoadFile loads a dataset from path, or the embedded dataset when path is empty.
func LoadFile(path string, logger *slog.Logger) (*Catalog, error) {
	if path == "" {
		return Default(logger)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open regions file: %w", err)
	}
	defer f.Close()
	return Load(f, logger)
}

// Load decodes a JSON array of records. Records without a state or district
// are rejected. Malformed series are dropped with a warning so the region
// falls back to synthesized data.
func Load(r io.Reader, logger *slog.Logger) (*Catalog, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}

	c := &Catalog{
		records: make([]Record, 0, len(records)),
		byKey:   make(map[string]*Record, len(records)),
	}

	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		rec.State = strings.TrimSpace(rec.State)
		rec.District = strings.TrimSpace(rec.District)
		rec.City = strings.TrimSpace(rec.City)
		if rec.State == "" || rec.District == "" {
			return nil, fmt.Errorf("record %d: state and district are required", i)
		}
		if seen[rec.Key()] {
			return nil, fmt.Errorf("record %d: duplicate region %q", i, rec.Name())
		}
		seen[rec.Key()] = true

		if err := domain.ValidateLevels(rec.HistoricalLevels); err != nil {
			logger.Warn("dropping historical levels", "region", rec.Name(), "error", err)
			rec.HistoricalLevels = nil
		}
		if err := domain.ValidateRainfall(rec.MonthlyRainfall); err != nil {
			logger.Warn("dropping monthly rainfall", "region", rec.Name(), "error", err)
			rec.MonthlyRainfall = nil
		}

		c.records = append(c.records, rec)
	}

	for i := range c.records {
		c.index(&c.records[i])
	}

	logger.Info("region dataset loaded", "records", len(c.records), "states", len(c.states))
	return c, nil
}

func (c *Catalog) index(rec *Record) {
	c.byKey[rec.Key()] = rec

	s := findState(c.states, rec.State)
	if s == nil {
		s = &state{name: rec.State}
		c.states = append(c.states, s)
	}
	d := findDistrict(s.districts, rec.District)
	if d == nil {
		d = &district{name: rec.District}
		s.districts = append(s.districts, d)
	}
	if rec.City != "" {
		d.cities = append(d.cities, rec)
	}
}

// States lists state names in dataset order.
func (c *Catalog) States() []string {
	out := make([]string, len(c.states))
	for i, s := range c.states {
		out[i] = s.name
	}
	return out
}

// Districts lists the districts of a state.
func (c *Catalog) Districts(stateName string) ([]string, error) {
	s := findState(c.states, stateName)
	if s == nil {
		return nil, fmt.Errorf("state %q: %w", stateName, ErrNotFound)
	}
	out := make([]string, len(s.districts))
	for i, d := range s.districts {
		out[i] = d.name
	}
	return out, nil
}

// Cities lists the cities recorded within a district. A district without
// city-level data yields an empty list.
func (c *Catalog) Cities(stateName, districtName string) ([]string, error) {
	s := findState(c.states, stateName)
	if s == nil {
		return nil, fmt.Errorf("state %q: %w", stateName, ErrNotFound)
	}
	d := findDistrict(s.districts, districtName)
	if d == nil {
		return nil, fmt.Errorf("district %q in %q: %w", districtName, stateName, ErrNotFound)
	}
	out := make([]string, len(d.cities))
	for i, city := range d.cities {
		out[i] = city.City
	}
	return out, nil
}

// Lookup returns the record for a region. An empty city selects the
// district-level record.
func (c *Catalog) Lookup(stateName, districtName, city string) (Record, error) {
	key := regionKey(stateName, districtName, city)
	rec, ok := c.byKey[key]
	if !ok {
		return Record{}, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	return *rec, nil
}

// RequestFor resolves a region to its analysis request.
func (c *Catalog) RequestFor(stateName, districtName, city string) (analysis.Request, error) {
	rec, err := c.Lookup(stateName, districtName, city)
	if err != nil {
		return analysis.Request{}, err
	}
	return rec.Request(), nil
}

// Search finds states, districts and cities whose name contains query,
// case-insensitively. A limit of zero or less means no limit.
func (c *Catalog) Search(query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []Match
	add := func(m Match) bool {
		out = append(out, m)
		return limit > 0 && len(out) >= limit
	}

	for _, s := range c.states {
		if strings.Contains(strings.ToLower(s.name), q) {
			if add(Match{Level: "state", Name: s.name, State: s.name}) {
				return out
			}
		}
		for _, d := range s.districts {
			if strings.Contains(strings.ToLower(d.name), q) {
				if add(Match{Level: "district", Name: d.name + ", " + s.name, State: s.name, District: d.name}) {
					return out
				}
			}
			for _, city := range d.cities {
				if strings.Contains(strings.ToLower(city.City), q) {
					if add(Match{Level: "city", Name: city.Name(), State: s.name, District: d.name, City: city.City}) {
						return out
					}
				}
			}
		}
	}
	return out
}

// All returns every record in dataset order.
func (c *Catalog) All() []Record {
	return slices.Clone(c.records)
}

func findState(states []*state, name string) *state {
	for _, s := range states {
		if strings.EqualFold(s.name, strings.TrimSpace(name)) {
			return s
		}
	}
	return nil
}

func findDistrict(districts []*district, name string) *district {
	for _, d := range districts {
		if strings.EqualFold(d.name, strings.TrimSpace(name)) {
			return d
		}
	}
	return nil
}

func regionKey(stateName, districtName, city string) string {
	parts := []string{stateName, districtName}
	if city = strings.TrimSpace(city); city != "" {
		parts = append(parts, city)
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "/")
}
