package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

//go:embed catalog.cue
var defaultSource []byte

// ErrInvalidCatalog is returned when catalog data fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// document mirrors the CUE #Catalog definition for decoding.
type document struct {
	Version    string      `json:"version"`
	Conditions []Condition `json:"conditions"`
	Drivers    []Driver    `json:"drivers"`
	Rules      []Rule      `json:"rules"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, loading it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = load(defaultSource, "catalog.cue")
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot continue without a catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load compiles CUE catalog data, validates it against the catalog schema
// and returns the resulting Catalog.
func Load(data []byte) (*Catalog, error) {
	return load(data, "catalog.cue")
}

// LoadFile loads a catalog from a CUE file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return load(data, filepath.Base(path))
}

func load(data []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", err)
	}

	val := ctx.CompileBytes(data, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("%w: compiling %s: %s", ErrInvalidCatalog, filename, cueDetails(err))
	}

	unified := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, cueDetails(err))
	}

	var doc document
	if err := unified.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding: %s", ErrInvalidCatalog, cueDetails(err))
	}
	return build(doc)
}

func cueDetails(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}

// build checks cross-entry constraints CUE cannot express and indexes the
// entries by code.
func build(doc document) (*Catalog, error) {
	c := &Catalog{
		version:        doc.Version,
		conditionIndex: make(map[string]int, len(doc.Conditions)),
		driverIndex:    make(map[string]int, len(doc.Drivers)),
	}

	for _, cond := range doc.Conditions {
		if _, dup := c.conditionIndex[cond.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate condition %q", ErrInvalidCatalog, cond.Code)
		}
		lines, err := cleanLines(cond.Lines, "condition "+cond.Code)
		if err != nil {
			return nil, err
		}
		cond.Lines = lines
		c.conditionIndex[cond.Code] = len(c.conditions)
		c.conditions = append(c.conditions, cond)
	}

	for _, d := range doc.Drivers {
		if _, dup := c.driverIndex[d.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate driver %q", ErrInvalidCatalog, d.Code)
		}
		neg, err := cleanLines(d.Negative, "driver "+d.Code)
		if err != nil {
			return nil, err
		}
		pos, err := cleanLines(d.Positive, "driver "+d.Code)
		if err != nil {
			return nil, err
		}
		d.Negative, d.Positive = neg, pos
		c.driverIndex[d.Code] = len(c.drivers)
		c.drivers = append(c.drivers, d)
	}

	seen := make(map[string]bool, len(doc.Rules))
	for _, r := range doc.Rules {
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate rule %q", ErrInvalidCatalog, r.ID)
		}
		seen[r.ID] = true

		switch r.Trigger {
		case TriggerConditionOverlap:
			if len(r.Requires) == 0 {
				return nil, fmt.Errorf("%w: rule %q requires no conditions", ErrInvalidCatalog, r.ID)
			}
		case TriggerRiskTier:
			if r.RiskKey == "" {
				return nil, fmt.Errorf("%w: rule %q has no risk_key", ErrInvalidCatalog, r.ID)
			}
		default:
			return nil, fmt.Errorf("%w: rule %q has unknown trigger %q", ErrInvalidCatalog, r.ID, r.Trigger)
		}
		if r.Placement == "" {
			r.Placement = PlaceFront
		}

		lines, err := cleanLines(r.Lines, "rule "+r.ID)
		if err != nil {
			return nil, err
		}
		r.Lines = lines
		forbidden := make([]string, 0, len(r.Forbidden))
		for _, f := range r.Forbidden {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				forbidden = append(forbidden, f)
			}
		}
		r.Forbidden = forbidden
		c.rules = append(c.rules, r.clone())
	}
	return c, nil
}

func cleanLines(lines []string, owner string) ([]string, error) {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			return nil, fmt.Errorf("%w: empty line in %s", ErrInvalidCatalog, owner)
		}
		out = append(out, l)
	}
	return out, nil
}
