package domain

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is the groundwater sustainability assessment of a region.
type Category string

const (
	CategorySafe          Category = "Safe"
	CategorySemiCritical  Category = "Semi-Critical"
	CategoryCritical      Category = "Critical"
	CategoryOverExploited Category = "Over-Exploited"
	CategorySaline        Category = "Saline"
	CategoryHillyArea     Category = "Hilly-Area"
	CategoryNoData        Category = "No-Data"
)

// Extraction-ratio thresholds and the low-rainfall cutoff (mm/year).
const (
	overExploitedRatio = 1.0
	criticalRatio      = 0.9
	semiCriticalRatio  = 0.7
	salineRainfallMM   = 700
)

const ratioEpsilon = 1e-9

// knownCategories maps a squashed spelling (lowercase, no separators) to its
// canonical category so that "over exploited", "Over_Exploited" and
// "OVER-EXPLOITED" agree.
var knownCategories = map[string]Category{
	"safe":          CategorySafe,
	"semicritical":  CategorySemiCritical,
	"critical":      CategoryCritical,
	"overexploited": CategoryOverExploited,
	"saline":        CategorySaline,
	"hillyarea":     CategoryHillyArea,
	"nodata":        CategoryNoData,
}

// Classify assigns a sustainability category. Rules apply in priority order:
//
//  1. no extraction and no extractable resources -> No-Data
//  2. an explicit upstream category wins over the computed rule
//  3. extraction ratio > 1.0 Over-Exploited, > 0.9 Critical, > 0.7 Semi-Critical
//  4. otherwise rainfall below 700 mm -> Saline, else Safe
//
// Low rainfall never downgrades a ratio-based category.
func Classify(m RegionMetrics) Category {
	if m.GroundWaterExtraction == 0 && m.AnnualExtractableResources == 0 {
		return CategoryNoData
	}

	if override := strings.TrimSpace(m.Category); override != "" {
		return NormalizeCategory(override)
	}

	ratio, err := ExtractionRatio(m)
	if err != nil {
		return CategoryNoData
	}

	switch {
	case ratio > overExploitedRatio:
		return CategoryOverExploited
	case ratio > criticalRatio:
		return CategoryCritical
	case ratio > semiCriticalRatio:
		return CategorySemiCritical
	case m.AnnualRainfall < salineRainfallMM:
		return CategorySaline
	default:
		return CategorySafe
	}
}

// ExtractionRatio is groundwater extraction over annual extractable resources.
// It returns ErrDivisionGuard when the denominator is effectively zero.
func ExtractionRatio(m RegionMetrics) (float64, error) {
	if math.Abs(m.AnnualExtractableResources) < ratioEpsilon {
		return 0, ErrDivisionGuard
	}
	return m.GroundWaterExtraction / m.AnnualExtractableResources, nil
}

// NormalizeCategory maps known spellings onto the canonical categories and
// otherwise upper-cases the first letter, keeping the rest verbatim.
func NormalizeCategory(s string) Category {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryNoData
	}

	squashed := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	if c, ok := knownCategories[squashed]; ok {
		return c
	}

	r, size := utf8.DecodeRuneInString(s)
	return Category(string(unicode.ToUpper(r)) + s[size:])
}
