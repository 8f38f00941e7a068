package peg

import (
	"sort"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/rangetable"
)

// CharRange is an inclusive range of code points, [Lo, Hi].
type CharRange struct {
	Lo, Hi rune
}

// CharSet is the character-class matcher of spec.md §4.9: a union of
// individual code points and inclusive ranges, plus (as a domain extension)
// named Unicode general categories. Membership is a disjunction across all
// three.
//
// A zero-value CharSet matches nothing.
type CharSet struct {
	ranges     []CharRange
	categories []*unicode.RangeTable
	folded     bool
}

// NewCharSet builds a CharSet from the given ranges. Singletons are ranges
// with Lo == Hi.
func NewCharSet(ranges ...CharRange) *CharSet {
	cs := &CharSet{ranges: append([]CharRange(nil), ranges...)}
	cs.normalize()
	return cs
}

// Singleton returns a CharSet matching exactly one rune.
func Singleton(r rune) *CharSet {
	return NewCharSet(CharRange{Lo: r, Hi: r})
}

// AddRange adds an inclusive range to the set.
func (cs *CharSet) AddRange(lo, hi rune) *CharSet {
	cs.ranges = append(cs.ranges, CharRange{Lo: lo, Hi: hi})
	cs.normalize()
	return cs
}

// AddRune adds a single code point to the set.
func (cs *CharSet) AddRune(r rune) *CharSet {
	return cs.AddRange(r, r)
}

// AddCategory adds every code point in a Unicode general category (e.g.
// unicode.L, unicode.Nd) to the set, via golang.org/x/text/unicode/rangetable
// the same way the pack's boergens-gotypst text-shaping code builds its own
// category tables. This lets a grammar express a class like "\p{L}" without
// enumerating ranges by hand.
func (cs *CharSet) AddCategory(table *unicode.RangeTable) *CharSet {
	cs.categories = append(cs.categories, table)
	return cs
}

// CaseFold marks the set as case-insensitive: Contains will also try the
// other-case form of the queried rune using golang.org/x/text/cases, useful
// for case-insensitive literal character classes (e.g. [a-zA-Z] grammars
// that want to accept "[Ss]" from a single-letter definition).
func (cs *CharSet) CaseFold() *CharSet {
	cs.folded = true
	return cs
}

// normalize sorts ranges by Lo and merges any that overlap or touch, so
// containsExact's binary search can assume a disjoint, sorted set.
func (cs *CharSet) normalize() {
	sort.Slice(cs.ranges, func(i, j int) bool {
		return cs.ranges[i].Lo < cs.ranges[j].Lo
	})

	merged := cs.ranges[:0]
	for _, rg := range cs.ranges {
		if n := len(merged); n > 0 && rg.Lo <= merged[n-1].Hi+1 {
			if rg.Hi > merged[n-1].Hi {
				merged[n-1].Hi = rg.Hi
			}
			continue
		}
		merged = append(merged, rg)
	}
	cs.ranges = merged
}

// Contains reports whether r is a member of the set.
func (cs *CharSet) Contains(r rune) bool {
	if cs == nil {
		return false
	}
	if cs.containsExact(r) {
		return true
	}
	if cs.folded {
		upper := cases.Upper(language.Und).String(string(r))
		lower := cases.Lower(language.Und).String(string(r))
		for _, alt := range []string{upper, lower} {
			if alt == "" {
				continue
			}
			altRunes := []rune(alt)
			if len(altRunes) == 1 && cs.containsExact(altRunes[0]) {
				return true
			}
		}
	}
	return false
}

func (cs *CharSet) containsExact(r rune) bool {
	// binary search over cs.ranges, which normalize keeps sorted by Lo and
	// merged into disjoint intervals.
	lo, hi := 0, len(cs.ranges)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		rg := cs.ranges[mid]
		switch {
		case r < rg.Lo:
			hi = mid - 1
		case r > rg.Hi:
			lo = mid + 1
		default:
			return true
		}
	}
	for _, table := range cs.categories {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// Ranges returns the set's explicit ranges, sorted by Lo. It does not
// include any categories added via AddCategory; callers that need the full
// membership should use Contains or RangeTable instead. This exists mainly
// for serialization (see internal/pegfile).
func (cs *CharSet) Ranges() []CharRange {
	return append([]CharRange(nil), cs.ranges...)
}

// Folded reports whether CaseFold was called on the set.
func (cs *CharSet) Folded() bool {
	return cs.folded
}

// Categories returns the Unicode general-category tables added via
// AddCategory.
func (cs *CharSet) Categories() []*unicode.RangeTable {
	return append([]*unicode.RangeTable(nil), cs.categories...)
}

// RangeTable materializes the set (ranges only, not case-folding) as a
// *unicode.RangeTable, for interop with stdlib/x/text APIs that want one
// (for example, combining several CharSets with rangetable.Merge).
func (cs *CharSet) RangeTable() *unicode.RangeTable {
	tables := append([]*unicode.RangeTable{}, cs.categories...)
	if len(cs.ranges) > 0 {
		r16 := make([]unicode.Range16, 0)
		r32 := make([]unicode.Range32, 0)
		for _, rg := range cs.ranges {
			if rg.Hi <= 0xFFFF {
				r16 = append(r16, unicode.Range16{Lo: uint16(rg.Lo), Hi: uint16(rg.Hi), Stride: 1})
			} else {
				r32 = append(r32, unicode.Range32{Lo: uint32(rg.Lo), Hi: uint32(rg.Hi), Stride: 1})
			}
		}
		tables = append(tables, &unicode.RangeTable{R16: r16, R32: r32})
	}
	if len(tables) == 0 {
		return &unicode.RangeTable{}
	}
	return rangetable.Merge(tables...)
}
