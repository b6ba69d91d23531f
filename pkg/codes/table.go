// Package codes implements the sparse code table shared by extractors and the renderer.
package codes

import (
	"log"
	"regexp"
	"sort"
)

// Table maps a numeric error code to its symbolic name. Not every code has to be populated,
// holes are allowed and skipped by consumers.
type Table map[int]string

var placeholderRe = regexp.MustCompile(`^ER_UNUSED\d*$`)

// Set records name at code, overwriting any previous name at the same code.
func (t Table) Set(code int, name string) {
	t[code] = name
}

// Get returns the name recorded at code and a flag telling if the code is populated.
func (t Table) Get(code int) (string, bool) {
	name, ok := t[code]
	return name, ok
}

// Has checks if code is populated
func (t Table) Has(code int) bool {
	_, ok := t[code]
	return ok
}

// Len returns number of populated codes.
func (t Table) Len() int {
	return len(t)
}

// Indices returns populated codes in ascending order.
func (t Table) Indices() []int {
	res := make([]int, 0, len(t))
	for code := range t {
		res = append(res, code)
	}
	sort.Ints(res)
	return res
}

// Merge folds tables into a new one in the order given. A later table overwrites
// earlier ones at shared codes, there is no conflict detection.
func Merge(tables ...Table) Table {
	res := Table{}
	for _, tbl := range tables {
		for code, name := range tbl {
			res[code] = name
		}
	}
	return res
}

// IsPlaceholder checks if name is a generic "unused" slot name, i.e. ER_UNUSED optionally followed by digits.
func IsPlaceholder(name string) bool {
	return placeholderRe.MatchString(name)
}

// KeepUnused replaces placeholder names with the names recorded at the same codes in prev.
// Codes missing from prev keep their placeholder. Returns number of replaced names.
func (t Table) KeepUnused(prev Table) (kept int) {
	for _, code := range t.Indices() {
		if !IsPlaceholder(t[code]) {
			continue
		}
		name, ok := prev.Get(code)
		if !ok || name == "" {
			continue
		}
		log.Printf("[DEBUG] keep %s at %d instead of %s", name, code, t[code])
		t[code] = name
		kept++
	}
	return kept
}
