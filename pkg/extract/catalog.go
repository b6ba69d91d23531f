package extract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/umputun/errconst/pkg/codes"
)

// CatalogFile is the location of sql error message catalog relative to the source root
var CatalogFile = filepath.Join("sql", "share", "errmsg-utf8.txt")

const obsoletePrefix = "ER_OBSOLETE_"

var (
	sectionRe = regexp.MustCompile(`(?m)^start-error-number (\d+)\r?$`)
	symbolRe  = regexp.MustCompile(`(?m)^[A-Z0-9_]+`)
	unusedRe  = regexp.MustCompile(`(_OLD)?_+UNUSED$`)
)

// ReadCatalog reads sql error catalog from srcDir and returns ER_* codes
func ReadCatalog(srcDir string) (codes.Table, error) {
	fname := filepath.Join(srcDir, CatalogFile)
	data, err := os.ReadFile(fname) // nolint
	if err != nil {
		return nil, fmt.Errorf("can't read catalog %s: %w", fname, err)
	}
	res := ParseCatalog(string(data))
	log.Printf("[DEBUG] extracted %d ER_* codes from %s", res.Len(), fname)
	return res, nil
}

// ParseCatalog splits content into sections started by "start-error-number N" lines.
// Each line of a section starting with a symbol gets the next code, beginning with N.
// Text before the first marker is ignored. Later sections overwrite earlier ones.
func ParseCatalog(content string) codes.Table {
	res := codes.Table{}
	markers := sectionRe.FindAllStringSubmatchIndex(content, -1)
	for i, m := range markers {
		start, err := strconv.Atoi(content[m[2]:m[3]])
		if err != nil {
			log.Printf("[WARN] skip section %q: %v", content[m[0]:m[1]], err)
			continue
		}
		end := len(content)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		for j, sym := range symbolRe.FindAllString(content[m[1]:end], -1) {
			res.Set(start+j, FixupName(sym))
		}
	}
	return res
}

// FixupName drops obsolete and unused markers from the symbol,
// i.e. ER_OBSOLETE_FOO -> ER_FOO and ER_BAR_OLD_UNUSED -> ER_BAR
func FixupName(name string) string {
	if strings.HasPrefix(name, obsoletePrefix) {
		name = strings.Replace(name, obsoletePrefix, "ER_", 1)
	}
	return unusedRe.ReplaceAllString(name, "")
}
