package extract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/umputun/errconst/pkg/codes"
)

// HeaderRange defines a block of #define codes in a C header, bounded by start and end sentinels.
// Sentinels are not error codes and never recorded.
type HeaderRange struct {
	File   string // path relative to the source root
	Prefix string // symbol prefix, i.e. EE_
	First  string // start sentinel
	Last   string // end sentinel
}

var (
	// GlobalCodes is the range of global (mysys) error codes
	GlobalCodes = HeaderRange{
		File:   filepath.Join("include", "mysys_err.h"),
		Prefix: "EE_",
		First:  "EE_ERROR_FIRST",
		Last:   "EE_ERROR_LAST",
	}

	// StorageCodes is the range of storage engine error codes
	StorageCodes = HeaderRange{
		File:   filepath.Join("include", "my_base.h"),
		Prefix: "HA_",
		First:  "HA_ERR_FIRST",
		Last:   "HA_ERR_LAST",
	}
)

// Extract reads the header from srcDir and returns codes defined inside the range
func (h HeaderRange) Extract(srcDir string) (codes.Table, error) {
	fname := filepath.Join(srcDir, h.File)
	data, err := os.ReadFile(fname) // nolint
	if err != nil {
		return nil, fmt.Errorf("can't read header %s: %w", fname, err)
	}
	res := h.Parse(data)
	log.Printf("[DEBUG] extracted %d %s* codes from %s", res.Len(), h.Prefix, fname)
	return res, nil
}

// Parse scans header content for "#define NAME NUMBER" with NAME starting with the range prefix.
// Nothing is recorded until First is seen, scanning stops on Last. If First never appears
// the result is empty, if Last never appears everything up to the end of content is recorded.
func (h HeaderRange) Parse(data []byte) codes.Table {
	re := regexp.MustCompile(`#define[ \t]+(` + regexp.QuoteMeta(h.Prefix) + `[A-Z0-9_]+)\s+([0-9]+)`)
	res := codes.Table{}
	inBlock := false
	for _, m := range re.FindAllSubmatch(data, -1) {
		name := string(m[1])
		if !inBlock {
			inBlock = name == h.First
			continue
		}
		if name == h.Last {
			break
		}
		num, err := strconv.Atoi(string(m[2]))
		if err != nil {
			log.Printf("[WARN] skip %s, invalid code %q: %v", name, m[2], err)
			continue
		}
		res.Set(num, name)
	}
	return res
}
