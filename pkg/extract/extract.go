// Package extract reads error code definitions and the version from mysql source tree.
// Global codes (EE_*) and storage engine codes (HA_*) come from C headers, sql codes (ER_*)
// from the error message catalog.
package extract

import (
	"fmt"
	"log"

	"github.com/umputun/errconst/pkg/codes"
)

// Codes extracts global, storage engine and sql codes from srcDir, in this order, and merges them.
// On a shared code the later source wins. The first failed read stops extraction.
func Codes(srcDir string) (codes.Table, error) {
	global, err := GlobalCodes.Extract(srcDir)
	if err != nil {
		return nil, fmt.Errorf("can't extract global codes: %w", err)
	}
	storage, err := StorageCodes.Extract(srcDir)
	if err != nil {
		return nil, fmt.Errorf("can't extract storage engine codes: %w", err)
	}
	sql, err := ReadCatalog(srcDir)
	if err != nil {
		return nil, fmt.Errorf("can't extract sql codes: %w", err)
	}

	res := codes.Merge(global, storage, sql)
	log.Printf("[INFO] extracted %d codes (global:%d, storage:%d, sql:%d) from %s",
		res.Len(), global.Len(), storage.Len(), sql.Len(), srcDir)
	return res, nil
}
