package extract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// VersionFile is the name of the version file in the root of mysql source tree
const VersionFile = "VERSION"

// Version is mysql version as declared in VERSION file
type Version struct {
	Major string
	Minor string
	Patch string
}

// String returns dotted version, i.e. 8.0.33
func (v Version) String() string {
	return v.Major + "." + v.Minor + "." + v.Patch
}

// ReadVersion reads VERSION file from srcDir
func ReadVersion(srcDir string) (Version, error) {
	fname := filepath.Join(srcDir, VersionFile)
	data, err := os.ReadFile(fname) // nolint
	if err != nil {
		return Version{}, fmt.Errorf("can't read version file %s: %w", fname, err)
	}
	return ParseVersion(string(data)), nil
}

// ParseVersion parses KEY=VALUE lines and picks MYSQL_VERSION_MAJOR, MYSQL_VERSION_MINOR and
// MYSQL_VERSION_PATCH. Values split on the first "=" only and right-trimmed.
func ParseVersion(content string) Version {
	kv := map[string]string{}
	for _, line := range strings.Split(content, "\n") {
		key, val, _ := strings.Cut(line, "=")
		kv[key] = strings.TrimRightFunc(val, unicode.IsSpace)
	}

	get := func(key string) string {
		val, ok := kv[key]
		if !ok {
			log.Printf("[WARN] version key %s not found", key)
		}
		return val
	}
	return Version{Major: get("MYSQL_VERSION_MAJOR"), Minor: get("MYSQL_VERSION_MINOR"), Patch: get("MYSQL_VERSION_PATCH")}
}
