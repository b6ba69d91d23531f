// Package render writes the code table as a generated source file and reads it back
// for carrying names forward between runs.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-pkgz/fileutils"
	"github.com/hashicorp/go-multierror"

	"github.com/umputun/errconst/pkg/codes"
)

// Format of the generated file
type Format string

// enum of all supported formats
const (
	FormatGo Format = "go"
	FormatJS Format = "js"
)

var lookupRe = map[Format]*regexp.Regexp{
	FormatGo: regexp.MustCompile(`(?m)^\t(\d+):\s*"([^"]*)",`),
	FormatJS: regexp.MustCompile(`(?m)^exports\[(\d+)\]\s*=\s*'([^']*)';`),
}

// Renderer makes the generated file with two lookup tables, name to number and number to name.
type Renderer struct {
	Format    Format
	Package   string // package name, used by go format only
	Generator string // generator name for the banner
}

// Render writes the table to w. Holes are skipped, lines of both tables aligned on the separator.
func (r Renderer) Render(w io.Writer, tbl codes.Table, version string) error {
	var buf bytes.Buffer
	switch r.Format {
	case FormatGo:
		if !token.IsIdentifier(r.Package) {
			return fmt.Errorf("invalid package name %q", r.Package)
		}
		r.renderGo(&buf, tbl, version)
	case FormatJS:
		r.renderJS(&buf, tbl, version)
	default:
		return fmt.Errorf("unknown format %q", r.Format)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("can't write generated content: %w", err)
	}
	return nil
}

func (r Renderer) renderJS(buf *bytes.Buffer, tbl codes.Table, version string) {
	fmt.Fprintf(buf, "/**\n * MySQL error constants\n *\n * Extracted from version %s\n *\n", version)
	fmt.Fprintf(buf, " * !! Generated by %s, do not modify by hand !!\n */\n\n", r.Generator)

	indices := tbl.Indices()
	nameWidth := maxNameLen(tbl)
	for _, code := range indices {
		fmt.Fprintf(buf, "exports.%s%s = %d;\n", tbl[code], pad(nameWidth, len(tbl[code])), code)
	}

	buf.WriteString("\n// Lookup-by-number table\n")
	codeWidth := maxCodeLen(indices)
	for _, code := range indices {
		num := strconv.Itoa(code)
		fmt.Fprintf(buf, "exports[%s]%s = '%s';\n", num, pad(codeWidth, len(num)), tbl[code])
	}
}

// renderGo makes go source with constants and Names map. A name used for several codes is
// defined once, with the highest code, names which are not valid go identifiers are not defined at all.
func (r Renderer) renderGo(buf *bytes.Buffer, tbl codes.Table, version string) {
	fmt.Fprintf(buf, "// Code generated by %s; DO NOT EDIT.\n\n", r.Generator)
	fmt.Fprintf(buf, "// Package %s defines MySQL error constants.\n//\n", r.Package)
	fmt.Fprintf(buf, "// Extracted from version %s.\n//\n", version)
	fmt.Fprintf(buf, "// !! Generated by %s, do not modify by hand !!\n", r.Generator)
	fmt.Fprintf(buf, "package %s\n\n", r.Package)

	indices := tbl.Indices()
	lastCode := make(map[string]int, len(indices))
	for _, code := range indices {
		lastCode[tbl[code]] = code
	}

	if len(indices) == 0 {
		buf.WriteString("// Lookup-by-name constants\nconst ()\n\n// Lookup-by-number table\nvar Names = map[int]string{}\n")
		return
	}

	nameWidth := maxNameLen(tbl)
	buf.WriteString("// Lookup-by-name constants\nconst (\n")
	for _, code := range indices {
		name := tbl[code]
		if !token.IsIdentifier(name) {
			log.Printf("[DEBUG] skip constant for %q at %d, not an identifier", name, code)
			continue
		}
		if lastCode[name] != code {
			log.Printf("[DEBUG] skip constant for %s at %d, redefined at %d", name, code, lastCode[name])
			continue
		}
		fmt.Fprintf(buf, "\t%s%s = %d\n", name, pad(nameWidth, len(name)), code)
	}
	buf.WriteString(")\n")

	buf.WriteString("\n// Lookup-by-number table\nvar Names = map[int]string{\n")
	codeWidth := maxCodeLen(indices)
	for _, code := range indices {
		num := strconv.Itoa(code)
		fmt.Fprintf(buf, "\t%s:%s %q,\n", num, pad(codeWidth, len(num)), tbl[code])
	}
	buf.WriteString("}\n")
}

// WriteFile renders the table and replaces fname with the result. Content is written to a temporary
// file in the same directory first and renamed over fname, so a failed write leaves fname untouched.
// If fname is a symlink, the file it points to is replaced and the link kept. The mode of an existing
// file is kept, a new file gets 0644.
func (r Renderer) WriteFile(fname string, tbl codes.Table, version string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, tbl, version); err != nil {
		return err
	}

	target, mode, err := writeTarget(fname)
	if err != nil {
		return err
	}

	tmpName, err := fileutils.TempFileName(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("can't make temp file name for %s: %w", target, err)
	}

	if err = os.WriteFile(tmpName, buf.Bytes(), mode); err != nil { // nolint
		return cleanup(tmpName, fmt.Errorf("can't write %s: %w", tmpName, err))
	}
	if err = os.Chmod(tmpName, mode); err != nil { // umask may have dropped bits
		return cleanup(tmpName, fmt.Errorf("can't set mode of %s: %w", tmpName, err))
	}
	if err = os.Rename(tmpName, target); err != nil {
		return cleanup(tmpName, fmt.Errorf("can't replace %s: %w", target, err))
	}
	log.Printf("[INFO] written %d codes to %s", tbl.Len(), target)
	return nil
}

// writeTarget resolves symlinks in fname and returns the real file to replace with its current mode.
// A missing file is written as is with 0644.
func writeTarget(fname string) (target string, mode os.FileMode, err error) {
	target, err = filepath.EvalSymlinks(fname)
	if errors.Is(err, fs.ErrNotExist) {
		return fname, 0o644, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("can't resolve %s: %w", fname, err)
	}
	fi, err := os.Stat(target)
	if err != nil {
		return "", 0, fmt.Errorf("can't stat %s: %w", target, err)
	}
	return target, fi.Mode().Perm(), nil
}

// cleanup removes the temp file and combines removal error with the original one
func cleanup(tmpName string, err error) error {
	errs := multierror.Append(new(multierror.Error), err)
	if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		errs = multierror.Append(errs, fmt.Errorf("can't remove %s: %w", tmpName, rmErr))
	}
	return errs.ErrorOrNil()
}

// Load reads previously generated file. Returns found=false without error if the file doesn't exist,
// an existing file without recognizable entries gives an empty table.
func (r Renderer) Load(fname string) (tbl codes.Table, found bool, err error) {
	data, err := os.ReadFile(fname) // nolint
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[DEBUG] no previous output %s", fname)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("can't read previous output %s: %w", fname, err)
	}
	tbl, err = r.Parse(data)
	if err != nil {
		return nil, false, err
	}
	log.Printf("[INFO] loaded %d previous codes from %s", tbl.Len(), fname)
	return tbl, true, nil
}

// Parse extracts number to name lookup table from generated content
func (r Renderer) Parse(data []byte) (codes.Table, error) {
	re, ok := lookupRe[r.Format]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", r.Format)
	}
	res := codes.Table{}
	for _, m := range re.FindAllSubmatch(data, -1) {
		code, err := strconv.Atoi(string(m[1]))
		if err != nil || len(m[2]) == 0 {
			continue
		}
		res.Set(code, string(m[2]))
	}
	return res, nil
}

func maxNameLen(tbl codes.Table) (res int) {
	for _, name := range tbl {
		res = max(res, len(name))
	}
	return res
}

func maxCodeLen(indices []int) (res int) {
	for _, code := range indices {
		res = max(res, len(strconv.Itoa(code)))
	}
	return res
}

func pad(width, l int) string {
	if l >= width {
		return ""
	}
	return strings.Repeat(" ", width-l)
}
