// Package storage handles acquiring cheat-code files from disk,
// including compressed and archived ones (zip, 7z, rar, gzip, xz,
// lz4, brotli, zstd), caching their parsed results, and loading and
// saving the CLI/GUI front ends' JSON settings file.
package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// maxCheatFileSize bounds how much text a single cheat file or
// archive member may expand to.
const maxCheatFileSize = 8 * 1024 * 1024

var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21}
	magicXZ     = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	magicZstd   = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

type formatType int

const (
	formatUnknown formatType = iota
	formatPlain
	formatZIP
	format7z
	formatGzip
	formatRAR
	formatXZ
	formatLZ4
	formatZstd
	formatBrotli
)

// Loader reads cheat-file text, transparently unwrapping any archive
// format it's packaged in.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader backed by fs. Production callers pass
// afero.NewOsFs(); tests pass afero.NewMemMapFs().
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Lines reads the cheat-code text at path, returning it split into
// lines. If path is an archive, the first text-like member found is
// used.
func (l *Loader) Lines(path string) ([]string, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 6)
	n, _ := f.Read(header)
	header = header[:n]
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	data, err := afero.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxCheatFileSize {
		return nil, ErrFileTooLarge
	}

	switch detectFormat(header, path) {
	case formatPlain:
		return splitLines(data), nil
	case formatZIP:
		return extractZIP(data)
	case format7z:
		return extractSevenZip(data)
	case formatRAR:
		return extractRAR(path, l.fs)
	case formatGzip:
		return extractGzip(data)
	case formatXZ:
		return extractXZ(data)
	case formatLZ4:
		return extractLZ4(data)
	case formatZstd:
		return extractZstd(data)
	case formatBrotli:
		return brotliDecompress(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func detectFormat(header []byte, path string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	case bytes.HasPrefix(header, magicXZ):
		return formatXZ
	case bytes.HasPrefix(header, magicZstd):
		return formatZstd
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".cht", ".gsc", ".cb", ".par":
		return formatPlain
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".rar":
		return formatRAR
	case ".gz", ".tgz":
		return formatGzip
	case ".xz":
		return formatXZ
	case ".lz4":
		return formatLZ4
	case ".zst":
		return formatZstd
	case ".br":
		return formatBrotli
	}

	// No recognizable magic or extension: if it looks like text,
	// treat it as a plain cheat file.
	if looksLikeText(header) {
		return formatPlain
	}
	return formatUnknown
}

func looksLikeText(header []byte) bool {
	for _, b := range header {
		if b < 0x09 || (b > 0x0D && b < 0x20 && b != 0x1B) {
			return false
		}
	}
	return true
}

func splitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
