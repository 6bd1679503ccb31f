package storage

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode/v2"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

// isCheatMember reports whether an archive member's name looks like
// cheat-code text rather than incidental packaging (READMEs, images).
func isCheatMember(name string) bool {
	for _, ext := range []string{".txt", ".cht", ".gsc", ".cb", ".par", ".vba"} {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

func extractZIP(data []byte) ([]string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isCheatMember(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in zip: %w", f.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return splitLines(data), nil
	}
	return nil, ErrArchiveEmpty
}

func extractSevenZip(data []byte) ([]string, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open 7z: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isCheatMember(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in 7z: %w", f.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return splitLines(data), nil
	}
	return nil, ErrArchiveEmpty
}

func extractRAR(path string, fs afero.Fs) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rar: %w", err)
	}
	defer f.Close()

	r, err := rardecode.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open rar: %w", err)
	}
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rar entry: %w", err)
		}
		if header.IsDir || !isCheatMember(header.Name) {
			continue
		}
		data, err := limitedRead(r)
		if err != nil {
			return nil, err
		}
		return splitLines(data), nil
	}
	return nil, ErrArchiveEmpty
}

func extractGzip(data []byte) ([]string, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer r.Close()
	out, err := limitedRead(r)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func extractXZ(data []byte) ([]string, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xz: %w", err)
	}
	out, err := limitedRead(r)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func extractLZ4(data []byte) ([]string, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := limitedRead(r)
	if err != nil {
		return nil, fmt.Errorf("read lz4: %w", err)
	}
	return splitLines(out), nil
}

func extractZstd(data []byte) ([]string, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open zstd: %w", err)
	}
	defer r.Close()
	out, err := limitedRead(r)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxCheatFileSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxCheatFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// brotliDecompress is kept as a thin wrapper so brotli's decoder is
// reachable through the same limitedRead helper as the others.
func brotliDecompress(data []byte) ([]string, error) {
	r := brotli.NewReader(bytes.NewReader(data))
	out, err := limitedRead(r)
	if err != nil {
		return nil, fmt.Errorf("read brotli: %w", err)
	}
	return splitLines(out), nil
}
