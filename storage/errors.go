package storage

import "errors"

// ErrUnsupportedFormat is returned for cheat-file formats the loader
// does not recognize.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrArchiveEmpty is returned when an archive contains no text files.
var ErrArchiveEmpty = errors.New("archive contains no cheat file")

// ErrFileTooLarge is returned when extracted content exceeds the
// loader's safety limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")
