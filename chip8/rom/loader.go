package rom

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/valerio/go-chip8/chip8/cpu"
)

var (
	ErrEmptyProgram = errors.New("empty program")
	ErrEmptyArchive = errors.New("archive contains no files")
)

// Load reads a program from disk. Zip, gzip and 7z archives are unpacked,
// for archives the first program file inside is used.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return Decode(filepath.Base(path), data)
}

// Decode unpacks data according to the extension of name and validates the
// resulting program.
func Decode(name string, data []byte) ([]byte, error) {
	var (
		program []byte
		err     error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip":
		program, err = unzip(data)
	case ".gz":
		program, err = gunzip(data)
	case ".7z":
		program, err = un7z(data)
	default:
		program = data
	}
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", name, err)
	}

	if err := Validate(program); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return program, nil
}

// Validate checks that the program fits in memory above the interpreter area.
func Validate(program []byte) error {
	if len(program) == 0 {
		return ErrEmptyProgram
	}
	if len(program) > cpu.MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", cpu.ErrProgramTooLarge, len(program), cpu.MaxProgramSize)
	}
	return nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return readLimited(r)
}

func unzip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		return readLimited(rc)
	}

	return nil, ErrEmptyArchive
}

func un7z(data []byte) ([]byte, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		return readLimited(rc)
	}

	return nil, ErrEmptyArchive
}

// readLimited reads one byte past the program limit so oversized entries
// are reported without unpacking all of them.
func readLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, cpu.MaxProgramSize+1))
}
