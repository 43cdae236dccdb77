package koc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// File is a decoded KOC file. Raw holds the undecoded line of each record.
type File struct {
	Name    string
	Header  Header
	Records []Record
	Raw     []string
}

// ReadFile decodes the KOC file at fp, see Decode.
func ReadFile(fp, expectedVersion string) (*File, error) {
	f, err := os.Open(fp)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrFileNotFound, fp)
		}
		return nil, fmt.Errorf("Error opening file: %w", err)
	}
	defer f.Close()
	return Decode(f, fp, expectedVersion)
}

// MaxLineSize bounds a single line of a KOC file or raw export log.
const MaxLineSize = 16 * 1024 * 1024

const byteOrderMark = "\ufeff"

// NewScanner returns a line scanner accepting lines up to MaxLineSize.
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return scanner
}

// Decode reads the header and all command records. A header with another
// version than expectedVersion fails with ErrVersionMismatch before any
// command line is read. The first bad command line fails the whole file
// with a *LineError.
func Decode(r io.Reader, name, expectedVersion string) (*File, error) {
	kf := &File{Name: name}
	scanner := NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := trimEOL(scanner.Text())
		if kf.Header == nil {
			if lineNo == 1 {
				line = strings.TrimPrefix(line, byteOrderMark)
			}
			h, err := DecodeHeader(line)
			if err != nil {
				return nil, &LineError{File: name, Line: lineNo, Err: err}
			}
			err = h.CheckVersion(expectedVersion)
			if err != nil {
				return nil, &LineError{File: name, Line: lineNo, Err: err}
			}
			kf.Header = h
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := DecodeCommand(line)
		if err != nil {
			return nil, &LineError{File: name, Line: lineNo, Err: err}
		}
		kf.Records = append(kf.Records, rec)
		kf.Raw = append(kf.Raw, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Error reading file: %w", err)
	}
	if kf.Header == nil {
		return nil, fmt.Errorf("%w: %q is empty", ErrMalformedHeader, name)
	}
	return kf, nil
}
