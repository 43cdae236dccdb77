package koc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const FileExt = ".koc"

// Buckets groups raw export payloads by branch code. Branches keep the order
// in which they were first seen, lines keep their input order.
type Buckets struct {
	order   []string
	lines   map[string][]string
	Skipped []string
}

func (b Buckets) Branches() []string {
	return b.order
}

func (b Buckets) Lines(branch string) []string {
	return b.lines[branch]
}

// Len returns the number of payload lines over all branches.
func (b Buckets) Len() (n int) {
	for _, l := range b.lines {
		n += len(l)
	}
	return n
}

// GroupByBranch splits every raw line on tab. The last field is the branch
// code, the remaining fields joined by tab are the payload. Blank lines,
// lines without a tab and lines whose branch code can not be a file name end
// up in Skipped.
func GroupByBranch(lines []string) Buckets {
	b := Buckets{lines: map[string][]string{}}
	for _, line := range lines {
		line = trimEOL(line)
		idx := strings.LastIndex(line, "\t")
		if idx < 0 {
			if strings.TrimSpace(line) != "" {
				b.Skipped = append(b.Skipped, line)
			}
			continue
		}
		branch := strings.TrimSpace(line[idx+1:])
		if !validBranchFileName(branch) {
			b.Skipped = append(b.Skipped, line)
			continue
		}
		if _, ok := b.lines[branch]; !ok {
			b.order = append(b.order, branch)
		}
		b.lines[branch] = append(b.lines[branch], line[:idx])
	}
	return b
}

func validBranchFileName(branch string) bool {
	if branch == "" || branch == "." || branch == ".." {
		return false
	}
	return !strings.ContainsAny(branch, `/\`)
}

// Exporter writes buckets to <Dir>/<branch>.koc. Payloads are appended,
// Finalize puts the header on top of every file touched in this run.
type Exporter struct {
	Dir              string
	Generator        string
	GeneratorVersion string
	touched          []string
	seen             map[string]bool
}

func NewExporter(dir string) *Exporter {
	return &Exporter{
		Dir:              dir,
		Generator:        Generator,
		GeneratorVersion: GeneratorVersion,
		seen:             map[string]bool{},
	}
}

func (e *Exporter) Path(branch string) string {
	return filepath.Join(e.Dir, branch+FileExt)
}

// Touched returns the branch codes written so far, in first-write order.
func (e *Exporter) Touched() []string {
	return e.touched
}

func (e *Exporter) Append(b Buckets) (err error) {
	for _, branch := range b.Branches() {
		lines := b.Lines(branch)
		if len(lines) == 0 {
			continue
		}
		err = appendLines(e.Path(branch), lines)
		if err != nil {
			return err
		}
		if !e.seen[branch] {
			e.seen[branch] = true
			e.touched = append(e.touched, branch)
		}
	}
	return nil
}

// Finalize writes the header to every touched file exactly once. Header
// lines left on top by an earlier run are replaced.
func (e *Exporter) Finalize() (err error) {
	header := EncodeHeader(Version, e.Generator, e.GeneratorVersion)
	for _, branch := range e.touched {
		err = prependHeader(e.Path(branch), header)
		if err != nil {
			return err
		}
	}
	return nil
}

func appendLines(fp string, lines []string) (err error) {
	f, err := os.OpenFile(fp, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("unable to open %q: %w", fp, err)
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	for _, line := range lines {
		_, err = w.WriteString(line + "\n")
		if err != nil {
			return fmt.Errorf("unable to write %q: %w", fp, err)
		}
	}
	return w.Flush()
}

func prependHeader(fp, header string) error {
	data, err := os.ReadFile(fp)
	if err != nil {
		return fmt.Errorf("unable to read %q: %w", fp, err)
	}
	body := string(data)
	for body != "" {
		first, rest, _ := strings.Cut(body, "\n")
		if !IsHeader(first) {
			break
		}
		body = rest
	}
	err = os.WriteFile(fp, []byte(header+"\n"+body), 0644)
	if err != nil {
		return fmt.Errorf("unable to write %q: %w", fp, err)
	}
	return nil
}
