package topology

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError locates a problem in an input file.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a topology file. Each non-blank line describes one link:
//
//	<nodeA> <nodeB> <cost>
//
// Lines starting with '#' are comments.
func Load(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open topology %s: %w", path, err)
	}
	defer f.Close()
	return parse(f, path)
}

// Parse reads a topology from r.
func Parse(r io.Reader) (*Topology, error) {
	return parse(r, "")
}

func parse(r io.Reader, name string) (*Topology, error) {
	t := New()
	err := scanLines(r, name, func(fields []string) error {
		if len(fields) != 3 {
			return fmt.Errorf("want \"<node> <node> <cost>\", got %d fields", len(fields))
		}
		cost, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return fmt.Errorf("cost %q: %w", fields[2], err)
		}
		return t.AddLink(fields[0], fields[1], cost)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// scanLines calls fn with the whitespace-separated fields of every
// meaningful line and wraps its errors with the location.
func scanLines(r io.Reader, name string, fn func(fields []string) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(strings.Fields(text)); err != nil {
			return &ParseError{File: name, Line: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}
