// Package targets reads lists of servo target values.
//
// A target list is text holding integers separated by whitespace or commas.
// Values may be decimal or prefixed hexadecimal ("0x1770"), a '#' starts a
// comment running to the end of the line, and quoted tokens are unquoted
// before parsing. Values are in quarter-microseconds, the unit of
// SetMultipleTargets.
package targets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// ErrTooFew is returned by Take when the list is shorter than requested.
var ErrTooFew = errors.New("targets: not enough targets")

// Read parses a target list from r.
func Read(r io.Reader) ([]int, error) {
	lex := shlex.NewLexer(r)

	var list []int
	for {
		word, err := lex.Next()
		if errors.Is(err, io.EOF) {
			return list, nil
		}
		if err != nil {
			return nil, fmt.Errorf("targets: %w", err)
		}

		for _, tok := range strings.Split(word, ",") {
			if tok == "" {
				continue
			}

			v, err := strconv.ParseInt(tok, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("targets: value %d %q: %w", len(list)+1, tok, err)
			}
			list = append(list, int(v))
		}
	}
}

// ReadFile parses the target list stored in the named file.
func ReadFile(name string) ([]int, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Take returns the first count targets of list.
func Take(list []int, count int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("targets: negative count %d", count)
	}
	if len(list) < count {
		return nil, fmt.Errorf("%w: %d requested, %d available", ErrTooFew, count, len(list))
	}

	return list[:count:count], nil
}

// Repeat returns a list of count copies of target.
func Repeat(target, count int) []int {
	if count <= 0 {
		return nil
	}

	list := make([]int, count)
	for i := range list {
		list[i] = target
	}

	return list
}
