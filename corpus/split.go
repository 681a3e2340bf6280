package corpus

import (
	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// BlankLinePattern splits text into documents on blank lines, the usual layout
// of one article per paragraph block in a scraped corpus file.
const BlankLinePattern = `\r?\n\s*\r?\n`

// Splitter cuts raw text into documents at regexp boundaries.
type Splitter struct {
	boundary *regexp2.Regexp
}

// NewSplitter compiles pattern as the document boundary.
func NewSplitter(pattern string) (*Splitter, error) {
	re, err := regexp2.Compile(pattern, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling document boundary pattern %q", pattern)
	}
	return &Splitter{boundary: re}, nil
}

// Split adds one document per boundary-separated run of text to c.
// Runs that are empty after splitting are dropped by Add.
func (s *Splitter) Split(c *Corpus, text string) error {
	// regexp2 match indices are rune offsets, not byte offsets.
	runes := []rune(text)
	start := 0
	m, err := s.boundary.FindStringMatch(text)
	if err != nil {
		return errors.Wrap(err, "matching document boundary")
	}
	for m != nil {
		if m.Index > start {
			c.Add([]byte(string(runes[start:m.Index])))
		}
		start = m.Index + m.Length
		m, err = s.boundary.FindNextMatch(m)
		if err != nil {
			return errors.Wrap(err, "matching document boundary")
		}
	}
	if start < len(runes) {
		c.Add([]byte(string(runes[start:])))
	}
	return nil
}
