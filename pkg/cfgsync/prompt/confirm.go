// Package prompt asks the operator yes/no questions.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoAnswer is returned when input ends before a valid answer is read.
var ErrNoAnswer = errors.New("no answer: input closed")

// LineConfirmer writes a question and reads answers line by line until
// the operator types exactly "Yes" or "No".
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineConfirmer reads answers from in and writes questions to out.
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm asks question and blocks until a valid answer is given.
func (c *LineConfirmer) Confirm(question string) (bool, error) {
	for {
		if _, err := fmt.Fprint(c.out, question+" <Yes|No>"); err != nil {
			return false, errors.Wrap(err, "writing prompt")
		}
		line, err := c.in.ReadString('\n')
		switch strings.TrimRight(line, "\r\n") {
		case "Yes":
			return true, nil
		case "No":
			return false, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, errors.WithHint(ErrNoAnswer, "answer Yes or No, or run with --dry-run")
			}
			return false, errors.Wrap(err, "reading answer")
		}
	}
}

// Always answers every question the same way without asking.
type Always bool

// Confirm returns the fixed answer.
func (a Always) Confirm(string) (bool, error) {
	return bool(a), nil
}
