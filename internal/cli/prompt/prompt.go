// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"

	"github.com/thoreinstein/cairn/internal/errors"
)

// Sentinel errors for prompts.
var (
	ErrNoOptions        = errors.New("no options to select from")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrCancelled        = errors.New("prompt cancelled")
	ErrNoInput          = errors.New("a value is required but prompts are disabled")
)

// maxAttempts bounds how often an invalid answer is asked again.
const maxAttempts = 3

// Prompter asks questions on a reader/writer pair.
type Prompter struct {
	reader  *bufio.Reader
	writer  io.Writer
	noInput bool
	fuzzy   bool
}

// New creates a Prompter using stdin and stdout. Selections use a fuzzy
// finder when both are terminals.
func New() *Prompter {
	p := NewWithIO(os.Stdin, os.Stdout)
	p.fuzzy = term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	return p
}

// NewWithIO creates a Prompter with custom reader and writer for testing.
func NewWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// SetNoInput makes every prompt answer with its default without reading.
// Prompts without a default fail with ErrNoInput.
func (p *Prompter) SetNoInput(noInput bool) {
	p.noInput = noInput
}

// NoInput reports whether prompts are disabled.
func (p *Prompter) NoInput() bool {
	return p.noInput
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", errors.Wrap(err, "reading answer")
	}
	return strings.TrimSpace(line), nil
}

// Input asks for free text. An empty answer selects def.
func (p *Prompter) Input(label, def string) (string, error) {
	if p.noInput {
		if def == "" {
			return "", errors.Wrapf(ErrNoInput, "%s", label)
		}
		return def, nil
	}

	for range maxAttempts {
		if def != "" {
			fmt.Fprintf(p.writer, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.writer, "%s: ", label)
		}

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.writer, "A value is required.")
	}
	return "", errors.Wrapf(ErrInvalidSelection, "no value for %s", label)
}

// Number asks for an integer of at least minimum. An empty answer selects def.
func (p *Prompter) Number(label string, def, minimum int) (int, error) {
	if p.noInput {
		return def, nil
	}

	for range maxAttempts {
		fmt.Fprintf(p.writer, "%s [%d]: ", label, def)

		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}

		n, err := strconv.Atoi(answer)
		switch {
		case err != nil:
			fmt.Fprintf(p.writer, "%q is not a number.\n", answer)
		case n < minimum:
			fmt.Fprintf(p.writer, "Enter a number of at least %d.\n", minimum)
		default:
			return n, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidSelection, "no valid number for %s", label)
}

// Float asks for a number greater than zero. An empty answer selects def.
func (p *Prompter) Float(label string, def float64) (float64, error) {
	if p.noInput {
		return def, nil
	}

	for range maxAttempts {
		fmt.Fprintf(p.writer, "%s [%s]: ", label, strconv.FormatFloat(def, 'f', -1, 64))

		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}

		f, err := strconv.ParseFloat(answer, 64)
		if err == nil && f > 0 {
			return f, nil
		}
		fmt.Fprintf(p.writer, "%q is not a positive number.\n", answer)
	}
	return 0, errors.Wrapf(ErrInvalidSelection, "no valid number for %s", label)
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	if p.noInput {
		return def, nil
	}

	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for range maxAttempts {
		fmt.Fprintf(p.writer, "%s [%s]: ", label, hint)

		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.writer, "Answer y or n.")
	}
	return false, errors.Wrapf(ErrInvalidSelection, "no answer for %s", label)
}

// Select asks the user to choose one of options and returns its index.
//
// Returns:
//   - ErrNoOptions if the list is empty
//   - 0 without prompting if only one option exists
//   - def without prompting if prompts are disabled
//   - ErrCancelled if input ends or the finder is aborted
func (p *Prompter) Select(label string, options []string, def int) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if len(options) == 1 {
		return 0, nil
	}
	if def < 0 || def >= len(options) {
		def = 0
	}
	if p.noInput {
		return def, nil
	}
	if p.fuzzy {
		return p.findFuzzy(label, options)
	}

	fmt.Fprintf(p.writer, "%s:\n", label)
	for i, o := range options {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, o)
	}
	fmt.Fprintf(p.writer, "Select [%d]: ", def+1)

	input, err := p.readLine()
	if err != nil {
		return 0, err
	}
	if input == "" {
		return def, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > len(options) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(options))
	}
	return selection - 1, nil
}

func (p *Prompter) findFuzzy(label string, options []string) (int, error) {
	idx, err := fuzzyfinder.Find(
		options,
		func(i int) string { return options[i] },
		fuzzyfinder.WithPromptString(label+"> "),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return 0, ErrCancelled
		}
		return 0, errors.Wrap(err, "selection failed")
	}
	return idx, nil
}
