// Package prompt implements plain line-based prompts for terminals where
// the full-screen wizard is unavailable.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Prompter asks questions on out and reads answers from in, one line per
// answer. An empty answer takes the default.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New() *Prompter {
	return NewWithIO(os.Stdin, os.Stdout)
}

// NewWithIO is used by tests and by callers that redirect the terminal.
func NewWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() string {
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// Text asks for a free-form value.
func (p *Prompter) Text(label, defaultValue string) string {
	if defaultValue == "" {
		fmt.Fprintf(p.out, "%s: ", label)
	} else {
		fmt.Fprintf(p.out, "%s [%s]: ", label, defaultValue)
	}
	if answer := p.readLine(); answer != "" {
		return answer
	}
	return defaultValue
}

// Port asks for a TCP port, falling back to the default on anything that is
// not a number in port range.
func (p *Prompter) Port(label string, defaultPort int) int {
	answer := p.Text(label, strconv.Itoa(defaultPort))
	port, err := strconv.Atoi(answer)
	if err != nil || port < 1 || port > 65535 {
		fmt.Fprintf(p.out, "Not a valid port, using %d.\n", defaultPort)
		return defaultPort
	}
	return port
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, defaultYes bool) bool {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", label, hint)

	switch strings.ToLower(p.readLine()) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Select asks to pick one of options and returns its index. Answers may be
// the option number or its name; anything else takes the default.
func (p *Prompter) Select(label string, options []string, defaultIndex int) int {
	fmt.Fprintln(p.out, label)
	for i, option := range options {
		marker := "   "
		if i == defaultIndex {
			marker = " > "
		}
		fmt.Fprintf(p.out, "%s%d) %s\n", marker, i+1, option)
	}
	fmt.Fprintf(p.out, "Choice [%d]: ", defaultIndex+1)

	answer := p.readLine()
	if answer == "" {
		return defaultIndex
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return n - 1
	}
	for i, option := range options {
		name, _, _ := strings.Cut(option, " ")
		if strings.EqualFold(answer, name) || strings.EqualFold(answer, option) {
			return i
		}
	}
	fmt.Fprintln(p.out, "Invalid choice, using default.")
	return defaultIndex
}
