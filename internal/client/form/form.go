// Package form binds a terminal form to the submission handler. It extracts
// the three field values, triggers one submission and shows the outcome as a
// notification.
package form

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/GophSubmit/internal/client/submit"
)

// endOfCode terminates manually typed code.
const endOfCode = "."

// maxLineBytes matches the request body cap of the submission service, so
// any single code line the server would accept can be typed.
const maxLineBytes = 1 << 20

// ErrInput is returned by Read when the field values could not be collected.
var ErrInput = errors.New("failed to read form input")

// Fields is one snapshot of the form inputs.
type Fields struct {
	Username string
	Password string
	Code     string
}

// Form reads field values from a line-oriented input.
type Form struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a Form prompting on out and reading answers from in.
func New(in io.Reader, out io.Writer) *Form {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Form{in: sc, out: out}
}

// Scanner exposes the underlying input so a BlockingNotifier can share it.
func (f *Form) Scanner() *bufio.Scanner {
	return f.in
}

// Read prompts for username, password and code. The code is loaded from a
// file when a path is given, otherwise it is typed line by line until a line
// holding a single ".". Prompts left unanswered at end of input leave the
// field empty. A failed input read or an unreadable code file is reported as
// an error wrapping ErrInput, and the fields must not be submitted.
func (f *Form) Read() (Fields, error) {
	var (
		fl  Fields
		err error
	)
	if fl.Username, err = f.prompt("Enter username: "); err != nil {
		return Fields{}, err
	}
	if fl.Password, err = f.prompt("Enter password: "); err != nil {
		return Fields{}, err
	}
	path, err := f.prompt("Enter code file path (leave empty for manual input): ")
	if err != nil {
		return Fields{}, err
	}

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Fields{}, fmt.Errorf("%w: code file %q: %w", ErrInput, path, err)
		}
		fl.Code = string(data)
		return fl, nil
	}

	fmt.Fprintf(f.out, "Enter code, finish with a line containing only %q:\n", endOfCode)
	var lines []string
	for f.in.Scan() {
		line := f.in.Text()
		if line == endOfCode {
			break
		}
		lines = append(lines, line)
	}
	if err := f.in.Err(); err != nil {
		return Fields{}, fmt.Errorf("%w: code: %w", ErrInput, err)
	}
	if len(lines) > 0 {
		fl.Code = strings.Join(lines, "\n") + "\n"
	}
	return fl, nil
}

func (f *Form) prompt(label string) (string, error) {
	fmt.Fprint(f.out, label)
	if f.in.Scan() {
		return f.in.Text(), nil
	}
	if err := f.in.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInput, strings.TrimSuffix(label, ": "), err)
	}
	return "", nil
}

// Submitter is the operation triggered by the form.
type Submitter interface {
	Submit(ctx context.Context, username, password, code string) submit.Result
}

// Handler ties a form, a submitter and a notifier together.
type Handler struct {
	Form      *Form
	Submitter Submitter
	Notifier  Notifier
}

// OnSubmit handles one activation of the submit control: it takes a fresh
// snapshot of the fields, runs at most one submission and emits exactly one
// notification. When the fields cannot be read nothing is sent and the
// result is a RequestFailed transport error.
func (h *Handler) OnSubmit(ctx context.Context) submit.Result {
	fl, err := h.Form.Read()
	if err != nil {
		res := submit.Result{Kind: submit.KindTransportError, Reason: submit.ReasonRequestFailed, Err: err}
		h.Notifier.Notify(fmt.Sprintf("%s %v", res.Notification(), err))
		return res
	}

	res := h.Submitter.Submit(ctx, fl.Username, fl.Password, fl.Code)
	h.Notifier.Notify(res.Notification())
	return res
}
