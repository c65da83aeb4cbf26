package form

import (
	"bufio"
	"fmt"
	"io"
)

// Notifier shows the outcome of a submission to the user.
type Notifier interface {
	Notify(message string)
}

// PrintNotifier writes the message and returns immediately.
type PrintNotifier struct {
	Out io.Writer
}

// Notify implements Notifier.
func (n PrintNotifier) Notify(message string) {
	fmt.Fprintln(n.Out, message)
}

// BlockingNotifier writes the message and does not return until the user
// acknowledges it with Enter (or the input is exhausted).
type BlockingNotifier struct {
	In  *bufio.Scanner
	Out io.Writer
}

// Notify implements Notifier.
func (n BlockingNotifier) Notify(message string) {
	fmt.Fprintf(n.Out, "\n*** %s ***\n[press Enter to continue]", message)
	n.In.Scan()
	fmt.Fprintln(n.Out)
}
