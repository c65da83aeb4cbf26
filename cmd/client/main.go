package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/atinyakov/GophSubmit/internal/client/form"
	"github.com/atinyakov/GophSubmit/internal/client/submit"
	"github.com/atinyakov/GophSubmit/internal/logger"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop. Each "submit" is one activation of
// the form: fields are read, one request is sent and the outcome is shown
// until acknowledged.
func repl(ctx context.Context, in io.Reader, out io.Writer, s *submit.Submitter) {
	f := form.New(in, out)
	scanner := f.Scanner()
	h := &form.Handler{
		Form:      f,
		Submitter: s,
		Notifier:  form.BlockingNotifier{In: scanner, Out: out},
	}

	for {
		fmt.Fprint(out, "submit> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(out, "\nInput error: %v\n", err)
			}
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(out, "Available commands: help, submit, exit")
		case "submit":
			h.OnSubmit(ctx)
		case "exit":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// submitOnce sends the flag-provided fields and reports whether they were accepted.
func submitOnce(ctx context.Context, s *submit.Submitter, username, password, codeFile string, out io.Writer) bool {
	var code string
	if codeFile != "" {
		data, err := os.ReadFile(codeFile)
		if err != nil {
			fmt.Fprintf(out, "Failed to read file %q: %v\n", codeFile, err)
			return false
		}
		code = string(data)
	}

	res := s.Submit(ctx, username, password, code)
	form.PrintNotifier{Out: out}.Notify(res.Notification())
	return res.OK()
}

// main parses command-line flags and dispatches to the submit or shell commands.
func main() {
	var (
		cmd      string
		baseURL  string
		caFile   string
		username string
		password string
		codeFile string
		timeout  time.Duration
		logLevel string
		showVer  bool
	)

	flag.StringVar(&cmd, "cmd", "shell", "command: submit | shell")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "submission server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for https servers")
	flag.StringVar(&username, "username", "", "username (submit)")
	flag.StringVar(&password, "password", "", "password (submit)")
	flag.StringVar(&codeFile, "code", "", "path to the code file (submit)")
	flag.DurationVar(&timeout, "timeout", 0, "request timeout, 0 for none")
	flag.StringVar(&logLevel, "log-level", "error", "diagnostic log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("GophSubmit Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	zl := logger.New()
	if err := zl.Init(logLevel); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Log.Sync() }()

	client, err := submit.NewHTTPClient(caFile, timeout)
	if err != nil {
		log.Fatal(err)
	}
	s := submit.New(baseURL, client, zl.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "submit":
		if !submitOnce(ctx, s, username, password, codeFile, os.Stdout) {
			stop()
			_ = zl.Log.Sync()
			os.Exit(1)
		}
	case "shell":
		repl(ctx, os.Stdin, os.Stdout, s)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
