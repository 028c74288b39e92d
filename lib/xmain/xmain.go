// Package xmain provides a standard stub for the main of a command handling logging,
// flags, signals and shutdown.
package xmain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"

	ctxlog "oss.terrastruct.com/lrviz/lib/log"
)

// SHUTDOWN_TIMEOUT bounds how long run may take to return after a signal.
const SHUTDOWN_TIMEOUT = time.Minute

type RunFunc func(context.Context, *State) error

func Main(run RunFunc) {
	name := ""
	args := []string(nil)
	if len(os.Args) > 0 {
		name = filepath.Base(os.Args[0])
		args = os.Args[1:]
	}

	ms := &State{
		Name: name,

		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,

		Env: xos.NewEnv(os.Environ()),
	}
	ms.Log = cmdlog.Log(ms.Env, os.Stderr)
	ms.Opts = NewOpts(ms.Env, ms.Log, args)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	err := ms.Main(context.Background(), sigs, run)
	if err != nil {
		os.Exit(ms.report(err))
	}
}

// report prints err the way the command line expects it and returns the exit code.
func (ms *State) report(err error) int {
	var eerr ExitError
	var uerr UsageError
	switch {
	case errors.As(err, &eerr):
		if eerr.Message != "" {
			ms.Log.Error.Print(eerr.Message)
		}
		return eerr.Code
	case errors.As(err, &uerr):
		ms.Log.Error.Printf("%v\nRun with --help to see usage.", err)
		return 1
	default:
		ms.Log.Error.Print(err)
		return 1
	}
}

type State struct {
	Name string

	Stdin  io.Reader
	Stdout io.WriteCloser
	Stderr io.WriteCloser

	Log  *cmdlog.Logger
	Env  *xos.Env
	Opts *Opts
}

// Main runs run with a context that carries a structured logger writing to
// Stderr and that is canceled on the first signal.
func (ms *State) Main(ctx context.Context, sigs <-chan os.Signal, run RunFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = ms.WithSlog(ctx)

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- run(ctx, ms)
	}()

	select {
	case err := <-done:
		return err
	case sig := <-sigs:
		ms.Log.Warn.Printf("received signal %v: shutting down...", sig)
		cancel()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("failed to shutdown: %w", err)
			}
			if sig == syscall.SIGTERM {
				return nil
			}
			return ExitError{Code: 1}
		case <-time.After(SHUTDOWN_TIMEOUT):
			return ExitErrorf(1, "took longer than %v to shutdown: exiting forcefully", SHUTDOWN_TIMEOUT)
		}
	}
}

// WithSlog returns ctx with a human readable slog.Logger on ms.Stderr, at debug
// level when the DEBUG environment variable is set.
func (ms *State) WithSlog(ctx context.Context) context.Context {
	l := slog.Make(sloghuman.Sink(ms.Stderr)).Named(ms.Name)
	if ms.Env != nil && ms.Env.Getenv("DEBUG") != "" {
		l = l.Leveled(slog.LevelDebug)
	}
	return ctxlog.With(ctx, l)
}

type ExitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ExitErrorf(code int, msg string, v ...interface{}) ExitError {
	return ExitError{
		Code:    code,
		Message: fmt.Sprintf(msg, v...),
	}
}

func (ee ExitError) Error() string {
	s := fmt.Sprintf("exiting with code %d", ee.Code)
	if ee.Message != "" {
		s += ": " + ee.Message
	}
	return s
}

type UsageError struct {
	Message string `json:"message"`
}

func UsageErrorf(msg string, v ...interface{}) UsageError {
	return UsageError{
		Message: fmt.Sprintf(msg, v...),
	}
}

func (ue UsageError) Error() string {
	return fmt.Sprintf("bad usage: %s", ue.Message)
}

// ReadPath reads fp, or stdin if fp is "-".
func (ms *State) ReadPath(fp string) ([]byte, error) {
	if fp == "-" {
		return io.ReadAll(ms.Stdin)
	}
	return os.ReadFile(fp)
}

// WritePath writes p to fp, or to stdout if fp is "-".
func (ms *State) WritePath(fp string, p []byte) error {
	if fp == "-" {
		_, err := ms.Stdout.Write(p)
		if err != nil {
			return err
		}
		return ms.Stdout.Close()
	}
	return os.WriteFile(fp, p, 0644)
}

// HumanPath shortens fp for log messages: relative to the working directory when
// it is inside it, with ~ for the home directory otherwise.
func (ms *State) HumanPath(fp string) string {
	if fp == "-" {
		return fp
	}
	abs, err := filepath.Abs(fp)
	if err != nil {
		return fp
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	if home := ms.Env.Getenv("HOME"); home != "" && strings.HasPrefix(abs, home+string(filepath.Separator)) {
		return "~" + strings.TrimPrefix(abs, home)
	}
	return abs
}
