package storage

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "boardharvest/pkg/errors"

	"golang.org/x/term"
)

// ErrDeclined is returned by a DirectoryPicker when the user refuses access.
// It matches errors.ErrCancelled.
var ErrDeclined = apperrors.New(apperrors.ErrorTypeConsentDeclined, "directory access declined")

// ErrNoTerminal is returned by PromptPicker when it cannot ask the user
var ErrNoTerminal = stderrors.New("no terminal available for the directory prompt")

// DirectoryPicker asks the user for a directory to save a run into.
// Returning ErrDeclined cancels the run; any other error makes the run fall
// back to individual downloads.
type DirectoryPicker interface {
	Pick(ctx context.Context, container string) (*Directory, error)
}

// FixedPicker grants a directory chosen ahead of time, e.g. on the command
// line, without asking
type FixedPicker struct {
	Path string
}

// Pick opens the fixed directory
func (p FixedPicker) Pick(ctx context.Context, container string) (*Directory, error) {
	return OpenDirectory(p.Path)
}

// PromptPicker proposes a directory on the terminal. The user can accept it,
// type another path, or decline.
type PromptPicker struct {
	Default string
	In      io.Reader
	Out     io.Writer

	// Interactive reports whether In is a terminal. Defaults to checking
	// stdin.
	Interactive func() bool
}

// NewPromptPicker creates a picker talking to stdin and stdout
func NewPromptPicker(defaultDir string) *PromptPicker {
	return &PromptPicker{
		Default: defaultDir,
		In:      os.Stdin,
		Out:     os.Stdout,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Pick asks where to save the files of container
func (p *PromptPicker) Pick(ctx context.Context, container string) (*Directory, error) {
	if p.Interactive != nil && !p.Interactive() {
		return nil, ErrNoTerminal
	}

	fmt.Fprintf(p.Out, "Save %q into %s? [Y/n or another path]: ", container, p.Default)

	answer, err := readLine(ctx, p.In)
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return nil, ErrDeclined
		}
		return nil, fmt.Errorf("failed to read answer: %w", err)
	}

	dir := p.Default
	switch strings.ToLower(answer) {
	case "", "y", "yes":
	case "n", "no":
		return nil, ErrDeclined
	default:
		dir = expandHome(answer)
	}
	return OpenDirectory(dir)
}

// readLine reads one trimmed line from r, giving up when ctx is done
func readLine(ctx context.Context, r io.Reader) (string, error) {
	type line struct {
		text string
		err  error
	}
	ch := make(chan line, 1)
	go func() {
		text, err := bufio.NewReader(r).ReadString('\n')
		if err == io.EOF && text != "" {
			err = nil
		}
		ch <- line{strings.TrimSpace(text), err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-ch:
		return l.text, l.err
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
