// Package clipboard copies prompts and outlines out of the notebook. The
// system clipboard is tried first; on a terminal without one, an OSC 52
// escape sequence asks the terminal emulator to take the text.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	sysclip "github.com/atotto/clipboard"
	"github.com/franz/music-notebook/internal/util"
)

var errUnsupported = errors.New("no system clipboard")

// Clipboard writes text to the system clipboard or the terminal
type Clipboard struct {
	system func(string) error
	term   io.Writer
	isTTY  bool
}

// Option configures a Clipboard
type Option func(*Clipboard)

// WithSystem replaces the system clipboard writer
func WithSystem(write func(string) error) Option {
	return func(c *Clipboard) { c.system = write }
}

// WithTerminal sets the terminal used for the OSC 52 fallback
func WithTerminal(w io.Writer, isTTY bool) Option {
	return func(c *Clipboard) {
		c.term = w
		c.isTTY = isTTY
	}
}

// New returns a clipboard backed by the OS clipboard and stdout
func New(opts ...Option) *Clipboard {
	c := &Clipboard{
		system: systemWrite,
		term:   os.Stdout,
		isTTY:  util.IsTerminal(os.Stdout.Fd()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func systemWrite(text string) error {
	if sysclip.Unsupported {
		return errUnsupported
	}
	return sysclip.WriteAll(text)
}

// Copy places text on the clipboard and reports whether any mechanism
// accepted it. Failures are logged at debug level and never returned.
func (c *Clipboard) Copy(text string) bool {
	err := c.system(text)
	if err == nil {
		return true
	}
	util.DebugLog("system clipboard unavailable: %v", err)

	if !c.isTTY || c.term == nil {
		return false
	}
	if _, err := io.WriteString(c.term, OSC52(text)); err != nil {
		util.DebugLog("OSC 52 write failed: %v", err)
		return false
	}
	return true
}

// Methods lists the copy mechanisms that look usable, for diagnostics
func (c *Clipboard) Methods() []string {
	var m []string
	if !sysclip.Unsupported {
		m = append(m, "system")
	}
	if c.isTTY {
		m = append(m, "osc52")
	}
	return m
}

// OSC52 returns the terminal escape sequence that sets the clipboard
// selection to text
func OSC52(text string) string {
	return fmt.Sprintf("\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
}
