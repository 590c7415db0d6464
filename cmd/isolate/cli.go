package main

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/isolate"
)

// Dependencies holds the I/O and logging shared by command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Source string `arg:"" help:"URL, HTML file or - for stdin"`

	Select string `short:"s" help:"CSS selector of the target element (first match)"`
	Pick   bool   `help:"Open a browser window and click the target element"`
	Render bool   `help:"Render URLs in headless Chrome before isolating"`

	Output string `short:"o" help:"Output file (default: stdout)"`
	Format string `short:"f" enum:",html,markdown" help:"Output format: html or markdown (default: html)"`

	Width       float64 `help:"Viewport width in CSS pixels for media queries"`
	Height      float64 `help:"Viewport height in CSS pixels for media queries"`
	MediaType   string  `name:"media-type" help:"Media type for media queries"`
	ColorScheme string  `name:"color-scheme" enum:",light,dark" help:"Preferred color scheme for media queries"`

	MaxIterations int           `name:"max-iterations" help:"Upper bound on tree pruning iterations"`
	Timeout       time.Duration `short:"t" help:"Fetch timeout"`
	Stealth       bool          `help:"Hide browser automation markers"`

	Tree    bool   `help:"Print an outline of the isolated tree to stderr"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Config  string `type:"path" help:"YAML file with default settings"`
}

// Validate reports flag combinations that cannot run.
func (c *CLI) Validate() error {
	switch {
	case c.Select == "" && !c.Pick:
		return isolate.Errorf(isolate.EINVALID, "either --select or --pick is required")
	case c.Select != "" && c.Pick:
		return isolate.Errorf(isolate.EINVALID, "--select and --pick are mutually exclusive")
	case c.Pick && c.Source == "-":
		return isolate.Errorf(isolate.EINVALID, "--pick needs a URL or a file, not stdin")
	case c.Format != "html" && c.Format != "markdown":
		return isolate.Errorf(isolate.EINVALID, "unknown format %q", c.Format)
	case c.MaxIterations < 0:
		return isolate.Errorf(isolate.EINVALID, "--max-iterations must not be negative")
	}
	return nil
}

// isURL reports whether source is fetched over the network.
func isURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
