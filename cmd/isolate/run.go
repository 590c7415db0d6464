package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/isolate"
	"github.com/fwojciec/isolate/douceur"
	"github.com/fwojciec/isolate/extract"
	"github.com/fwojciec/isolate/fs"
	"github.com/fwojciec/isolate/goquery"
	"github.com/fwojciec/isolate/htmltomarkdown"
	isolatehttp "github.com/fwojciec/isolate/http"
	"github.com/fwojciec/isolate/loop"
	"github.com/fwojciec/isolate/media"
	"github.com/fwojciec/isolate/rod"
	isolateslog "github.com/fwojciec/isolate/slog"
	"golang.org/x/net/html"
)

// source is a loaded document with its resolved target.
type source struct {
	doc     *html.Node
	target  *html.Node
	baseURL string
	media   isolate.MediaMatcher
	close   func()
}

// Run isolates the target element of the source and writes the result.
func (c *CLI) Run(deps *Dependencies) error {
	ctx := deps.Ctx
	logger := deps.Logger

	var (
		src *source
		err error
	)
	if c.Pick || c.Render {
		src, err = c.openBrowser(ctx, deps)
	} else {
		src, err = c.openStatic(ctx, deps)
	}
	if err != nil {
		return err
	}
	defer src.close()

	l := loop.New(loop.WithLogger(logger))
	defer l.Close()

	sourceOpts := []douceur.SourceOption{douceur.WithLogger(logger)}
	if isURL(src.baseURL) {
		sheets := isolatehttp.NewFetcher(isolatehttp.WithTimeout(c.Timeout))
		sourceOpts = append(sourceOpts,
			douceur.WithBaseURL(src.baseURL),
			douceur.WithSheetLoader(isolateslog.NewLoggingSheetLoader(isolatehttp.NewSheetLoader(sheets), logger)),
		)
	}

	pipeline := &extract.Pipeline{
		Canceller: &extract.Canceller{Timers: l.Timers(), Frames: l.Frames(), Logger: logger},
		Pruner: goquery.NewPruner(
			goquery.WithExecutor(l),
			goquery.WithMaxIterations(c.MaxIterations),
			goquery.WithLogger(logger),
		),
		StyleSheets: douceur.NewSource(sourceOpts...),
		Styles:      &extract.StyleSheetPruner{Selectors: goquery.Matcher{}, Media: src.media, Logger: logger},
		Executor:    l,
		Logger:      logger,
	}

	result, err := isolateslog.NewLoggingIsolator(pipeline, logger).Isolate(ctx, src.doc, src.target)
	if err != nil {
		return err
	}

	out := result.HTML
	if c.Format == "markdown" {
		var conv isolate.Converter = htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(src.baseURL))
		out, err = conv.Convert(out)
		if err != nil {
			return fmt.Errorf("convert to markdown: %w", err)
		}
	}

	if c.Tree {
		fmt.Fprint(deps.Stderr, goquery.Outline(src.doc))
	}

	return c.write(deps, logger, out)
}

// openStatic loads the source without a browser: URLs over HTTP, anything
// else from disk or stdin.
func (c *CLI) openStatic(ctx context.Context, deps *Dependencies) (*source, error) {
	var fetcher isolate.Fetcher
	baseURL := ""
	if isURL(c.Source) {
		fetcher = isolatehttp.NewFetcher(isolatehttp.WithTimeout(c.Timeout))
		baseURL = c.Source
	} else {
		fetcher = fs.NewFetcher(deps.Stdin)
	}
	fetcher = isolateslog.NewLoggingFetcher(fetcher, deps.Logger)
	defer fetcher.Close()

	text, err := fetcher.Fetch(ctx, c.Source)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	target, err := goquery.Find(doc, c.Select)
	if err != nil {
		return nil, err
	}

	return &source{
		doc:     doc,
		target:  target,
		baseURL: baseURL,
		media: media.Viewport{
			Width:       c.Width,
			Height:      c.Height,
			Type:        c.MediaType,
			ColorScheme: c.ColorScheme,
		},
		close: func() {},
	}, nil
}

// openBrowser loads the source in Chrome. With --pick the window is visible
// and the user clicks the target; otherwise the rendered page is frozen and
// the target is resolved by selector. The page stays open until the run
// ends so media queries are answered by the page itself.
func (c *CLI) openBrowser(ctx context.Context, deps *Dependencies) (*source, error) {
	logger := deps.Logger

	browser, err := rod.Launch(rod.WithHeadless(!c.Pick))
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	fetcher := rod.NewFetcher(browser, rod.WithFetchTimeout(c.Timeout), rod.WithStealth(c.Stealth))
	page, err := fetcher.Open(ctx, c.Source)
	if err != nil {
		browser.Close()
		return nil, err
	}
	closeAll := func() {
		page.Close()
		browser.Close()
	}

	if err := page.Viewport(int(c.Width), int(c.Height)); err != nil {
		logger.Warn("set viewport", "err", err)
	}
	if err := page.EmulateMedia(c.MediaType, c.ColorScheme); err != nil {
		logger.Warn("emulate media", "err", err)
	}

	freeze := &extract.Canceller{Timers: page.Timers(), Frames: page.Frames(), Logger: logger}

	var doc, target *html.Node
	if c.Pick {
		fmt.Fprintln(deps.Stderr, "Click the element to isolate in the browser window.")
		doc, target, err = page.Pick(ctx, logger)
		if err != nil {
			closeAll()
			return nil, err
		}
		freezePage(ctx, freeze, logger)
	} else {
		freezePage(ctx, freeze, logger)
		text, err := page.HTML(ctx)
		if err != nil {
			closeAll()
			return nil, err
		}
		if doc, err = goquery.Parse(text); err != nil {
			closeAll()
			return nil, fmt.Errorf("parse document: %w", err)
		}
		if target, err = goquery.Find(doc, c.Select); err != nil {
			closeAll()
			return nil, err
		}
	}

	return &source{
		doc:     doc,
		target:  target,
		baseURL: page.URL(),
		media:   page.Media(),
		close:   closeAll,
	}, nil
}

// freezePage cancels the page's timers and animation frames. Failures are
// logged.
func freezePage(ctx context.Context, c *extract.Canceller, logger *slog.Logger) {
	stats, err := c.CancelAll(ctx)
	if err != nil {
		logger.Warn("freeze page", "err", err)
		return
	}
	logger.Debug("freeze page", "timers", stats.Timers, "frames", stats.Frames)
}

func (c *CLI) write(deps *Dependencies, logger *slog.Logger, out string) error {
	if c.Output == "" || c.Output == "-" {
		_, err := fmt.Fprint(deps.Stdout, out)
		return err
	}
	written, err := fs.NewWriter().Write(c.Output, out)
	if err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}
	if !written {
		logger.Info("output unchanged", "path", c.Output)
	}
	return nil
}
