// Command htmltree parses HTML files and prints the resulting trees.
//
// Usage:
//
//	htmltree dump [flags] file...
//	htmltree xml [flags] file
//	htmltree bench [flags] file
//	htmltree watch [flags] dir
//	htmltree serve [flags] dir
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/dpotapov/go-treebuilder"
	"github.com/dpotapov/go-treebuilder/dom"
	"github.com/dpotapov/go-treebuilder/filter"
	"github.com/dpotapov/go-treebuilder/inspect"
	"github.com/dpotapov/go-treebuilder/xmltree"
)

type flags struct {
	fragment  bool
	context   string
	scripting bool
	filter    string
	verbose   bool
	n         int
	addr      string
}

func (f *flags) options() inspect.Options {
	opts := inspect.Options{Scripting: f.scripting, Filter: f.filter}
	if f.fragment {
		opts.Context = f.context
	}
	return opts
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: htmltree <dump|xml|bench|watch|serve> [flags] args...\n")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]

	var f flags
	fset := flag.NewFlagSet(cmd, flag.ExitOnError)
	fset.BoolVar(&f.fragment, "fragment", false, "parse the input as a fragment")
	fset.StringVar(&f.context, "context", "body", "context element of a fragment")
	fset.BoolVar(&f.scripting, "scripting", false, "parse with the scripting flag set")
	fset.StringVar(&f.filter, "filter", "", "expression selecting the diagnostics to print")
	fset.BoolVar(&f.verbose, "v", false, "debug logging")
	fset.IntVar(&f.n, "n", 100, "number of iterations for bench")
	fset.StringVar(&f.addr, "addr", "localhost:8080", "listen address for serve")
	if err := fset.Parse(os.Args[2:]); err != nil {
		usage()
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := treebuilder.Config{Logger: logger, Scripting: f.scripting}

	var err error
	switch cmd {
	case "dump":
		err = dumpFiles(ctx, os.Stdout, fset.Args(), cfg, f.options())
	case "xml":
		if fset.NArg() != 1 {
			usage()
		}
		err = writeXML(ctx, os.Stdout, fset.Arg(0), cfg, &f)
	case "bench":
		if fset.NArg() != 1 {
			usage()
		}
		err = bench(ctx, os.Stdout, fset.Arg(0), cfg, f.n)
	case "watch":
		if fset.NArg() != 1 {
			usage()
		}
		err = watch(ctx, fset.Arg(0), logger, cfg, f.options())
	case "serve":
		if fset.NArg() != 1 {
			usage()
		}
		err = serve(ctx, f.addr, fset.Arg(0), logger, cfg)
	default:
		usage()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("htmltree "+cmd, "error", err)
		os.Exit(1)
	}
}

// dumpFiles parses files in parallel and writes their reports in order.
func dumpFiles(ctx context.Context, w io.Writer, files []string, cfg treebuilder.Config, opts inspect.Options) error {
	reports := make([]*inspect.Report, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range files {
		g.Go(func() error {
			content, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			rep, err := inspect.BuildReport(ctx, name, content, cfg, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for _, rep := range reports {
		if _, err := io.WriteString(w, rep.String()); err != nil {
			return err
		}
		if rep.Error != "" {
			errs = append(errs, fmt.Errorf("%s: %s", rep.File, rep.Error))
		}
	}
	return errors.Join(errs...)
}

// writeXML parses name into an etree document. Every diagnostic is printed
// to stderr with a snippet of the tree around the element it happened in.
func writeXML(ctx context.Context, w io.Writer, name string, cfg treebuilder.Config, fl *flags) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	flt, err := filter.Compile(fl.filter)
	if err != nil {
		return err
	}

	sink := &xmltree.Sink{}
	cfg.OnDiagnostic = flt.Wrap(func(d treebuilder.Diagnostic) {
		fmt.Fprintf(os.Stderr, "%s:%s\n", name, d)
		if snippet := xmltree.Context(sink.Current()); snippet != "" {
			fmt.Fprintf(os.Stderr, "%s\n", snippet)
		}
	})

	var doc *etree.Document
	if fl.fragment {
		root, err := xmltree.ParseFragment(ctx, file, treebuilder.NamespaceHTML, fl.context, cfg)
		if err != nil {
			return err
		}
		doc = etree.NewDocument()
		doc.SetRoot(root)
	} else {
		doc, err = xmltree.ParseWithSink(ctx, file, sink, cfg)
		if err != nil {
			return err
		}
	}
	doc.Indent(2)
	_, err = doc.WriteTo(w)
	return err
}

// bench parses name n times and then queries the tree the way a page
// scraper would.
func bench(ctx context.Context, w io.Writer, name string, cfg treebuilder.Config, n int) error {
	content, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if n < 1 {
		n = 1
	}

	var doc *html.Node
	var total, best time.Duration
	for i := 0; i < n; i++ {
		start := time.Now()
		doc, err = dom.Parse(ctx, bytes.NewReader(content), "", cfg)
		if err != nil {
			return err
		}
		d := time.Since(start)
		total += d
		if best == 0 || d < best {
			best = d
		}
	}
	fmt.Fprintf(w, "%s: %d bytes, %d runs, avg %v, best %v\n", name, len(content), n, total/time.Duration(n), best)

	var metas, links []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Namespace != "" {
			return
		}
		switch n.DataAtom {
		case atom.Meta:
			metas = append(metas, n)
		case atom.A:
			links = append(links, n)
		}
	})
	fmt.Fprintf(w, "meta elements: %d\n", len(metas))
	for _, m := range metas {
		var parts []string
		for _, a := range m.Attr {
			parts = append(parts, a.Key+"="+a.Val)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, " "))
	}
	fmt.Fprintf(w, "a elements: %d\n", len(links))
	return nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// watch dumps every HTML file under dir that changes.
func watch(ctx context.Context, dir string, logger *slog.Logger, cfg treebuilder.Config, opts inspect.Options) error {
	logger.Info("Watching", "dir", dir)
	return inspect.Watch(ctx, dir, logger, func(path string) {
		if err := dumpFiles(ctx, os.Stdout, []string{path}, cfg, opts); err != nil {
			logger.Error("Dump", "path", path, "error", err)
		}
	})
}

// serve runs the inspect handler over dir and notifies its websocket
// clients about changed files.
func serve(ctx context.Context, addr, dir string, logger *slog.Logger, cfg treebuilder.Config) error {
	h := &inspect.Handler{
		FileSystem: os.DirFS(dir),
		Config:     cfg,
		Logger:     logger,
	}
	srv := &http.Server{Addr: addr, Handler: h}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", "http://"+addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return inspect.Watch(ctx, dir, logger, func(path string) {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return
			}
			h.Notify(filepath.ToSlash(rel))
		})
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
