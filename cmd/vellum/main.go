// Command vellum is a thin CLI driving a single navigate() call: parse
// a URL and a few flags, run the engine, write the resulting canvas to
// a PPM file, and print diagnostics to stderr. Structured stylistically
// on cmd/domwatch/main.go's flag-parse → run → exit-code shape.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/marrowdock/vellum/diagnostic"
	"github.com/marrowdock/vellum/engine"
	"github.com/marrowdock/vellum/fetchio"
	"github.com/marrowdock/vellum/paint"
	"github.com/marrowdock/vellum/rescache"
	"github.com/marrowdock/vellum/requestpolicy"
)

func main() {
	url := flag.String("url", "", "url to navigate")
	width := flag.Int("width", 1024, "viewport width in pixels")
	height := flag.Int("height", 768, "viewport height in pixels")
	out := flag.String("out", "", "path to write the rendered canvas as PPM (optional)")
	traceOut := flag.String("trace", "", "path to write a render trace log (optional)")
	noCache := flag.Bool("no-cache", false, "disable the response cache")
	allowCrossOrigin := flag.Bool("allow-cross-origin", false, "disable the same-origin request gate")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *url == "" {
		fmt.Fprintln(os.Stderr, "usage: vellum -url <url> [-width N] [-height N] [-out file.ppm]")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	cachePolicy := rescache.CacheAll
	if *noCache {
		cachePolicy = rescache.NoCache
	}

	e := engine.New(fetchio.New(fetchio.WithLogger(logger)))
	result := e.Navigate(context.Background(), *url, engine.NavigateOptions{
		ViewportW:   *width,
		ViewportH:   *height,
		CachePolicy: cachePolicy,
		Policy:      requestpolicy.Policy{AllowCrossOrigin: *allowCrossOrigin},
	})

	if result.Session != nil {
		for _, ev := range result.Session.Diagnostics.Events() {
			fmt.Fprintln(os.Stderr, diagnostic.Format(ev))
		}
	}

	if !result.OK {
		fmt.Fprintln(os.Stderr, "vellum: navigation failed:", result.Message)
		if result.Recovery != nil {
			fmt.Fprint(os.Stderr, result.Recovery.Format())
		}
		os.Exit(1)
	}

	if *out != "" {
		if err := writePPM(*out, result.Session.Pipeline.Canvas); err != nil {
			fmt.Fprintln(os.Stderr, "vellum: writing canvas:", err)
			os.Exit(1)
		}
	}

	if *traceOut != "" {
		var trace []paint.TraceEntry
		paint.RenderToCanvasTraced(result.Session.Pipeline.Layout, *width, *height, &trace)
		if !paint.WriteRenderTrace(trace, *traceOut) {
			fmt.Fprintln(os.Stderr, "vellum: writing trace failed")
			os.Exit(1)
		}
	}
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// writePPM encodes canvas as a binary PPM (P6, RGB — the alpha channel
// is dropped, matching the output contract's "assume RGB or RGBA" in
// spec.md §3).
func writePPM(path string, canvas paint.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n%d %d\n255\n", canvas.Width, canvas.Height)
	for i := 0; i+4 <= len(canvas.Pixels); i += 4 {
		w.Write(canvas.Pixels[i : i+3])
	}
	return w.Flush()
}
