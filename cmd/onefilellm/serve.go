package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jimmc414/onefilellm/internal/alias"
	"github.com/jimmc414/onefilellm/internal/config"
	"github.com/jimmc414/onefilellm/internal/dispatch"
	"github.com/jimmc414/onefilellm/internal/model"
	"github.com/jimmc414/onefilellm/internal/report"
	"github.com/jimmc414/onefilellm/internal/token"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Launch a local web UI over the aggregator",
		Long: `Serve starts a small local web server with a form for submitting
inputs. Each submission runs the same aggregation as the command line
and renders the combined document in the browser.

The server binds to localhost by default and is meant for local use;
it performs no authentication.

Examples:
  # Serve on the default address
  onefilellm serve

  # Serve on another port
  onefilellm serve -a 127.0.0.1:9090`,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", "127.0.0.1:8080", "Listen address")
	cmd.Flags().String("config", "", "Config file path (default: .onefilellm in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if err := applyConfigFile(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received interrupt signal, shutting down")
		cancel()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)

	return runServe(ctx, cfg, logger, addr)
}

// runServe runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newServeHandler(cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// indexPage is the submission form. The UI is deliberately small: one
// textarea of inputs, one optional depth override.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>onefilellm</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; height: 10rem; font-family: monospace; }
input[type=number] { width: 5rem; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; white-space: pre-wrap; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>onefilellm</h1>
<p>One input per line: local paths, GitHub repos/issues/PRs, web URLs,
arXiv links, YouTube videos, DOIs, PMIDs.</p>
<form method="post" action="/aggregate">
<p><textarea name="inputs" placeholder="https://example.com/docs&#10;github.com/user/repo"></textarea></p>
<p><label>Crawl depth <input type="number" name="depth" min="1" placeholder="{{.Depth}}"></label></p>
<p><button type="submit">Aggregate</button></p>
</form>
</body>
</html>
`

// resultPage renders one aggregation outcome. html/template escaping
// keeps the aggregated document inert inside the <pre> block.
const resultPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>onefilellm result</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; white-space: pre-wrap; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>Result</h1>
<p class="meta">{{.SourceCount}} source(s), {{.FailedCount}} failed,
{{if .Estimated}}~{{end}}{{.TokenCount}} tokens</p>
<p><a href="/">Back</a></p>
<pre>{{.Document}}</pre>
</body>
</html>
`

var (
	indexTmpl  = template.Must(template.New("index").Parse(indexPage))
	resultTmpl = template.Must(template.New("result").Parse(resultPage))
)

// newServeHandler builds the HTTP handler for the web UI. The token
// counter is constructed once; encoding is safe for concurrent use.
func newServeHandler(cfg *config.Config, logger *slog.Logger) http.Handler {
	counter := token.NewCounter()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTmpl.Execute(w, struct{ Depth int }{Depth: cfg.MaxDepth}); err != nil {
			logger.Error("render index failed", "error", err)
		}
	})

	mux.HandleFunc("POST /aggregate", func(w http.ResponseWriter, r *http.Request) {
		inputs := alias.ParseTargets(r.FormValue("inputs"))
		if len(inputs) == 0 {
			http.Error(w, "no inputs provided", http.StatusBadRequest)
			return
		}

		// Each request works on its own config copy so a depth
		// override never leaks into other requests.
		reqCfg := *cfg
		if v := r.FormValue("depth"); v != "" {
			depth, err := strconv.Atoi(v)
			if err != nil || depth < 1 {
				http.Error(w, "depth must be a positive integer", http.StatusBadRequest)
				return
			}
			reqCfg.MaxDepth = depth
		}

		rec := model.NewRunRecord()
		d := dispatch.NewDispatcher(&reqCfg, dispatch.WithLogger(logger))
		results := d.ProcessAll(r.Context(), inputs, rec)

		blocks := make([]string, 0, len(results))
		for _, res := range results {
			blocks = append(blocks, res.Content)
		}
		document := report.Combine(blocks)

		data := struct {
			Document    string
			SourceCount int
			FailedCount int
			TokenCount  int
			Estimated   bool
		}{
			Document:    document,
			SourceCount: len(rec.Sources),
			FailedCount: rec.FailedSources(),
			TokenCount:  counter.Count(document),
			Estimated:   counter.Estimated(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := resultTmpl.Execute(w, data); err != nil {
			logger.Error("render result failed", "error", err)
		}
	})

	return mux
}
