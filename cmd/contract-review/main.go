package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/contract-review/hitl"
	"github.com/tailored-agentic-units/contract-review/hitl/connectapi"
	"github.com/tailored-agentic-units/contract-review/kernel"
	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/hub"
)

const drainTimeout = 5 * time.Second

func main() {
	var (
		configFile   = flag.String("config", "", "Path to config YAML or JSON file")
		contractFile = flag.String("contract", "", "Path to contract YAML file (required unless -describe)")
		approval     = flag.String("approval", "", "Approval transport: console, auto-approve, auto-reject, connect (overrides config)")
		listen       = flag.String("listen", "", "Approval service address for the connect transport (overrides config)")
		timeout      = flag.Duration("timeout", 0, "Approval request timeout (overrides config)")
		asJSON       = flag.Bool("json", false, "Print the final decision as JSON instead of rendering outputs")
		describe     = flag.Bool("describe", false, "Print the workflow graph as YAML and exit")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if *contractFile == "" && !*describe {
		fmt.Fprintln(os.Stderr, "Usage: contract-review -contract <file> [-config <file>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	cfg, err := kernel.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *approval != "" {
		cfg.Approval.Transport = *approval
	}
	if *listen != "" {
		cfg.Approval.Listen = *listen
	}
	if *timeout > 0 {
		cfg.Approval.Timeout = *timeout
	}

	named, err := observability.GetObserver(cfg.Graph.Observer)
	if err != nil {
		log.Fatalf("Failed to resolve observer: %v", err)
	}
	observer := named
	if cfg.Graph.Observer != "trace" {
		observer = observability.NewMultiObserver(named, observability.TraceObserver{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputs := hub.New(ctx, cfg.Hub, observer)

	runtime, err := kernel.New(cfg, kernel.WithObserver(observer), kernel.WithSink(outputs))
	if err != nil {
		log.Fatalf("Failed to create kernel runtime: %v", err)
	}

	if *describe {
		out, err := runtime.Describe()
		if err != nil {
			log.Fatalf("Failed to describe graph: %v", err)
		}
		os.Stdout.Write(out)
		return
	}

	c, err := kernel.LoadContract(*contractFile)
	if err != nil {
		log.Fatalf("Failed to load contract: %v", err)
	}

	var sub *hub.Subscription
	if !*asJSON {
		if sub, err = outputs.Subscribe("console"); err != nil {
			log.Fatalf("Failed to subscribe to outputs: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if sub != nil {
		g.Go(func() error {
			return render(gctx, os.Stdout, sub)
		})
	}

	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	if callback := runtime.Callback(); callback != nil {
		callback.Notify = func(req hitl.Request) {
			logger.Info("approval pending", "id", req.ID, "kind", string(req.Kind), "summary", req.Summary())
		}
		addr := cfg.Approval.Listen
		logger.Info("serving approvals", "addr", addr, "service", connectapi.ServiceName)
		g.Go(func() error {
			return connectapi.ListenAndServe(serverCtx, addr, callback)
		})
	}

	var result *kernel.Result
	g.Go(func() error {
		defer stopServer()

		r, err := runtime.Run(gctx, c)
		if shutdownErr := outputs.Shutdown(drainTimeout); shutdownErr != nil {
			logger.Warn("output hub did not drain", "error", shutdownErr)
		}
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Contract review failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Decision); err != nil {
			log.Fatalf("Failed to encode decision: %v", err)
		}
	}
}
