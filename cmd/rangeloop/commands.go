package main

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/orizon-lang/rangeloop/internal/cli"
	"github.com/orizon-lang/rangeloop/internal/config"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/interp"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
	"github.com/orizon-lang/rangeloop/internal/irio"
	"github.com/orizon-lang/rangeloop/internal/lower/forloops"
	"github.com/orizon-lang/rangeloop/internal/pipeline"
	"github.com/orizon-lang/rangeloop/internal/server"
	"github.com/orizon-lang/rangeloop/internal/watch"
)

// errUsage reports bad arguments after the usage text has been printed.
var errUsage = stderrors.New("usage")

// passNames lists the passes a configuration may disable.
var passNames = []string{"forloops"}

// common holds the flags shared by the subcommands that lower units.
type common struct {
	configFile string
	workers    int
	verify     bool
	verbose    bool
	disable    string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", config.DefaultFile, "configuration file")
	fs.IntVar(&c.workers, "workers", 0, "units lowered at once (default from config)")
	fs.BoolVar(&c.verify, "verify", true, "verify units after lowering")
	fs.BoolVar(&c.verbose, "v", false, "log per-unit statistics")
	fs.StringVar(&c.disable, "disable", "", "comma-separated passes to skip")
}

// load reads the configuration; flags given on the command line win.
func (c *common) load(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = c.workers
		case "verify":
			cfg.Verify = c.verify
		case "v":
			cfg.Verbose = c.verbose
		case "disable":
			cfg.DisabledPasses = nil
			for _, name := range strings.Split(c.disable, ",") {
				if name = strings.TrimSpace(name); name != "" {
					cfg.DisabledPasses = append(cfg.DisabledPasses, name)
				}
			}
		}
	})
	if err := cfg.Validate(passNames...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newPipeline(cfg *config.Config, reg *intrinsics.IntrinsicRegistry, logger *log.Logger) *pipeline.Pipeline {
	return pipeline.New([]pipeline.Factory{
		func() pipeline.Pass { return forloops.New(reg, forloops.WithLogger(logger)) },
	},
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithVerify(cfg.Verify),
		pipeline.WithDisabled(cfg.DisabledPasses...),
		pipeline.WithLogger(logger),
	)
}

func readUnit(path string, reg *intrinsics.IntrinsicRegistry) (*hir.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := irio.Decode(fh, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// writeUnit prints f as JSON, or as text when dump is set.
func writeUnit(w io.Writer, f *hir.File, dump, color bool) error {
	if !dump {
		return irio.Encode(w, f)
	}
	text := hir.Dump(f)
	if color {
		text = hir.DumpColored(f)
	}
	_, err := io.WriteString(w, text)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && cli.UseColor(f)
}

func versionCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "output in JSON format")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	info := cli.GetVersionInfo()
	info.UnitFormat = irio.Format + " " + irio.Version
	return cli.PrintVersion(stdout, "rangeloop", info, *jsonOut)
}

func lowerCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lower", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	dump := fs.Bool("dump", false, "print units as text instead of JSON")
	out := fs.String("o", "", "write the lowered unit to this file (single input only)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := cli.ValidateArgs(fs.Args(), 1, "rangeloop lower [-dump] [-o out.json] unit.json..."); err != nil {
		return err
	}
	if *out != "" && fs.NArg() > 1 {
		return fmt.Errorf("-o needs exactly one input, got %d", fs.NArg())
	}
	cfg, err := c.load(fs)
	if err != nil {
		return err
	}
	if *dump {
		cfg.Dump = true
	}

	reg := intrinsics.Default()
	units := make([]*hir.File, 0, fs.NArg())
	for _, path := range fs.Args() {
		f, err := readUnit(path, reg)
		if err != nil {
			return err
		}
		units = append(units, f)
	}

	logger := cli.NewLogger(cfg.Verbose)
	results, err := newPipeline(cfg, reg, logger).Run(ctx, units)
	if err != nil {
		return err
	}

	w := stdout
	if *out != "" {
		fh, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer fh.Close()
		w = fh
	}
	color := isTerminal(w)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if err := writeUnit(w, res.Unit, cfg.Dump, color); err != nil {
			return err
		}
	}
	return pipeline.Err(results)
}

func runCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	function := fs.String("func", "main", "function to evaluate")
	lower := fs.Bool("lower", true, "lower the unit before evaluating it")
	limit := fs.Int("limit", 0, "abort after this many loop iterations (0 for no limit)")
	timeout := fs.Duration("timeout", 0, "optional timeout (e.g., 30s)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := cli.ValidateArgs(fs.Args(), 1, "rangeloop run [-func main] unit.json"); err != nil {
		return err
	}
	cfg, err := c.load(fs)
	if err != nil {
		return err
	}
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	reg := intrinsics.Default()
	f, err := readUnit(fs.Arg(0), reg)
	if err != nil {
		return err
	}
	if *lower {
		res := newPipeline(cfg, reg, cli.NewLogger(cfg.Verbose)).RunUnit(ctx, f)
		if res.Err != nil {
			return res.Err
		}
		f = res.Unit
	}

	opts := []interp.Option{interp.WithExterns(map[string]interp.ExternFunc{
		"log": func(args []interp.Value) (interp.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.String()
			}
			_, err := fmt.Fprintln(stdout, strings.Join(parts, " "))
			return interp.Unit, err
		},
	})}
	if *limit > 0 {
		opts = append(opts, interp.WithIterationLimit(*limit))
	}
	return interp.New(reg, opts...).Run(ctx, f, *function)
}

func watchCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	delay := fs.Duration("delay", watch.DefaultDelay, "quiet period before re-lowering")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := cli.ValidateArgs(fs.Args(), 1, "rangeloop watch unit.json..."); err != nil {
		return err
	}
	cfg, err := c.load(fs)
	if err != nil {
		return err
	}

	reg := intrinsics.Default()
	logger := log.New(stderr, "[rangeloop] ", log.Ltime)
	p := newPipeline(cfg, reg, cli.NewLogger(cfg.Verbose))
	relower := func(path string) error {
		f, err := readUnit(path, reg)
		if err != nil {
			return err
		}
		res := p.RunUnit(ctx, f)
		if res.Err != nil {
			return res.Err
		}
		fmt.Fprintf(stdout, "// %s lowered at %s\n", path, time.Now().Format("15:04:05"))
		return writeUnit(stdout, res.Unit, true, isTerminal(stdout))
	}
	for _, path := range fs.Args() {
		if err := relower(path); err != nil {
			logger.Print(err)
		}
	}

	w, err := watch.New(fs.Args(), watch.WithDelay(*delay), watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()
	logger.Printf("watching %d units", fs.NArg())
	err = w.Run(ctx, func(ev watch.Event) error { return relower(ev.Path) })
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveCmd(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	listen := fs.String("listen", "", "UDP address to serve on (default from config)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	cfg, err := c.load(fs)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	tlsCfg, err := serverTLS(cfg)
	if err != nil {
		return err
	}
	reg := intrinsics.Default()
	logger := log.New(stderr, "[rangeloop] ", log.LstdFlags)
	h := server.NewHandler(newPipeline(cfg, reg, cli.NewLogger(cfg.Verbose)), reg, logger)
	srv := server.NewServer(cfg.Listen, tlsCfg, h)
	logger.Printf("serving HTTP/3 on %s", cfg.Listen)
	return srv.ListenAndServe(ctx)
}

// serverTLS loads the configured certificate or creates a self-signed one.
func serverTLS(cfg *config.Config) (*tls.Config, error) {
	if cfg.CertFile != "" {
		return server.LoadTLSConfig(cfg.CertFile, cfg.KeyFile)
	}
	return server.SelfSignedTLS([]string{"localhost", "127.0.0.1"}, 24*time.Hour)
}
