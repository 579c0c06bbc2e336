// Package main is the lexis CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/lexis/internal/cli"
	"github.com/hyperjump/lexis/internal/config"
	"github.com/hyperjump/lexis/internal/extract"
	"github.com/hyperjump/lexis/internal/fileid"
	"github.com/hyperjump/lexis/internal/models"
	"github.com/hyperjump/lexis/internal/processor"
	"github.com/hyperjump/lexis/internal/server"
	"github.com/hyperjump/lexis/internal/watcher"
	"github.com/hyperjump/lexis/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

// localConfig is looked up in the working directory before config.DefaultPath.
const localConfig = "lexis.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what a command needs besides its arguments.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	var err error
	switch command := args[0]; command {
	case "tokenize":
		err = runProcess(ctx, e, cli.Tokenize, args[1:])
	case "lemmatize":
		err = runProcess(ctx, e, cli.Lemmatize, args[1:])
	case "serve", "server":
		err = runServe(ctx, e, args[1:])
	case "watch":
		err = runWatch(ctx, e, args[1:])
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "lexis version %s\n", version)
	case "help", "--help", "-h":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "lexis: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig loads path when given. Otherwise it tries ./lexis.yaml, then
// config.DefaultPath, and falls back to built-in defaults when neither exists.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}
	for _, candidate := range []string{localConfig, config.ExpandHome(config.DefaultPath)} {
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := config.Load(candidate)
			return cfg, candidate, err
		}
	}
	return config.Default(), "", nil
}

// setup parses args into flags, loads the config and builds the logger and processor.
type setup struct {
	flags  cli.Flags
	fs     *flag.FlagSet
	cfg    *config.Config
	logger *zap.Logger
	proc   *processor.Processor
	paths  []string
}

func newSetup(name string, e env) *setup {
	s := &setup{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	s.fs.SetOutput(e.stderr)
	s.flags.Register(s.fs)
	return s
}

func (s *setup) parse(args []string) error {
	paths, err := cli.ParseArgs(s.fs, args)
	if err != nil {
		return err
	}
	s.paths = paths
	cfg, path, err := loadConfig(s.flags.ConfigPath)
	if err != nil {
		return err
	}
	s.flags.ApplyTo(cfg)
	s.cfg = cfg

	s.logger, err = utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	s.logger.Debug("config loaded", zap.String("config_path", path), zap.Bool("debug", cfg.Debug))

	opts, err := cli.ProcessorOptions(cfg.Processor, s.logger)
	if err != nil {
		return err
	}
	s.proc, err = processor.New(opts)
	return err
}

func (s *setup) close() {
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

func runProcess(ctx context.Context, e env, mode cli.Mode, args []string) error {
	s := newSetup(mode.String(), e)
	s.fs.Usage = func() {
		fmt.Fprintf(s.fs.Output(), "Usage: lexis %s [flags] [paths...]\n\nWith no paths, each line of stdin is one document.\n\n", mode)
		s.fs.PrintDefaults()
	}
	if err := s.parse(args); err != nil {
		return err
	}
	defer s.close()

	format, err := cli.ParseOutputFormat(s.flags.Output)
	if err != nil {
		return err
	}
	var docs []models.Document
	if paths := s.paths; len(paths) > 0 && !(len(paths) == 1 && paths[0] == "-") {
		docs, err = extract.NewExtractor(s.cfg.Watch.Extensions...).Load(paths)
	} else {
		docs, err = cli.ReadLines(e.stdin, "stdin")
	}
	if err != nil {
		return err
	}

	w := cli.NewBatchWriter(e.stdout, format)
	if err := cli.Process(ctx, s.proc, mode, docs, s.flags.Params(), w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func runServe(ctx context.Context, e env, args []string) error {
	s := newSetup("serve", e)
	host := s.fs.String("host", "", "listen host (default from config, localhost)")
	port := s.fs.Int("port", 0, "listen port (default from config, 8080)")
	if err := s.parse(args); err != nil {
		return err
	}
	defer s.close()
	if *host != "" {
		s.cfg.Server.Host = *host
	}
	if *port != 0 {
		s.cfg.Server.Port = *port
	}

	srv := server.NewServer(s.proc, &s.cfg.Server, version, s.logger)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func runWatch(ctx context.Context, e env, args []string) error {
	s := newSetup("watch", e)
	lemmatize := s.fs.Bool("lemmatize", false, "emit lemma n-grams instead of token n-grams")
	syncExisting := s.fs.Bool("sync", true, "process files already present at startup")
	s.flags.Output = string(cli.OutputJSONL)
	s.fs.Lookup("output").DefValue = string(cli.OutputJSONL)
	s.fs.Usage = func() {
		fmt.Fprintf(s.fs.Output(), "Usage: lexis watch [flags] [directories...]\n\nDirectories default to watch.directories from the config.\n\n")
		s.fs.PrintDefaults()
	}
	if err := s.parse(args); err != nil {
		return err
	}
	defer s.close()

	format, err := cli.ParseOutputFormat(s.flags.Output)
	if err != nil {
		return err
	}
	if format == cli.OutputJSON {
		return fmt.Errorf("watch streams its output; use -output jsonl or text")
	}
	dirs := s.cfg.Watch.Directories
	if s.fs.NArg() > 0 {
		dirs = nil
		for _, d := range s.paths {
			abs, err := filepath.Abs(d)
			if err != nil {
				return err
			}
			dirs = append(dirs, abs)
		}
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no directories to watch")
	}
	mode := cli.Tokenize
	if *lemmatize || s.cfg.Watch.Lemmatize {
		mode = cli.Lemmatize
	}

	w := watcher.New(watcher.Options{
		Roots:        dirs,
		Extensions:   s.cfg.Watch.Extensions,
		Recursive:    s.cfg.Watch.RecursiveOrDefault(),
		Debounce:     s.cfg.Watch.Debounce,
		SyncExisting: *syncExisting,
		Logger:       s.logger,
	})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	out := cli.NewBatchWriter(e.stdout, format)
	ext := extract.NewExtractor(s.cfg.Watch.Extensions...)
	handler := &watchHandler{proc: s.proc, mode: mode, params: s.flags.Params(), extractor: ext, out: out, logger: s.logger}
	var handleErr error
	for ev := range w.Events() {
		if handleErr != nil {
			continue
		}
		if handleErr = handler.handle(ctx, ev); handleErr != nil {
			cancel()
		}
	}
	return errors.Join(handleErr, out.Close(), <-errc)
}

// watchHandler turns watcher events into output records.
type watchHandler struct {
	proc      *processor.Processor
	mode      cli.Mode
	params    []processor.Param
	extractor *extract.Extractor
	out       cli.BatchWriter
	logger    *zap.Logger
	seen      int
}

// handle returns an error only for failures that should stop watching. Files that cannot be
// extracted or processed are logged and skipped.
func (h *watchHandler) handle(ctx context.Context, ev watcher.Event) error {
	if ev.Op == watcher.Removed {
		return h.out.WriteRemoval(models.Removal{ID: fileid.ForPath(ev.Path), Source: ev.Path, Removed: true})
	}
	text, err := h.extractor.Extract(ev.Path)
	if err != nil {
		h.logger.Warn("extract failed", zap.String("path", ev.Path), zap.Error(err))
		return nil
	}
	doc := models.Document{ID: fileid.ForPath(ev.Path), Source: ev.Path, Text: text}
	var buf batchBuffer
	err = cli.Process(ctx, h.proc, h.mode, []models.Document{doc}, h.params, &buf)
	var procErr *processor.ProcessingError
	if errors.As(err, &procErr) {
		h.logger.Warn("processing failed", zap.String("path", ev.Path), zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	b := buf.batch
	b.Index = h.seen
	h.seen++
	return h.out.WriteBatch(b)
}

// batchBuffer captures the single batch of a one-document run.
type batchBuffer struct {
	batch models.Batch
}

func (b *batchBuffer) WriteBatch(batch models.Batch) error { b.batch = batch; return nil }
func (b *batchBuffer) WriteRemoval(models.Removal) error   { return nil }
func (b *batchBuffer) Close() error                        { return nil }

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `lexis - document tokenization, lemmatization and n-gram extraction

Usage:
  lexis tokenize [flags] [paths...]    Token n-grams per document
  lexis lemmatize [flags] [paths...]   Lemma n-grams per document
  lexis serve [flags]                  Start the HTTP API
  lexis watch [flags] [directories...] Emit n-grams for files as they change
  lexis version                        Show version
  lexis help                           Show this help

With no paths, tokenize and lemmatize read one document per line from stdin.
Directories are walked for supported files (.txt .md .rst .pdf .docx .pptx .xlsx .odt .odp .ods .rtf).

Common Flags:
  -config string            Config file path (default: ./lexis.yaml, then ~/.config/lexis/config.yaml)
  -ngram n|min,max          N-gram sizes (default: 1)
  -batch-size int           Documents per engine batch (default: 1000)
  -threads int              Engine threads per batch (default: 1)
  -lowercase                Lowercase tokens (default: true; tokenize only)
  -stopwords a,b,c          Stopwords to drop
  -stopwords-file path      One stopword per line
  -stopwords-preset name    none or english
  -disable a,b              Pipeline stages to skip (default: parser,ner)
  -output text|json|jsonl   Output format (default: text; watch: jsonl)
  -debug                    Debug logging on stderr

Serve Flags:
  -host string              Listen host
  -port int                 Listen port

Watch Flags:
  -lemmatize                Emit lemma n-grams
  -sync                     Process existing files at startup (default: true)

Examples:
  echo "The cat sat." | lexis tokenize -ngram 1,2
  lexis lemmatize -stopwords-preset english -output jsonl docs/
  lexis serve -port 9000
  lexis watch -lemmatize ~/notes`)
}
