package cli

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/lexis/internal/config"
	"github.com/hyperjump/lexis/internal/processor"
	"github.com/hyperjump/lexis/internal/stopwords"
	"go.uber.org/zap"
)

// rangeFlag parses "2" or "1,3" into an n-gram range.
type rangeFlag struct {
	r   processor.NgramRange
	set bool
}

func (f *rangeFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%d,%d", f.r.Min, f.r.Max)
}

func (f *rangeFlag) Set(s string) error {
	r, err := ParseRange(s)
	if err != nil {
		return err
	}
	f.r, f.set = r, true
	return nil
}

// ParseRange parses "n" as (n, n) and "min,max" as (min, max). Bounds are checked later.
func ParseRange(s string) (processor.NgramRange, error) {
	lo, hi, found := strings.Cut(s, ",")
	if !found {
		hi = lo
	}
	minN, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return processor.NgramRange{}, fmt.Errorf("invalid n-gram range %q", s)
	}
	maxN, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return processor.NgramRange{}, fmt.Errorf("invalid n-gram range %q", s)
	}
	return processor.NgramRange{Min: minN, Max: maxN}, nil
}

// listFlag is a comma-separated list that remembers whether it was given, so "-disable="
// can mean "disable nothing".
type listFlag struct {
	values []string
	set    bool
}

func (f *listFlag) String() string { return strings.Join(f.values, ",") }

func (f *listFlag) Set(s string) error {
	f.set = true
	f.values = []string{}
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.values = append(f.values, v)
		}
	}
	return nil
}

// optInt and optBool track whether a value flag was given on the command line.
type optInt struct {
	v   int
	set bool
}

func (f *optInt) String() string { return strconv.Itoa(f.v) }

func (f *optInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	f.v, f.set = v, true
	return nil
}

type optBool struct {
	v   bool
	set bool
}

func (f *optBool) String() string   { return strconv.FormatBool(f.v) }
func (f *optBool) IsBoolFlag() bool { return true }

func (f *optBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	f.v, f.set = v, true
	return nil
}

// Flags are the options shared by the processing commands.
type Flags struct {
	ConfigPath string
	Debug      bool
	Output     string

	ngram           rangeFlag
	batchSize       optInt
	threads         optInt
	lowercase       optBool
	stopwords       listFlag
	stopwordsFile   string
	stopwordsPreset string
	disable         listFlag
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "config file path (default: ./lexis.yaml, then "+config.DefaultPath+")")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&f.Output, "output", string(OutputText), "output format: text, json or jsonl")
	fs.Var(&f.ngram, "ngram", "n-gram sizes as n or min,max (default 1)")
	fs.Var(&f.batchSize, "batch-size", fmt.Sprintf("documents per engine batch (default %d)", processor.DefaultBatchSize))
	fs.Var(&f.threads, "threads", "engine threads per batch (default 1)")
	fs.Var(&f.lowercase, "lowercase", "lowercase tokens before filtering (default true; tokenize only)")
	fs.Var(&f.stopwords, "stopwords", "comma-separated stopwords")
	fs.StringVar(&f.stopwordsFile, "stopwords-file", "", "file with one stopword per line; # starts a comment")
	fs.StringVar(&f.stopwordsPreset, "stopwords-preset", "", "stopword preset: none or english")
	fs.Var(&f.disable, "disable", "comma-separated pipeline stages to skip (default parser,ner)")
}

// Params returns the per-call parameters given on the command line.
func (f *Flags) Params() []processor.Param {
	var opts []processor.Param
	if f.ngram.set {
		opts = append(opts, processor.WithNgramRange(f.ngram.r.Min, f.ngram.r.Max))
	}
	if f.batchSize.set {
		opts = append(opts, processor.WithBatchSize(f.batchSize.v))
	}
	if f.threads.set {
		opts = append(opts, processor.WithThreads(f.threads.v))
	}
	if f.lowercase.set {
		opts = append(opts, processor.WithLowercase(f.lowercase.v))
	}
	return opts
}

// ApplyTo overlays the stopword and stage flags on cfg.
func (f *Flags) ApplyTo(cfg *config.Config) {
	if f.Debug {
		cfg.Debug = true
	}
	if f.stopwords.set {
		cfg.Processor.Stopwords = f.stopwords.values
	}
	if f.stopwordsFile != "" {
		cfg.Processor.StopwordsFile = f.stopwordsFile
	}
	if f.stopwordsPreset != "" {
		cfg.Processor.StopwordsPreset = f.stopwordsPreset
	}
	if f.disable.set {
		cfg.Processor.Disable = f.disable.values
	}
}

// ProcessorOptions builds processor options from cfg. Config overrides become instance
// overrides, which win over per-call flags.
func ProcessorOptions(cfg config.ProcessorConfig, logger *zap.Logger) (processor.Options, error) {
	set, err := stopwords.Build(cfg.StopwordsPreset, cfg.StopwordsFile, cfg.Stopwords)
	if err != nil {
		return processor.Options{}, err
	}
	var overrides processor.Params
	if r := cfg.Overrides.NgramRange; len(r) == 2 {
		overrides.NgramRange = &processor.NgramRange{Min: r[0], Max: r[1]}
	}
	overrides.BatchSize = cfg.Overrides.BatchSize
	overrides.Threads = cfg.Overrides.Threads
	overrides.Lowercase = cfg.Overrides.Lowercase
	return processor.Options{
		Model:     cfg.Model,
		Disable:   cfg.Disable,
		Stopwords: set.Words(),
		Overrides: overrides,
		Logger:    logger,
	}, nil
}

// ParseArgs parses flags interleaved with positional arguments, which the flag package
// alone stops at. Positionals keep their order. Everything after "--" is positional.
func ParseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
