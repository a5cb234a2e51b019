package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/froppa/sanitary/kits/configkit"
	"github.com/froppa/sanitary/kits/redactkit"
	"github.com/froppa/sanitary/kits/sanitizer"
)

type sanitizeOptions struct {
	keys        []string
	patterns    []string
	replacement string
	hash        string
	hashLength  int
	message     string
	cfgRef      string
	input       string
	inputFormat string
	format      string
	lines       bool
}

func newSanitizeCmd() *cobra.Command {
	opts := &sanitizeOptions{}

	cmd := &cobra.Command{
		Use:   "sanitize",
		Short: "Redact a JSON or YAML document, or a stream of log lines",
		Long: `Reads a document from --input (default stdin), redacts it and writes the result.

Settings from the redact key of the configuration are applied first; --key and
--pattern add to them, and --replacement, --hash and --message override them.`,
		Example: `  echo '{"user":"ada","password":"x"}' | sanitaryctl sanitize --key password
  sanitaryctl sanitize --lines --pattern '(?i)bearer\s+\S+' --input app.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSanitize(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.keys, "key", nil, "Sensitive mapping key (repeatable)")
	flags.StringArrayVar(&opts.patterns, "pattern", nil, "RE2 pattern flagging sensitive text (repeatable)")
	flags.StringVar(&opts.replacement, "replacement", "", "Static text replacing sensitive values")
	flags.StringVar(&opts.hash, "hash", "", "Replace sensitive values with their hex digest (see 'sanitaryctl hashes')")
	flags.IntVar(&opts.hashLength, "hash-length", 0, "Digest length in bytes for shake algorithms")
	flags.StringVar(&opts.message, "message", "", "Text replacing values that match a pattern")
	flags.StringVar(&opts.cfgRef, "config", "", "Path to YAML config file holding a redact key")
	flags.StringVarP(&opts.input, "input", "i", "-", "Input file, - for stdin")
	flags.StringVar(&opts.inputFormat, "input-format", "", "Input format: json|yaml (default: from file extension, else json)")
	flags.StringVarP(&opts.format, "format", "o", "json", "Output format: json|yaml")
	flags.BoolVar(&opts.lines, "lines", false, "Treat input as text and redact each line independently")

	cmd.MarkFlagsMutuallyExclusive("replacement", "hash")

	return cmd
}

func runSanitize(cmd *cobra.Command, opts *sanitizeOptions) error {
	s, err := buildSanitizer(cmd, opts)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer closeIn()

	if opts.lines {
		return sanitizeLines(s, in, cmd.OutOrStdout())
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	doc, err := decode(data, inputFormat(opts))
	if err != nil {
		return err
	}
	clean, err := redactkit.Sanitize(cmd.Context(), s, doc)
	if err != nil {
		return err
	}
	b, err := marshal(clean, opts.format)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), string(b))
}

// buildSanitizer layers the flags over the redact configuration, when one
// is available.
func buildSanitizer(cmd *cobra.Command, opts *sanitizeOptions) (*sanitizer.Sanitizer, error) {
	cfg := &redactkit.Config{}
	provider, err := loadProvider(cmd.Context(), opts.cfgRef)
	switch {
	case errors.Is(err, configkit.ErrNoSources):
	case err != nil:
		return nil, err
	default:
		if cfg, err = redactkit.Load(provider); err != nil {
			return nil, err
		}
	}

	cfg.Keys = append(cfg.Keys, opts.keys...)
	cfg.Patterns = append(cfg.Patterns, opts.patterns...)
	if opts.hash != "" {
		cfg.Hash, cfg.HashLength, cfg.Replacement = opts.hash, opts.hashLength, ""
	}
	if opts.replacement != "" {
		cfg.Replacement, cfg.Hash = opts.replacement, ""
	}
	if opts.message != "" {
		cfg.Message = opts.message
	}
	return redactkit.New(cfg)
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func inputFormat(opts *sanitizeOptions) string {
	if opts.inputFormat != "" {
		return strings.ToLower(opts.inputFormat)
	}
	switch strings.ToLower(filepath.Ext(opts.input)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func decode(data []byte, format string) (sanitizer.Value, error) {
	switch format {
	case "json":
		v, err := sanitizer.ParseJSON(data)
		if err != nil {
			return sanitizer.Value{}, fmt.Errorf("decode json input: %w", err)
		}
		return v, nil
	case "yaml", "yml":
		var v sanitizer.Value
		if err := yaml.Unmarshal(data, &v); err != nil {
			return sanitizer.Value{}, fmt.Errorf("decode yaml input: %w", err)
		}
		return v, nil
	default:
		return sanitizer.Value{}, fmt.Errorf("unsupported input format %q; use json or yaml", format)
	}
}

// sanitizeLines writes one output line per input line. Lines holding a JSON
// document are redacted as that document and written back compacted.
func sanitizeLines(s *sanitizer.Sanitizer, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	w := bufio.NewWriter(out)
	for sc.Scan() {
		v, err := s.SanitizeText(sc.Text())
		if err != nil {
			return err
		}
		if _, err := w.WriteString(v.String()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return w.Flush()
}
