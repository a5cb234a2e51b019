package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/froppa/sanitary/kits/configkit"
	"github.com/froppa/sanitary/kits/redactkit"
	"github.com/froppa/sanitary/kits/runtimeinfo"
	"github.com/froppa/sanitary/kits/sanitizer"
	"github.com/froppa/sanitary/kits/telemetry"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		if writeErr := writeln(root.ErrOrStderr(), err); writeErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "sanitaryctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sanitaryctl",
		Short:        "Redact sensitive keys and patterns from structured data",
		Version:      runtimeinfo.Version,
		SilenceUsage: true,
	}

	root.AddCommand(newSanitizeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newHashesCmd())

	return root
}

type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// --- hashes ----------------------------------------------------------------------

func newHashesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashes",
		Short: "List hash algorithms accepted by --hash and redact.hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range sanitizer.HashNames() {
				line := name
				if sanitizer.IsExtendable(name) {
					line = fmt.Sprintf("%s (extendable, default length %d)", name, sanitizer.DefaultExtendableLength)
				}
				if err := writeln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// --- config ----------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate and inspect configuration",
	}

	cmd.AddCommand(newConfigCheckCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

// checkers validate one configuration key each, the same way the fx modules
// consume it.
var checkers = map[string]func(*configkit.YAMLProvider) error{
	redactkit.Key: func(p *configkit.YAMLProvider) error {
		cfg, err := redactkit.Load(p)
		if err != nil {
			return err
		}
		_, err = redactkit.New(cfg)
		return err
	},
	"telemetry": func(p *configkit.YAMLProvider) error {
		_, err := configkit.ProvideFromKey[telemetry.Config]("telemetry")(p)
		return err
	},
}

type configCheckOptions struct {
	key    string
	cfgRef string
}

func newConfigCheckCmd() *cobra.Command {
	opts := &configCheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration; the redact key is compiled into a sanitizer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigCheck(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.key, "key", "", "Configuration key to check (default: all known keys)")
	flags.StringVar(&opts.cfgRef, "config", "", "Path to YAML config file (highest precedence)")

	return cmd
}

func runConfigCheck(cmd *cobra.Command, opts *configCheckOptions) error {
	keys := make([]string, 0, len(checkers))
	if opts.key != "" {
		if _, ok := checkers[opts.key]; !ok {
			return fmt.Errorf("unknown configuration key %q", opts.key)
		}
		keys = append(keys, opts.key)
	} else {
		for k := range checkers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	provider, err := loadProvider(cmd.Context(), opts.cfgRef)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	exitCode := 0
	for _, key := range keys {
		err := checkers[key](provider)
		if err == nil {
			if err := writef(out, "[OK] %s\n", key); err != nil {
				return err
			}
			continue
		}
		exitCode = 1
		for _, issue := range checkIssues(err) {
			if err := writef(out, "[ERROR] %s: %s\n", key, issue); err != nil {
				return err
			}
		}
	}

	if exitCode != 0 {
		return &exitError{code: exitCode}
	}
	return nil
}

// checkIssues splits err into one line per problem: validator field failures
// and every invalid pattern of a joined ConfigError.
func checkIssues(err error) []string {
	var cfgErr *sanitizer.ConfigError
	if !errors.As(err, &cfgErr) {
		return configkit.Issues(err)
	}
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

type configListOptions struct {
	key         string
	format      string
	showSecrets bool
	cfgRef      string
}

func newConfigListCmd() *cobra.Command {
	opts := &configListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Render configuration values for a given key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigList(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.key, "key", "", "Configuration key to display (required)")
	flags.StringVar(&opts.format, "format", "yaml", "Output format: yaml|json")
	flags.BoolVar(&opts.showSecrets, "show-secrets", false, "Include secret values in output")
	flags.StringVar(&opts.cfgRef, "config", "", "Path to YAML config file (highest precedence)")

	return cmd
}

func runConfigList(cmd *cobra.Command, opts *configListOptions) error {
	if opts.key == "" {
		return fmt.Errorf("--key is required")
	}

	provider, err := loadProvider(cmd.Context(), opts.cfgRef)
	if err != nil {
		return err
	}

	var raw any
	if err := provider.Get(opts.key).Populate(&raw); err != nil {
		return err
	}
	outVal := sanitizer.ToAny(sanitizer.FromAny(raw))
	if !opts.showSecrets {
		outVal = configkit.Redact(opts.key, raw)
	}

	b, err := marshal(outVal, opts.format)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), string(b))
}

// --- helpers ---------------------------------------------------------------------

func loadProvider(ctx context.Context, cfgRef string) (*configkit.YAMLProvider, error) {
	if cfgRef == "" {
		return configkit.NewYAML(ctx)
	}
	return configkit.NewYAML(ctx, configkit.WithSources(configkit.File(cfgRef)))
}

func marshal(v any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported format %q; use yaml or json", format)
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func write(w io.Writer, s string) error {
	_, err := fmt.Fprint(w, s)
	return err
}
