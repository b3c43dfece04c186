// Command brain is the reference caller of the store: a thin CLI over the
// api facade. It reads intents as JSON, prints reports as JSON, and exits
// non-zero whenever the engine reports failure.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agentbrain/brain/internal/api"
	"github.com/agentbrain/brain/internal/models"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "brain: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	root     string
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "brain",
		Short: "Transactional memory store for AI agents",
		Long: `brain is a single-user, local memory store: markdown documents plus a
sidecar index, mutated only through a crash-safe transactional write
protocol.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(opts.logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "store root (default: $BRAIN_ROOT, ~/Brain, or ancestor scan)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newWriteCommand(opts))
	cmd.AddCommand(newQueryCommand(opts))
	cmd.AddCommand(newGetCommand(opts))
	cmd.AddCommand(newBootCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newDeprecateCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newSchemaCommand())
	return cmd
}

// initLogger installs a tinted slog handler on stderr, color only when it is
// a terminal.
func initLogger(level string) {
	var ll slog.Level
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "error":
		ll = slog.LevelError
	default:
		ll = slog.LevelWarn
	}
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))
}

func open(opts *rootOptions) (*api.Brain, error) {
	return api.Open(api.Config{Root: opts.root})
}

// printJSON renders v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// errReported is the sentinel a command returns after printing a structured
// report, so the process exits non-zero without printing twice.
var errReported = fmt.Errorf("operation failed")

// reportResponse prints the response and converts failure into an exit code.
func reportResponse(resp *models.WriteResponse) error {
	if err := printJSON(resp); err != nil {
		return err
	}
	if !resp.Success {
		for _, e := range resp.Report.Errors {
			fmt.Fprintln(os.Stderr, "error:", e)
		}
		return errReported
	}
	return nil
}

func newInitCommand(opts *rootOptions) *cobra.Command {
	var git bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the directory skeleton and empty index artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := api.Open(api.Config{Root: opts.root, Git: git})
			if err != nil {
				return err
			}
			result, err := b.Init()
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().BoolVar(&git, "git", false, "initialize git versioning at the root")
	return cmd
}

func newWriteCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Submit a write intent (JSON from stdin or --file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := readIntent(file)
			if err != nil {
				return err
			}
			b, err := open(opts)
			if err != nil {
				return err
			}
			return reportResponse(b.Write(intent))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the intent from a file instead of stdin")
	return cmd
}

func readIntent(file string) (*models.Intent, error) {
	var data []byte
	var err error
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read intent: %w", err)
	}
	intent := &models.Intent{}
	if err := json.Unmarshal(data, intent); err != nil {
		return nil, fmt.Errorf("intent is not valid JSON: %w", err)
	}
	return intent, nil
}

func newQueryCommand(opts *rootOptions) *cobra.Command {
	req := &models.QueryRequest{}
	var scopeType string
	cmd := &cobra.Command{
		Use:   "query [goal...]",
		Short: "Rank digest candidates against a goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ScopeType = models.ScopeType(scopeType)
			for i, a := range args {
				if i > 0 {
					req.Goal += " "
				}
				req.Goal += a
			}
			b, err := open(opts)
			if err != nil {
				return err
			}
			resp, err := b.Query(req)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&scopeType, "scope-type", "", "filter by scope type (project, agent, user, topic)")
	cmd.Flags().StringVar(&req.ScopeID, "scope-id", "", "filter by scope id")
	cmd.Flags().IntVar(&req.TopK, "top-k", 0, "number of candidates to return (default 10)")
	return cmd
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <recordId>",
		Short: "Print the full record and a document preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(opts)
			if err != nil {
				return err
			}
			detail, err := b.Get(args[0])
			if err != nil {
				return err
			}
			if detail == nil {
				return fmt.Errorf("record %s not found", args[0])
			}
			return printJSON(detail)
		},
	}
}

func newBootCommand(opts *rootOptions) *cobra.Command {
	var scopeType, scopeID string
	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Load policy and manifest, report drift, declare scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(opts)
			if err != nil {
				return err
			}
			var scope *models.Scope
			if scopeType != "" || scopeID != "" {
				scope = &models.Scope{ScopeType: models.ScopeType(scopeType), ScopeID: scopeID}
			}
			result, err := b.Boot(scope)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&scopeType, "scope-type", "", "declare the working scope type")
	cmd.Flags().StringVar(&scopeID, "scope-id", "", "declare the working scope id")
	return cmd
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the committed store against its invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(opts)
			if err != nil {
				return err
			}
			report, err := b.Validate(full)
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if !report.OK() {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "also run the contamination and back-reference detectors")
	return cmd
}

func newDeprecateCommand(opts *rootOptions) *cobra.Command {
	var replacedBy, reason string
	cmd := &cobra.Command{
		Use:   "deprecate <recordId>",
		Short: "Mark a record deprecated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(opts)
			if err != nil {
				return err
			}
			return reportResponse(b.Write(&models.Intent{
				Action:            models.ActionDeprecate,
				RecordID:          args[0],
				ReplacedBy:        replacedBy,
				DeprecationReason: reason,
			}))
		},
	}
	cmd.Flags().StringVar(&replacedBy, "replaced-by", "", "successor record id, or \"obsolete\"")
	cmd.Flags().StringVar(&reason, "reason", "", "deprecation reason (required with --replaced-by obsolete)")
	return cmd
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	var confirmed bool
	var sessionStart string
	cmd := &cobra.Command{
		Use:   "delete <recordId>",
		Short: "Physically remove a deprecated record and its document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(opts)
			if err != nil {
				return err
			}
			var start *time.Time
			if sessionStart != "" {
				t, err := models.ParseTimestamp(sessionStart)
				if err != nil {
					return fmt.Errorf("invalid --session-start: %w", err)
				}
				start = &t
			}
			unmet, err := b.GateDelete(args[0], start, confirmed)
			if err != nil {
				return err
			}
			if len(unmet) > 0 {
				for _, u := range unmet {
					fmt.Fprintln(os.Stderr, "blocked:", u)
				}
				return errReported
			}
			return reportResponse(b.Write(&models.Intent{
				Action:   models.ActionDelete,
				RecordID: args[0],
			}))
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the deletion")
	cmd.Flags().StringVar(&sessionStart, "session-start", "", "override the session start timestamp for the gate")
	return cmd
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run the drift check whenever the store changes on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			if err := b.Watch(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the request/response contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := api.ContractSchema()
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
