package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alpkeskin/gotoon"

	"github.com/pders01/timewarp/internal/config"
	twerrors "github.com/pders01/timewarp/internal/errors"
	"github.com/pders01/timewarp/internal/logging"
	"github.com/pders01/timewarp/internal/ollama"
	"github.com/pders01/timewarp/internal/timewarp"
)

// errReported is returned by commands that already wrote their failure to
// stdout as a JSON envelope.
var errReported = errors.New("error already reported")

// summaryCheckTimeout bounds the model lookup done before filing an issue.
const summaryCheckTimeout = 5 * time.Second

// Command output goes through these so tests can capture it.
var (
	out   io.Writer = os.Stdout
	stdin io.Reader = os.Stdin
)

// resolveRoot returns the absolute workspace root from --root or the
// current directory.
func resolveRoot() (string, error) {
	root := workspaceRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	return abs, nil
}

// openWorkspace opens the workspace at the resolved root with the configured
// lease setting plus any extra options.
func openWorkspace(extra ...timewarp.Option) (*timewarp.Workspace, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	opts := append([]timewarp.Option{timewarp.WithLocking(config.GetLockEnabled())}, extra...)
	return timewarp.Open(root, opts...), nil
}

// summaryOptions attaches an Ollama summarizer when summaries are enabled,
// the server answers and the configured model is pulled. Otherwise issues
// are filed without a generated summary.
func summaryOptions(ctx context.Context) []timewarp.Option {
	if !config.GetSummaryEnabled() {
		return nil
	}
	log := logging.NewLogger("cli")

	ollamaURL := config.GetOllamaURL()
	if !ollama.IsAvailable(ollamaURL) {
		log.WithField("ollama_url", ollamaURL).Warn("Ollama is not available, chat summaries disabled")
		return nil
	}

	client, err := ollama.NewClient(ollamaURL, config.GetSummaryModel(), nil)
	if err != nil {
		log.WithError(err).Warn("chat summaries disabled")
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, summaryCheckTimeout)
	defer cancel()
	if err := client.CheckModel(checkCtx); err != nil {
		log.WithError(err).WithField("model", client.GetModel()).Warn("chat summaries disabled")
		return nil
	}
	return []timewarp.Option{timewarp.WithSummarizer(client)}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func printToon(v interface{}) error {
	encoded, err := gotoon.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode Toon: %w", err)
	}
	fmt.Fprintln(out, encoded)
	return nil
}

// printError writes err as "Error: CODE: message" plus any details.
func printError(w io.Writer, err error) {
	e := twerrors.FromError(err)
	fmt.Fprintf(w, "Error: %s: %s\n", e.Code, e.Message)
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, e.Details[k])
	}
}

// failureEnvelope is the {ok:false,error} payload of the machine-readable
// issue commands.
func failureEnvelope(err error) map[string]interface{} {
	return map[string]interface{}{
		"ok":    false,
		"error": twerrors.FromError(err).Envelope(),
	}
}
