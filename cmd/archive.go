package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/issue"
)

var archiveOutput string

var archiveCmd = &cobra.Command{
	Use:   "archive <issue_id>",
	Short: "Bundle an issue and its snapshot for external storage",
	Long: `Create a tar.gz archive holding the issue directory (issue.json, chat.md,
experiment.md) and the snapshot it is pinned to, with symlinks preserved.

Entries are stored under issues/<issue_id>/ and snapshots/<snapshot_id>/.

Examples:
  timewarp issue archive i_20251114_093000_k3x9qa
  timewarp issue archive i_20251114_093000_k3x9qa --output bug.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	issueCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&archiveOutput, "output", "", "Output file path (default: timewarp-<issue_id>.tar.gz)")
}

func runArchive(cmd *cobra.Command, args []string) error {
	issueID, err := issue.ValidateID(args[0])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	outputFile := archiveOutput
	if outputFile == "" {
		outputFile = fmt.Sprintf("timewarp-%s.tar.gz", issueID)
	}

	fmt.Fprintf(out, "Archiving issue %s to: %s\n", issueID, outputFile)

	outFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	result, err := ws.ArchiveIssue(issueID, outFile)
	if cerr := outFile.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close archive: %w", cerr)
	}
	if err != nil {
		os.Remove(outputFile)
		return err
	}

	if fileInfo, err := os.Stat(outputFile); err == nil {
		fmt.Fprintf(out, "\n✓ Archive created: %s (%.2f KB)\n", outputFile, float64(fileInfo.Size())/1024)
	} else {
		fmt.Fprintf(out, "\n✓ Archive created: %s\n", outputFile)
	}

	fmt.Fprintf(out, "  Entries:  %d\n", result.Entries)
	if result.SnapshotMissing {
		fmt.Fprintf(out, "  Warning: snapshot %s no longer exists; only the issue was archived\n", result.SnapshotID)
	} else if result.SnapshotID != "" {
		fmt.Fprintf(out, "  Snapshot: %s\n", result.SnapshotID)
	}

	return nil
}
