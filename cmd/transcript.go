package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/issue"
	"github.com/pders01/timewarp/internal/transcript"
)

var transcriptMessages string

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Preview the chat document an issue report would store",
	Long: `Render a host messages payload exactly as 'timewarp issue report' would
store it in chat.md: flattened, truncated and redacted. Nothing is written.

Examples:
  timewarp transcript --messages session.json
  cat session.json | timewarp transcript --messages -`,
	Args: cobra.NoArgs,
	RunE: runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)

	transcriptCmd.Flags().StringVar(&transcriptMessages, "messages", "-", "Host messages JSON file, or - for stdin")
}

func runTranscript(cmd *cobra.Command, args []string) error {
	payload, err := readMessages(transcriptMessages)
	if err != nil {
		return err
	}

	chat := transcript.NewRenderer().FromHost(payload)
	fmt.Fprint(out, issue.ChatDocument(chat))
	return nil
}
