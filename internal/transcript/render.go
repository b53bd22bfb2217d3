package transcript

import (
	"strings"

	"github.com/pders01/timewarp/internal/config"
)

const (
	emptyDocument     = "[system]\nNo dialogue or tool IO found.\n"
	unexpectedPayload = "Unexpected messages payload (expected array)."
	exportUnavailable = "Chat export unavailable."
)

// MissingMessagesReason is the Fallback reason used when the host supplied
// no messages.
const MissingMessagesReason = "Missing context.messages; chat export unavailable."

// Renderer renders payloads with fixed truncation caps.
type Renderer struct {
	ToolMaxChars int
	DumpMaxChars int
}

// NewRenderer returns a Renderer using the configured caps.
func NewRenderer() *Renderer {
	return &Renderer{
		ToolMaxChars: config.GetToolMaxChars(),
		DumpMaxChars: config.GetDumpMaxChars(),
	}
}

// Render produces the linear text document for p.
//
// Text parts are grouped under a "[role]" header that opens on the first
// non-empty text of a run and closes with a blank line before a tool block or
// the next entry. Tool parts become "[tool:name]" blocks with fenced input,
// output and error sections.
func (r *Renderer) Render(p Payload) string {
	if p.Unrecognized != nil {
		return "[system]\n" + unexpectedPayload + "\n```json\n" +
			truncateRunes(p.Unrecognized.Dump, r.dumpMax()) + "\n```\n"
	}

	var lines []string
	for _, e := range p.Entries {
		opened := false
		closeRole := func() {
			if opened {
				lines = append(lines, "")
				opened = false
			}
		}

		for _, part := range e.Parts {
			switch v := part.(type) {
			case TextPart:
				text := strings.TrimSpace(v.Text)
				if text == "" {
					continue
				}
				if !opened {
					lines = append(lines, "["+e.Role+"]")
					opened = true
				}
				lines = append(lines, text)
			case ToolPart:
				closeRole()
				lines = r.appendTool(lines, v)
			}
		}
		closeRole()
	}

	if len(lines) == 0 {
		return emptyDocument
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

func (r *Renderer) appendTool(lines []string, t ToolPart) []string {
	lines = append(lines, "[tool:"+t.Name+"]")
	for _, sec := range []struct{ label, body string }{
		{"input", t.Input},
		{"output", t.Output},
		{"error", t.Error},
	} {
		if sec.body == "" {
			continue
		}
		lines = append(lines, sec.label+":", "```", truncate(sec.body, r.toolMax()), "```")
	}
	return append(lines, "")
}

// Fallback is the document stored when no conversation could be exported.
func Fallback(reason string) string {
	lines := []string{"[system]", exportUnavailable}
	if reason = strings.TrimSpace(reason); reason != "" {
		lines = append(lines, reason)
	}
	return strings.Join(lines, "\n") + "\n"
}

func (r *Renderer) toolMax() int {
	if r.ToolMaxChars > 0 {
		return r.ToolMaxChars
	}
	return config.DefaultToolMaxChars
}

func (r *Renderer) dumpMax() int {
	if r.DumpMaxChars > 0 {
		return r.DumpMaxChars
	}
	return config.DefaultDumpMaxChars
}

// truncate cuts s to limit characters and marks the cut with "...".
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// FromHost renders the chat document for a host payload: the messages list
// found by ExtractMessages, or the Fallback document when there is none.
func (r *Renderer) FromHost(payload []byte) string {
	msgs, ok := ExtractMessages(payload)
	if !ok || Count(msgs) == 0 {
		return Fallback(MissingMessagesReason)
	}
	return r.Render(Decode(msgs))
}
