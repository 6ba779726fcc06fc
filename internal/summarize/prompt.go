// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// Kind identifies a prompt and the artifact it produces.
type Kind string

const (
	KindChunkSummary     Kind = "chunk_summary"
	KindFinalSummary     Kind = "final_summary"
	KindTimeline         Kind = "timeline"
	KindDramatisPersonae Kind = "dramatis_personae"
)

// AggregateKinds are the documents built from the chunk summaries, in the
// order they are generated.
var AggregateKinds = []Kind{KindFinalSummary, KindTimeline, KindDramatisPersonae}

// Title is the human name of the artifact.
func (k Kind) Title() string {
	switch k {
	case KindChunkSummary:
		return "Chunk Summary"
	case KindFinalSummary:
		return "Final Summary"
	case KindTimeline:
		return "Timeline"
	case KindDramatisPersonae:
		return "Dramatis Personae"
	}
	return string(k)
}

var chunkPromptTmpl = template.Must(template.New("chunk").Parse(`Please provide a comprehensive summary of this document chunk ({{.Number}} of {{.Total}}, {{.Label}}).

Include:
1. Main topics and themes
2. Key events or developments
3. Important people mentioned
4. Significant dates or timeframes
5. Critical decisions or outcomes

Document text:
{{.Text}}`))

var aggregatePromptTmpls = map[Kind]*template.Template{
	KindFinalSummary: template.Must(template.New("final").Parse(`Based on these chunk summaries of a larger document, please provide:

1. **OVERALL SUMMARY**: A comprehensive summary of the entire document set
2. **MAIN THEMES**: The key themes and topics that emerge across all chunks
3. **CRITICAL INSIGHTS**: The most important insights or conclusions

Chunk summaries:
{{.Summaries}}`)),

	KindTimeline: template.Must(template.New("timeline").Parse(`Based on these document summaries, please extract and create a chronological timeline of events.

Format as:
- Date/Period: Event description
- Date/Period: Event description

Include all significant dates, events, and developments mentioned across all chunks.
If exact dates aren't available, use approximate timeframes or relative chronology.

Chunk summaries:
{{.Summaries}}`)),

	KindDramatisPersonae: template.Must(template.New("dramatis").Parse(`Based on these document summaries, please create a dramatis personae (list of key people/characters).

Format as:
**Name** - Role/Title/Description of their significance and involvement

Include:
- All significant individuals mentioned
- Their roles, titles, or positions
- Brief description of their importance to the events/narrative
- Their relationships to other key figures (if relevant)

Chunk summaries:
{{.Summaries}}`)),
}

// RenderChunkPrompt builds the prompt that summarises one chunk.
func RenderChunkPrompt(ct types.ChunkText, total int) (string, error) {
	var buf bytes.Buffer
	err := chunkPromptTmpl.Execute(&buf, struct {
		Number, Total int
		Label, Text   string
	}{
		Number: ct.Chunk.Number(),
		Total:  total,
		Label:  ct.Chunk.Label(),
		Text:   ct.Text,
	})
	if err != nil {
		return "", fmt.Errorf("rendering chunk prompt: %w", err)
	}
	return buf.String(), nil
}

// CombineSummaries joins usable chunk summaries as "Chunk N Summary:" blocks
// separated by blank lines.
func CombineSummaries(summaries []types.ChunkSummary) string {
	var blocks []string
	for _, s := range summaries {
		if !s.OK() {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Chunk %d Summary:\n%s", s.Chunk.Number(), s.Summary))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderAggregatePrompt builds the prompt for one of the AggregateKinds.
func RenderAggregatePrompt(kind Kind, summaries []types.ChunkSummary) (string, error) {
	tmpl, ok := aggregatePromptTmpls[kind]
	if !ok {
		return "", fmt.Errorf("no aggregate prompt for %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Summaries string }{CombineSummaries(summaries)}); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", kind, err)
	}
	return buf.String(), nil
}
