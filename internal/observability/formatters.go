// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/newsroom-agent/internal/registry"
	"github.com/jonathan/newsroom-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStory outputs a human-readable summary of the story assignment.
func (p *Printer) PrintStory(story *types.Story) {
	if story == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Topic:    %s\n", story.Topic))
	if story.Angle != "" {
		sb.WriteString(fmt.Sprintf("Angle:    %s\n", story.Angle))
	}
	sb.WriteString(fmt.Sprintf("Length:   %d words\n", story.TargetLength))
	sb.WriteString(fmt.Sprintf("Priority: %s\n", story.Priority))
	sb.WriteString(fmt.Sprintf("Status:   %s", story.Status))
	if story.Reason != "" {
		sb.WriteString(fmt.Sprintf("\nReason:   %s", story.Reason))
	}
	if len(story.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\nWarnings: %s", strings.Join(story.Warnings, ", ")))
	}

	p.printBox("STORY", sb.String())
}

// PrintOutline outputs the research questions planned for the story.
func (p *Printer) PrintOutline(plan *types.OutlinePlan) {
	if plan == nil || len(plan.Questions) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(plan.Questions), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", plan.Questions[i]))
	}
	if len(plan.Questions) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(plan.Questions)-maxItemsToShow))
	}
	if plan.StructureNotes != "" {
		sb.WriteString(fmt.Sprintf("\nStructure: %s", plan.StructureNotes))
	}

	p.printBox("OUTLINE PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResearch outputs the fan-out branch results.
func (p *Printer) PrintResearch(results []*types.ResearchResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", r.Source, r.Query))
		answer := r.Answer
		if len(answer) > 120 {
			answer = answer[:117] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", answer))
		if i < len(results)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RESEARCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDraft outputs the draft version and length summary.
func (p *Printer) PrintDraft(draft *types.Draft) {
	if draft == nil {
		return
	}

	content := fmt.Sprintf("Version: %d\nWords:   %d\nStatus:  %s",
		draft.Version, draft.WordCount, draft.Status)
	p.printBox("DRAFT", content)
}

// PrintRecord outputs the full story record after a pipeline run.
func (p *Printer) PrintRecord(record *registry.Record) {
	if record == nil {
		return
	}
	p.PrintStory(record.Story)
	p.PrintOutline(record.Outline)
	p.PrintResearch(record.Research)
	p.PrintDraft(record.Draft)
	if record.Publication != nil {
		p.printBox("PUBLICATION", fmt.Sprintf("Published: %s\nDestinations: %s",
			record.Publication.PublishedAt.Format("2006-01-02 15:04:05"),
			strings.Join(record.Publication.DestinationIDs, ", ")))
	}
}
