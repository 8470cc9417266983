package workers

import (
	"context"

	"github.com/jonathan/newsroom-agent/internal/capability"
	"github.com/jonathan/newsroom-agent/internal/types"
)

// ActionSearchArchive is the capability name the external archive agent
// exposes.
const ActionSearchArchive = "search_archive"

// Archivist adapts the external archive agent. The agent is network-flaky;
// callers construct it with a retrying capability client layered over the
// A2A transport.
type Archivist struct {
	caller capability.Caller
}

// NewArchivist creates an archivist over the given caller.
func NewArchivist(caller capability.Caller) *Archivist {
	return &Archivist{caller: caller}
}

// SearchArchive queries the archive for background material on a topic.
func (a *Archivist) SearchArchive(ctx context.Context, topic string) (*types.ResearchResult, error) {
	result, err := a.caller.Call(ctx, ActionSearchArchive, map[string]any{"topic": topic})
	if err != nil {
		return nil, err
	}

	answer, ok := result["answer"].(string)
	if !ok || answer == "" {
		return nil, &capability.MalformedMessageError{Message: "archive response lacks an answer field"}
	}

	return &types.ResearchResult{
		Source: types.SourceArchivist,
		Query:  topic,
		Answer: answer,
	}, nil
}

// ArchivistSkills lists the capability names an archive agent publishes.
// Kept here so coordinator discovery and tests share one definition.
func ArchivistSkills() []string {
	return []string{ActionSearchArchive}
}
