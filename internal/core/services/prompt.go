package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/logger"
)

// Built-in templates, used when no prompt store is configured or a prompt
// cannot be loaded.
const (
	fallbackAnswerPrompt = `Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.

Context:
%s

Conversation so far:
%s

Question: %s
Helpful Answer:`

	fallbackCondensePrompt = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.

Chat History:
%s
Follow Up Input: %s
Standalone question:`
)

const noHistory = "(none)"

// loadPrompt returns the named template from store, or fallback.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	tmpl, err := store.Load(name)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			logger.Warn("prompt %q: %v, using built-in template", name, err)
		}
		return fallback
	}
	return tmpl
}

// formatContext joins retrieved chunk texts, best first.
func formatContext(sources []domain.RetrievedChunk) string {
	if len(sources) == 0 {
		return noHistory
	}
	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		title, _ := src.Chunk.Metadata["title"].(string)
		if title != "" {
			parts = append(parts, fmt.Sprintf("[%s]\n%s", title, src.Chunk.Content))
			continue
		}
		parts = append(parts, src.Chunk.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// formatHistory renders turns as a Human/Assistant transcript.
func formatHistory(turns []domain.Turn) string {
	if len(turns) == 0 {
		return noHistory
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Human: %s\nAssistant: %s", t.Question, t.Answer)
	}
	return b.String()
}

// buildAnswerPrompt fills the answer template.
func buildAnswerPrompt(tmpl string, sources []domain.RetrievedChunk, history []domain.Turn, question string) string {
	return fmt.Sprintf(tmpl, formatContext(sources), formatHistory(history), question)
}

// buildCondensePrompt fills the condense template.
func buildCondensePrompt(tmpl string, history []domain.Turn, question string) string {
	return fmt.Sprintf(tmpl, formatHistory(history), question)
}
