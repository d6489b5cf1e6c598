package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

// topicPrefixSize bounds topic extraction to the document's opening portion.
// This is a deliberate cost/quality tradeoff: topics reflect only the first
// part of long documents.
const topicPrefixSize = 5000

// Result is the outcome of a full document analysis.
type Result struct {
	Summary   string
	KeyTopics []string
}

// Analyzer turns document text into summaries, topic lists and answers via
// the LLM gateway.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, text string) (*Result, error)
	AnswerQuestion(ctx context.Context, question, documentText string) (string, error)
}

type llmAnalyzer struct {
	client   Client
	splitter *splitter
	logger   *utils.Logger
}

func NewAnalyzer(client Client, logger *utils.Logger) Analyzer {
	return &llmAnalyzer{
		client:   client,
		splitter: newSplitter(defaultChunkSize, defaultOverlap),
		logger:   logger,
	}
}

// AnalyzeDocument produces a map-reduce summary over overlapping chunks plus
// a topic list extracted from the document's opening portion.
func (a *llmAnalyzer) AnalyzeDocument(ctx context.Context, text string) (*Result, error) {
	summary, err := a.summarize(ctx, text)
	if err != nil {
		return nil, err
	}

	topics, err := a.extractTopics(ctx, text)
	if err != nil {
		return nil, err
	}

	return &Result{Summary: summary, KeyTopics: topics}, nil
}

func (a *llmAnalyzer) summarize(ctx context.Context, text string) (string, error) {
	chunks := a.splitter.split(text)
	if len(chunks) == 0 {
		return "", fmt.Errorf("document text is empty")
	}

	// Single chunk needs no reduce step.
	if len(chunks) == 1 {
		return a.client.Complete(ctx, summaryPrompt(chunks[0]))
	}

	chunkSummaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := a.client.Complete(ctx, summaryPrompt(chunk))
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		chunkSummaries = append(chunkSummaries, strings.TrimSpace(summary))
	}

	return a.client.Complete(ctx, combinePrompt(chunkSummaries))
}

func (a *llmAnalyzer) extractTopics(ctx context.Context, text string) ([]string, error) {
	prefix := text
	truncated := false
	if len(prefix) > topicPrefixSize {
		prefix = prefix[:topicPrefixSize]
		truncated = true
	}

	raw, err := a.client.Complete(ctx, topicsPrompt(prefix, truncated))
	if err != nil {
		return nil, err
	}

	return parseTopics(raw), nil
}

// AnswerQuestion answers using the full document text as stuffed context.
func (a *llmAnalyzer) AnswerQuestion(ctx context.Context, question, documentText string) (string, error) {
	chunks := a.splitter.split(documentText)
	context_ := strings.Join(chunks, "\n\n")

	answer, err := a.client.Complete(ctx, answerPrompt(question, context_))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(answer), nil
}

func summaryPrompt(text string) string {
	return fmt.Sprintf(`Write a concise summary of the following text. Respond with the summary only.

Text:
%s

Summary:`, text)
}

func combinePrompt(summaries []string) string {
	return fmt.Sprintf(`The following are summaries of consecutive sections of one document. Combine them into a single coherent summary. Respond with the summary only.

Section summaries:
%s

Combined summary:`, strings.Join(summaries, "\n\n"))
}

func topicsPrompt(text string, truncated bool) string {
	suffix := ""
	if truncated {
		suffix = "... (truncated)"
	}
	return fmt.Sprintf(`Based on the following document, identify and list the 5-7 most important topics or key points.
Format the output as a JSON array of strings.

Document: %s%s

Key Topics:`, text, suffix)
}

func answerPrompt(question, documentText string) string {
	return fmt.Sprintf(`Answer the question using only the document content below. If the answer is not in the document, say so.

Document:
%s

Question: %s

Answer:`, documentText, question)
}
