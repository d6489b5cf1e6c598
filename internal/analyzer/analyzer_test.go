package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type scriptedClient struct {
	prompts   []string
	responses []string
	err       error
}

func (c *scriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "ok", nil
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func newTestAnalyzer(client Client) Analyzer {
	return NewAnalyzer(client, utils.NewLogger("error"))
}

func TestSplitterOverlap(t *testing.T) {
	s := newSplitter(10, 3)
	chunks := s.split("abcdefghijklmnopqrstuvwxyz")

	require.NotEmpty(t, chunks)
	assert.Equal(t, "abcdefghij", chunks[0])
	// Next window starts chunkSize-overlap runes in.
	assert.Equal(t, "hijklmnopq", chunks[1])
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], "z"))
}

func TestSplitterShortText(t *testing.T) {
	s := newSplitter(2000, 200)
	chunks := s.split("short text")
	assert.Equal(t, []string{"short text"}, chunks)
	assert.Nil(t, s.split(""))
}

func TestParseTopics(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseTopics(`["a", "b"]`))
	assert.Equal(t, []string{"a"}, parseTopics("Here are the topics: [\"a\"] hope that helps"))
	assert.Equal(t, []string{models.TopicExtractionFailed}, parseTopics("no json here"))
	assert.Equal(t, []string{models.TopicExtractionFailed}, parseTopics(`[{"topic": "a"}]`))
	assert.Equal(t, []string{models.TopicExtractionFailed}, parseTopics("null"))
}

func TestAnalyzeDocumentSingleChunk(t *testing.T) {
	client := &scriptedClient{responses: []string{"a summary", `["topic one", "topic two"]`}}

	result, err := newTestAnalyzer(client).AnalyzeDocument(context.Background(), "a short document")
	require.NoError(t, err)

	assert.Equal(t, "a summary", result.Summary)
	assert.Equal(t, []string{"topic one", "topic two"}, result.KeyTopics)
	// One summary call, one topics call; no reduce step for a single chunk.
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[0], "a short document")
	assert.Contains(t, client.prompts[1], "JSON array")
}

// promptDrivenClient answers based on which stage of the pipeline the prompt
// belongs to, so tests do not depend on the exact chunk count.
type promptDrivenClient struct {
	prompts []string
	chunkN  int
}

func (c *promptDrivenClient) Complete(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	switch {
	case strings.Contains(prompt, "Section summaries"):
		return "combined summary", nil
	case strings.Contains(prompt, "JSON array"):
		return `["t"]`, nil
	default:
		c.chunkN++
		return "chunk summary " + strings.Repeat("i", c.chunkN), nil
	}
}

func TestAnalyzeDocumentMapReduce(t *testing.T) {
	text := strings.Repeat("word ", 1200) // well past one chunk
	client := &promptDrivenClient{}

	result, err := newTestAnalyzer(client).AnalyzeDocument(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "combined summary", result.Summary)
	assert.Equal(t, []string{"t"}, result.KeyTopics)
	assert.Greater(t, client.chunkN, 1, "expected multiple map-stage calls")

	// Reduce prompt must carry the chunk summaries.
	var reducePrompt string
	for _, p := range client.prompts {
		if strings.Contains(p, "Section summaries") {
			reducePrompt = p
		}
	}
	require.NotEmpty(t, reducePrompt)
	assert.Contains(t, reducePrompt, "chunk summary i")
	assert.Contains(t, reducePrompt, "chunk summary ii")
}

func TestAnalyzeDocumentTopicPrefixTruncation(t *testing.T) {
	text := strings.Repeat("a", topicPrefixSize+1000)
	client := &scriptedClient{}

	_, err := newTestAnalyzer(client).AnalyzeDocument(context.Background(), text)
	require.NoError(t, err)

	topicsPrompt := client.prompts[len(client.prompts)-1]
	assert.Contains(t, topicsPrompt, "(truncated)")
	assert.Less(t, len(topicsPrompt), topicPrefixSize+500)
}

func TestAnalyzeDocumentGatewayError(t *testing.T) {
	client := &scriptedClient{err: errors.New("model unavailable")}

	_, err := newTestAnalyzer(client).AnalyzeDocument(context.Background(), "some text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestAnswerQuestion(t *testing.T) {
	client := &scriptedClient{responses: []string{"  the answer  "}}

	answer, err := newTestAnalyzer(client).AnswerQuestion(context.Background(), "what is it?", "document body")
	require.NoError(t, err)

	assert.Equal(t, "the answer", answer)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "what is it?")
	assert.Contains(t, client.prompts[0], "document body")
}
