package llm_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/internal/llm"
)

type scriptedClient struct {
	calls     int32
	responses []scriptedResponse
}

type scriptedResponse struct {
	text string
	err  error
}

func (c *scriptedClient) Complete(_ context.Context, _ llm.Tier, _ llm.TierConfig, _ string) (string, error) {
	i := atomic.AddInt32(&c.calls, 1) - 1
	if int(i) >= len(c.responses) {
		return "", errors.New("scriptedClient: ran out of responses")
	}

	r := c.responses[i]

	return r.text, r.err
}

func testConfig() llm.Config {
	fast := llm.TierConfig{
		Model:          "fast-model",
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}

	return llm.Config{Fast: fast, Balanced: fast, Deep: fast}
}

func TestGateway_Generate_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []scriptedResponse{{text: "ok"}}}
	gw := llm.NewGateway(client, testConfig())

	out, err := gw.Generate(context.Background(), llm.TierFast, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 1, client.calls)
}

func TestGateway_Generate_RetriesRetryableFailures(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []scriptedResponse{
		{err: llm.ErrTransientServer},
		{err: llm.ErrRateLimited},
		{text: "ok"},
	}}
	gw := llm.NewGateway(client, testConfig())

	out, err := gw.Generate(context.Background(), llm.TierFast, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 3, client.calls)
}

func TestGateway_Generate_NonRetryableFailsImmediately(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []scriptedResponse{{err: llm.ErrAuthentication}}}
	gw := llm.NewGateway(client, testConfig())

	_, err := gw.Generate(context.Background(), llm.TierFast, "prompt")
	require.Error(t, err)

	var llmErr *llm.LLMError

	require.ErrorAs(t, err, &llmErr)
	assert.ErrorIs(t, err, llm.ErrAuthentication)
	assert.EqualValues(t, 1, client.calls)
}

func TestGateway_Generate_ExhaustsAttemptsAndFails(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []scriptedResponse{
		{err: llm.ErrTransientServer},
		{err: llm.ErrTransientServer},
		{err: llm.ErrTransientServer},
	}}
	gw := llm.NewGateway(client, testConfig())

	_, err := gw.Generate(context.Background(), llm.TierFast, "prompt")
	require.Error(t, err)

	var llmErr *llm.LLMError

	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, 3, llmErr.Attempts)
	assert.EqualValues(t, 3, client.calls)
}

func TestGateway_Generate_CancellationAbortsRetryWait(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []scriptedResponse{
		{err: llm.ErrTransientServer},
		{text: "should not be reached"},
	}}
	gw := llm.NewGateway(client, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Generate(ctx, llm.TierFast, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
