package llm

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_ServesScriptInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[1]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"questions":[2]}`)},
	)
	ctx := context.Background()

	first, err := mock.Generate(ctx, Request{System: "sys"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":[1]}`, string(first.Content))
	assert.Equal(t, 15, first.Usage.TotalTokens)
	assert.Equal(t, "mock", first.Model)

	second, err := mock.Generate(ctx, Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":[2]}`, string(second.Content))

	_, err = mock.Generate(ctx, Request{})
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)

	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
}

func TestMockProvider_ScriptedError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
}

func TestReplayProvider_ChecksSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "person.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Ada"}`), 0o644))
	p, err := NewReplayProvider(path)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Schema: testSchema()})
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
}

func TestReplayProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"questions":[]}`), 0o644))

	p, err := NewReplayProvider(path)
	require.NoError(t, err)
	assert.Equal(t, "replay", p.ModelID())

	for range 3 {
		resp, err := p.Generate(context.Background(), Request{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"questions":[]}`, string(resp.Content))
	}
}

func TestReplayProvider_BadFile(t *testing.T) {
	dir := t.TempDir()
	_, err := NewReplayProvider(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = NewReplayProvider(path)
	require.Error(t, err)
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, PurposeUnknown, PurposeFrom(ctx))
	assert.Equal(t, PurposeUnknown, PurposeFrom(WithPurpose(ctx, "")))
	assert.Equal(t, PurposeExtract, PurposeFrom(WithPurpose(ctx, PurposeExtract)))
}

func TestNewProvider_Replay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"questions":[]}`), 0o644))

	cfg := DefaultConfig()
	cfg.Provider = "replay"
	cfg.ReplayFile = path
	p, err := NewProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "replay", p.ModelID())
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "llama"}, nil)
	require.Error(t, err)
}
