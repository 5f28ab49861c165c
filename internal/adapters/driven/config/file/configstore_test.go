package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_HomeEnv(t *testing.T) {
	home := filepath.Join(t.TempDir(), "vox-home")
	t.Setenv(HomeEnv, home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.toml"), store.Path())

	info, err := os.Stat(home)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultHome(t *testing.T) {
	t.Setenv(HomeEnv, "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vox"), dir)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.model", "llama3.2"))
	require.NoError(t, store.Set("retrieval.k", 4))
	require.NoError(t, store.Set("llm.temperature", 0.25))
	require.NoError(t, store.Set("retrieval.condense_question", true))
	require.NoError(t, store.Set("ingest.extensions", []string{".md", ".txt"}))

	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
	assert.Equal(t, 4, store.GetInt("retrieval.k"))
	assert.InDelta(t, 0.25, store.GetFloat("llm.temperature"), 1e-9)
	assert.InDelta(t, 4.0, store.GetFloat("retrieval.k"), 1e-9)
	assert.True(t, store.GetBool("retrieval.condense_question"))
	assert.Equal(t, []string{".md", ".txt"}, store.GetStringSlice("ingest.extensions"))

	// wrong types and missing keys read as zero values
	assert.Empty(t, store.GetString("retrieval.k"))
	assert.Zero(t, store.GetInt("llm.model"))
	assert.Zero(t, store.GetInt("llm.temperature"))
	assert.Zero(t, store.GetFloat("llm.model"))
	assert.False(t, store.GetBool("llm.model"))
	assert.Nil(t, store.GetStringSlice("missing"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "llama3.2"))
	require.NoError(t, store.Set("llm.temperature", 0.0))
	require.NoError(t, store.Set("voice.name", "Aria"))
	require.NoError(t, store.Set("voice.record_seconds", 7))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "[llm]")
	assert.Contains(t, content, "[voice]")
	assert.Contains(t, content, "llama3.2")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", reloaded.GetString("llm.model"))
	assert.Equal(t, "Aria", reloaded.GetString("voice.name"))
	assert.Equal(t, 7, reloaded.GetInt("voice.record_seconds"))
	_, hasTemp := reloaded.Get("llm.temperature")
	assert.True(t, hasTemp)
	assert.Zero(t, reloaded.GetFloat("llm.temperature"))
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[embedding]
provider = "openai"
model = "text-embedding-3-large"

[retrieval]
k = 6
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "text-embedding-3-large", store.GetString("embedding.model"))
	assert.Equal(t, 6, store.GetInt("retrieval.k"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("voice.elevenlabs_api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_EmptyAndMissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0o600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	_, ok := store.Get("anything")
	assert.False(t, ok)

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[broken"), 0o600))

	_, err := NewConfigStore(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestConfigStore_SetRollsBackOnWriteError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "llama3.2"))

	require.NoError(t, os.Chmod(tmpDir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(tmpDir, 0o700) })

	assert.Error(t, store.Set("llm.model", "mistral"))
	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
	assert.Error(t, store.Set("llm.new_key", "x"))
	_, ok := store.Get("llm.new_key")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("concurrent.key", n)
			_ = store.GetInt("concurrent.key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("concurrent.key")
	assert.True(t, ok)
}

func TestFlattenUnflatten(t *testing.T) {
	flat := map[string]any{
		"llm.model":         "llama3.2",
		"llm.temperature":   0.0,
		"voice.name":        "Alice",
		"top":               true,
		"a.b.c":             int64(1),
		"clash":             "scalar",
		"clash.inner":       "nested",
		"ingest.chunk_size": int64(1000),
	}

	nested := unflattenMap(flat)
	llm, ok := nested["llm"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "llama3.2", llm["model"])

	back := flattenMap(nested, "")
	for k, v := range flat {
		assert.Equal(t, v, back[k], k)
	}
	for k := range back {
		assert.False(t, strings.HasPrefix(k, "."), k)
	}
}
