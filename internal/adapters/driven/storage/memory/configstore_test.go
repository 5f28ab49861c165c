package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var store driven.ConfigStore = NewConfigStore()
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("voice.name", "Aria"))
	require.NoError(t, store.Set("voice.name", "Brian"))

	val, ok := store.Get("voice.name")
	assert.True(t, ok)
	assert.Equal(t, "Brian", val)

	_, ok = store.Get("voice.missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("ingest.chunk_size", 1000)
	_ = store.Set("retrieval.k", int64(4))
	_ = store.Set("llm.max_tokens", float64(512))
	_ = store.Set("llm.temperature", 0.25)
	_ = store.Set("retrieval.condense_question", true)
	_ = store.Set("llm.model", "llama3.2")
	_ = store.Set("ingest.kinds", []any{"pdf", 3, "text"})

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"int", store.GetInt("ingest.chunk_size"), 1000},
		{"int from int64", store.GetInt("retrieval.k"), 4},
		{"int from float64", store.GetInt("llm.max_tokens"), 512},
		{"int wrong type", store.GetInt("llm.model"), 0},
		{"float", store.GetFloat("llm.temperature"), 0.25},
		{"float from int", store.GetFloat("ingest.chunk_size"), 1000.0},
		{"float missing", store.GetFloat("llm.top_p"), 0.0},
		{"float wrong type", store.GetFloat("llm.model"), 0.0},
		{"bool", store.GetBool("retrieval.condense_question"), true},
		{"bool wrong type", store.GetBool("llm.model"), false},
		{"string", store.GetString("llm.model"), "llama3.2"},
		{"string wrong type", store.GetString("retrieval.k"), ""},
		{"string slice skips non-strings", store.GetStringSlice("ingest.kinds"), []string{"pdf", "text"}},
		{"string slice missing", store.GetStringSlice("ingest.none"), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestConfigStore_DataIsolation(t *testing.T) {
	a := NewConfigStore()
	b := NewConfigStore()

	_ = a.Set("voice.name", "Callum")

	_, ok := b.Get("voice.name")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", n)
			_ = store.Set(key, n)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, store.GetInt(fmt.Sprintf("key.%d", i)))
	}
}
