package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSession_ApplyExchange(t *testing.T) {
	t.Run("Appends question then answer and stores ids", func(t *testing.T) {
		s := NewSession("s1", Connection{Model: "m"})

		s.ApplyExchange("q", "a", strPtr("abc"), strPtr("def"))

		require.Len(t, s.History, 2)
		assert.Equal(t, Message{Role: RoleUser, Content: "q"}, s.History[0])
		assert.Equal(t, Message{Role: RoleAssistant, Content: "a"}, s.History[1])
		assert.Equal(t, "abc", s.ChatID)
		assert.Equal(t, "def", s.ParentID)
	})

	t.Run("Missing ids keep the previous values", func(t *testing.T) {
		s := NewSession("s1", Connection{})
		s.ApplyExchange("q1", "a1", strPtr("abc"), strPtr("def"))

		s.ApplyExchange("q2", "a2", nil, strPtr("ghi"))

		assert.Len(t, s.History, 4)
		assert.Equal(t, "abc", s.ChatID)
		assert.Equal(t, "ghi", s.ParentID)
	})
}

func TestSession_Reset(t *testing.T) {
	s := NewSession("s1", Connection{Model: "m"})
	s.ApplyExchange("q", "a", strPtr("abc"), strPtr("def"))

	s.Reset()

	assert.Empty(t, s.History)
	assert.Empty(t, s.ChatID)
	assert.Empty(t, s.ParentID)
	assert.Equal(t, "m", s.Connection.Model)
}

func TestSession_StartChat(t *testing.T) {
	s := NewSession("s1", Connection{})
	s.ApplyExchange("q", "a", strPtr("old"), strPtr("def"))

	s.StartChat("new")

	assert.Empty(t, s.History)
	assert.Equal(t, "new", s.ChatID)
	assert.Empty(t, s.ParentID)
}

func TestSelectModel(t *testing.T) {
	ids := []string{"qwen-plus", "qwen-max-latest", "qwen-turbo"}

	assert.Equal(t, "qwen-max-latest", SelectModel(ids, "qwen-max"))
	assert.Equal(t, "qwen-plus", SelectModel(ids, "llama"))
	assert.Equal(t, "keep", SelectModel(nil, "keep"))
}

func TestSession_SetAvailableModels(t *testing.T) {
	s := NewSession("s1", Connection{Model: "turbo"})
	ids := []string{"qwen-plus", "qwen-turbo"}

	s.SetAvailableModels(ids)
	ids[0] = "changed"

	assert.Equal(t, "qwen-turbo", s.Connection.Model)
	assert.Equal(t, []string{"qwen-plus", "qwen-turbo"}, s.AvailableModels)
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("s1", Connection{})
	s.ApplyExchange("q", "a", nil, nil)

	c := s.Clone()
	c.History[0].Content = "changed"
	c.History = append(c.History, Message{Role: RoleUser, Content: "x"})

	assert.Equal(t, "q", s.History[0].Content)
	assert.Len(t, s.History, 2)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("abc"))
	assert.Equal(t, "********7890", MaskSecret("sk-1234567890"))
}

func TestConnection_Endpoint(t *testing.T) {
	ep := Connection{APIURL: "http://host/api", APIKey: "k", Model: "m"}.Endpoint()

	assert.Equal(t, "http://host/api", ep.BaseURL)
	assert.Equal(t, "k", ep.APIKey)
}

func TestConnectionUpdate_Apply(t *testing.T) {
	current := Connection{APIURL: "http://a/api", APIKey: "old", Model: "m1"}

	kept := ConnectionUpdate{APIURL: "http://b/api", Model: "m2"}.Apply(current)
	assert.Equal(t, Connection{APIURL: "http://b/api", APIKey: "old", Model: "m2"}, kept)

	replaced := ConnectionUpdate{APIURL: "http://b/api", APIKey: strPtr("new"), Model: "m2"}.Apply(current)
	assert.Equal(t, "new", replaced.APIKey)

	removed := ConnectionUpdate{APIURL: "http://b/api", APIKey: strPtr(""), Model: "m2"}.Apply(current)
	assert.Empty(t, removed.APIKey)
}
