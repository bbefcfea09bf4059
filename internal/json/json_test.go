package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsMapKeys(t *testing.T) {
	data, err := Marshal(map[string]int{"zeta": 1, "alpha": 2, "mid": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(data))
}

func TestRawMessage_PassesThrough(t *testing.T) {
	type envelope struct {
		Items []RawMessage `json:"items"`
	}

	var env envelope
	require.NoError(t, Unmarshal([]byte(`{"items":[{"b":1,"a":[true]},"x",null]}`), &env))
	require.Len(t, env.Items, 3)
	assert.JSONEq(t, `{"b":1,"a":[true]}`, string(env.Items[0]))
	assert.Equal(t, `"x"`, string(env.Items[1]))
	assert.Equal(t, `null`, string(env.Items[2]))

	out, err := Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"b":1,"a":[true]},"x",null]}`, string(out))
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(map[string]string{"title": "Attention"}))

	var decoded map[string]string
	require.NoError(t, NewDecoder(&buf).Decode(&decoded))
	assert.Equal(t, "Attention", decoded["title"])

	err := Unmarshal([]byte(`{"invalid`), &decoded)
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"id":"W1","tags":[1,2]}`)))
	assert.False(t, Valid([]byte(`{"id":`)))
	assert.False(t, Valid([]byte(``)))
}
