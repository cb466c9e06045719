package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type schemaSample struct {
	Title    string            `json:"title" description:"video title"`
	Views    int64             `json:"views"`
	Score    float64           `json:"score,omitempty"`
	Viral    bool              `json:"viral"`
	Tags     []string          `json:"tags,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
	Nested   *schemaNested     `json:"nested,omitempty"`
	Untagged string
	Skipped  string `json:"-"`
	Derived  string `json:"derived" schema:"-"`
	hidden   string
}

type schemaNested struct {
	Hook string `json:"hook"`
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema(&schemaSample{})
	require.NoError(t, err)
	require.Equal(t, "object", schema["type"])

	props := schema["properties"].(map[string]interface{})
	require.Contains(t, props, "title")
	require.Contains(t, props, "Untagged")
	require.NotContains(t, props, "Skipped")
	require.NotContains(t, props, "hidden")
	require.NotContains(t, props, "derived")

	require.Equal(t, "video title", props["title"].(map[string]interface{})["description"])
	require.Equal(t, "integer", props["views"].(map[string]interface{})["type"])
	require.Equal(t, "number", props["score"].(map[string]interface{})["type"])
	require.Equal(t, "boolean", props["viral"].(map[string]interface{})["type"])
	require.Equal(t, "array", props["tags"].(map[string]interface{})["type"])
	require.Equal(t, "object", props["meta"].(map[string]interface{})["type"])

	nested := props["nested"].(map[string]interface{})
	require.Equal(t, []string{"hook"}, nested["required"])

	require.ElementsMatch(t, []string{"title", "views", "viral", "Untagged"}, schema["required"])

	_, err = GenerateSchema(nil)
	require.Error(t, err)
	_, err = GenerateSchema("string")
	require.Error(t, err)
}

func TestParseStructured(t *testing.T) {
	var out schemaNested
	require.NoError(t, ParseStructured(`{"hook":"pattern interrupt"}`, &out))
	require.Equal(t, "pattern interrupt", out.Hook)

	require.Error(t, ParseStructured(`{}`, nil))
	require.Error(t, ParseStructured(`{}`, out))
	err := ParseStructured(`{"hook":42}`, &out)
	require.ErrorContains(t, err, "decode structured response")
	require.ErrorIs(t, err, ErrStructuredOutput)
}

func TestParseJSONTagOptions(t *testing.T) {
	type tagged struct {
		A string `json:"a,omitempty"`
		B string `json:"b,string"`
		C string
	}
	f, _ := typeOf[tagged]().FieldByName("A")
	name, omit := parseJSONTag(f)
	require.Equal(t, "a", name)
	require.True(t, omit)

	f, _ = typeOf[tagged]().FieldByName("B")
	name, omit = parseJSONTag(f)
	require.Equal(t, "b", name)
	require.False(t, omit)

	f, _ = typeOf[tagged]().FieldByName("C")
	name, _ = parseJSONTag(f)
	require.Empty(t, name)
}
