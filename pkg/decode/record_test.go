package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecord_TolerantReads(t *testing.T) {
	out := Decode(`{
		"executive_summary": "summary",
		"views": 12400000,
		"ratio": 2.5,
		"flag": true,
		"tags": ["a", 3, "b", null],
		"top_insights": [{"insight":"i1"}, "junk", null, {"insight":"i2"}],
		"style_analysis": {"key_takeaways": "k", "hook_patterns": "not-a-list"},
		"null_field": null
	}`)
	require.True(t, out.OK())
	rec := out.Record()

	t.Run("text fields", func(t *testing.T) {
		require.Equal(t, "summary", rec.String("executive_summary"))
		require.Equal(t, "12400000", rec.String("views"))
		require.Equal(t, "2.5", rec.String("ratio"))
		require.Equal(t, "true", rec.String("flag"))
		require.Equal(t, "", rec.String("null_field"))
		require.Equal(t, "", rec.String("tags"))
		require.Equal(t, "", rec.String("missing"))
	})

	t.Run("list fields", func(t *testing.T) {
		require.Equal(t, []string{"a", "b"}, rec.Strings("tags"))

		insights := rec.Records("top_insights")
		require.Len(t, insights, 2)
		require.Equal(t, "i1", insights[0].String("insight"))
		require.Equal(t, "i2", insights[1].String("insight"))

		hooks := rec.Object("style_analysis").Records("hook_patterns")
		require.NotNil(t, hooks)
		require.Empty(t, hooks)
	})

	t.Run("nested objects", func(t *testing.T) {
		require.Equal(t, "k", rec.Path("style_analysis").String("key_takeaways"))
		require.Empty(t, rec.Path("style_analysis", "missing", "deeper"))
		require.NotNil(t, rec.Object("executive_summary"))
	})

	t.Run("presence", func(t *testing.T) {
		require.True(t, rec.Has("null_field"))
		require.False(t, rec.Has("missing"))
	})
}

func TestRecord_MissingFieldsDefault(t *testing.T) {
	records := []Record{nil, {}, {"other": "x"}}
	for _, rec := range records {
		require.NotPanics(t, func() {
			require.Equal(t, "", rec.String("field"))

			strs := rec.Strings("field")
			require.NotNil(t, strs)
			require.Empty(t, strs)

			recs := rec.Records("field")
			require.NotNil(t, recs)
			require.Empty(t, recs)

			obj := rec.Object("field")
			require.NotNil(t, obj)
			require.Empty(t, obj)

			require.NotNil(t, rec.Path("a", "b"))
			require.False(t, rec.Has("field"))
		})
	}
}

func TestRecord_TypedSlices(t *testing.T) {
	rec := Record{
		"maps":    []map[string]any{{"a": "1"}, nil},
		"records": []Record{{"b": "2"}},
	}
	require.Len(t, rec.Records("maps"), 1)
	require.Equal(t, "2", rec.Records("records")[0].String("b"))
}

func TestRecord_JSON(t *testing.T) {
	var nilRec Record
	require.Equal(t, "{}", nilRec.JSON())
	require.JSONEq(t, `{"a":"b"}`, Record{"a": "b"}.JSON())
	require.Equal(t, "{}", Record{"bad": make(chan int)}.JSON())
}
