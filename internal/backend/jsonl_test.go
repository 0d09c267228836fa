package backend

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atomicstack/popup-select/internal/option"
	"github.com/stretchr/testify/require"
)

func TestReadJSONLinesObjectsAndBareStrings(t *testing.T) {
	input := strings.Join([]string{
		`{"id": 1, "label": "One", "group": "odd"}`,
		``,
		`{"label": "Two"}`,
		`"three"`,
		`four`,
	}, "\n")
	options, err := ReadJSONLines(strings.NewReader(input), "", "label")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "Two", "three", "four"}, option.IDs(options))
	require.Equal(t, "One", options[0].Label("label"))
	require.Equal(t, "odd", options[0].Text("group"))
	_, hasID := options[0].Fields["id"]
	require.False(t, hasID)
	require.Equal(t, "three", options[2].Label("label"))
}

func TestReadJSONLinesCustomIDKeyKeepsField(t *testing.T) {
	options, err := ReadJSONLines(strings.NewReader(`{"name": "vim", "label": "Vim"}`), "name", "label")
	require.NoError(t, err)
	require.Equal(t, "vim", options[0].ID)
	require.Equal(t, "vim", options[0].Text("name"))
}

func TestReadJSONLinesReportsLine(t *testing.T) {
	_, err := ReadJSONLines(strings.NewReader("ok\n{\"label\": }"), "", "label")
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")

	_, err = ReadJSONLines(strings.NewReader(`{"other": "x"}`), "", "label")
	require.ErrorContains(t, err, `missing "id" field`)
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	options := []option.Option{
		option.New("a", map[string]any{"label": "Alpha"}),
		option.New("b", nil),
	}
	require.NoError(t, WriteJSONLines(&buf, options, ""))
	require.Equal(t, "{\"id\":\"a\",\"label\":\"Alpha\"}\n{\"id\":\"b\"}\n", buf.String())

	back, err := ReadJSONLines(&buf, "", "label")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, option.IDs(back))
}

func TestOpenJSONLinesDedupes(t *testing.T) {
	src, err := Open(context.Background(), Spec{
		Kind:     KindJSONLines,
		LabelKey: "label",
		Input:    strings.NewReader("a\nb\na\n"),
	})
	require.NoError(t, err)
	defer src.Close()
	require.Nil(t, FetchFunc(src))
	options, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, option.IDs(options))
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" SQLite ")
	require.NoError(t, err)
	require.Equal(t, KindSQLite, kind)

	kind, err = ParseKind("")
	require.NoError(t, err)
	require.Equal(t, KindJSONLines, kind)

	_, err = ParseKind("redis")
	require.True(t, errors.Is(err, ErrUnknownSource))

	_, err = Open(context.Background(), Spec{Kind: "redis"})
	require.True(t, errors.Is(err, ErrUnknownSource))
}
