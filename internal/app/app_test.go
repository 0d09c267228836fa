package app

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/format/table"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const fruitLines = `{"id":"apple","label":"Apple","kind":"pome","stock":12}
{"id":"kiwi","label":"Kiwi","kind":"berry","stock":3}
{"id":"lime","label":"Lime","kind":"citrus","stock":140}
`

func jsonlConfig() Config {
	return Config{
		Source:   backend.KindJSONLines,
		IDKey:    "id",
		LabelKey: "label",
		Output:   OutputIDs,
	}
}

func openHarness(t *testing.T, cfg Config, stdin string) (*Session, *ui.Harness) {
	t.Helper()
	session, err := Open(context.Background(), cfg, strings.NewReader(stdin))
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	model, err := ui.NewModel(session.Options)
	require.NoError(t, err)
	h := ui.NewHarness(model)
	h.Init()
	return session, h
}

func TestParseOutput(t *testing.T) {
	for input, want := range map[string]Output{"": OutputIDs, "IDS": OutputIDs, "jsonl": OutputJSONLines, "json": OutputJSONLines} {
		got, err := ParseOutput(input)
		require.NoError(t, err)
		require.Equal(t, want, got, "input %q", input)
	}
	_, err := ParseOutput("csv")
	require.Error(t, err)
}

func TestOpenJSONLinesStartsOpenWithLoadedOptions(t *testing.T) {
	_, h := openHarness(t, jsonlConfig(), fruitLines)
	m := h.Model()

	require.True(t, m.Machine().IsOpen())
	require.Equal(t, []string{"apple", "kiwi", "lime"}, option.IDs(m.Tracker().View().Options()))

	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnter)
	require.Equal(t, []string{"kiwi"}, option.IDs(m.Selected()))
	require.False(t, m.Machine().IsOpen())

	h.Key(tea.KeyEnter)
	require.True(t, h.Quit())
	require.True(t, m.Submitted())
}

func TestColumnsBuildAlignedLabels(t *testing.T) {
	cfg := jsonlConfig()
	cfg.Columns = []string{"label", "stock"}
	cfg.Alignments = []table.Alignment{table.AlignLeft, table.AlignRight}
	session, h := openHarness(t, cfg, fruitLines)
	require.Equal(t, tableLabelKey, session.Options.Select.LabelKey)

	view := h.Model().Tracker().View()
	labels := make([]string, 0, 3)
	for _, o := range view.Options() {
		labels = append(labels, o.Text(tableLabelKey))
	}
	require.Equal(t, []string{"Apple   12", "Kiwi     3", "Lime   140"}, labels)

	var buf bytes.Buffer
	cfg.Output = OutputJSONLines
	require.NoError(t, WriteSelection(&buf, cfg, view.Options()[:1]))
	require.NotContains(t, buf.String(), tableLabelKey)
	require.Contains(t, buf.String(), `"label":"Apple"`)
}

func TestWriteSelectionIDs(t *testing.T) {
	var buf bytes.Buffer
	selected := []option.Option{option.New("a", nil), option.New("b", nil)}
	require.NoError(t, WriteSelection(&buf, jsonlConfig(), selected))
	require.Equal(t, "a\nb\n", buf.String())
}

func TestOpenReportsMissingInput(t *testing.T) {
	cfg := jsonlConfig()
	cfg.Input = filepath.Join(t.TempDir(), "missing.jsonl")
	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg.Input = ""
	_, err = Open(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestOpenSQLiteUsesFetchCoordinator(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "items.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE items (id TEXT PRIMARY KEY, label TEXT NOT NULL)`)
	require.NoError(t, err)
	for i := 1; i <= 12; i++ {
		_, err = db.Exec(`INSERT INTO items (id, label) VALUES (?, ?)`, fmt.Sprintf("i%02d", i), fmt.Sprintf("Item %02d", i))
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	cfg := jsonlConfig()
	cfg.Source = backend.KindSQLite
	cfg.SQLite = backend.SQLiteConfig{Path: dbPath, Table: "items", PageSize: 5}
	session, h := openHarness(t, cfg, "")

	require.NotNil(t, session.Options.Fetch)
	require.Equal(t, 5, session.Options.Fetch.RecordsPerPage)
	require.NotNil(t, h.Model().Fetcher())
	require.Equal(t, 5, h.Model().Tracker().View().Len())
}
