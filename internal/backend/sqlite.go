package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/atomicstack/popup-select/internal/fetch"
	"github.com/atomicstack/popup-select/internal/option"
	"golang.org/x/sync/errgroup"

	_ "modernc.org/sqlite"
)

// DefaultPageSize is used when SQLiteConfig.PageSize is unset.
const DefaultPageSize = 50

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteConfig describes the table an SQLite source reads from. Column names
// are validated as plain identifiers.
type SQLiteConfig struct {
	Path        string
	Table       string
	IDColumn    string
	LabelColumn string
	// Columns lists extra columns copied into option fields, for example a
	// category column.
	Columns  []string
	PageSize int
}

// SQLite pages through a table, searching the label column with LIKE.
type SQLite struct {
	cfg     SQLiteConfig
	db      *sql.DB
	columns []string
}

// OpenSQLite opens the database read-only and checks the table exists.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLite, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite source requires a database path")
	}
	if cfg.IDColumn == "" {
		cfg.IDColumn = option.IDKey
	}
	if cfg.LabelColumn == "" {
		cfg.LabelColumn = cfg.IDColumn
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	columns := []string{cfg.IDColumn}
	for _, col := range append([]string{cfg.LabelColumn}, cfg.Columns...) {
		if !containsString(columns, col) {
			columns = append(columns, col)
		}
	}
	for _, name := range append([]string{cfg.Table}, columns...) {
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("invalid sqlite identifier %q", name)
		}
	}

	db, err := sql.Open("sqlite", buildSQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// count and page queries run side by side
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	var name string
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`, cfg.Table).Scan(&name)
	if err != nil {
		_ = db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite table %q not found", cfg.Table)
		}
		return nil, fmt.Errorf("inspect sqlite db: %w", err)
	}
	cfg.Path = path
	return &SQLite{cfg: cfg, db: db, columns: columns}, nil
}

// buildSQLiteDSN creates a read-only DSN for the given path.
func buildSQLiteDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *SQLite) Kind() Kind    { return KindSQLite }
func (s *SQLite) PageSize() int { return s.cfg.PageSize }
func (s *SQLite) Close() error  { return s.db.Close() }

// Load returns nil: an SQLite source is always paged through Fetch.
func (s *SQLite) Load(ctx context.Context) ([]option.Option, error) {
	return nil, nil
}

// Fetch returns page p.Page of rows whose label contains p.SearchQuery. The
// total is counted in parallel with the page query.
func (s *SQLite) Fetch(ctx context.Context, p fetch.Params) (*fetch.Response, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	where, args := s.whereClause(p.SearchQuery)
	order, err := s.orderClause(p.Sort)
	if err != nil {
		return nil, err
	}

	var (
		total int
		data  []option.Option
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, quote(s.cfg.Table), where)
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		quoted := make([]string, len(s.columns))
		for i, col := range s.columns {
			quoted[i] = quote(col)
		}
		query := fmt.Sprintf(`SELECT %s FROM %s%s%s LIMIT ? OFFSET ?`,
			strings.Join(quoted, ", "), quote(s.cfg.Table), where, order)
		pageArgs := append(append([]any{}, args...), s.cfg.PageSize, (page-1)*s.cfg.PageSize)
		rows, err := s.db.QueryContext(ctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("query rows: %w", err)
		}
		defer func() {
			_ = rows.Close()
		}()
		for rows.Next() {
			o, err := s.scan(rows)
			if err != nil {
				return err
			}
			data = append(data, o)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &fetch.Response{Data: data, TotalRecords: total}, nil
}

func (s *SQLite) scan(rows *sql.Rows) (option.Option, error) {
	values := make([]sql.NullString, len(s.columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return option.Option{}, fmt.Errorf("scan row: %w", err)
	}
	fields := make(map[string]any, len(s.columns))
	for i, col := range s.columns {
		if i == 0 || !values[i].Valid {
			continue
		}
		fields[col] = values[i].String
	}
	return option.New(values[0].String, fields), nil
}

func (s *SQLite) whereClause(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(search) + "%"
	return fmt.Sprintf(` WHERE %s LIKE ? ESCAPE '\'`, quote(s.cfg.LabelColumn)), []any{pattern}
}

// orderClause accepts "column", "column desc" or "-column". An empty sort
// orders by label then id so pages are stable.
func (s *SQLite) orderClause(sort string) (string, error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return fmt.Sprintf(` ORDER BY %s, %s`, quote(s.cfg.LabelColumn), quote(s.cfg.IDColumn)), nil
	}
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		sort = strings.TrimPrefix(sort, "-")
	}
	fields := strings.Fields(sort)
	if len(fields) == 2 {
		switch strings.ToLower(fields[1]) {
		case "asc":
		case "desc":
			dir = "DESC"
		default:
			return "", fmt.Errorf("invalid sort direction %q", fields[1])
		}
	} else if len(fields) != 1 {
		return "", fmt.Errorf("invalid sort %q", sort)
	}
	col := fields[0]
	if !containsString(s.columns, col) {
		return "", fmt.Errorf("cannot sort by unknown column %q", col)
	}
	return fmt.Sprintf(` ORDER BY %s %s, %s`, quote(col), dir, quote(s.cfg.IDColumn)), nil
}

func quote(name string) string {
	return `"` + name + `"`
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
