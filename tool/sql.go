package tool

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the SQL tools depend on.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SQLOptions bounds the result size returned to the oracle.
type SQLOptions struct {
	// MaxRows caps the number of rows rendered. Exceeding rows are dropped
	// and a warning line appended.
	MaxRows int

	// MaxChars caps the rendered output length. Larger results are cut at a
	// line boundary and an error line appended.
	MaxChars int
}

// dangerousSQL lists lowercase fragments that disqualify a query outright,
// even inside an otherwise valid SELECT.
var dangerousSQL = []string{
	"drop", "delete", "update", "insert", "alter", "truncate",
	"create", "grant", "revoke", "comment", "--", "/*", "xp_", "exec", "sp_",
}

// NewExecuteSQLTool returns the execute_sql tool: a read-only SELECT runner
// that renders results as semicolon-separated CSV. Non-SELECT statements and
// queries containing dangerous keywords are rejected before touching the
// database.
func NewExecuteSQLTool(db Querier, optFns ...func(o *SQLOptions)) *FunctionTool {
	opts := SQLOptions{MaxRows: 500, MaxChars: 15000}
	for _, fn := range optFns {
		fn(&opts)
	}
	return NewFunctionTool(
		"execute_sql",
		"Execute a read-only SQL SELECT query against the database. Returns results as semicolon-separated CSV.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The SQL query to execute (must be a SELECT statement).",
				},
			},
			"required": []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			if err := guardSQL(query); err != nil {
				return nil, err
			}
			rows, err := db.Query(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			defer rows.Close()
			return renderRows(rows, opts)
		},
	)
}

// NewReadDataTool returns the read_data tool: a bounded dump of one table.
// The table name is restricted to a bare identifier so it can be interpolated
// safely.
func NewReadDataTool(db Querier, optFns ...func(o *SQLOptions)) *FunctionTool {
	opts := SQLOptions{MaxRows: 50, MaxChars: 15000}
	for _, fn := range optFns {
		fn(&opts)
	}
	return NewFunctionTool(
		"read_data",
		"Read data from a table (safe operation).",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"table_name": map[string]any{
					"type":        "string",
					"description": "The name of the table to read from.",
				},
			},
			"required": []string{"table_name"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			table, _ := args["table_name"].(string)
			if !identifierPattern.MatchString(table) {
				return nil, fmt.Errorf("invalid table name: %q", table)
			}
			rows, err := db.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, opts.MaxRows))
			if err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			defer rows.Close()
			return renderRows(rows, opts)
		},
	)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// guardSQL rejects anything but a plain SELECT statement.
func guardSQL(query string) error {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return fmt.Errorf("empty SQL query")
	}
	if !strings.HasPrefix(lowered, "select") {
		return fmt.Errorf("only SELECT queries are allowed")
	}
	for _, keyword := range dangerousSQL {
		if strings.Contains(lowered, keyword) {
			return fmt.Errorf("query contains disallowed operation %q", keyword)
		}
	}
	return nil
}

// renderRows turns a pgx result set into semicolon-separated CSV, applying
// the row and character limits.
func renderRows(rows pgx.Rows, opts SQLOptions) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Comma = ';'

	header := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		header = append(header, string(fd.Name))
	}
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return "", err
		}
	}

	rendered := 0
	total := 0
	for rows.Next() {
		total++
		if rendered >= opts.MaxRows {
			continue
		}
		values, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("read row: %w", err)
		}
		record := make([]string, 0, len(values))
		for _, v := range values {
			record = append(record, csvValue(v))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
		rendered++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	out := strings.TrimRight(sb.String(), "\n")
	if total > opts.MaxRows {
		out += fmt.Sprintf("\n# Warning: Query returned %d rows, truncated to %d rows.", total, opts.MaxRows)
	}
	if len(out) > opts.MaxChars {
		cut := out[:opts.MaxChars-100]
		if idx := strings.LastIndexByte(cut, '\n'); idx != -1 {
			cut = cut[:idx+1]
		}
		out = cut + fmt.Sprintf("\n# Error: Result too large. Truncated to ~%d chars.", opts.MaxChars)
	}
	return out, nil
}

// csvValue converts a column value to its CSV cell text. Complex values fall
// back to JSON.
func csvValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", val)
	}
}
