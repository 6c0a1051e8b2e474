// Package store persists compiled datasets to a single keyed tabular
// container backed by SQLite, with a JSON side-file for repository-level
// metadata. Tables are schemaless from the caller's perspective: every cell
// is TEXT and the column set is whatever the compiled table carries.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/acfdavis/thermopyl/pkg/table"
)

const (
	// DataKey is the container key of the measurements table.
	DataKey = "data"
	// CompoundsKey is the container key of the compound table.
	CompoundsKey = "compounds"

	dbFileName       = "data.db"
	metadataFileName = "repository_metadata.json"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Open opens (creating if needed) the tabular container in dir.
func Open(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	return db, nil
}

// WriteTable replaces the table stored under key with tbl. All rows are
// written inside one transaction so a failed write leaves the previous table
// intact.
func WriteTable(db *sql.DB, key string, tbl *table.Table) error {
	cols := tbl.Columns()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin write of %s: %w", key, err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(key)); err != nil {
		return fmt.Errorf("drop %s: %w", key, err)
	}
	if len(cols) == 0 {
		// An empty table has no schema to create; readers treat the
		// missing table as empty.
		return tx.Commit()
	}

	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quoteIdent(col) + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(key), strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(key), placeholders)
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", key, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(cols))
	for i := 0; i < tbl.Len(); i++ {
		for j, col := range cols {
			args[j] = tbl.Cell(i, col)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", i, key, err)
		}
	}
	return tx.Commit()
}

// ReadTable loads the table stored under key. A key that was never written,
// or was written empty, reads back as an empty table.
func ReadTable(db DBExecutor, key string) (*table.Table, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, key).Scan(&name)
	if err == sql.ErrNoRows {
		return table.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up %s: %w", key, err)
	}

	rows, err := db.Query("SELECT * FROM " + quoteIdent(key))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	tbl := table.New(cols...)
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		scan := make([]interface{}, len(cols))
		for i := range cells {
			scan[i] = &cells[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", key, err)
		}
		row := make(table.Row, len(cols))
		for i, col := range cols {
			if cells[i].Valid {
				row[col] = cells[i].String
			}
		}
		tbl.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// SaveDataset persists both tables and the repository metadata side-file
// under dir.
func SaveDataset(dir string, data, compounds *table.Table, metadata map[string]any) error {
	db, err := Open(dir)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := WriteTable(db, DataKey, data); err != nil {
		return err
	}
	if err := WriteTable(db, CompoundsKey, compounds); err != nil {
		return err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	buf, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("encode repository metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), buf, 0o644); err != nil {
		return fmt.Errorf("write repository metadata: %w", err)
	}
	return nil
}

// LoadDataset reads the measurements table back from a directory previously
// written by SaveDataset.
func LoadDataset(dir string) (*table.Table, error) {
	path := filepath.Join(dir, dbFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no compiled dataset in %s (run the build command first): %w", dir, err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer db.Close()
	return ReadTable(db, DataKey)
}

// quoteIdent quotes a SQL identifier; column names carry spaces and commas.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
