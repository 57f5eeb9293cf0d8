// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package psgc

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// PublicationSheet is the sheet holding the hierarchy in the XLSX datafile.
const PublicationSheet = "PSGC"

// UnitRepository persists the dataset in a DuckDB file so that the server can
// boot without re-reading the publication.
type UnitRepository interface {
	// CreateSchema creates the units table
	CreateSchema() error

	// ReadPublication reads the rows of a publication datafile (.csv or .xlsx)
	ReadPublication(path string) ([]PublicationRow, error)

	// BulkInsert appends units, keeping their order
	BulkInsert(units []GeoUnit) error

	// All returns every unit in the order it was inserted
	All() ([]GeoUnit, error)

	// Count returns the number of stored units
	Count() (int, error)

	// Clear removes every unit
	Clear() error

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlUnitRepository struct {
	db *sql.DB
}

// NewUnitRepository creates a repository over a DuckDB connection.
func NewUnitRepository(db *sql.DB) UnitRepository {
	return &sqlUnitRepository{db: db}
}

func (r *sqlUnitRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlUnitRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS units (
			position INTEGER NOT NULL,
			code VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			level VARCHAR NOT NULL,
			parent_code VARCHAR
		);
	`)

	return err
}

func (r *sqlUnitRepository) ReadPublication(path string) ([]PublicationRow, error) {
	var source string

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		source = fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", quoteLiteral(path))
	case ".xlsx":
		if _, err := r.db.Exec(`INSTALL excel; LOAD excel;`); err != nil {
			return nil, fmt.Errorf("loading excel extension: %w", err)
		}

		source = fmt.Sprintf("read_xlsx(%s, sheet = %s, header = true, all_varchar = true)",
			quoteLiteral(path), quoteLiteral(PublicationSheet))
	default:
		return nil, fmt.Errorf("unsupported publication format %q", ext)
	}

	rows, err := r.db.Query("SELECT * FROM " + source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	codeCol, nameCol, levelCol := -1, -1, -1

	for i, c := range columns {
		switch strings.TrimSpace(c) {
		case ColumnCode:
			codeCol = i
		case ColumnName:
			nameCol = i
		case ColumnLevel:
			levelCol = i
		}
	}

	if codeCol < 0 || nameCol < 0 || levelCol < 0 {
		return nil, fmt.Errorf("%s: missing one of the %q, %q, %q columns (got %q)",
			path, ColumnCode, ColumnName, ColumnLevel, columns)
	}

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))

	for i := range values {
		dest[i] = &values[i]
	}

	var ret []PublicationRow

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		if !values[codeCol].Valid {
			continue // footnotes and blank rows
		}

		ret = append(ret, PublicationRow{
			Code:  values[codeCol].String,
			Name:  values[nameCol].String,
			Level: values[levelCol].String,
		})
	}

	return ret, rows.Err()
}

func (r *sqlUnitRepository) BulkInsert(units []GeoUnit) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM units`).Scan(&next); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	stmt, err := tx.Prepare(`
		INSERT INTO units(position, code, name, level, parent_code)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	defer stmt.Close()

	for i, u := range units {
		var parent *string
		if u.ParentCode != "" {
			parent = &u.ParentCode
		}

		if _, err := stmt.Exec(next+i, u.Code, u.Name, u.Level.String(), parent); err != nil {
			return errors.Join(fmt.Errorf("inserting %s: %w", u.Code, err), tx.Rollback())
		}
	}

	return tx.Commit()
}

func (r *sqlUnitRepository) All() ([]GeoUnit, error) {
	rows, err := r.db.Query(`SELECT code, name, level, parent_code FROM units ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []GeoUnit

	for rows.Next() {
		var (
			u      GeoUnit
			level  string
			parent sql.NullString
		)

		if err := rows.Scan(&u.Code, &u.Name, &level, &parent); err != nil {
			return nil, err
		}

		if u.Level, err = ParseLevel(level); err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Code, err)
		}

		u.ParentCode = parent.String
		units = append(units, u)
	}

	return units, rows.Err()
}

func (r *sqlUnitRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM units`).Scan(&n)

	return n, err
}

func (r *sqlUnitRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM units`)

	return err
}

// quoteLiteral renders s as a SQL string literal; DuckDB table functions do
// not take the file name as a bound parameter.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
