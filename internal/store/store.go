// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all Inkwell entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
//
// Lookups return (nil, nil) when no row matches; callers decide whether a
// missing row is an error. Write failures are classified: unique and
// foreign-key violations become apperr.ErrConflict, anything else becomes
// an apperr.StorageError.
package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/apperr"
)

// PostgreSQL error codes the stores translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface{ Scan(...any) error }

// classify maps a database error onto the apperr taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Conflict(uniqueMessage(pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return apperr.Conflict("the record is still referenced by other data")
		}
	}
	return apperr.Storage(op, err)
}

// uniqueMessage turns a constraint name like "users_email_key" into a
// readable sentence.
func uniqueMessage(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "pkey" {
		return "the record already exists"
	}
	return strings.ReplaceAll(name, "_", " ") + " is already taken"
}

// noRows reports whether err means the query matched nothing.
func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// clampPage normalizes pagination inputs.
func clampPage(page, perPage, maxPer int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > maxPer {
		perPage = maxPer
	}
	return page, perPage
}
