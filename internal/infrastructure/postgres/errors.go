package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"finsync/internal/shared/errs"
)

// Postgres error codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeInvalidText         = "22P02"
)

// translate tags a driver error with the errs Kind callers branch on.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.E(op, errs.KindNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation, codeForeignKeyViolation:
			return errs.E(op, errs.KindConflict, err)
		case codeNotNullViolation, codeInvalidText:
			return errs.E(op, errs.KindInvalid, err)
		}
	}
	return errs.E(op, errs.KindInternal, err)
}
