package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict means a player changed between read and write.
	ErrVersionConflict = errors.New("player was modified concurrently")
	// ErrDuplicateMatch means a record with the same match id already exists.
	ErrDuplicateMatch = errors.New("match already recorded")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
