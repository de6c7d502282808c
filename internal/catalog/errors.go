package catalog

import (
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgconn"
	"strings"
)

var (
	ErrNotFound = errors.New("catalog: not found")

	// ErrForeignKey means a basket still references the item.
	ErrForeignKey = errors.New("catalog: item referenced by a basket")
)

// UniqueViolation reports a duplicate identifier or name.
type UniqueViolation struct {
	Field Field
	Value string
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("catalog: duplicate %s %q", e.Field, e.Value)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapPgError turns constraint violations into catalog errors. values holds
// what was being written so duplicates can be reported back.
func mapPgError(err error, values map[Field]string) error {
	var pe *pgconn.PgError
	if !errors.As(err, &pe) {
		return err
	}
	switch pe.Code {
	case pgUniqueViolation:
		f := FieldID
		if strings.Contains(pe.ConstraintName, "name") {
			f = FieldName
		}
		return &UniqueViolation{Field: f, Value: values[f]}
	case pgForeignKeyViolation:
		return ErrForeignKey
	}
	return err
}
