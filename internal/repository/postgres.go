package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// LabelSortFields maps accepted sort keys of brand and category searches to
// their columns.
var LabelSortFields = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// LabelQuery is a paged name search over brands or categories.
type LabelQuery struct {
	Search string
	Sort   *catalog.SortSpec
	Limit  int
	Offset int
}

func (q LabelQuery) orderBy() string {
	if q.Sort == nil {
		return "ORDER BY id"
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}
	// Sort.Field comes from LabelSortFields, never from user text.
	return fmt.Sprintf("ORDER BY %s %s, id", q.Sort.Field, dir)
}

func mapPQErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return utils.ErrDuplicateUniqueField
	}
	return err
}

func expectRow(res sql.Result, err error) error {
	if err != nil {
		return mapPQErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return nil
}
