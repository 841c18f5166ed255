package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate marks unique-constraint violations so services can map them
// to conflict responses or retry sequential-ID allocation.
var ErrDuplicate = errors.New("duplicate key")

const defaultPerPage = 20

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func pageWindow(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = defaultPerPage
	}
	return perPage, (page - 1) * perPage
}
