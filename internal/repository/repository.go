package repository

import "gorm.io/gorm"

// rowsOrNotFound turns a write that matched nothing into gorm.ErrRecordNotFound
// so services can treat "missing" the same way for reads and writes.
func rowsOrNotFound(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// isPostgres reports whether row-level locking clauses are meaningful on db.
func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
