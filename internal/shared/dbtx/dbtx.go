// Package dbtx binds gorm queries to a database/sql transaction opened by a
// service, so repository writes commit or roll back together with it.
package dbtx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns a session bound to ctx. When tx is non-nil every statement of
// the session runs on tx instead of the pool.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	conn := db.WithContext(ctx)
	if tx != nil {
		conn.Statement.ConnPool = tx
	}
	return conn
}
