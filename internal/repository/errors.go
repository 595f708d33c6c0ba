// Package repository provides MySQL-backed persistence for users and
// refresh tokens. Sentinel errors defined here let the service layer
// distinguish unique-constraint conflicts from other database failures
// without inspecting driver internals; absence of a row is reported as
// sql.ErrNoRows, unchanged.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when an insert or update collides with the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrGoogleSubExists is returned when linking a Google subject collides
// with the unique index on users.google_sub, meaning another account
// already carries that identity.
var ErrGoogleSubExists = errors.New("google subject already linked")

// mysqlDuplicate reports whether err is a MySQL duplicate-entry error
// (1062). When index is non-empty the violated key name must also appear
// in the error message, e.g. "Duplicate entry 'x' for key 'users.email'".
func mysqlDuplicate(err error, index string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return false
	}
	return index == "" || strings.Contains(me.Message, index)
}
