// Package db wires PostgreSQL through a pgx connection pool.
//
// [Connect] retries until the database answers a ping, [Migrate] applies
// embedded goose migrations, and [WithTx] scopes work to a transaction.
// [UniqueViolation] exposes the constraint name of a 23505 error so callers
// can turn it into a field-level validation error.
package db
