// Package postgres provides a Postgres implementation of the record,
// embedding and message stores, for deployments that share one database
// (for example a hosted Supabase project) instead of a local SQLite file.
//
// Connections are pooled with pgx. The schema is applied with golang-migrate
// from the embedded migrations directory on startup.
package postgres
