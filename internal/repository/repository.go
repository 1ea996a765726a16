// Package repository provides data access for researcher records.
//
// The single interface, ResearcherRepository, covers the verified
// researcher store: lookups, the backfill candidate scans, and the
// resolution writes. Its PostgreSQL implementation runs every query
// through DBTX, so callers can hand it either the connection pool or a
// transaction from database.DB.WithTransaction.
//
// All methods return errors from the domain package taxonomy
// (domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrInvalidInput),
// wrapped with fmt.Errorf and %w where database context is added.
// Implementations are safe for concurrent use; pgxpool handles the
// connection synchronization.
package repository

import (
	"github.com/scholarweave/researcher-service/internal/database"
)

// DBTX is the pool-or-transaction query surface repositories run on.
type DBTX = database.DBTX

// PostgreSQL error codes checked by the implementations.
const (
	pgUniqueViolation = "23505"
)
