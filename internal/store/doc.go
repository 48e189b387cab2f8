// Package store provides persistent storage for the customer registry using SQLite.
//
// # Data Model
//
//   - Customer: one record per canonical phone number. Re-registration updates
//     Name and LastUpdatedAt; CreatedAt is written once and never changes.
//
// # Recency Windows
//
// Admin reports filter customers by registration recency. The boundary
// semantics live entirely in Window and DayDiff: calendar-day difference in
// local time, where "today" means day difference 0, "yesterday" means exactly
// 1, and the remaining windows are inclusive upper bounds (7, 30, 90, 180,
// 365 days). This is a day-number comparison, not a rolling 24h distance.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode and a busy timeout:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA busy_timeout=5000;
//
// MockStore offers the same semantics in memory for tests.
package store
