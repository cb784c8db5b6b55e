// Package ergast reads Formula 1 records from the Ergast-compatible JSON API.
//
// # Endpoints
//
// The client uses five read-only endpoints under the configured base URL:
//
//   - /{year}.json: the race calendar of a season
//   - /{year}/drivers.json: drivers entered in a season
//   - /{year}/constructors.json: constructors entered in a season
//   - /{year}/results.json?limit=&offset=: race results, paginated
//   - /circuits.json?limit=&offset=: the full circuit catalog
//
// Every response wraps its table in an MRData object whose total, limit and
// offset fields are strings.
//
// # Rate Limiting
//
// Requests pass through a token bucket (4 requests per second by default)
// before they are sent. The public mirror enforces a similar limit and
// answers with 429 once it is exceeded.
//
// # Error Handling
//
// A non-200 status is returned as a *StatusError wrapping
// [domain.ErrSourceUnavailable]. Fetches are not retried; the sync engine
// abandons the affected season and moves on.
//
// Rows are validated while they are decoded. A row that fails validation is
// logged and skipped, so callers only ever see well-formed domain records.
package ergast
