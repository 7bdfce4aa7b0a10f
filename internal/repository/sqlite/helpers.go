package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"fluidnet/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToBool converts sql.NullInt64 to bool (0 = false, non-zero = true)
func nullToBool(ni sql.NullInt64) bool {
	return ni.Valid && ni.Int64 != 0
}

// boolToInt converts bool to the integer sqlite stores
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalResult unmarshals a nullable JSON column into a port result map
func unmarshalResult(ns sql.NullString) (map[string]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// marshalResult marshals a port result map; empty maps are stored as NULL
func marshalResult(m map[string]string) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Solve Row Scanner
// ============================================================================
//
// To add a column: append it to solveRow, scanArgs(), solveColumns and the
// insert in RecordSolve, keeping the three orders identical.

const solveColumns = `id, started_at, finished_at, status, severity, message,
	unreachable, components, connections, overlays, request_digest, result`

// solveRow holds all columns from a solve query for scanning
type solveRow struct {
	ID            string
	StartedAt     int64 // unix nanoseconds
	FinishedAt    int64
	Status        string
	Severity      string
	Message       sql.NullString
	Unreachable   sql.NullInt64
	Components    int
	Connections   int
	Overlays      int
	RequestDigest sql.NullString
	ResultJSON    sql.NullString
}

// scanArgs returns pointers to all fields, in solveColumns order
func (r *solveRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Status,
		&r.Severity,
		&r.Message,
		&r.Unreachable,
		&r.Components,
		&r.Connections,
		&r.Overlays,
		&r.RequestDigest,
		&r.ResultJSON,
	}
}

// toDomain converts the scanned row into a domain.SolveRecord
func (r *solveRow) toDomain() (*domain.SolveRecord, error) {
	result, err := unmarshalResult(r.ResultJSON)
	if err != nil {
		return nil, err
	}
	return &domain.SolveRecord{
		ID:            r.ID,
		StartedAt:     time.Unix(0, r.StartedAt).UTC(),
		FinishedAt:    time.Unix(0, r.FinishedAt).UTC(),
		Status:        domain.Status(r.Status),
		Severity:      domain.Severity(r.Severity),
		Message:       nullToString(r.Message),
		Unreachable:   nullToBool(r.Unreachable),
		Components:    r.Components,
		Connections:   r.Connections,
		Overlays:      r.Overlays,
		RequestDigest: nullToString(r.RequestDigest),
		Result:        result,
	}, nil
}
