package sqlstore

import (
	"fmt"
	"strconv"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
)

// Dialect captures the differences between supported SQL engines that
// matter to statement construction.
type Dialect struct {
	// System is the OpenTelemetry db.system value.
	System      string
	placeholder func(n int) string
}

// Placeholder returns the bind marker for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

var (
	// Postgres numbers its bind markers: $1, $2, ...
	Postgres = Dialect{
		System:      "postgresql",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}

	// SQLite uses positional "?" markers.
	SQLite = Dialect{
		System:      "sqlite",
		placeholder: func(int) string { return "?" },
	}
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return Postgres, nil
	case config.DriverSQLite:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
