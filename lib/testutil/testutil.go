package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"trendwatch-backend/lib/telemetry"

	_ "modernc.org/sqlite"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
}

type ServiceResult struct {
	DB *sql.DB
}

// SetupService prepares telemetry and an in-memory sqlite database for
// a service test. Call the returned cleanup when the test is done.
func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(fmt.Sprintf("test:%s", params.Name))

	var sqlite *sql.DB
	if params.DbSchema != "" {
		var err error
		sqlite, err = sql.Open("sqlite", ":memory:")
		if err != nil {
			t.Fatal(err)
		}
		// an in-memory database vanishes with the connection that made
		// it, so the pool must never hand out a second one
		sqlite.SetMaxOpenConns(1)

		_, err = sqlite.Exec(params.DbSchema)
		if err != nil {
			t.Fatal(err)
		}
	}

	return ServiceResult{DB: sqlite}, func() {
		if sqlite != nil {
			sqlite.Close()
		}
		cleanup()
	}
}
