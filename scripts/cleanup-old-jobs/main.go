// cleanup-old-jobs removes completed audit jobs (and their steps) older
// than a retention window. Running jobs are never touched.
//
// Usage: go run ./scripts/cleanup-old-jobs [-days 30] [-dry-run=false]
//
// Database connection: Uses standard PG* environment variables
//
// Flags:
//
//	-days      Retention window in days (default: 30)
//	-dry-run   Show what would be deleted without actually deleting (default: true)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
)

func main() {
	days := flag.Int("days", 30, "Delete completed jobs older than this many days")
	dryRun := flag.Bool("dry-run", true, "Show what would be deleted without actually deleting")
	flag.Parse()

	if *days < 1 {
		fmt.Fprintf(os.Stderr, "Invalid -days value: %d\n", *days)
		os.Exit(1)
	}

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, buildConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	cutoff := time.Now().AddDate(0, 0, -*days)

	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println("Run with -dry-run=false to actually delete jobs")
		fmt.Println()

		rows, err := conn.Query(ctx, `
			SELECT id, workflow_name, created_at, completed_at
			FROM jobs
			WHERE completed_at IS NOT NULL
			  AND completed_at < $1
			ORDER BY completed_at
		`, cutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		defer rows.Close()

		var count int
		for rows.Next() {
			var id, workflow string
			var createdAt, completedAt time.Time
			if err := rows.Scan(&id, &workflow, &createdAt, &completedAt); err != nil {
				fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
				os.Exit(1)
			}
			count++
			fmt.Printf("  %s %s (completed %s)\n", id, workflow, completedAt.Format(time.RFC3339))
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Rows iteration failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\nTotal jobs that would be deleted: %d\n", count)
		return
	}

	// Steps cascade via the jobs foreign key
	result, err := conn.Exec(ctx, `
		DELETE FROM jobs
		WHERE completed_at IS NOT NULL
		  AND completed_at < $1
	`, cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %d jobs completed before %s\n", result.RowsAffected(), cutoff.Format(time.RFC3339))
}

func buildConnString() string {
	host := getEnvOrDefault("PGHOST", "localhost")
	port := getEnvOrDefault("PGPORT", "5432")
	user := getEnvOrDefault("PGUSER", "ladle")
	password := os.Getenv("PGPASSWORD")
	dbname := getEnvOrDefault("PGDATABASE", "ladle_engine")

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
		host, port, user, dbname)
	if password != "" {
		connStr += fmt.Sprintf(" password=%s", password)
	}
	return connStr
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
