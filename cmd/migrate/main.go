// Command migrate manages the AskMate forum schema: the identity tables
// (users, roles, claims), the forum tables (questions, answers, comments,
// tags) and the search indexes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"askmate/internal/config"
	"askmate/internal/database"

	"gorm.io/gorm"
)

type schemaCommand struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = []schemaCommand{
	{"up", "", "apply pending forum SQL migrations (postgres only)", migrateUp},
	{"auto", "", "create or update forum tables from the GORM models", migrateAuto},
	{"status", "", "show the schema mode and which forum migrations are pending", migrateStatus},
	{"list", "", "list the forum migrations embedded in this binary", migrateList},
	{"down", "<version>", "roll back one forum migration, e.g. 3 drops the search indexes", migrateDown},
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: migrate <command> [args]")
	fmt.Fprintln(out, "\nThe database comes from config.yml / DB_* environment variables.")
	fmt.Fprintln(out, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-7s %-10s %s\n", c.name, c.args, c.summary)
	}
}

func lookup(name string) *schemaCommand {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}
	cmd := lookup(strings.ToLower(strings.TrimSpace(args[0])))
	if cmd == nil {
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// list only reads the embedded files.
	if cmd.name == "list" {
		return cmd.run(context.Background(), nil, cfg, args[1:])
	}

	ctx := context.Background()
	db, err := database.ConnectWithOptions(ctx, cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect to forum database: %w", err)
	}
	return cmd.run(ctx, db, cfg, args[1:])
}

func migrateUp(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	if cfg.DBDriver == "sqlite" {
		return fmt.Errorf("forum SQL migrations are written for postgres; run 'migrate auto' for %s", cfg.DBSQLitePath)
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("forum migrations failed: %w", err)
	}
	log.Printf("forum schema up to date on %s/%s", cfg.DBHost, cfg.DBName)
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("forum auto schema failed: %w", err)
	}
	log.Printf("forum tables migrated (%s)", cfg.DBDriver)
	return nil
}

func migrateStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("forum schema status: %w", err)
	}
	log.Printf("driver=%s mode=%s env=%s sql=%t auto=%t applied=%v",
		cfg.DBDriver, status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate, status.AppliedVersions)
	if len(status.PendingMigrations) == 0 {
		log.Println("no pending forum migrations")
	}
	for _, m := range status.PendingMigrations {
		log.Printf("pending: %s", m.String())
	}
	return nil
}

func migrateList(_ context.Context, _ *gorm.DB, _ *config.Config, _ []string) error {
	for _, m := range database.GetMigrations() {
		fmt.Println(m.String())
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate down <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid migration version %q: %w", args[0], err)
	}
	m := database.GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("no forum migration with version %d; see 'migrate list'", version)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback %s: %w", m.String(), err)
	}
	log.Printf("rolled back %s", m.String())
	return nil
}
