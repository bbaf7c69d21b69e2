package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/shared"
)

// SetupConfig writes the embedded template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Fill in credentials.spotify and credentials.youtube\n")
	r.writePlain("2. Run 'likesync auth spotify' and 'likesync auth youtube'\n")
	return r.writePlain("3. Set destination.playlist_id and run 'likesync sync run'\n")
}

// SetupDatabase initializes the sqlite state database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := shared.ExpandPath(r.config.Database.Path)
	r.logger.Info("initializing database", "path", path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	applied, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	r.logger.Infof("setup complete for database: %v", path)
	r.writePlain("✓ Database ready at %s\n", path)
	if r.config.State.Backend != "sqlite" {
		r.writePlain("Set state.backend = \"sqlite\" to keep sync state there.\n")
	}
	return r.writePlain("Applied migrations: %v\n", versions)
}
