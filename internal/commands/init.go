package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finlens-dev/finlens/internal/config"
	"github.com/finlens-dev/finlens/internal/taxonomy"
)

// taxonomyFile is the name init gives an exported taxonomy.
const taxonomyFile = "taxonomy.csv"

func newInitCommand(_ *app) *cobra.Command {
	var force bool
	var withTaxonomy bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default " + config.FileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force, withTaxonomy); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized finlens config at %s\n", filepath.Join(absDir, config.FileName))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	cmd.Flags().BoolVar(&withTaxonomy, "taxonomy", false, "also export the built-in account taxonomy as "+taxonomyFile)

	return cmd
}

func runInit(dir string, force, withTaxonomy bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if withTaxonomy {
		if err := taxonomy.Save(filepath.Join(dir, taxonomyFile), taxonomy.Default()); err != nil {
			return fmt.Errorf("writing taxonomy: %w", err)
		}
		cfg.Taxonomy.Path = taxonomyFile
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
