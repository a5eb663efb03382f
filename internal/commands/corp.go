package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finlens-dev/finlens/internal/importer"
	"github.com/finlens-dev/finlens/internal/model"
)

func newCorpCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corp",
		Short: "Manage and query the company-code table",
	}
	cmd.AddCommand(newCorpSearchCommand(a))
	cmd.AddCommand(newCorpGetCommand(a))
	cmd.AddCommand(newCorpImportCommand(a))
	return cmd
}

func newCorpSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find companies whose name contains <name>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
}

func newCorpGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <corp_code>",
		Short: "Show one company by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			corp, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), corp)
		},
	}
}

func newCorpImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file or directory]",
		Short: "Rebuild the company-code table",
		Long: `Rebuild the company-code table from a corpCode zip, XML or JSON file,
from every such file in a directory, or, with no argument, by downloading
the current table from DART.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				corps []model.Corp
				err   error
			)
			if len(args) == 1 {
				corps, err = readCorpFiles(args[0])
			} else {
				corps, err = a.downloadCorps(cmd)
			}
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ReplaceAll(cmd.Context(), corps); err != nil {
				return err
			}
			a.logger.Info("corp codes imported", "count", len(corps), "db_path", a.cfg.CorpCode.DBPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d companies into %s\n", len(corps), a.cfg.CorpCode.DBPath)
			return nil
		},
	}
}

func (a *app) downloadCorps(cmd *cobra.Command) ([]model.Corp, error) {
	client, err := a.dartClient()
	if err != nil {
		return nil, err
	}
	data, err := client.DownloadCorpCodes(cmd.Context())
	if err != nil {
		return nil, err
	}
	corps, err := (&importer.ZipParser{}).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing downloaded corp codes: %w", err)
	}
	return corps, nil
}

func readCorpFiles(path string) ([]model.Corp, error) {
	reg := importer.DefaultRegistry()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return reg.ParseFile(path)
	}

	files, err := reg.Scan(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no importable files in %s", path)
	}
	var corps []model.Corp
	for _, f := range files {
		parsed, err := reg.ParseFile(f.Path)
		if err != nil {
			return nil, err
		}
		corps = append(corps, parsed...)
	}
	return corps, nil
}
