package main

import (
	"context"
	"fmt"

	"github.com/itsatony/go-dyntag"
	"github.com/spf13/cobra"
)

// storageFlags selects a catalog storage backend
type storageFlags struct {
	driver string
	dsn    string
}

func (f *storageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, FlagDriver, FlagDefaultDriver, "storage driver: memory, filesystem, sqlite, postgres")
	cmd.Flags().StringVar(&f.dsn, FlagDSN, "", "storage connection string (directory, file or URL)")
}

func (f *storageFlags) open() (dyntag.CatalogStorage, error) {
	if f.dsn == "" && f.driver != dyntag.StorageDriverNameMemory {
		return nil, fail(ExitCodeUsageError, ErrMsgMissingDSN, nil)
	}
	storage, err := dyntag.OpenCatalogStorage(f.driver, f.dsn)
	if err != nil {
		return nil, fail(ExitCodeError, ErrMsgStorageFailed, err)
	}
	return storage, nil
}

func newCatalogCmd(s *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   CmdNameCatalog,
		Short: "Inspect, document and store catalogs",
	}
	cmd.AddCommand(
		newCatalogShowCmd(s),
		newCatalogReferenceCmd(s),
		newCatalogSaveCmd(s),
		newCatalogGetCmd(s),
		newCatalogListCmd(s),
	)
	return cmd
}

func newCatalogShowCmd(s *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   CmdNameShow,
		Short: "Print the active catalog definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := s.engine.Catalog().Definition()
			if s.format == OutputFormatText {
				return writeStructured(cmd.OutOrStdout(), OutputFormatYAML, def)
			}
			return writeStructured(cmd.OutOrStdout(), s.format, def)
		},
	}
}

func newCatalogReferenceCmd(s *cliState) *cobra.Command {
	var html bool
	cmd := &cobra.Command{
		Use:   CmdNameReference,
		Short: "Write a Markdown (or HTML) reference of the active catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if html {
				err = dyntag.RenderCatalogReferenceHTML(cmd.OutOrStdout(), s.engine.Catalog())
			} else {
				err = dyntag.WriteCatalogReference(cmd.OutOrStdout(), s.engine.Catalog())
			}
			if err != nil {
				return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&html, FlagHTML, false, "render HTML instead of Markdown")
	return cmd
}

func newCatalogSaveCmd(s *cliState) *cobra.Command {
	var (
		sf     storageFlags
		name   string
		author string
	)
	cmd := &cobra.Command{
		Use:   CmdNameSave,
		Short: "Store the active catalog as a new version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := s.engine.Catalog().Definition()
			if name == "" {
				name = def.Name
			}
			if name == "" {
				return fail(ExitCodeUsageError, ErrMsgMissingName, nil)
			}
			storage, err := sf.open()
			if err != nil {
				return err
			}
			defer storage.Close()

			sc := &dyntag.StoredCatalog{Name: name, Definition: def, CreatedBy: author}
			if err := storage.Save(context.Background(), sc); err != nil {
				return fail(ExitCodeError, ErrMsgStorageFailed, err)
			}
			if s.format != OutputFormatText {
				return writeStructured(cmd.OutOrStdout(), s.format, sc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), SavedTextFormat+FmtNewline, sc.Name, sc.Version, sc.ID)
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVarP(&name, FlagName, FlagNameShort, "", "catalog name (default: the definition's name)")
	cmd.Flags().StringVar(&author, FlagAuthor, "", "recorded as the version's author")
	return cmd
}

func newCatalogGetCmd(s *cliState) *cobra.Command {
	var (
		sf      storageFlags
		name    string
		version int
	)
	cmd := &cobra.Command{
		Use:   CmdNameGet,
		Short: "Print a stored catalog definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fail(ExitCodeUsageError, ErrMsgMissingName, nil)
			}
			storage, err := sf.open()
			if err != nil {
				return err
			}
			defer storage.Close()

			ctx := context.Background()
			var sc *dyntag.StoredCatalog
			if version > 0 {
				sc, err = storage.GetVersion(ctx, name, version)
			} else {
				sc, err = storage.Get(ctx, name)
			}
			if err != nil {
				return fail(ExitCodeInputError, ErrMsgStorageFailed, err)
			}
			if s.format == OutputFormatText {
				return writeStructured(cmd.OutOrStdout(), OutputFormatYAML, sc.Definition)
			}
			return writeStructured(cmd.OutOrStdout(), s.format, sc)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVarP(&name, FlagName, FlagNameShort, "", "catalog name")
	cmd.Flags().IntVar(&version, FlagVersion, 0, "version to fetch (default: latest)")
	return cmd
}

func newCatalogListCmd(s *cliState) *cobra.Command {
	var sf storageFlags
	cmd := &cobra.Command{
		Use:   CmdNameList,
		Short: "List stored catalogs and their versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			storage, err := sf.open()
			if err != nil {
				return err
			}
			defer storage.Close()

			ctx := context.Background()
			names, err := storage.List(ctx)
			if err != nil {
				return fail(ExitCodeError, ErrMsgStorageFailed, err)
			}
			versions := make(map[string][]int, len(names))
			for _, name := range names {
				v, err := storage.ListVersions(ctx, name)
				if err != nil {
					return fail(ExitCodeError, ErrMsgStorageFailed, err)
				}
				versions[name] = v
			}

			if s.format != OutputFormatText {
				return writeStructured(cmd.OutOrStdout(), s.format, versions)
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", name, versions[name])
			}
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}
