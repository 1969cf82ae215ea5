package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"herbar/client/internal/catalog"
	"herbar/client/internal/faq"
)

// ErrReadOnlySource is returned when seeding a source that cannot be written.
var ErrReadOnlySource = errors.New("source is read-only")

func SeedCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load records or FAQ content into the configured backends",
	}
	cmd.AddCommand(seedRecordsCmd(s), seedFAQCmd(s))
	return cmd
}

func seedRecordsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "records [file.json]",
		Short: "Write records to the postgres or meili catalog source",
		Long:  "Reads a JSON array of records from the file, or copies the HTTP API catalog with its details when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, s.cfg, s.logger)
			if err != nil {
				return err
			}
			defer e.Close()

			var records []catalog.Record
			if len(args) == 1 {
				err = readJSONFile(args[0], &records)
			} else {
				records, err = pullRecords(ctx, e.client)
			}
			if err != nil {
				return err
			}

			switch {
			case e.postgres != nil:
				err = e.postgres.UpsertRecords(ctx, records)
			case e.catalog != nil:
				err = e.catalog.Reindex(ctx, records)
			default:
				err = fmt.Errorf("%w: catalog source %q", ErrReadOnlySource, s.cfg.CatalogSource)
			}
			if err != nil {
				return err
			}
			s.logger.Info("records seeded", "source", s.cfg.CatalogSource, "count", len(records))
			fmt.Fprintf(cmd.OutOrStdout(), "%d plante scrise in %s\n", len(records), s.cfg.CatalogSource)
			return nil
		},
	}
}

func seedFAQCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "faq <file.json>",
		Short: "Publish FAQ content to the blob store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, s.cfg, s.logger)
			if err != nil {
				return err
			}
			defer e.Close()
			if e.faqStore == nil {
				return fmt.Errorf("%w: faq source %q", ErrReadOnlySource, s.cfg.FAQSource)
			}
			var content faq.Content
			if err := readJSONFile(args[0], &content); err != nil {
				return err
			}
			if err := e.faqStore.Publish(ctx, content); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d intrebari publicate\n", len(content.Entries))
			return nil
		},
	}
}

func pullRecords(ctx context.Context, src catalog.Fetcher) ([]catalog.Record, error) {
	records, err := src.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return withCare(ctx, src, records)
}

func readJSONFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return decodeJSON(f, out)
}

func decodeJSON(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
