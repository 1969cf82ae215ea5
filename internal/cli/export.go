package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"herbar/client/internal/catalog"
	"herbar/client/internal/export"
	"herbar/client/internal/favorites"
	"herbar/client/internal/state"
)

const careFetchLimit = 4

func ExportCmd(s *session) *cobra.Command {
	var (
		startURL string
		format   string
		out      string
		title    string
		care     bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the list a link shows as HTML, PDF or DOCX",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("%w: %s", err, format)
			}
			ctx := cmd.Context()
			e, err := openEnv(ctx, s.cfg, s.logger)
			if err != nil {
				return err
			}
			defer e.Close()

			c := newController(s, e, startURL)
			defer c.Close()
			if err := c.Start(ctx); err != nil {
				return err
			}
			c.Settle()

			records := c.Visible()
			if care {
				if records, err = withCare(ctx, e.fetcher, records); err != nil {
					return err
				}
			}
			st := c.Store().GetState()
			favs := map[int]bool{}
			for _, id := range favorites.From(st).IDs {
				favs[id] = true
			}

			res, err := export.NewService(s.logger).Export(ctx, export.Request{
				Title:       title,
				Format:      f,
				Records:     records,
				Filters:     describeFilters(st),
				Favorites:   favs,
				IncludeCare: care,
			})
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = res.Filename
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(path, res.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d plante, %s)\n", path, len(records), res.MimeType)
			return nil
		},
	}
	cmd.Flags().StringVar(&startURL, "url", "", "link whose view state is exported")
	cmd.Flags().StringVar(&format, "format", "html", "html, pdf or docx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default derived from the title)")
	cmd.Flags().StringVar(&title, "title", "Catalog de plante", "document title")
	cmd.Flags().BoolVar(&care, "care", false, "include care guides")
	return cmd
}

// withCare fills the detail fields of records, fetching at most
// careFetchLimit details at a time.
func withCare(ctx context.Context, fetcher catalog.Fetcher, records []catalog.Record) ([]catalog.Record, error) {
	out := make([]catalog.Record, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(careFetchLimit)
	for i, rec := range records {
		if rec.CareGuide != "" {
			out[i] = rec
			continue
		}
		g.Go(func() error {
			detail, err := fetcher.FetchDetail(ctx, rec.ID)
			if err != nil {
				return fmt.Errorf("detail %d: %w", rec.ID, err)
			}
			out[i] = rec.WithDetail(detail)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func describeFilters(st state.State) []string {
	cs := catalog.From(st)
	var out []string
	if q := strings.TrimSpace(cs.Query); q != "" {
		out = append(out, fmt.Sprintf("Căutare: %q", q))
	}
	if len(cs.ActiveTags) > 0 {
		out = append(out, "Etichete: "+strings.Join(cs.ActiveTags, ", "))
	}
	if cs.SortKey != "" && cs.SortKey != catalog.DefaultSort {
		out = append(out, "Ordine: "+string(cs.SortKey))
	}
	if favorites.From(st).OnlyFavorites {
		out = append(out, "Doar favorite")
	}
	return out
}
