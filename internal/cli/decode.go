package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/fwdigest/internal/logging"
	"github.com/hejijunhao/fwdigest/internal/model"
	"github.com/hejijunhao/fwdigest/internal/output"
	"github.com/hejijunhao/fwdigest/pkg/fwdigest"
)

func newDecodeCmd(root *rootFlags) *cobra.Command {
	var (
		category    string
		catalogPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a saved raw log page offline",
		Long: `Decode a log page saved from the appliance log API (a JSON document with a
"content" array) and print one formatted line per record. Reads stdin when no
file is given.

Examples:
  fwdigest decode --category threat page.json
  curl ... | fwdigest decode --category event --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := model.ParseCategory(category)
			if err != nil {
				return err
			}
			logging.Init("text", logging.ParseLevel(root.logLevel))

			var opts []fwdigest.Option
			if catalogPath != "" {
				opts = append(opts, fwdigest.WithCatalogFile(catalogPath))
			}
			dec, err := fwdigest.New(opts...)
			if err != nil {
				return err
			}

			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			page, err := dec.DecodePage(cat, data)
			if err != nil {
				return err
			}
			if err := printRecords(cmd.OutOrStdout(), page.Records, asJSON); err != nil {
				return err
			}
			for _, e := range page.Dropped {
				fmt.Fprintf(cmd.ErrOrStderr(), "dropped: %v\n", e)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d records, %d dropped, %d skipped\n", len(page.Records), len(page.Dropped), page.Skipped)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&category, "category", "threat", "log category: threat or event")
	f.StringVar(&catalogPath, "catalog", "", "event catalog YAML file")
	f.BoolVar(&asJSON, "json", false, "print records as NDJSON")
	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func printRecords(w io.Writer, records []model.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range records {
		if _, err := fmt.Fprintln(w, output.FormatRecord(r)); err != nil {
			return err
		}
	}
	return nil
}
