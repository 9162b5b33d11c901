// Copyright © 2020 Dmitry Mozzherin <dmozzherin@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/gnames/phenogrid/internal/ent/kv"
	"github.com/gnames/phenogrid/internal/ent/obs"
	"github.com/gnames/phenogrid/internal/ent/output"
	"github.com/gnames/phenogrid/internal/ent/sciname"
	"github.com/gnames/phenogrid/internal/io/elevio"
	"github.com/gnames/phenogrid/internal/io/kvio"
	"github.com/gnames/phenogrid/internal/io/maskio"
	"github.com/gnames/phenogrid/internal/io/obsio"
	"github.com/gnames/phenogrid/internal/io/outio"
	"github.com/gnames/phenogrid/internal/io/pgio"
	"github.com/gnames/phenogrid/internal/io/phenio"
	"github.com/gnames/phenogrid/internal/io/rangeio"
	"github.com/gnames/phenogrid/internal/io/vegio"
	phenogrid "github.com/gnames/phenogrid/pkg"
	"github.com/gnames/phenogrid/pkg/config"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Builds the unified dataset from input files",
	Run: func(cmd *cobra.Command, _ []string) {
		flagOpts(cmd)
		cfg := config.New(opts...)

		pg, err := phenogrid.New(cfg)
		if err != nil {
			slog.Error("Cannot create pipeline", "error", err)
			os.Exit(1)
		}

		var store kv.KeyVal
		store, err = kvio.New(cfg.CacheDir, cfg.FreshCache)
		if err != nil {
			slog.Error("Cannot create Key-Value store", "error", err)
			os.Exit(1)
		}
		if err = store.Open(); err != nil {
			slog.Error("Cannot open Key-Value store", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		src, db, err := observations(cfg)
		if err != nil {
			slog.Error("Cannot create observations source", "error", err)
			os.Exit(1)
		}
		if db != nil {
			defer db.Close()
		}

		ws, err := writers(cfg)
		if err != nil {
			slog.Error("Cannot create output", "error", err)
			os.Exit(1)
		}

		norm := sciname.New()
		_, err = pg.Run(phenogrid.Sources{
			Vegetation:   vegio.New(cfg.Path(cfg.VegDir)),
			Phenology:    phenio.New(cfg.Path(cfg.PhenologyFile)),
			Ranges:       rangeio.NewProvider(cfg.Path(cfg.RangeDir), cfg.Path(cfg.RangeMatchFile), norm),
			RangeReader:  rangeio.NewReader(),
			MaskCache:    maskio.New(store),
			Elevation:    elevio.New(cfg.Path(cfg.ElevationFile), cfg.ElevLonVar, cfg.ElevLatVar, cfg.ElevVar),
			Observations: src,
			Writers:      ws,
		})
		if err != nil {
			slog.Error("Cannot build dataset", "error", err)
			store.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("output", "o", "", "path to the output file")
	runCmd.Flags().StringP("format", "f", "",
		"output format: csv, tsv, compact, pretty")
	runCmd.Flags().IntP("jobs", "j", 0, "number of concurrent rasterization jobs")
	runCmd.Flags().Bool("fresh", false, "clear cached range masks")
	runCmd.Flags().StringP("input", "i", "", "directory with input data")
}

// flagOpts adds options from command line flags.
func flagOpts(cmd *cobra.Command) {
	if s, _ := cmd.Flags().GetString("input"); s != "" {
		opts = append(opts, config.OptInputDir(s))
	}
	if s, _ := cmd.Flags().GetString("output"); s != "" {
		opts = append(opts, config.OptOutputFile(s))
	}
	if s, _ := cmd.Flags().GetString("format"); s != "" {
		opts = append(opts, config.OptOutputFormat(s))
	}
	if j, _ := cmd.Flags().GetInt("jobs"); j > 0 {
		opts = append(opts, config.OptJobsNum(j))
	}
	if b, _ := cmd.Flags().GetBool("fresh"); b {
		opts = append(opts, config.OptFreshCache(true))
	}
}

func observations(cfg config.Config) (obs.Source, *sql.DB, error) {
	if cfg.ObsSource != "mysql" {
		return obsio.NewCSV(cfg.Path(cfg.ObsFile)), nil, nil
	}
	db, err := obsio.OpenMySQL(cfg)
	if err != nil {
		return nil, nil, err
	}
	return obsio.NewDB(db, cfg.ObsTable), db, nil
}

func writers(cfg config.Config) ([]output.Writer, error) {
	var res []output.Writer
	w, err := outio.NewFile(cfg.OutputFile, cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	res = append(res, w)

	if cfg.SqliteFile != "" {
		res = append(res, outio.NewSQLite(cfg.SqliteFile))
	}

	if cfg.PgExport {
		w, err = pgio.New(cfg)
		if err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	return res, nil
}
