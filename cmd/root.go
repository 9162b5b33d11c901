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
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gnsys"
	phenogrid "github.com/gnames/phenogrid/pkg"
	"github.com/gnames/phenogrid/pkg/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed phenogrid.yaml
var configText string

var (
	opts []config.Option
)

type cfgData struct {
	InputDir        string
	CacheDir        string
	JobsNum         int
	XMin            *float64
	XMax            *float64
	YMin            *float64
	YMax            *float64
	Resolution      float64
	CRS             string
	VegDir          string
	VegIndex        string
	VegMinYears     int
	PhenologyFile   string
	RangeDir        string
	RangeMatchFile  string
	ElevationFile   string
	ElevLonVar      string
	ElevLatVar      string
	ElevVar         string
	ElevAggFactor   int
	ObsSource       string
	ObsFile         string
	ObsTable        string
	BirdSpecies     []string
	RichnessSpecies []string
	MyHost          string
	MyUser          string
	MyPass          string
	MyDB            string
	OutputFile      string
	OutputFormat    string
	SqliteFile      string
	PgExport        bool
	PgHost          string
	PgUser          string
	PgPass          string
	PgDB            string
	MetricsFile     string
	BatchSize       int
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phenogrid",
	Short: "Builds a unified grid of plant and bird richness",
	Long: `phenogrid places flowering plant ranges, bird observations,
vegetation index and elevation on a common grid and joins them into one
table with a row per grid cell and month.

Settings are read from ~/.config/phenogrid.yaml, the file is created on
the first run.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setLogger(verbose)
	},
	Run: func(cmd *cobra.Command, args []string) {
		version, err := cmd.Flags().GetBool("version")
		if err != nil {
			slog.Error("Cannot get flag", "error", err)
			os.Exit(1)
		}
		if version {
			fmt.Printf("\nversion: %s\nbuild: %s\n\n", phenogrid.Version, phenogrid.Build)
			os.Exit(0)
		}

		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolP("version", "V", false, "Returns version and build date")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Shows debug messages")
}

func setLogger(verbose bool) {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})
	slog.SetDefault(slog.New(handler))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	var homeDir, cfgDir string
	configFile := "phenogrid"

	// Find home directory.
	homeDir, err = os.UserHomeDir()
	if err != nil {
		slog.Error("Cannot find home dir", "error", err)
		os.Exit(1)
	}
	cfgDir = filepath.Join(homeDir, ".config")

	viper.AddConfigPath(cfgDir)
	viper.SetConfigName(configFile)

	configPath := filepath.Join(cfgDir, fmt.Sprintf("%s.yaml", configFile))
	touchConfigFile(configPath)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		slog.Error("Config file phenogrid.yaml not found", "error", err)
		os.Exit(1)
	}
	getOpts()
}

// getOpts imports data from the configuration file. Some of the settings can
// be overriden by command line flags.
func getOpts() []config.Option {
	cfg := cfgData{}
	err := viper.Unmarshal(&cfg)
	if err != nil {
		slog.Error("Cannot unmarshal config file", "error", err)
	}

	if cfg.InputDir != "" {
		opts = append(opts, config.OptInputDir(cfg.InputDir))
	}
	if cfg.CacheDir != "" {
		opts = append(opts, config.OptCacheDir(cfg.CacheDir))
	}
	if cfg.JobsNum != 0 {
		opts = append(opts, config.OptJobsNum(cfg.JobsNum))
	}
	if cfg.XMin != nil && cfg.XMax != nil && cfg.YMin != nil && cfg.YMax != nil {
		opts = append(opts, config.OptExtent(*cfg.XMin, *cfg.XMax, *cfg.YMin, *cfg.YMax))
	}
	if cfg.Resolution != 0 {
		opts = append(opts, config.OptResolution(cfg.Resolution))
	}
	if cfg.CRS != "" {
		opts = append(opts, config.OptCRS(cfg.CRS))
	}
	if cfg.VegDir != "" {
		opts = append(opts, config.OptVegDir(cfg.VegDir))
	}
	if cfg.VegIndex != "" {
		opts = append(opts, config.OptVegIndex(cfg.VegIndex))
	}
	if cfg.VegMinYears != 0 {
		opts = append(opts, config.OptVegMinYears(cfg.VegMinYears))
	}
	if cfg.PhenologyFile != "" {
		opts = append(opts, config.OptPhenologyFile(cfg.PhenologyFile))
	}
	if cfg.RangeDir != "" {
		opts = append(opts, config.OptRangeDir(cfg.RangeDir))
	}
	if cfg.RangeMatchFile != "" {
		opts = append(opts, config.OptRangeMatchFile(cfg.RangeMatchFile))
	}
	if cfg.ElevationFile != "" {
		opts = append(opts, config.OptElevationFile(cfg.ElevationFile))
	}
	if cfg.ElevLonVar != "" && cfg.ElevLatVar != "" && cfg.ElevVar != "" {
		opts = append(opts, config.OptElevVars(cfg.ElevLonVar, cfg.ElevLatVar, cfg.ElevVar))
	}
	if cfg.ElevAggFactor != 0 {
		opts = append(opts, config.OptElevAggFactor(cfg.ElevAggFactor))
	}
	if cfg.ObsSource != "" {
		opts = append(opts, config.OptObsSource(cfg.ObsSource))
	}
	if cfg.ObsFile != "" {
		opts = append(opts, config.OptObsFile(cfg.ObsFile))
	}
	if cfg.ObsTable != "" {
		opts = append(opts, config.OptObsTable(cfg.ObsTable))
	}
	if len(cfg.BirdSpecies) > 0 {
		opts = append(opts, config.OptBirdSpecies(cfg.BirdSpecies))
	}
	if len(cfg.RichnessSpecies) > 0 {
		opts = append(opts, config.OptRichnessSpecies(cfg.RichnessSpecies))
	}
	if cfg.MyHost != "" {
		opts = append(opts, config.OptMyHost(cfg.MyHost))
	}
	if cfg.MyUser != "" {
		opts = append(opts, config.OptMyUser(cfg.MyUser))
	}
	if cfg.MyPass != "" {
		opts = append(opts, config.OptMyPass(cfg.MyPass))
	}
	if cfg.MyDB != "" {
		opts = append(opts, config.OptMyDB(cfg.MyDB))
	}
	if cfg.OutputFile != "" {
		opts = append(opts, config.OptOutputFile(cfg.OutputFile))
	}
	if cfg.OutputFormat != "" {
		opts = append(opts, config.OptOutputFormat(cfg.OutputFormat))
	}
	if cfg.SqliteFile != "" {
		opts = append(opts, config.OptSqliteFile(cfg.SqliteFile))
	}
	if cfg.PgExport {
		opts = append(opts, config.OptPgExport(true))
	}
	if cfg.PgHost != "" {
		opts = append(opts, config.OptPgHost(cfg.PgHost))
	}
	if cfg.PgUser != "" {
		opts = append(opts, config.OptPgUser(cfg.PgUser))
	}
	if cfg.PgPass != "" {
		opts = append(opts, config.OptPgPass(cfg.PgPass))
	}
	if cfg.PgDB != "" {
		opts = append(opts, config.OptPgDB(cfg.PgDB))
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, config.OptMetricsFile(cfg.MetricsFile))
	}
	if cfg.BatchSize != 0 {
		opts = append(opts, config.OptBatchSize(cfg.BatchSize))
	}
	return opts
}

// touchConfigFile checks if config file exists, and if not, it gets created.
func touchConfigFile(configPath string) {
	fileExists, _ := gnsys.FileExists(configPath)
	if fileExists {
		return
	}

	slog.Info("Creating config file", "path", configPath)
	createConfig(configPath)
}

// createConfig creates config file.
func createConfig(path string) {
	err := gnsys.MakeDir(filepath.Dir(path))
	if err != nil {
		slog.Error("Cannot create config dir", "error", err)
		os.Exit(1)
	}

	err = os.WriteFile(path, []byte(configText), 0644)
	if err != nil {
		slog.Error("Cannot write to config file", "error", err)
		os.Exit(1)
	}
}
