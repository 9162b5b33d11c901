package config

import (
	"os"
	"path/filepath"

	"github.com/gnames/phenogrid/pkg/ent/grid"
)

// Config is a struct that holds configuration parameters for the package.
type Config struct {
	// InputDir is a directory with input data. Relative paths of input
	// files are resolved against it.
	InputDir string

	// CacheDir is a directory for the key-value store of range masks.
	CacheDir string

	// FreshCache removes cached range masks before a run.
	FreshCache bool

	// JobsNum is a number of concurrent goroutines for rasterization.
	JobsNum int

	// XMin is the western edge of the grid.
	XMin float64

	// XMax is the eastern edge of the grid.
	XMax float64

	// YMin is the southern edge of the grid.
	YMin float64

	// YMax is the northern edge of the grid.
	YMax float64

	// Resolution is the requested size of a grid cell.
	Resolution float64

	// CRS is a proj4 string of the grid coordinate reference system.
	CRS string

	// VegDir is a directory with per-year vegetation index CSV files.
	VegDir string

	// VegIndex is the tag of the vegetation index to use (NDVI, EVI).
	VegIndex string

	// VegMinYears is the minimal number of years with data for a cell
	// and month.
	VegMinYears int

	// PhenologyFile is a CSV file with flowering months of plants.
	PhenologyFile string

	// RangeDir is a directory with shapefiles of plant ranges.
	RangeDir string

	// RangeMatchFile is a CSV file reporting which ranges were downloaded.
	RangeMatchFile string

	// ElevationFile is a NetCDF file with elevation data.
	ElevationFile string

	// ElevLonVar is a name of the longitude variable in ElevationFile.
	ElevLonVar string

	// ElevLatVar is a name of the latitude variable in ElevationFile.
	ElevLatVar string

	// ElevVar is a name of the elevation variable in ElevationFile.
	ElevVar string

	// ElevAggFactor is a number of pixels to aggregate in each direction
	// before resampling.
	ElevAggFactor int

	// ObsSource is either "csv" or "mysql".
	ObsSource string

	// ObsFile is a CSV file with bird observations.
	ObsFile string

	// ObsTable is a MySQL table with bird observations.
	ObsTable string

	// BirdSpecies are species that get presence columns. If empty, all
	// observed species are used.
	BirdSpecies []string

	// RichnessSpecies are species counted into bird richness. If empty,
	// all presence columns are used.
	RichnessSpecies []string

	// MyHost is a host name for MySQL.
	MyHost string

	// MyUser is a user name for MySQL.
	MyUser string

	// MyPass is a password for MySQL.
	MyPass string

	// MyDB is a database name for MySQL.
	MyDB string

	// OutputFile is a path to the flat output table.
	OutputFile string

	// OutputFormat is one of csv, tsv, compact, pretty.
	OutputFormat string

	// SqliteFile is a path to an SQLite database for the output. If empty,
	// no SQLite output is created.
	SqliteFile string

	// PgExport enables export of the output to PostgreSQL.
	PgExport bool

	// PgHost is a host name for PostgreSQL.
	PgHost string

	// PgUser is a user name for PostgreSQL.
	PgUser string

	// PgPass is a password for PostgreSQL.
	PgPass string

	// PgDB is a database name for PostgreSQL.
	PgDB string

	// MetricsFile is a path to save diagnostic counters in Prometheus text
	// format. If empty, counters are only logged.
	MetricsFile string

	// BatchSize is a number of records to be saved in one transaction.
	BatchSize int
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptInputDir sets a directory with input data.
func OptInputDir(d string) Option {
	return func(cfg *Config) {
		cfg.InputDir = d
	}
}

// OptCacheDir sets a directory for the key-value store.
func OptCacheDir(d string) Option {
	return func(cfg *Config) {
		cfg.CacheDir = d
	}
}

// OptFreshCache removes cached masks before the run.
func OptFreshCache(b bool) Option {
	return func(cfg *Config) {
		cfg.FreshCache = b
	}
}

// OptJobsNum sets parallelism number for concurrent goroutines.
func OptJobsNum(j int) Option {
	return func(cfg *Config) {
		cfg.JobsNum = j
	}
}

// OptExtent sets the extent of the grid.
func OptExtent(xmin, xmax, ymin, ymax float64) Option {
	return func(cfg *Config) {
		cfg.XMin = xmin
		cfg.XMax = xmax
		cfg.YMin = ymin
		cfg.YMax = ymax
	}
}

// OptResolution sets the size of grid cells.
func OptResolution(r float64) Option {
	return func(cfg *Config) {
		cfg.Resolution = r
	}
}

// OptCRS sets the coordinate reference system of the grid.
func OptCRS(s string) Option {
	return func(cfg *Config) {
		cfg.CRS = s
	}
}

// OptVegDir sets the directory with vegetation files.
func OptVegDir(d string) Option {
	return func(cfg *Config) {
		cfg.VegDir = d
	}
}

// OptVegIndex sets the vegetation index tag.
func OptVegIndex(s string) Option {
	return func(cfg *Config) {
		cfg.VegIndex = s
	}
}

// OptVegMinYears sets minimal number of years for vegetation records.
func OptVegMinYears(i int) Option {
	return func(cfg *Config) {
		cfg.VegMinYears = i
	}
}

// OptPhenologyFile sets the phenology table.
func OptPhenologyFile(s string) Option {
	return func(cfg *Config) {
		cfg.PhenologyFile = s
	}
}

// OptRangeDir sets the directory with range shapefiles.
func OptRangeDir(d string) Option {
	return func(cfg *Config) {
		cfg.RangeDir = d
	}
}

// OptRangeMatchFile sets the table of downloaded ranges.
func OptRangeMatchFile(s string) Option {
	return func(cfg *Config) {
		cfg.RangeMatchFile = s
	}
}

// OptElevationFile sets the elevation raster.
func OptElevationFile(s string) Option {
	return func(cfg *Config) {
		cfg.ElevationFile = s
	}
}

// OptElevVars sets names of longitude, latitude and elevation variables.
func OptElevVars(lon, lat, z string) Option {
	return func(cfg *Config) {
		cfg.ElevLonVar = lon
		cfg.ElevLatVar = lat
		cfg.ElevVar = z
	}
}

// OptElevAggFactor sets the aggregation factor of elevation pixels.
func OptElevAggFactor(i int) Option {
	return func(cfg *Config) {
		cfg.ElevAggFactor = i
	}
}

// OptObsSource sets the source of observations ("csv" or "mysql").
func OptObsSource(s string) Option {
	return func(cfg *Config) {
		cfg.ObsSource = s
	}
}

// OptObsFile sets the CSV file with observations.
func OptObsFile(s string) Option {
	return func(cfg *Config) {
		cfg.ObsFile = s
	}
}

// OptObsTable sets the MySQL table with observations.
func OptObsTable(s string) Option {
	return func(cfg *Config) {
		cfg.ObsTable = s
	}
}

// OptBirdSpecies sets species that get presence columns.
func OptBirdSpecies(ss []string) Option {
	return func(cfg *Config) {
		cfg.BirdSpecies = ss
	}
}

// OptRichnessSpecies sets species counted into bird richness.
func OptRichnessSpecies(ss []string) Option {
	return func(cfg *Config) {
		cfg.RichnessSpecies = ss
	}
}

// OptMyHost sets host for MySQL
func OptMyHost(h string) Option {
	return func(cfg *Config) {
		cfg.MyHost = h
	}
}

// OptMyUser sets user for MySQL
func OptMyUser(u string) Option {
	return func(cfg *Config) {
		cfg.MyUser = u
	}
}

// OptMyPass sets password for MySQL
func OptMyPass(p string) Option {
	return func(cfg *Config) {
		cfg.MyPass = p
	}
}

// OptMyDB sets database name for MySQL
func OptMyDB(d string) Option {
	return func(cfg *Config) {
		cfg.MyDB = d
	}
}

// OptOutputFile sets the path of the output table.
func OptOutputFile(s string) Option {
	return func(cfg *Config) {
		cfg.OutputFile = s
	}
}

// OptOutputFormat sets the format of the output table.
func OptOutputFormat(s string) Option {
	return func(cfg *Config) {
		cfg.OutputFormat = s
	}
}

// OptSqliteFile sets the path of an SQLite output database.
func OptSqliteFile(s string) Option {
	return func(cfg *Config) {
		cfg.SqliteFile = s
	}
}

// OptPgExport enables export to PostgreSQL.
func OptPgExport(b bool) Option {
	return func(cfg *Config) {
		cfg.PgExport = b
	}
}

// OptPgHost sets host name for PostgreSQL
func OptPgHost(h string) Option {
	return func(cfg *Config) {
		cfg.PgHost = h
	}
}

// OptPgUser sets user for PostgreSQL
func OptPgUser(u string) Option {
	return func(cfg *Config) {
		cfg.PgUser = u
	}
}

// OptPgPass sets password for PostgreSQL
func OptPgPass(p string) Option {
	return func(cfg *Config) {
		cfg.PgPass = p
	}
}

// OptPgDB sets database name for PostgreSQL
func OptPgDB(d string) Option {
	return func(cfg *Config) {
		cfg.PgDB = d
	}
}

// OptMetricsFile sets the file for diagnostic counters.
func OptMetricsFile(s string) Option {
	return func(cfg *Config) {
		cfg.MetricsFile = s
	}
}

// OptBatchSize sets the number of records saved in one transaction.
func OptBatchSize(i int) Option {
	return func(cfg *Config) {
		cfg.BatchSize = i
	}
}

// Path resolves a relative path against InputDir.
func (cfg Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.InputDir, p)
}

// Grid creates the grid described by the configuration.
func (cfg Config) Grid() (grid.Grid, error) {
	return grid.New(cfg.XMin, cfg.XMax, cfg.YMin, cfg.YMax, cfg.Resolution, cfg.CRS)
}

func New(opts ...Option) Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	cacheDir = filepath.Join(cacheDir, "phenogrid")

	res := Config{
		InputDir:       ".",
		CacheDir:       filepath.Join(cacheDir, "masks"),
		JobsNum:        4,
		XMin:           -125,
		XMax:           -103,
		YMin:           25,
		YMax:           49,
		Resolution:     0.339,
		CRS:            grid.DefaultCRS,
		VegDir:         "vegetation",
		VegIndex:       "NDVI",
		VegMinYears:    2,
		PhenologyFile:  "phenology.csv",
		RangeDir:       "ranges",
		RangeMatchFile: "ranges/matches.csv",
		ElevationFile:  "elevation.nc",
		ElevLonVar:     "lon",
		ElevLatVar:     "lat",
		ElevVar:        "z",
		ElevAggFactor:  10,
		ObsSource:      "csv",
		ObsFile:        "observations.csv",
		ObsTable:       "observations",
		MyHost:         "localhost",
		MyUser:         "root",
		MyDB:           "birds",
		OutputFile:     "phenogrid.csv",
		OutputFormat:   "csv",
		PgHost:         "0.0.0.0",
		PgUser:         "postgres",
		PgPass:         "postgres",
		PgDB:           "phenogrid",
		BatchSize:      50_000,
	}

	for _, opt := range opts {
		opt(&res)
	}

	return res
}
