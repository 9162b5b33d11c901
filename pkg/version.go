package phenogrid

var (
	// Version of the phenogrid. Set during build.
	Version = "v0.1.0"

	// Build timestamp. Set during build.
	Build = "n/a"
)
