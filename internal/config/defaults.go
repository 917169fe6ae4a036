package config

const (
	defaultConfigPath     = "~/.config/lemmekk/config.toml"
	defaultTokensDatabase = "~/.local/share/lemmekk/tokens.db"
	defaultRecentDays     = 30
	defaultCarveBoundary  = CarveBoundaryTrailer
	defaultWorkers        = 1
	defaultSevenZipBinary = "7z"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Carve boundary values accepted by extract.carve_boundary.
const (
	CarveBoundaryTrailer = "trailer"
	CarveBoundaryArchive = "archive"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Extract: Extract{
			CarveBoundary:  defaultCarveBoundary,
			Workers:        defaultWorkers,
			SevenZipBinary: defaultSevenZipBinary,
		},
		Tokens: Tokens{
			Database:   defaultTokensDatabase,
			RecentDays: defaultRecentDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
