package config

const (
	defaultConfigPath       = "~/.config/mediaforge/config.toml"
	projectConfigFile       = "mediaforge.toml"
	defaultProfilesFile     = "~/.config/mediaforge/profiles.json"
	defaultSelectionFile    = "~/.local/share/mediaforge/selected_files.json"
	defaultOutputDir        = "~/mediaforge/output"
	defaultLogDir           = "~/.local/share/mediaforge/logs"
	defaultHistoryDB        = "~/.local/share/mediaforge/history.db"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with defaults. Paths are not expanded
// until Load normalizes them.
func Default() Config {
	return Config{
		Paths: Paths{
			ProfilesFile:  defaultProfilesFile,
			SelectionFile: defaultSelectionFile,
			OutputDir:     defaultOutputDir,
			LogDir:        defaultLogDir,
			HistoryDB:     defaultHistoryDB,
		},
		Engine: Engine{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Convert: Convert{
			OnExisting:     OnExistingRename,
			ClearSelection: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
