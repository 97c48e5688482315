package config

// Config holds the application configuration.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	Server     Server     `yaml:"server"`
	Storage    Storage    `yaml:"storage"`
	Import     Import     `yaml:"import"`
	Thumbnails Thumbnails `yaml:"thumbnails"`
	Search     Search     `yaml:"search"`
}

// Storage holds the paths the engine persists state under.
type Storage struct {
	SessionPath   string `yaml:"sessionPath" validate:"required"`
	ThumbnailPath string `yaml:"thumbnailPath" validate:"required"`
	DropPath      string `yaml:"dropPath"`
}

// Server holds the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Import holds the configuration for bringing files into playlists.
type Import struct {
	ReadTags         bool `yaml:"read_tags"`
	AutoStartWatcher bool `yaml:"auto_start_watcher"`
}

// Thumbnails holds configuration for embedded artwork thumbnails.
type Thumbnails struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	Quality int  `yaml:"quality"`
}

// Search holds the configuration for the background filter pass.
type Search struct {
	QueueDepth int `yaml:"queue_depth"`
}
