package config

var defaultConfig = Config{
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Server: Server{
		PrintRoutes: false,
		Port:        3636,
	},
	Storage: Storage{
		SessionPath:   "./session.json",
		ThumbnailPath: "./thumbnails",
		DropPath:      "./drops",
	},
	Import: Import{
		ReadTags:         true,
		AutoStartWatcher: false,
	},
	Thumbnails: Thumbnails{
		Enabled: true,
		Size:    128,
		Quality: 85,
	},
	Search: Search{
		QueueDepth: 8,
	},
}
