package config

const (
	defaultConfigPath        = "~/.config/royaltysplit/config.toml"
	defaultProjectConfig     = "royaltysplit.toml"
	defaultListenAddr        = ":8080"
	defaultDBPath            = "./data/royalty.db"
	defaultTokenHours        = 24
	defaultClockSpec         = "0 * * * * *"
	defaultWorkers           = 4
	defaultQueueSize         = 256
	defaultSessionTTLMinutes = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Addr: defaultListenAddr,
		},
		Storage: Storage{
			DBPath: defaultDBPath,
		},
		Auth: Auth{
			TokenHours: defaultTokenHours,
			Required:   true,
		},
		Engine: Engine{
			ClockSpec: defaultClockSpec,
			Workers:   defaultWorkers,
			QueueSize: defaultQueueSize,
		},
		Authoring: Authoring{
			SessionTTLMinutes: defaultSessionTTLMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
