package mongostore

import "time"

const (
	DefaultServerSelectionTimeout = 5 * time.Second
	DefaultOperationTimeout       = 5 * time.Second
)

// Config holds MongoDB connection settings.
type Config struct {
	URI                    string           `mapstructure:"uri"`
	Database               string           `mapstructure:"database"`
	ServerSelectionTimeout time.Duration    `mapstructure:"server_selection_timeout"`
	OperationTimeout       time.Duration    `mapstructure:"operation_timeout"`
	ShouldDropIndexes      bool             `mapstructure:"should_drop_indexes"`
	CommandLog             CommandLogConfig `mapstructure:"command_log"`
}

// CommandLogConfig selects the driver command events that are logged.
// Commands limits logging to the listed command names; empty logs all.
type CommandLogConfig struct {
	Started   bool     `mapstructure:"started"`
	Succeeded bool     `mapstructure:"succeeded"`
	Failed    bool     `mapstructure:"failed"`
	Commands  []string `mapstructure:"commands"`
}

// DefaultCommandLogConfig logs started and failed commands.
func DefaultCommandLogConfig() CommandLogConfig {
	return CommandLogConfig{Started: true, Failed: true}
}
