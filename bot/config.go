package bot

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/rsarvar1a/riddler/logging"
)

type Config struct {
	BotConfig
	StorageConfig
}

type BotConfig struct {
	HomeGuild string
	LogLevel  string
	Owners    []string
}

type StorageConfig struct {
	DataDir string
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		BotConfig: BotConfig{
			HomeGuild: viper.GetString("bot.home_guild"),
			LogLevel:  getStringOrDefault("bot.log_level", "info"),
			Owners:    viper.GetStringSlice("bot.owners"),
		},
		StorageConfig: StorageConfig{
			DataDir: getStringOrDefault("storage.data_dir", "data/marathon"),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
