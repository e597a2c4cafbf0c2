package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rsarvar1a/riddler/bot"
	"github.com/rsarvar1a/riddler/logging"
	"github.com/rsarvar1a/riddler/marathon"
	"github.com/rsarvar1a/riddler/storage"
)

func main() {
	logging.BoostrapLogger()

	// Load env
	if err := godotenv.Load(); err != nil {
		logging.Log.Debugf("no .env file loaded: %v", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := bot.ReadConfig()
	logging.SetSeverity(config.LogLevel)

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		logging.Log.Fatal("DISCORD_TOKEN is not set")
	}

	// Create storage
	rosterStorage := &storage.YAMLRosterStorage{Dir: config.DataDir}
	attemptStorage := &storage.YAMLAttemptStorage{Dir: config.DataDir, Roster: rosterStorage}

	// Wire the marathon core
	resolver := marathon.NewResolver(config.Owners)
	service := marathon.NewService(rosterStorage, attemptStorage, resolver)

	// Start the bot (blocking)
	b, err := bot.New(config, service, token)
	if err != nil {
		logging.Log.Fatalf("Failed to create bot: %v", err)
	}
	if err := b.Run(); err != nil {
		logging.Log.Fatalf("Bot exited: %v", err)
	}
}
