package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/naasdev/naas/scripts/internal"
)

// Command represents a script that can be run
type Command struct {
	Name        string
	Description string
	Run         func() error
}

var commands = []Command{
	{
		Name:        "generate-apikey",
		Description: "Generate a new API key",
		Run:         internal.GenerateNewAPIKey,
	},
	{
		Name:        "generate-token",
		Description: "Issue a bearer token for a user",
		Run:         internal.GenerateToken,
	},
	{
		Name:        "seed-catalog",
		Description: "Seed the publication catalog into postgres",
		Run:         internal.SeedCatalog,
	},
}

func main() {
	var (
		listCommands bool
		cmdName      string
		userID       string
		keyName      string
		tokenTTL     string
	)

	flag.BoolVar(&listCommands, "list", false, "List all available commands")
	flag.StringVar(&cmdName, "cmd", "", "Command to run")
	flag.StringVar(&userID, "user-id", "", "User ID for key and token operations")
	flag.StringVar(&keyName, "key-name", "", "Display name for a generated API key")
	flag.StringVar(&tokenTTL, "ttl", "", "Lifetime of a generated token, e.g. 24h")

	flag.Parse()

	if listCommands {
		fmt.Println("Available commands:")
		for _, cmd := range commands {
			fmt.Printf("  %-20s %s\n", cmd.Name, cmd.Description)
		}
		return
	}

	if cmdName == "" {
		log.Fatal("Please specify a command to run using -cmd flag. Use -list to see available commands.")
	}

	_ = godotenv.Load()

	// Set command-specific environment variables
	if userID != "" {
		os.Setenv("USER_ID", userID)
	}
	if keyName != "" {
		os.Setenv("KEY_NAME", keyName)
	}
	if tokenTTL != "" {
		os.Setenv("TOKEN_TTL", tokenTTL)
	}

	for _, cmd := range commands {
		if cmd.Name == cmdName {
			if err := cmd.Run(); err != nil {
				log.Fatalf("Error running command %s: %v", cmdName, err)
			}
			return
		}
	}

	log.Fatalf("Unknown command: %s. Use -list to see available commands.", cmdName)
}
