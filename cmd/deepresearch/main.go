package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Credentials like OPENAI_API_KEY may live in a local .env.
	_ = godotenv.Load()

	root := &cobra.Command{Use: "deepresearch"}
	root.AddCommand(serveCMD(), researchCMD(), planCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
