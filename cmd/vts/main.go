package main

import (
	"fmt"
	"os"

	"video-transcript/cmd/vts/cmd"
	"video-transcript/internal/config"
)

func main() {
	// Load .env and validate key formats early. Missing keys only warn;
	// the commands that need them fail with a specific message.
	if _, err := config.InitializeConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration warning: %v\n", err)
	}

	cmd.Execute()
}
