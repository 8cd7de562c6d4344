package main

import (
	"fmt"
	"os"

	"github.com/timmy/jokegen/internal/cli"
	"github.com/timmy/jokegen/internal/logger"
)

func main() {
	logger.SetDefaultLogger(logger.New(&logger.Config{
		Level:       "warn",
		Format:      "text",
		ServiceName: "jokectl",
	}))

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
