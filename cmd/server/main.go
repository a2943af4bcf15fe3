package main

import (
	"github.com/medassist-ai/medassist/backend/internal/server"
	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
