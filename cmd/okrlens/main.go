package main

import (
	"okrlens/cmd/handlers"
	"okrlens/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
