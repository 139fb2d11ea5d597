package main

import (
	"os"

	"chat-widget/backend/internal/app"
)

// @title        Chat Widget API
// @version      1.0
// @description  Proxies chat messages to an OpenAI-compatible completion provider.
// @BasePath     /
func main() {
	os.Exit(app.Run())
}
