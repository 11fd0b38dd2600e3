package main

import (
	"os"

	"qwen-console/internal/app"
)

// @title           Qwen Console API
// @version         1.0
// @description     Sessions, connection management and math-aware formatting in front of a Qwen chat completion API.
// @host            localhost:8000
// @BasePath        /api
func main() {
	os.Exit(app.Run())
}
