package main

import (
	"os"

	"qwen-console/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
