package main

import (
	"os"

	"github.com/PascmdeoMvd/Plataforma/internal/cli"
)

// 构建时注入
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
