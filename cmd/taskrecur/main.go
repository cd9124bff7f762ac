package main

import (
	"context"
	"os"

	"github.com/nhle/task-recurrence/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
