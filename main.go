package main

import (
	"context"
	"os"

	"github.com/accountpro/cli/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background()))
}
