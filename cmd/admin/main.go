package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/cmiyc/internal/admin"
)

func main() {
	os.Exit(admin.NewApp(os.Stdout).Run(context.Background(), os.Args[1:]))
}
