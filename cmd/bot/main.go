package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/debtkeeper/internal/app"
	"github.com/dmitrijs2005/debtkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/debtkeeper/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	if err := a.RunBot(ctx); err != nil {
		log.Printf("%v", err)
		a.Close()
		os.Exit(1)
	}
}
