package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/debtkeeper/internal/app"
	"github.com/dmitrijs2005/debtkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/debtkeeper/internal/config"
	"github.com/dmitrijs2005/debtkeeper/internal/flagx"
)

// identityFlag reads -u, the user to act as. Other flags belong to config.
func identityFlag() string {
	var identity string
	fs := flag.NewFlagSet("identity", flag.ContinueOnError)
	fs.StringVar(&identity, "u", "", "act as this user")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-u"}))
	return identity
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	if err := a.RunConsole(ctx, os.Stdin, os.Stdout, identityFlag()); err != nil {
		log.Printf("%v", err)
	}
}
