package main

import (
	"context"
	"log"
	"os"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/buildinfo"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cli"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
