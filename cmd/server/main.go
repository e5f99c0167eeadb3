package main

import (
	"codequest/internal/server"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	var opts server.Options

	flagSet := pflag.NewFlagSet("codequest", pflag.ContinueOnError)
	flagSet.StringVar(&opts.EnvFile, "env-file", ".env", "path to a dotenv file; missing files are ignored")
	flagSet.BoolVar(&opts.Migrate, "migrate", true, "apply pending schema migrations on startup")
	flagSet.BoolVar(&opts.Seed, "seed", true, "load the reference catalog into empty tables on startup")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := server.StartGinServer(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
