package main

import (
	"os"

	"congressdata/cmd/extract/commands"
	"congressdata/internal/components/chrono"
	"congressdata/lib/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext()
	code := commands.Execute(ctx, os.Args[1:], commands.Streams{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, chrono.NewStandardTime())
	stop()
	os.Exit(code)
}
