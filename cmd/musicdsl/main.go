// Command musicdsl runs a MusicDSL source file and serves the resulting
// MusicResult stream to a piano-roll visualizer over websockets.
package main

import (
	"fmt"
	"os"

	"github.com/mzacho/musicdsl"
	"github.com/mzacho/musicdsl/control"
	"github.com/mzacho/musicdsl/core"
	"github.com/mzacho/musicdsl/internal/help"
	"github.com/mzacho/musicdsl/notify"
	"github.com/mzacho/musicdsl/transport"
	"github.com/spf13/viper"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: musicdsl <source-file>")
		return int(core.ExitSyntaxError)
	}
	if os.Args[1] == "-h" || os.Args[1] == "--help" {
		fmt.Print(help.Text())
		return int(core.ExitOK)
	}

	cfg := loadConfig()
	notify.SetDebug(cfg.Debug)

	source, err := os.ReadFile(os.Args[1])
	if err != nil {
		notify.Print(notify.Error(err))
		return int(core.ExitSyntaxError)
	}

	hub := transport.NewHub(cfg.ListenAddr)
	go func() {
		if err := hub.ListenAndServe(); err != nil {
			notify.Print(notify.Error(err))
		}
	}()

	relay := control.NewRelay(hub)
	relay.Start()

	_, status, err := musicdsl.ExecuteProgram(string(source), relay)
	if err != nil {
		notify.Print(notify.Error(err))
	}
	return int(status)
}

// config is the subset of runtime settings MusicDSL's ambient stack
// exposes (spec.md's language core itself takes no configuration): the
// visualization listen address and the diagnostic debug level. Defaults
// are layered under environment variables and an optional config file,
// viper's standard precedence.
type config struct {
	ListenAddr string
	Debug      bool
}

func loadConfig() config {
	v := viper.New()
	v.SetDefault("listen_addr", ":7070")
	v.SetDefault("debug", false)
	v.SetEnvPrefix("musicdsl")
	v.AutomaticEnv()
	v.SetConfigName("musicdsl")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // absent config file is not an error

	return config{
		ListenAddr: v.GetString("listen_addr"),
		Debug:      v.GetBool("debug"),
	}
}
