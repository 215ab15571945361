// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Command almaclient is a set of commands which run against the Alma API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/cu-library/overridefromenv"
	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/subcommand"
	"github.com/cu-library/almaclient/subcommand/analytics/report"
	"github.com/cu-library/almaclient/subcommand/bibs/cleanupcallnumbers"
	"github.com/cu-library/almaclient/subcommand/bibs/items/scanin"
	"github.com/cu-library/almaclient/subcommand/bibs/suppress"
	"github.com/cu-library/almaclient/subcommand/conf/dump"
	"github.com/cu-library/almaclient/subcommand/jobs/run"
	"github.com/cu-library/almaclient/subcommand/sets/members"
)

const (
	// ProjectName is the name of the executable, as displayed to the user in usage and version messages.
	ProjectName = "The Alma Client"

	// EnvPrefix is the prefix for environment variables which override unset flags.
	EnvPrefix = "ALMACLIENT_"
)

// A version flag, which should be overwritten when building using ldflags.
var version = "devel"

func main() {
	// Define the command line flags
	key := flag.String("key", "", "The Alma API key. You can manage your API keys here: https://developers.exlibrisgroup.com/manage/keys/. Required.")
	host := flag.String("host", api.DefaultAlmaAPIHost, "The Alma API host domain name to use.")
	threshold := flag.Int("threshold", api.DefaultThreshold, "The minimum number of API calls remaining before the tool automatically stops working. 0 disables the check.")
	rateLimit := flag.Int("ratelimit", api.DefaultRequestsPerSecond, "The maximum number of API calls per second.")
	retries := flag.Int("retries", 2, "The number of times a call which fails to reach the API is retried.")
	debug := flag.Bool("debug", false, "Log every API call.")
	printVersion := flag.Bool("version", false, "Print the version then exit.")
	printHelp := flag.Bool("help", false, "Print help documentation then exit.")

	// Subcommands this tool understands.
	registry := subcommand.Registry{}
	registry.Register(dump.Config())
	registry.Register(members.Config())
	registry.Register(suppress.Config())
	registry.Register(cleanupcallnumbers.Config())
	registry.Register(scanin.Config())
	registry.Register(run.Config())
	registry.Register(report.Config())

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "%v\n", ProjectName)
		fmt.Fprintf(flag.CommandLine.Output(), "Version %v\n", version)
		fmt.Fprintf(flag.CommandLine.Output(), "%v [FLAGS] subcommand [SUBCOMMAND FLAGS]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "  Environment variables read when flag is unset:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(flag.CommandLine.Output(), "  %v%v\n", EnvPrefix, strings.ToUpper(f.Name))
		})
		fmt.Fprintln(flag.CommandLine.Output(), "")
		fmt.Fprintln(flag.CommandLine.Output(), "Subcommands:")
		fmt.Fprintln(flag.CommandLine.Output(), "")
		names := make([]string, 0, len(registry))
		for name := range registry {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sub := registry[name]
			fmt.Fprintf(flag.CommandLine.Output(), "%v\n", name)
			sub.FlagSet.SetOutput(flag.CommandLine.Output())
			sub.FlagSet.Usage()
			fmt.Fprintln(flag.CommandLine.Output(), "  Environment variables read when flag is unset:")
			sub.FlagSet.VisitAll(func(f *flag.Flag) {
				fmt.Fprintf(flag.CommandLine.Output(), "  %v%v%v\n", EnvPrefix, envName(name), strings.ToUpper(f.Name))
			})
			fmt.Fprintln(flag.CommandLine.Output(), "")
		}
	}

	// Process the flags.
	flag.Parse()

	// Quick exit for help and version flags
	if *printVersion {
		fmt.Printf("%v - Version %v.\n", ProjectName, version)
		os.Exit(0)
	}
	if *printHelp {
		flag.CommandLine.SetOutput(os.Stdout)
		flag.Usage()
		os.Exit(0)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	// If any flags have not been set, see if there are
	// environment variables that set them.
	err := overridefromenv.Override(flag.CommandLine, EnvPrefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("Reading flags from the environment failed.")
	}

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)

	// Check that required flags are set.
	if *key == "" {
		logger.Error().Msg("An Alma API key is required.")
		flag.Usage()
		os.Exit(1)
	}

	// Was a subcommand provided? Was it valid?
	if len(flag.Args()) == 0 {
		logger.Error().Msg("A subcommand is required.")
		flag.Usage()
		os.Exit(1)
	}
	subName := flag.Args()[0]
	sub, valid := registry[subName]
	if !valid {
		logger.Error().Str("subcommand", subName).Msg("Not a valid subcommand.")
		flag.Usage()
		os.Exit(1)
	}

	// Ignore errors; FlagSets are all set for ExitOnError.
	_ = sub.FlagSet.Parse(flag.Args()[1:])
	// If any flags have not been set, see if there are
	// environment variables that set them.
	err = overridefromenv.Override(sub.FlagSet, EnvPrefix+envName(subName))
	if err != nil {
		logger.Fatal().Err(err).Msg("Reading subcommand flags from the environment failed.")
	}
	if sub.ValidateFlags != nil {
		err = sub.ValidateFlags()
		if err != nil {
			logger.Error().Err(err).Str("subcommand", subName).Msg("Invalid flags.")
			sub.FlagSet.Usage()
			os.Exit(1)
		}
	}

	// Our base context, used to derive all other contexts and propagate cancel signals.
	// It is cancelled if SIGINT or SIGTERM are received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the API client.
	c := api.NewClient(*key,
		api.WithHost(*host),
		api.WithThreshold(*threshold),
		api.WithRateLimit(*rateLimit),
		api.WithRetries(*retries),
		api.WithLogger(logger),
	)

	// Ensure the provided key can access the API endpoints it needs to for the requested subcommand.
	err = c.CheckAPIandKey(ctx, sub.ReadAccess, sub.WriteAccess)
	if err != nil {
		stop()
		logger.Fatal().Err(err).Msg("API access check failed.")
	}

	// Run the subcommand.
	err = sub.Run(ctx, c, logger.With().Str("subcommand", subName).Logger())
	if err != nil {
		stop()
		logger.Fatal().Err(err).Str("subcommand", subName).Msg("Subcommand failed.")
	}
}

// envName is the subcommand's part of an environment variable name.
// Dashes aren't allowed in environment variable names.
func envName(subName string) string {
	return strings.ToUpper(strings.ReplaceAll(subName, "-", "_")) + "_"
}
