/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/ecopia-map/cesium_streamer/pkg"
	"github.com/ecopia-map/cesium_streamer/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cesium_streamer/tools"
	"github.com/golang/glog"
)

const VERSION = "0.4.0"

const logo = `
  ___ ___  ___(_)_   _ _ __ ___      ___| |_ _ __ ___  __ _ _ __ ___   ___ _ __
 / __/ _ \/ __| | | | | '_ ' _ \    / __| __| '__/ _ \/ _' | '_ ' _ \ / _ \ '__|
| (_|  __/\__ \ | |_| | | | | | |   \__ \ |_| | |  __/ (_| | | | | | |  __/ |
 \___\___||___/_|\__,_|_| |_| |_|___|___/\__|_|  \___|\__,_|_| |_| |_|\___|_|
  A progressive 3D Tiles streamer written in golang  |_____|
  Copyright YYYY
`

func main() {
	defer glog.Flush()

	flagsGlobal := tools.ParseFlagsGlobal()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Exitf("Please specify a subcommand [%s].", commands())
	}
	cmd, args := args[0], args[1:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case tools.CommandLoad:
		mainCommandLoad(ctx, args)
	case tools.CommandInspect:
		mainCommandInspect(ctx, args)
	case tools.CommandDecode:
		mainCommandDecode(args)
	case tools.CommandDatasets:
		mainCommandDatasets(ctx, args)
	default:
		glog.Exitf("Unrecognized command [%q]. Command must be one of [%s]", cmd, commands())
	}
}

func commands() string {
	return strings.Join([]string{tools.CommandLoad, tools.CommandInspect, tools.CommandDecode, tools.CommandDatasets}, "|")
}

func mainCommandLoad(ctx context.Context, args []string) {
	flags := tools.ParseFlagsForCommandLoad(args)

	if *flags.Help {
		showHelp()
		return
	}

	// set logging and timestamp logging
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	opts := streamerOptions(&flags.StreamerFlags)
	opts.Command = tools.CommandLoad
	opts.MaxLoadDepth = *flags.MaxLoadDepth
	opts.ConcurrencyLimit = *flags.Concurrency
	opts.OversizeFactor = *flags.OversizeFactor
	opts.Instantiator = tiler.ParseInstantiatorKind(*flags.Instantiator)
	opts.CopyrightInterval = *flags.CopyrightInterval
	opts.MetricsAddr = *flags.MetricsAddr
	opts.StreamerLoadOptions = &tiler.StreamerLoadOptions{
		Output: *flags.Output,
	}

	applyConfigFile(opts, &flags.StreamerFlags)

	// Validate StreamerOptions
	if msg, res := validateOptionsForCommandLoad(opts); !res {
		glog.Exit("Error parsing input parameters: " + msg)
	}
	glog.V(1).Infoln(tools.FmtJSONString(opts))

	defer timeTrack(time.Now(), "streaming")
	err := pkg.NewStreamer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts)).RunStreamer(ctx, opts)

	if err != nil {
		glog.Exit("Error while streaming: ", err)
	} else {
		tools.LogOutput("Streaming Completed")
	}
}

func mainCommandInspect(ctx context.Context, args []string) {
	flags := tools.ParseFlagsForCommandInspect(args)

	if *flags.Help {
		showHelp()
		return
	}
	tools.DisableLogger()

	opts := streamerOptions(&flags.StreamerFlags)
	opts.Command = tools.CommandInspect
	opts.Instantiator = tiler.InstantiatorMemory

	applyConfigFile(opts, &flags.StreamerFlags)

	if msg, res := validateStreamerOptions(opts); !res {
		glog.Exit("Error parsing input parameters: " + msg)
	}

	err := pkg.NewStreamer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts)).Inspect(ctx, opts, *flags.Expand, os.Stdout)
	if err != nil {
		glog.Exit("Error while inspecting: ", err)
	}
}

func mainCommandDecode(args []string) {
	flags := tools.ParseFlagsForCommandDecode(args)

	if *flags.Help {
		showHelp()
		return
	}
	tools.DisableLogger()

	opts := tiler.DefaultStreamerOptions()
	opts.Command = tools.CommandDecode
	opts.Instantiator = tiler.InstantiatorMemory
	opts.StreamerDecodeOptions = &tiler.StreamerDecodeOptions{
		Input:            *flags.Input,
		Output:           *flags.Output,
		FolderProcessing: *flags.FolderProcessing,
		Recursive:        *flags.RecursiveFolderProcessing,
	}

	if _, err := os.Stat(opts.StreamerDecodeOptions.Input); os.IsNotExist(err) {
		glog.Exit("Error parsing input parameters: Input file/folder not found")
	}

	err := pkg.NewStreamer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(&opts)).Decode(opts.StreamerDecodeOptions, os.Stdout)
	if err != nil {
		glog.Exit("Error while decoding: ", err)
	}
}

func mainCommandDatasets(ctx context.Context, args []string) {
	flags := tools.ParseFlagsForCommandDatasets(args)

	if *flags.Help {
		showHelp()
		return
	}
	tools.DisableLogger()

	opts := tiler.DefaultStreamerOptions()
	opts.Command = tools.CommandDatasets
	opts.Instantiator = tiler.InstantiatorMemory
	opts.StreamerCatalogOptions = &tiler.StreamerCatalogOptions{
		Catalog:    *flags.Catalog,
		Prefecture: *flags.Prefecture,
		City:       *flags.City,
		Type:       *flags.Type,
		Format:     *flags.Format,
		Lod:        *flags.Lod,
		Texture:    *flags.Texture,
	}

	if opts.StreamerCatalogOptions.Catalog == "" {
		glog.Exit("Error parsing input parameters: catalog is required")
	}

	err := pkg.NewStreamer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(&opts)).Datasets(ctx, opts.StreamerCatalogOptions, os.Stdout)
	if err != nil {
		glog.Exit("Error while listing datasets: ", err)
	}
}

// Put the shared streamer flags inside a StreamerOptions struct
func streamerOptions(flags *tools.StreamerFlags) *tiler.StreamerOptions {
	opts := tiler.DefaultStreamerOptions()
	opts.TilesetURL = *flags.URL
	opts.APIKey = *flags.APIKey
	opts.SessionID = *flags.Session
	opts.AoiLat = *flags.Lat
	opts.AoiLon = *flags.Lon
	opts.AoiHeight = *flags.Height
	opts.AoiRadius = *flags.Radius
	opts.Srid = *flags.Srid
	opts.ZOffset = *flags.ZOffset
	opts.MaxDepth = *flags.MaxDepth
	opts.MaxNodes = *flags.MaxNodes
	opts.CullMode = tiler.ParseCullMode(*flags.CullMode)
	return &opts
}

// Values from the config file apply only to the flags not given on the command line
func applyConfigFile(opts *tiler.StreamerOptions, flags *tools.StreamerFlags) {
	if *flags.Config == "" {
		return
	}
	if err := tiler.ApplyConfigFile(*flags.Config, opts, flags.ExplicitConfigKey); err != nil {
		glog.Exit("Error reading config file: ", err)
	}
}

// Validates the options shared by the commands reading a tileset
func validateStreamerOptions(opts *tiler.StreamerOptions) (string, bool) {
	if opts.TilesetURL == "" {
		return "url is required", false
	}
	if opts.AoiRadius <= 0 {
		return "radius must be positive", false
	}
	if opts.CullMode == "" {
		return "cull-mode should be either DESTROY or DEACTIVATE", false
	}
	return "", true
}

func validateOptionsForCommandLoad(opts *tiler.StreamerOptions) (string, bool) {
	if msg, res := validateStreamerOptions(opts); !res {
		return msg, res
	}
	if opts.ConcurrencyLimit <= 0 {
		return "concurrency must be positive", false
	}
	if opts.Instantiator == "" {
		return "instantiator should be either FILE or MEMORY", false
	}
	if opts.Instantiator == tiler.InstantiatorFile && opts.StreamerLoadOptions.Output == "" {
		return "output folder is required by the FILE instantiator", false
	}
	return "", true
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("cesium_streamer streams the 3D Tiles around an area of interest, expanding nested tilesets and loading their meshes")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Printf("Usage: cesium_streamer [global flags] <%s> [command flags]\n", commands())
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Println("Command flags are listed by '<command> -help'.")
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
