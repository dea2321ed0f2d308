// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/models"
)

var addCmd = &cobra.Command{
	Use:   "add <name> <lon> <lat>",
	Short: "Add a point to both SRID tables",
	Long: `Inserts a named WGS 84 point and its Web Mercator twin in one
transaction, then prints the point in both representations.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("longitude %q: not a number", args[1])
		}
		lat, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("latitude %q: not a number", args[2])
		}
		if lon < -180 || lon > 180 {
			return fmt.Errorf("longitude %v out of range [-180, 180]", lon)
		}
		if lat < -90 || lat > 90 {
			return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
		}

		ctx, cancel := signalContext()
		defer cancel()

		db, err := connectLab(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.AddLocation(ctx, args[0], lon, lat)
		if err != nil {
			return err
		}
		logging.Info().Int64("id", id).Str("name", args[0]).Msg("Location added")

		result, err := db.TransformPoint(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var listCmd = &cobra.Command{
	Use:       "list [4326|3857|all]",
	Short:     "List stored points as WKT",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"4326", "3857", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "all"
		if len(args) == 1 {
			which = args[0]
		}
		var srids []int
		switch which {
		case "4326":
			srids = []int{4326}
		case "3857":
			srids = []int{3857}
		case "all":
			srids = []int{4326, 3857}
		default:
			return fmt.Errorf("srid %q: must be 4326, 3857, or all", which)
		}

		ctx, cancel := signalContext()
		defer cancel()

		db, err := connectLab(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		out := make(map[string][]models.Location, len(srids))
		for _, srid := range srids {
			locations, err := db.ListLocations(ctx, srid, 0, 0)
			if err != nil {
				return err
			}
			out[fmt.Sprintf("srid_%d", srid)] = locations
		}
		return printJSON(out)
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform <id>",
	Short: "Show a stored point in both SRIDs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id < 1 {
			return fmt.Errorf("id %q: must be a positive integer", args[0])
		}

		ctx, cancel := signalContext()
		defer cancel()

		db, err := connectLab(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := db.TransformPoint(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(transformCmd)
}
