package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/spf13/cobra"
)

var nearbyCount int

var nearbyCmd = &cobra.Command{
	Use:   "nearby <lat> <lng>",
	Short: "List the mapped tees and greens closest to a position",
	Args:  cobra.ExactArgs(2),
	RunE:  runNearby,
}

func init() {
	nearbyCmd.Flags().IntVarP(&nearbyCount, "count", "n", 5, "Number of pins to list")
	pinsCmd.Flags().Float64Var(&pinsSpan, "span", 0.05, "Region span in degrees")
	pinsCmd.Flags().BoolVar(&pinsJSON, "json", false, "Output results as JSON")
}

func runNearby(cmd *cobra.Command, args []string) error {
	center, err := parseLatLng(args)
	if err != nil {
		return err
	}

	pins, err := loadIndex(indexFile)
	if err != nil {
		return err
	}
	if pins.Count() == 0 {
		fmt.Println(dimStyle.Render("Index is empty, map a hole first"))
		return nil
	}

	near := pins.Nearest(center, nearbyCount)
	fmt.Println(titleStyle.Render(fmt.Sprintf("%d nearest of %d pins", len(near), pins.Count())))
	for _, n := range near {
		fmt.Printf("%s  %-6s hole %-2d %s\n",
			statStyle.Render(fmt.Sprintf("%8.3f km", n.DistanceKm)),
			n.Pin.Kind, n.Pin.HoleNumber, dimStyle.Render(n.Pin.Course))
	}
	return nil
}

var (
	pinsSpan float64
	pinsJSON bool
)

var pinsCmd = &cobra.Command{
	Use:   "pins <lat> <lng>",
	Short: "List the indexed pins inside a square region",
	Args:  cobra.ExactArgs(2),
	RunE:  runPins,
}

func runPins(cmd *cobra.Command, args []string) error {
	center, err := parseLatLng(args)
	if err != nil {
		return err
	}
	pins, err := loadIndex(indexFile)
	if err != nil {
		return err
	}

	found := pins.QueryRegion(geo.RegionAround(center, pinsSpan))
	if pinsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("%d pins within %.4f°", len(found), pinsSpan)))
	for _, p := range found {
		fmt.Printf("%s  %.6f, %.6f\n", p.ID, p.Location.Latitude, p.Location.Longitude)
	}
	return nil
}

func parseLatLng(args []string) (models.Coordinate, error) {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: latitude %q", models.ErrValidation, args[0])
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: longitude %q", models.ErrValidation, args[1])
	}
	return models.Coordinate{Latitude: lat, Longitude: lng}, nil
}
