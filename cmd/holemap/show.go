package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var yardage int

var showCmd = &cobra.Command{
	Use:   "show <course> <course-id> [hole]",
	Short: "Show a saved hole, or every saved hole of a course",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runShow,
}

var geojsonCmd = &cobra.Command{
	Use:   "geojson <course> <course-id> <hole>",
	Short: "Print a saved hole as a GeoJSON feature collection",
	Args:  cobra.ExactArgs(3),
	RunE:  runGeoJSON,
}

func init() {
	showCmd.Flags().IntVar(&yardage, "yardage", 0, "Scorecard yardage to compare the mapped length against")
}

// parseKeyArgs reads course name, course id and an optional hole number.
func parseKeyArgs(args []string) (store.CourseKey, int, error) {
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return store.CourseKey{}, 0, fmt.Errorf("%w: course id %q", models.ErrValidation, args[1])
	}
	course := store.CourseKey{Name: args[0], ID: id}
	if len(args) < 3 {
		return course, 0, nil
	}
	hole, err := strconv.Atoi(args[2])
	if err != nil || hole < 1 {
		return store.CourseKey{}, 0, fmt.Errorf("%w: hole number %q", models.ErrValidation, args[2])
	}
	return course, hole, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	course, hole, err := parseKeyArgs(args)
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	docs, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer docs.Close()
	gw := store.NewGateway(docs, e.log)

	if hole == 0 {
		holes, err := gw.List(cmd.Context(), course)
		if err != nil {
			return err
		}
		if len(holes) == 0 {
			fmt.Println(dimStyle.Render("No holes mapped yet"))
			return nil
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s · %d holes mapped", course.Name, len(holes))))
		for _, doc := range holes {
			printHole(doc, 0)
		}
		return nil
	}

	key := store.Key{Course: course, HoleNumber: hole}
	doc := gw.Load(cmd.Context(), key)
	if doc == nil {
		return fmt.Errorf("%s: %w", key.Path(), store.ErrNotFound)
	}
	printHole(doc, yardage)
	return nil
}

func runGeoJSON(cmd *cobra.Command, args []string) error {
	course, hole, err := parseKeyArgs(args)
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	docs, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer docs.Close()

	key := store.Key{Course: course, HoleNumber: hole}
	doc := store.NewGateway(docs, e.log).Load(cmd.Context(), key)
	if doc == nil {
		return fmt.Errorf("%s: %w", key.Path(), store.ErrNotFound)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(geo.HoleFeatureCollection(doc))
}

// printHole renders a hole summary. A positive scorecard yardage adds the mapped/scorecard
// difference.
func printHole(doc *models.HoleDocument, scorecard int) {
	length := geo.HoleLength(doc)
	rows := []string{
		subtitleStyle.Render(fmt.Sprintf("Hole %d · par %d", doc.HoleNumber, doc.Par)),
		fmt.Sprintf("tee      %s", formatCoord(doc.Tee)),
		fmt.Sprintf("green    %s", formatCoord(doc.Green)),
		fmt.Sprintf("fairway  %d points", len(doc.Fairway)),
		fmt.Sprintf("hazards  %d", len(doc.Hazards)),
		fmt.Sprintf("length   %s", statStyle.Render(fmt.Sprintf("%.0f yd", length))),
	}
	if scorecard > 0 {
		diff := length - float64(scorecard)
		style := successStyle
		switch off := math.Abs(diff) / float64(scorecard); {
		case off > 0.15:
			style = errorStyle
		case off > 0.05:
			style = warnStyle
		}
		rows = append(rows, fmt.Sprintf("card     %d yd (%s)", scorecard, style.Render(fmt.Sprintf("%+.0f", diff))))
	}
	if !doc.CreatedAt.IsZero() {
		rows = append(rows, dimStyle.Render("saved "+doc.CreatedAt.Format("2006-01-02 15:04")))
	}
	fmt.Println(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func formatCoord(c *models.Coordinate) string {
	if c == nil {
		return dimStyle.Render("-")
	}
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}
