package main

import (
	"fmt"
	"strings"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	courseID int
	teeName  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search courses by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var teesCmd = &cobra.Command{
	Use:   "tees <query>",
	Short: "List the tees of a course with their ratings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTees,
}

var holesCmd = &cobra.Command{
	Use:   "holes <query>",
	Short: "List par, yardage and handicap for every hole of a tee",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHoles,
}

func init() {
	for _, c := range []*cobra.Command{teesCmd, holesCmd} {
		c.Flags().IntVar(&courseID, "course-id", 0, "Course id from search results (default: first match)")
	}
	holesCmd.Flags().StringVar(&teeName, "tee", "", "Tee name (default: first tee)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	courses, err := searchCourses(cmd, args)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Println(dimStyle.Render("No courses found"))
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d courses", len(courses))))
	for _, c := range courses {
		fmt.Printf("%s %s\n", statStyle.Render(fmt.Sprintf("%6d", c.ID)), subtitleStyle.Render(c.CourseName))
		fmt.Printf("       %s\n", dimStyle.Render(c.ClubName+" · "+c.Location.Address))
	}
	return nil
}

func runTees(cmd *cobra.Command, args []string) error {
	course, err := pickCourse(cmd, args)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(course.CourseName))
	rows := []string{fmt.Sprintf("%-8s %-12s %6s %6s %6s %6s", "GENDER", "TEE", "YARDS", "RATING", "BOGEY", "SLOPE")}
	for _, gt := range course.Tees.All() {
		t := gt.Tee
		rows = append(rows, fmt.Sprintf("%-8s %-12s %6d %6.1f %6.1f %6d",
			gt.Gender, t.TeeName, t.TotalYards, t.CourseRating, t.BogeyRating, t.SlopeRating))
		rows = append(rows, dimStyle.Render(fmt.Sprintf("%-21s front %.1f/%.1f/%d  back %.1f/%.1f/%d", "",
			t.FrontCourseRating, t.FrontBogeyRating, t.FrontSlopeRating,
			t.BackCourseRating, t.BackBogeyRating, t.BackSlopeRating)))
	}
	fmt.Println(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return nil
}

func runHoles(cmd *cobra.Command, args []string) error {
	course, err := pickCourse(cmd, args)
	if err != nil {
		return err
	}
	tee, err := pickTee(course.Tees, teeName)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s · %s tees", course.CourseName, tee.TeeName)))
	rows := []string{fmt.Sprintf("%4s %4s %7s %4s", "HOLE", "PAR", "YARDS", "HCP")}
	for i, h := range tee.Holes {
		rows = append(rows, fmt.Sprintf("%4d %4d %7d %4d", i+1, h.Par, h.Yardage, h.Handicap))
	}
	fmt.Println(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return nil
}

func searchCourses(cmd *cobra.Command, args []string) ([]models.Course, error) {
	e, err := setup()
	if err != nil {
		return nil, err
	}
	client, cleanup := e.searchClient()
	defer cleanup()
	return client.SearchCourses(cmd.Context(), strings.Join(args, " "))
}

func pickCourse(cmd *cobra.Command, args []string) (models.Course, error) {
	courses, err := searchCourses(cmd, args)
	if err != nil {
		return models.Course{}, err
	}
	return selectCourse(courses, courseID)
}

// selectCourse returns the course with id, or the first course when id is zero.
func selectCourse(courses []models.Course, id int) (models.Course, error) {
	for _, c := range courses {
		if id == 0 || c.ID == id {
			return c, nil
		}
	}
	if id != 0 {
		return models.Course{}, fmt.Errorf("course %d not in search results", id)
	}
	return models.Course{}, fmt.Errorf("no courses found")
}

// pickTee finds a tee by case-insensitive name, or returns the first tee when name is empty.
func pickTee(tees models.TeeSet, name string) (models.Tee, error) {
	for _, gt := range tees.All() {
		if name == "" || strings.EqualFold(gt.Tee.TeeName, name) {
			return gt.Tee, nil
		}
	}
	if name != "" {
		return models.Tee{}, fmt.Errorf("tee %q not found", name)
	}
	return models.Tee{}, fmt.Errorf("course has no tees")
}
