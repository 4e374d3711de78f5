package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/index"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/spf13/cobra"
)

var reindexWorkers int

var reindexCmd = &cobra.Command{
	Use:   "reindex <course>:<course-id>...",
	Short: "Rebuild the pin index from the stored holes of the given courses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReindex,
}

func init() {
	reindexCmd.Flags().IntVarP(&reindexWorkers, "workers", "w", runtime.NumCPU(), "Number of courses listed concurrently")
}

// parseCourseArg splits "Old Course:1234".
func parseCourseArg(s string) (store.CourseKey, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return store.CourseKey{}, fmt.Errorf("%w: expected <course>:<course-id>, got %q", models.ErrValidation, s)
	}
	id, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return store.CourseKey{}, fmt.Errorf("%w: course id in %q", models.ErrValidation, s)
	}
	return store.CourseKey{Name: s[:i], ID: id}, nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	courses := make([]store.CourseKey, 0, len(args))
	for _, a := range args {
		c, err := parseCourseArg(a)
		if err != nil {
			return err
		}
		courses = append(courses, c)
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

	start := time.Now()
	pins := index.NewHoleIndex()
	holes, err := reindex(cmd.Context(), store.NewGateway(docs, e.log), pins, courses, reindexWorkers)
	if err != nil {
		return err
	}
	took := time.Since(start)

	if err := pins.SaveToFile(indexFile); err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Indexed %d pins from %d holes in %v", pins.Count(), holes, took)))
	if info, err := os.Stat(indexFile); err == nil {
		fmt.Println(dimStyle.Render(fmt.Sprintf("%s: %.1f KB", indexFile, float64(info.Size())/1024)))
	}
	return nil
}

// reindex lists each course with up to workers concurrent requests and indexes every hole
// found. It returns the number of holes indexed.
func reindex(ctx context.Context, gw *store.Gateway, pins *index.HoleIndex, courses []store.CourseKey, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}
	work := make(chan store.CourseKey)
	var (
		mu       sync.Mutex
		total    int
		firstErr error
		wg       sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				holes, err := gw.List(ctx, c)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("list %s: %w", c.DocID(), err)
				}
				total += len(holes)
				mu.Unlock()
				pins.IndexDocuments(c.DocID(), holes)
			}
		}()
	}
	for _, c := range courses {
		work <- c
	}
	close(work)
	wg.Wait()
	return total, firstErr
}
