package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/1F47E/golf-hole-mapper/pkg/config"
	"github.com/1F47E/golf-hole-mapper/pkg/index"
	"github.com/1F47E/golf-hole-mapper/pkg/locate"
	"github.com/1F47E/golf-hole-mapper/pkg/mapper"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/1F47E/golf-hole-mapper/pkg/viewport"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var mapCmd = &cobra.Command{
	Use:   "map <script.yaml>",
	Short: "Replay a tap script against a hole and save the result",
	Long: `Replays a YAML tap script through a mapping session: the saved hole is loaded,
the camera is framed, taps are recorded per mode and the hole is exported.

  course: Old Course
  course_id: 1234
  hole: 1
  location: {latitude: 36.4801, longitude: -86.8402}   # optional device position
  steps:
    - mode: tee
      tap: [{latitude: 36.4801, longitude: -86.8402}]
    - mode: hazard
      tap: [...]
      finish: true`,
	Args: cobra.ExactArgs(1),
	RunE: runMap,
}

// tapScript is a recorded mapping session.
type tapScript struct {
	Course   string             `yaml:"course"`
	CourseID int                `yaml:"course_id"`
	Hole     int                `yaml:"hole"`
	Location *models.Coordinate `yaml:"location"`
	Steps    []scriptStep       `yaml:"steps"`
}

// scriptStep switches mode when Mode is set, taps every point, then finishes the hazard
// when Finish is set.
type scriptStep struct {
	Mode   string              `yaml:"mode"`
	Tap    []models.Coordinate `yaml:"tap"`
	Finish bool                `yaml:"finish"`
}

func loadScript(path string) (*tapScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s tapScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse script: %w", models.ErrValidation, err)
	}
	return &s, nil
}

func (s *tapScript) key() store.Key { return store.NewKey(s.Course, s.CourseID, s.Hole) }

// replay applies the steps in order. A rejected hazard is reported but does not stop
// the replay.
func (s *tapScript) replay(sess *mapper.Session, log *slog.Logger) error {
	for i, step := range s.Steps {
		if step.Mode != "" {
			mode, err := models.ParseCaptureMode(step.Mode)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			if err := sess.SetMode(mode); err != nil {
				return err
			}
		}
		for _, p := range step.Tap {
			if err := sess.Tap(p); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if step.Finish {
			if err := sess.FinishHazard(); err != nil {
				if !errors.Is(err, models.ErrValidation) {
					return err
				}
				log.Warn("hazard_rejected", "step", i+1, "err", err)
			}
		}
	}
	return nil
}

func runMap(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	script, err := loadScript(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	docs, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer docs.Close()

	pins, err := loadIndex(indexFile)
	if err != nil {
		return err
	}

	doc, cam, err := mapHole(ctx, script, docs, pins, e.cfg.Map, e.log)
	if err != nil {
		return err
	}
	if err := pins.SaveToFile(indexFile); err != nil {
		e.log.Warn("index_save_failed", "file", indexFile, "err", err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Saved %s", script.key().Path())))
	printHole(doc, 0)
	fmt.Println(dimStyle.Render(fmt.Sprintf("camera moves: %d, final center %.5f, %.5f",
		cam.Moves(), cam.Region().Latitude, cam.Region().Longitude)))
	return nil
}

// mapHole runs a whole session for script against a headless camera.
func mapHole(ctx context.Context, script *tapScript, docs store.DocumentStore, pins *index.HoleIndex,
	m config.MapConfig, log *slog.Logger) (*models.HoleDocument, *viewport.LogCamera, error) {
	cam := viewport.NewLogCamera(log)
	vopts := viewport.DefaultOptions()
	vopts.SettleDelay = m.SettleDelay
	vopts.RegionPadding = m.FitPadding
	vopts.DefaultRegion = m.DefaultRegion

	mopts := mapper.DefaultOptions()
	mopts.ZoomMultiplier = m.ZoomMultiplier
	mopts.Locate.Timeout = m.LocationTimeout

	var loc locate.Provider
	if script.Location != nil {
		loc = locate.Static(*script.Location)
	}

	sess, err := mapper.NewSession(script.key(), mapper.Deps{
		Gateway:    store.NewGateway(docs, log),
		Controller: viewport.NewController(cam, vopts, log),
		Location:   loc,
		Index:      pins,
		Log:        log,
	}, mopts)
	if err != nil {
		return nil, nil, err
	}
	defer sess.Close()

	if _, err := sess.Open(ctx); err != nil {
		return nil, nil, err
	}
	if err := script.replay(sess, log); err != nil {
		return nil, nil, err
	}
	if _, err := sess.FitToAll(ctx); err != nil {
		log.Warn("fit_failed", "err", err)
	}
	doc, err := sess.Export(ctx)
	if err != nil {
		return nil, nil, err
	}
	return doc, cam, nil
}

// loadIndex reads the pin index file, starting empty when it does not exist yet.
func loadIndex(path string) (*index.HoleIndex, error) {
	pins := index.NewHoleIndex()
	if err := pins.LoadFromFile(path); err != nil {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return pins, nil
		}
		return nil, err
	}
	return pins, nil
}
