package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
	"github.com/ironsheep/ball-locator-mcp/internal/detection"
	"github.com/ironsheep/ball-locator-mcp/internal/imaging"
	"github.com/ironsheep/ball-locator-mcp/internal/locate"
	"github.com/ironsheep/ball-locator-mcp/internal/lsq"
)

// Candidate sources.
const (
	DetectorHough = "HOUGH"
	DetectorBoxes = "BOXES"
)

// Refinement solvers.
const (
	SolverLM         = "lm"
	SolverNelderMead = "nelder-mead"
)

// maxFileSize bounds config documents read from disk.
const maxFileSize = 1 << 20

// Config is the detector configuration document. Section and key names
// follow the stock JSON layout, so existing documents load unchanged.
//
// Config is a plain value: copies are independent and safe to hand to
// concurrent callers.
type Config struct {
	// Detector selects the candidate source, DetectorHough or DetectorBoxes.
	Detector string `json:"Detector"`

	YOLO         BoxSection     `json:"YOLO"`
	GaussianBlur BlurSection    `json:"GaussianBlur"`
	Canny        CannySection   `json:"Canny"`
	Dilate       DilateSection  `json:"Dilate"`
	HoughCircles HoughSection   `json:"HoughCircles"`
	FindContours ContourSection `json:"FindContours"`
	ShowTargets  TargetsSection `json:"ShowTargets"`
	Locate       LocateSection  `json:"Locate"`
}

// BoxSection filters boxes from an external detector.
type BoxSection struct {
	ClassID       int     `json:"classId"`
	MinConfidence float64 `json:"minConfidence"`
}

type BlurSection struct {
	KSize  int     `json:"ksize"`
	SigmaX float64 `json:"sigmaX"`
}

type CannySection struct {
	Threshold1 float64 `json:"threshold1"`
	Threshold2 float64 `json:"threshold2"`
}

type DilateSection struct {
	Kernel     int `json:"kernel"`
	Iterations int `json:"iterations"`
}

type HoughSection struct {
	DP        float64 `json:"dp"`
	MinDist   float64 `json:"minDist"`
	Param1    float64 `json:"param1"`
	Param2    int     `json:"param2"`
	MinRadius int     `json:"minRadius"`
	MaxRadius int     `json:"maxRadius"`
}

type ContourSection struct {
	Points      int     `json:"points"`
	MinRelScale float64 `json:"minRelScale"`
	MaxRelScale float64 `json:"maxRelScale"`
}

type TargetsSection struct {
	Points int `json:"points"`
}

// LocateSection tunes the 3D solve.
type LocateSection struct {
	// Solver is SolverLM or SolverNelderMead.
	Solver string `json:"solver"`

	// MaxIterations bounds Levenberg-Marquardt iterations. Zero uses the
	// solver default.
	MaxIterations int `json:"maxIterations"`

	// ViewRayTolerance is the allowed view-ray inversion residual in pixels.
	ViewRayTolerance float64 `json:"viewRayTolerance"`

	// CheckViewRays fails a candidate whose inversion misses ViewRayTolerance.
	CheckViewRays bool `json:"checkViewRays"`

	// Fit is "first" or "transverse".
	Fit string `json:"fit"`

	CheckRefinement bool    `json:"checkRefinement"`
	RefineTolerance float64 `json:"refineTolerance"`

	// Workers bounds concurrent candidates. Zero means GOMAXPROCS.
	Workers int `json:"workers"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Detector:     DetectorHough,
		YOLO:         BoxSection{ClassID: detection.SportsBallClass, MinConfidence: 0.1},
		GaussianBlur: BlurSection{KSize: 5, SigmaX: 0},
		Canny:        CannySection{Threshold1: 125, Threshold2: 96},
		Dilate:       DilateSection{Kernel: 8, Iterations: 3},
		HoughCircles: HoughSection{DP: 1, MinDist: 600, Param1: 30, Param2: 17, MinRadius: 50, MaxRadius: 200},
		FindContours: ContourSection{Points: 30, MinRelScale: 0.75, MaxRelScale: 1.25},
		ShowTargets:  TargetsSection{Points: 20},
		Locate: LocateSection{
			Solver:           SolverLM,
			ViewRayTolerance: camera.DefaultTolerance,
			Fit:              locate.FitFirstRay.String(),
			RefineTolerance:  1e-3,
		},
	}
}

// Load reads a configuration document. Keys missing from the document keep
// their defaults. A missing file is not an error: it is logged and the
// defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Config file %s not found, using defaults", cleanPath)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Detector, _ = ParseDetector(cfg.Detector)
	return cfg, nil
}

// Save writes the configuration as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks every tunable against its range, then the derived
// parameter sets.
func (c Config) Validate() error {
	if _, err := ParseDetector(c.Detector); err != nil {
		return err
	}
	for _, l := range c.Limits() {
		if l.Value < l.Min || l.Value > l.Max {
			return fmt.Errorf("%s must be between %g and %g, got %g", l.Name, l.Min, l.Max, l.Value)
		}
	}
	if err := c.CannyParams().Validate(); err != nil {
		return err
	}
	if err := c.HoughParams().Validate(); err != nil {
		return err
	}
	opts, err := c.LocateOptions()
	if err != nil {
		return err
	}
	return opts.Validate()
}

// ParseDetector normalizes a detector name. "YOLO" is accepted for boxes.
func ParseDetector(s string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case DetectorHough:
		return DetectorHough, nil
	case DetectorBoxes, "YOLO":
		return DetectorBoxes, nil
	}
	return "", fmt.Errorf("unknown detector %q (want %q or %q)", s, DetectorHough, DetectorBoxes)
}

// CannyParams returns the edge map settings.
func (c Config) CannyParams() imaging.CannyParams {
	return imaging.CannyParams{
		KernelSize: c.GaussianBlur.KSize,
		Sigma:      c.GaussianBlur.SigmaX,
		Threshold1: c.Canny.Threshold1,
		Threshold2: c.Canny.Threshold2,
	}
}

// HoughParams returns the circle detector settings.
func (c Config) HoughParams() detection.HoughParams {
	h := c.HoughCircles
	return detection.HoughParams{
		DP:        h.DP,
		MinDist:   h.MinDist,
		Param1:    h.Param1,
		Param2:    h.Param2,
		MinRadius: h.MinRadius,
		MaxRadius: h.MaxRadius,
		Dilate:    detection.DilateParams{Kernel: c.Dilate.Kernel, Iterations: c.Dilate.Iterations},
	}
}

// BoxFilter returns the external detector box filter.
func (c Config) BoxFilter() detection.BoxFilter {
	return detection.BoxFilter{MinConfidence: c.YOLO.MinConfidence, ClassID: c.YOLO.ClassID}
}

// LocateOptions returns the locator settings.
func (c Config) LocateOptions() (locate.Options, error) {
	fit, err := locate.ParseFitStrategy(c.Locate.Fit)
	if err != nil {
		return locate.Options{}, err
	}
	solver, err := c.solver()
	if err != nil {
		return locate.Options{}, err
	}

	opts := locate.DefaultOptions()
	opts.MinRelScale = c.FindContours.MinRelScale
	opts.MaxRelScale = c.FindContours.MaxRelScale
	opts.ContourPoints = c.FindContours.Points
	opts.ReprojectPoints = c.ShowTargets.Points
	opts.Inverse = camera.InverseOptions{
		Tolerance:        c.Locate.ViewRayTolerance,
		CheckConvergence: c.Locate.CheckViewRays,
		Solver:           solver,
	}
	opts.Fit = fit
	opts.Solver = solver
	opts.CheckRefinement = c.Locate.CheckRefinement
	opts.RefineTolerance = c.Locate.RefineTolerance
	opts.Workers = c.Locate.Workers
	return opts, nil
}

func (c Config) solver() (lsq.Solver, error) {
	switch strings.ToLower(c.Locate.Solver) {
	case "", SolverLM:
		return &lsq.LevenbergMarquardt{MaxIterations: c.Locate.MaxIterations}, nil
	case SolverNelderMead:
		return &lsq.Minimizer{}, nil
	}
	return nil, fmt.Errorf("unknown solver %q (want %q or %q)", c.Locate.Solver, SolverLM, SolverNelderMead)
}
