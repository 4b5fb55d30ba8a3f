package config

import (
	"fmt"
	"math"
	"strings"
)

// Limit describes one numeric tunable: its current value and allowed range.
type Limit struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type tunable struct {
	name     string
	min, max float64
	integer  bool
	get      func(*Config) float64
	set      func(*Config, float64)
}

func intField(name string, min, max float64, at func(*Config) *int) tunable {
	return tunable{
		name: name, min: min, max: max, integer: true,
		get: func(c *Config) float64 { return float64(*at(c)) },
		set: func(c *Config, v float64) { *at(c) = int(v) },
	}
}

func floatField(name string, min, max float64, at func(*Config) *float64) tunable {
	return tunable{
		name: name, min: min, max: max,
		get: func(c *Config) float64 { return *at(c) },
		set: func(c *Config, v float64) { *at(c) = v },
	}
}

var tunables = []tunable{
	intField("YOLO.classId", -1, 1000, func(c *Config) *int { return &c.YOLO.ClassID }),
	floatField("YOLO.minConfidence", 0, 1, func(c *Config) *float64 { return &c.YOLO.MinConfidence }),
	intField("GaussianBlur.ksize", 1, 20, func(c *Config) *int { return &c.GaussianBlur.KSize }),
	floatField("GaussianBlur.sigmaX", 0, 20, func(c *Config) *float64 { return &c.GaussianBlur.SigmaX }),
	floatField("Canny.threshold1", 0, 255, func(c *Config) *float64 { return &c.Canny.Threshold1 }),
	floatField("Canny.threshold2", 0, 255, func(c *Config) *float64 { return &c.Canny.Threshold2 }),
	intField("Dilate.kernel", 1, 20, func(c *Config) *int { return &c.Dilate.Kernel }),
	intField("Dilate.iterations", 1, 50, func(c *Config) *int { return &c.Dilate.Iterations }),
	floatField("HoughCircles.dp", 1, 10, func(c *Config) *float64 { return &c.HoughCircles.DP }),
	floatField("HoughCircles.minDist", 10, 1000, func(c *Config) *float64 { return &c.HoughCircles.MinDist }),
	floatField("HoughCircles.param1", 0, 255, func(c *Config) *float64 { return &c.HoughCircles.Param1 }),
	intField("HoughCircles.param2", 1, 100, func(c *Config) *int { return &c.HoughCircles.Param2 }),
	intField("HoughCircles.minRadius", 0, 1000, func(c *Config) *int { return &c.HoughCircles.MinRadius }),
	intField("HoughCircles.maxRadius", 0, 1000, func(c *Config) *int { return &c.HoughCircles.MaxRadius }),
	intField("FindContours.points", 5, 360, func(c *Config) *int { return &c.FindContours.Points }),
	floatField("FindContours.minRelScale", 0, 1, func(c *Config) *float64 { return &c.FindContours.MinRelScale }),
	floatField("FindContours.maxRelScale", 1, 3, func(c *Config) *float64 { return &c.FindContours.MaxRelScale }),
	intField("ShowTargets.points", 0, 360, func(c *Config) *int { return &c.ShowTargets.Points }),
	intField("Locate.maxIterations", 0, 10000, func(c *Config) *int { return &c.Locate.MaxIterations }),
	floatField("Locate.viewRayTolerance", 0, 10, func(c *Config) *float64 { return &c.Locate.ViewRayTolerance }),
	floatField("Locate.refineTolerance", 0, 1000, func(c *Config) *float64 { return &c.Locate.RefineTolerance }),
	intField("Locate.workers", 0, 256, func(c *Config) *int { return &c.Locate.Workers }),
}

// Limits lists every numeric tunable with its range, in document order.
func (c Config) Limits() []Limit {
	out := make([]Limit, 0, len(tunables))
	for _, t := range tunables {
		out = append(out, Limit{Name: t.name, Value: t.get(&c), Min: t.min, Max: t.max})
	}
	return out
}

// With returns a copy of c with the named tunable set to v. Names are
// "Section.key" as listed by Limits and match case-insensitively. The
// copy must pass Validate.
func (c Config) With(name string, v float64) (Config, error) {
	for _, t := range tunables {
		if !strings.EqualFold(t.name, name) {
			continue
		}
		if math.IsNaN(v) || v < t.min || v > t.max {
			return c, fmt.Errorf("%s must be between %g and %g, got %g", t.name, t.min, t.max, v)
		}
		if t.integer && v != math.Trunc(v) {
			return c, fmt.Errorf("%s must be an integer, got %g", t.name, v)
		}
		next := c
		t.set(&next, v)
		if err := next.Validate(); err != nil {
			return c, err
		}
		return next, nil
	}
	return c, fmt.Errorf("unknown setting %q", name)
}
