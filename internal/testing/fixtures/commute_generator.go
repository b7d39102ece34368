package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Sample is one current/baseline pair for a generated commute log
type Sample struct {
	Current  float64
	Baseline float64
}

// CommuteDataGenerator writes commute logs and config files for tests
type CommuteDataGenerator struct {
	baseDir string
}

// NewCommuteDataGenerator creates a new generator rooted at baseDir
func NewCommuteDataGenerator(baseDir string) *CommuteDataGenerator {
	return &CommuteDataGenerator{
		baseDir: baseDir,
	}
}

// GenerateLog writes one line per sample, one minute apart from start
func (g *CommuteDataGenerator) GenerateLog(name string, start time.Time, samples []Sample) (string, error) {
	var b strings.Builder
	for i, s := range samples {
		ts := start.Add(time.Duration(i) * time.Minute).Unix()
		fmt.Fprintf(&b, "%d,%s,%s\n", ts,
			strconv.FormatFloat(s.Current, 'f', -1, 64),
			strconv.FormatFloat(s.Baseline, 'f', -1, 64))
	}
	return g.write(name, b.String())
}

// GenerateRushHour writes a log that ramps from free flowing to heavily
// delayed and back over n samples
func (g *CommuteDataGenerator) GenerateRushHour(name string, start time.Time, n int) (string, error) {
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		peak := n / 2
		dist := i - peak
		if dist < 0 {
			dist = -dist
		}
		delay := float64(peak-dist) * 2
		if delay < 0 {
			delay = 0
		}
		samples = append(samples, Sample{Current: 22 + delay, Baseline: 22})
	}
	return g.GenerateLog(name, start, samples)
}

// GenerateConfig writes a config file with the given content
func (g *CommuteDataGenerator) GenerateConfig(name, content string) (string, error) {
	return g.write(name, content)
}

func (g *CommuteDataGenerator) write(name, content string) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
