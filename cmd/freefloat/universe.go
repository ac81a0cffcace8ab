package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aristath/freefloat/internal/utils"
)

// Universe is a YAML file naming the tickers and period of a build.
type Universe struct {
	Tickers []string `yaml:"tickers"`
	Start   string   `yaml:"start"`
	End     string   `yaml:"end"`
}

// LoadUniverse reads a universe file.
func LoadUniverse(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}

	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to parse universe file %s: %w", path, err)
	}
	u.Tickers = utils.NormalizeTickers(u.Tickers)
	return &u, nil
}

// buildTickers lists the universe tickers followed by the command line ones,
// normalized together.
func buildTickers(u *Universe, args []string) []string {
	var tickers []string
	if u != nil {
		tickers = append(tickers, u.Tickers...)
	}
	return utils.NormalizeTickers(append(tickers, args...))
}

// period resolves the build period. Explicit values win over the universe
// file; without either the period is the year before today (end exclusive).
func period(start, end string, u *Universe, now time.Time) (time.Time, time.Time, error) {
	if u != nil {
		if start == "" {
			start = u.Start
		}
		if end == "" {
			end = u.End
		}
	}

	endDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if end != "" {
		d, err := utils.ParseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		endDate = d
	}

	startDate := endDate.AddDate(-1, 0, 0)
	if start != "" {
		d, err := utils.ParseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		startDate = d
	}
	return startDate, endDate, nil
}
