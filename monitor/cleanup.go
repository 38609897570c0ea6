package monitor

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SteadyFlowSuffix is appended to the output prefix for the surviving
// checkpoint.
const SteadyFlowSuffix = "_steady_flow.npz"

// CheckpointCleaner keeps only the newest "<Output>.0.<iteration>..." file
// and renames it to "<Output>_steady_flow.npz". Every is the solver's
// checkpoint cadence; 0 accepts any iteration.
type CheckpointCleaner struct {
	Output string
	Every  int
}

func (c CheckpointCleaner) SteadyFlowPath() string {
	return c.Output + SteadyFlowSuffix
}

// Checkpoints lists the checkpoint files oldest first.
func (c CheckpointCleaner) Checkpoints() ([]string, error) {
	files, err := filepath.Glob(c.Output + ".0.*")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		a, aok := c.iteration(files[i])
		b, bok := c.iteration(files[j])
		if aok && bok && a != b {
			return a < b
		}
		return files[i] < files[j]
	})
	return files, nil
}

// iteration parses the number right after the ".0." part of the name.
func (c CheckpointCleaner) iteration(path string) (int, bool) {
	rest := strings.TrimPrefix(path, c.Output+".0.")
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		rest = rest[:i]
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

// OnCadence reports whether path is a checkpoint written at a multiple of
// Every.
func (c CheckpointCleaner) OnCadence(path string) bool {
	it, ok := c.iteration(path)
	if !ok {
		return false
	}
	return c.Every <= 0 || it%c.Every == 0
}

func (c CheckpointCleaner) Clean() error {
	files, err := c.Checkpoints()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.WithField("output", c.Output).Warn("no checkpoints to keep")
		return nil
	}
	latest := files[len(files)-1]
	if !c.OnCadence(latest) {
		log.WithFields(log.Fields{
			"kept":  latest,
			"every": c.Every,
		}).Warn("newest checkpoint is off the output cadence")
	}
	for _, f := range files[:len(files)-1] {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	if err := os.Rename(latest, c.SteadyFlowPath()); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"removed": len(files) - 1,
		"kept":    latest,
		"as":      c.SteadyFlowPath(),
	}).Info("checkpoints cleaned")
	return nil
}
