// Package batch converts sets of COLLADA documents and reports the outcome
// of each one.
package batch

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"a3dconvert/internal/config"
	"a3dconvert/internal/convert"
)

// Config holds the settings shared by every job of a run.
type Config struct {
	EmbedTextures bool
	Out           io.Writer
	Err           io.Writer
}

// Job is one document to convert.
type Job struct {
	Source string
	Output string
}

// Entry describes one object written to an archive.
type Entry struct {
	Name      string      `json:"name"`
	Kind      string      `json:"kind"`
	Vertices  int         `json:"vertices,omitempty"`
	Triangles int         `json:"triangles,omitempty"`
	Min       *[3]float32 `json:"min,omitempty"`
	Max       *[3]float32 `json:"max,omitempty"`
	Radius    float32     `json:"radius,omitempty"`
}

// Result holds the outcome of converting one document.
type Result struct {
	Source  string
	Output  string
	Entries []Entry
	Success bool
	Error   string
}

// Jobs finds every .dae file under srcDir and maps it to an .a3d path at the
// same relative location under dstDir.
func Jobs(srcDir, dstDir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".dae") {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, Job{
			Source: path,
			Output: config.DefaultOutput(filepath.Join(dstDir, rel)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", srcDir, err)
	}
	return jobs, nil
}

// Run converts jobs one after another.
func Run(cfg Config, jobs []Job) []Result {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	total := len(jobs)
	results := make([]Result, total)
	start := time.Now()

	for i, job := range jobs {
		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, total, job.Source)
		results[i] = Convert(cfg, job)
	}

	if total > 1 {
		elapsed := time.Since(start).Seconds()
		fmt.Fprintf(out, "%d files in %.1fs\n", total, elapsed)
	}
	return results
}

// Convert runs a single job.
func Convert(cfg Config, job Job) Result {
	c := convert.New()
	if cfg.Out != nil {
		c.Out = cfg.Out
	}
	if cfg.Err != nil {
		c.Err = cfg.Err
	}
	c.EmbedTextures = cfg.EmbedTextures

	res := Result{Source: job.Source, Output: job.Output}
	if err := c.Load(job.Source); err != nil {
		res.Error = err.Error()
		return res
	}
	if len(c.Geometries()) == 0 {
		res.Error = convert.ErrNoGeometry.Error()
		return res
	}
	if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := c.WriteA3D(job.Output); err != nil {
		res.Error = err.Error()
		return res
	}

	for _, g := range c.Geometries() {
		b := g.Bounds()
		bmin, bmax := [3]float32(b.Min), [3]float32(b.Max)
		res.Entries = append(res.Entries, Entry{
			Name:      g.Name,
			Kind:      "mesh",
			Vertices:  g.VertexCount(),
			Triangles: g.TriangleCount(),
			Min:       &bmin,
			Max:       &bmax,
			Radius:    b.Radius(),
		})
	}
	for _, name := range c.Images() {
		res.Entries = append(res.Entries, Entry{Name: name, Kind: "image"})
	}
	res.Success = true
	return res
}
