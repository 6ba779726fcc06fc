// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ChunkRecord summarizes how one chunk went through the pipeline.
type ChunkRecord struct {
	Chunk       Chunk                    `yaml:"chunk"`
	Methods     map[ExtractionMethod]int `yaml:"methods"`
	EmptyPages  []int                    `yaml:"empty_pages,omitempty"`
	SummaryFile string                   `yaml:"summary_file,omitempty"`
	ChunkPDF    string                   `yaml:"chunk_pdf,omitempty"`
	CacheHit    bool                     `yaml:"cache_hit,omitempty"`
	Skipped     bool                     `yaml:"skipped,omitempty"`
	Error       string                   `yaml:"error,omitempty"`
}

// RunManifest records one summarize run. It is written as manifest.yaml.
type RunManifest struct {
	RunID      string        `yaml:"run_id"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
	Folder     string        `yaml:"folder"`
	Inputs     []string      `yaml:"inputs"`
	TotalPages int           `yaml:"total_pages"`
	Provider   Provider      `yaml:"provider"`
	Model      string        `yaml:"model"`
	Chunking   ChunkConfig   `yaml:"chunking"`
	Chunks     []ChunkRecord `yaml:"chunks"`
	Artifacts  []string      `yaml:"artifacts"`
	Failures   []string      `yaml:"failures,omitempty"`
	Uploaded   []string      `yaml:"uploaded,omitempty"`
}

// AddArtifact records a written file once.
func (m *RunManifest) AddArtifact(path string) {
	for _, p := range m.Artifacts {
		if p == path {
			return
		}
	}
	m.Artifacts = append(m.Artifacts, path)
}
