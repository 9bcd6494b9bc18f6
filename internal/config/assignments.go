package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

// Assignments is the static ingestion plan: which worker identity owns which
// source files, plus the deployment-time schema knobs that travel with it.
// It is resolved once at process start and read-only afterwards.
type Assignments struct {
	Coordinator  string
	Workers      map[string][]string
	Columns      domain.ColumnMapping
	ExcludeWords []string
	DefaultTags  []string
}

// Resolve returns the ordered file list assigned to workerID. Unknown ids
// and the coordinator identity resolve to no files, which is a normal
// condition, not an error.
func (a Assignments) Resolve(workerID string) []string {
	if workerID == a.Coordinator {
		return nil
	}
	return slices.Clone(a.Workers[workerID])
}

// DefaultAssignments is the compiled-in ingestion plan for the BBC archive
// deployment.
func DefaultAssignments() Assignments {
	return Assignments{
		Coordinator: "Master",
		Workers: map[string][]string{
			"Worker-1": {"data/2014.csv", "data/2015.csv", "data/2016.csv"},
			"Worker-2": {"data/2017.csv", "data/2018.csv"},
			"Worker-3": {"data/2019.csv", "data/2020.csv"},
		},
		Columns: domain.ColumnMapping{
			Heading:  "title",
			Body:     "text",
			Date:     "timestamp",
			Tags:     "tags",
			RecordID: "record_id",
		},
		ExcludeWords: slices.Clone(defaultExcludeWords),
		DefaultTags:  []string{},
	}
}

// LoadAssignments overlays the YAML file at path, when given, onto the
// compiled defaults. Zero-valued sections of the file keep their defaults.
func LoadAssignments(path string) (Assignments, error) {
	assignments := DefaultAssignments()
	if path == "" {
		return assignments, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Assignments{}, fmt.Errorf("read assignments file: %w", err)
	}

	var file assignmentsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Assignments{}, fmt.Errorf("parse assignments file %s: %w", path, err)
	}

	if file.Coordinator != "" {
		assignments.Coordinator = file.Coordinator
	}
	if len(file.Workers) > 0 {
		assignments.Workers = file.Workers
	}
	if file.Columns.Heading != "" {
		assignments.Columns.Heading = file.Columns.Heading
	}
	if file.Columns.Body != "" {
		assignments.Columns.Body = file.Columns.Body
	}
	if file.Columns.Date != "" {
		assignments.Columns.Date = file.Columns.Date
	}
	if file.Columns.Tags != "" {
		assignments.Columns.Tags = file.Columns.Tags
	}
	if file.Columns.RecordID != "" {
		assignments.Columns.RecordID = file.Columns.RecordID
	}
	if file.ExcludeWords != nil {
		assignments.ExcludeWords = file.ExcludeWords
	}
	if file.DefaultTags != nil {
		assignments.DefaultTags = file.DefaultTags
	}
	return assignments, nil
}

type assignmentsFile struct {
	Coordinator string              `yaml:"coordinator"`
	Workers     map[string][]string `yaml:"workers"`
	Columns     struct {
		Heading  string `yaml:"heading"`
		Body     string `yaml:"body"`
		Date     string `yaml:"date"`
		Tags     string `yaml:"tags"`
		RecordID string `yaml:"record_id"`
	} `yaml:"columns"`
	ExcludeWords []string `yaml:"exclude_words"`
	DefaultTags  []string `yaml:"default_tags"`
}

// defaultExcludeWords suppresses common titles, months, weekdays, pronouns
// and generic nouns from extraction output to reduce noise.
var defaultExcludeWords = []string{
	"mr", "mrs", "ms", "dr", "prof", "lord", "sir", "madam", "hon",
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "oct", "nov", "dec",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"group", "company", "year", "day", "week", "month", "world", "us", "uk", "eu",
	"time", "service", "minister", "government", "new", "old", "get", "like",
	"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
	"i", "we", "you", "he", "she", "it", "they", "him", "her", "them",
}
