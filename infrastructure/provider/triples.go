// Package provider loads the knowledge-graph embedding model and serves
// nearest-neighbor queries from it.
package provider

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dataset file names looked up inside the model directory.
const (
	datasetFile     = "dataset.tsv"
	datasetFileGzip = "dataset.tsv.gz"
)

// Vocabulary maps entity labels to dense ids. Ids are assigned by sorted
// label order so they are stable across restarts.
type Vocabulary struct {
	labels []string
	ids    map[string]int
}

// NewVocabulary builds a Vocabulary from a set of labels. Duplicates are
// collapsed and ids follow sorted order.
func NewVocabulary(labels []string) Vocabulary {
	distinct := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l != "" {
			distinct[l] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(distinct))
	for l := range distinct {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)

	ids := make(map[string]int, len(sorted))
	for i, l := range sorted {
		ids[l] = i
	}
	return Vocabulary{labels: sorted, ids: ids}
}

// LoadVocabulary reads the triple dataset from the model directory and
// builds the entity vocabulary from head and tail labels. Both plain and
// gzip-compressed datasets are supported.
func LoadVocabulary(modelDir string) (Vocabulary, error) {
	r, closeFn, err := openDataset(modelDir)
	if err != nil {
		return Vocabulary{}, err
	}
	defer closeFn()

	var labels []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return Vocabulary{}, fmt.Errorf("malformed triple line: %q", line)
		}
		labels = append(labels, fields[0], fields[2])
	}
	if err := scanner.Err(); err != nil {
		return Vocabulary{}, fmt.Errorf("read dataset: %w", err)
	}

	vocab := NewVocabulary(labels)
	if vocab.Size() == 0 {
		return Vocabulary{}, fmt.Errorf("dataset in %s contains no entities", modelDir)
	}
	return vocab, nil
}

func openDataset(modelDir string) (io.Reader, func(), error) {
	plain := filepath.Join(modelDir, datasetFile)
	if f, err := os.Open(plain); err == nil {
		return f, func() { _ = f.Close() }, nil
	}

	compressed := filepath.Join(modelDir, datasetFileGzip)
	f, err := os.Open(compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset %s: %w", plain, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("open compressed dataset: %w", err)
	}
	return gz, func() { _ = gz.Close(); _ = f.Close() }, nil
}

// ID returns the id for a label.
func (v Vocabulary) ID(label string) (int, bool) {
	id, ok := v.ids[label]
	return id, ok
}

// Label returns the label for an id.
func (v Vocabulary) Label(id int) (string, bool) {
	if id < 0 || id >= len(v.labels) {
		return "", false
	}
	return v.labels[id], true
}

// Size returns the number of entities.
func (v Vocabulary) Size() int { return len(v.labels) }
