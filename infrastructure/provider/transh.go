package provider

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/simdex/simdex/domain/similarity"
	"github.com/simdex/simdex/internal/log"
)

// Embedding file name looked up inside the model directory.
const embeddingFile = "transh.bin"

// embeddingMagic identifies the embedding file format.
const embeddingMagic = "TRNH"

// TransH answers nearest-neighbor queries over hyperplane-projected
// entity embeddings. All vectors are held in memory; scoring a query is a
// single pass over the entity table.
type TransH struct {
	vocab        Vocabulary
	dim          int
	entities     []float32 // nEntities x dim, row-major
	translations []float32 // nRelations x dim
	normals      []float32 // nRelations x dim, unit length
	relation     int
	logger       *log.Logger
}

// NewTransH creates a TransH model from in-memory parameters. The normal
// vectors are expected to be unit length.
func NewTransH(vocab Vocabulary, dim int, entities, translations, normals []float32, relation int, logger *log.Logger) (*TransH, error) {
	if logger == nil {
		logger = log.NewLogger(log.FormatPretty, "info")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	if len(entities) != vocab.Size()*dim {
		return nil, fmt.Errorf("entity table has %d values, want %d", len(entities), vocab.Size()*dim)
	}
	if len(translations) != len(normals) {
		return nil, fmt.Errorf("relation tables disagree: %d translations vs %d normals", len(translations), len(normals))
	}
	nRelations := len(translations) / dim
	if relation < 0 || relation >= nRelations {
		return nil, fmt.Errorf("relation index %d out of range [0,%d)", relation, nRelations)
	}
	return &TransH{
		vocab:        vocab,
		dim:          dim,
		entities:     entities,
		translations: translations,
		normals:      normals,
		relation:     relation,
		logger:       logger,
	}, nil
}

// LoadTransH reads the vocabulary and embedding tables from the model
// directory and returns a ready-to-query model.
func LoadTransH(modelDir string, relation int, logger *log.Logger) (*TransH, error) {
	vocab, err := LoadVocabulary(modelDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(modelDir, embeddingFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open embeddings %s: %w", path, err)
	}
	defer f.Close()

	var header struct {
		Magic      [4]byte
		Dim        uint32
		NEntities  uint32
		NRelations uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read embedding header: %w", err)
	}
	if string(header.Magic[:]) != embeddingMagic {
		return nil, fmt.Errorf("%s is not an embedding file (magic %q)", path, header.Magic)
	}
	if int(header.NEntities) != vocab.Size() {
		return nil, fmt.Errorf("embedding file has %d entities, dataset has %d", header.NEntities, vocab.Size())
	}

	dim := int(header.Dim)
	entities := make([]float32, int(header.NEntities)*dim)
	translations := make([]float32, int(header.NRelations)*dim)
	normals := make([]float32, int(header.NRelations)*dim)
	for _, table := range [][]float32{entities, translations, normals} {
		if err := binary.Read(f, binary.LittleEndian, table); err != nil {
			return nil, fmt.Errorf("read embedding table: %w", err)
		}
	}

	model, err := NewTransH(vocab, dim, entities, translations, normals, relation, logger)
	if err != nil {
		return nil, err
	}
	model.logger.Info("embedding model loaded",
		"entities", header.NEntities,
		"relations", header.NRelations,
		"dim", dim,
	)
	return model, nil
}

// Vocabulary returns the entity vocabulary.
func (m *TransH) Vocabulary() Vocabulary { return m.vocab }

// SimilarEntities returns up to k entities nearest to the reference under
// the configured relation, ordered by descending score. The reference
// entity itself is excluded.
func (m *TransH) SimilarEntities(ctx context.Context, ref similarity.EntityRef, k int) (similarity.Prediction, error) {
	headID, err := m.resolve(ref)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return similarity.Prediction{}, nil
	}

	normal := m.relationRow(m.normals)
	translation := m.relationRow(m.translations)
	head := m.entityRow(headID)
	headProj := project(head, normal)

	// head⊥ + d_r is constant across candidates.
	query := make([]float32, m.dim)
	for i := range query {
		query[i] = headProj[i] + translation[i]
	}

	best := newTopK(k)
	for id := 0; id < m.vocab.Size(); id++ {
		if id%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if id == headID {
			continue
		}
		dist := projectedDistance(query, m.entityRow(id), normal)
		best.add(id, -dist)
	}

	neighbors := best.sorted()
	pred := make(similarity.Prediction, 0, len(neighbors))
	for _, n := range neighbors {
		label, _ := m.vocab.Label(n.id)
		pred = append(pred, similarity.NewNeighbor(label, n.score))
	}
	return pred, nil
}

func (m *TransH) resolve(ref similarity.EntityRef) (int, error) {
	if ref.ByID() {
		if _, ok := m.vocab.Label(ref.ID()); !ok {
			return 0, similarity.ErrUnknownEntity
		}
		return ref.ID(), nil
	}
	id, ok := m.vocab.ID(ref.Label())
	if !ok {
		return 0, similarity.ErrUnknownEntity
	}
	return id, nil
}

func (m *TransH) entityRow(id int) []float32 {
	return m.entities[id*m.dim : (id+1)*m.dim]
}

func (m *TransH) relationRow(table []float32) []float32 {
	return table[m.relation*m.dim : (m.relation+1)*m.dim]
}

// project returns v minus its component along the unit normal w.
func project(v, w []float32) []float32 {
	var dot float32
	for i := range v {
		dot += v[i] * w[i]
	}
	out := make([]float32, len(v))
	for i := range v {
		out[i] = v[i] - dot*w[i]
	}
	return out
}

// projectedDistance computes the L2 distance between the query vector and
// the candidate's projection onto the relation hyperplane, without
// allocating per candidate.
func projectedDistance(query, candidate, normal []float32) float64 {
	var dot float32
	for i := range candidate {
		dot += candidate[i] * normal[i]
	}
	var sum float64
	for i := range candidate {
		d := float64(query[i] - (candidate[i] - dot*normal[i]))
		sum += d * d
	}
	return math.Sqrt(sum)
}

// scored pairs an entity id with its score.
type scored struct {
	id    int
	score float64
}

// topK keeps the k highest-scoring entries seen so far.
type topK struct {
	k       int
	entries []scored
}

func newTopK(k int) *topK {
	return &topK{k: k, entries: make([]scored, 0, k+1)}
}

func (t *topK) add(id int, score float64) {
	if len(t.entries) == t.k && score <= t.entries[len(t.entries)-1].score {
		return
	}
	pos := len(t.entries)
	for pos > 0 && t.entries[pos-1].score < score {
		pos--
	}
	t.entries = append(t.entries, scored{})
	copy(t.entries[pos+1:], t.entries[pos:])
	t.entries[pos] = scored{id: id, score: score}
	if len(t.entries) > t.k {
		t.entries = t.entries[:t.k]
	}
}

// sorted returns the entries ordered by descending score.
func (t *topK) sorted() []scored {
	return t.entries
}
