package provider

import (
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simdex/simdex/domain/similarity"
)

// testModel builds a 2-d model over entities a..d where the relation
// hyperplane normal is (0,1), so only the x coordinate matters.
func testModel(t *testing.T) *TransH {
	t.Helper()
	vocab := NewVocabulary([]string{"a", "b", "c", "d"})
	entities := []float32{
		0, 0, // a
		1, 5, // b
		2, -3, // c
		10, 0, // d
	}
	translations := []float32{0, 0}
	normals := []float32{0, 1}

	model, err := NewTransH(vocab, 2, entities, translations, normals, 0, nil)
	require.NoError(t, err)
	return model
}

func TestTransH_SimilarEntities_Ordering(t *testing.T) {
	model := testModel(t)

	pred, err := model.SimilarEntities(context.Background(), similarity.NewLabelRef("a"), 3)
	require.NoError(t, err)
	require.Len(t, pred, 3)

	require.Equal(t, "b", pred[0].Entity())
	require.Equal(t, "c", pred[1].Entity())
	require.Equal(t, "d", pred[2].Entity())

	// Scores are negated distances along the projected axis.
	require.InDelta(t, -1.0, pred[0].Score(), 1e-6)
	require.InDelta(t, -2.0, pred[1].Score(), 1e-6)
	require.InDelta(t, -10.0, pred[2].Score(), 1e-6)
}

func TestTransH_SimilarEntities_ExcludesSelfAndTruncates(t *testing.T) {
	model := testModel(t)

	pred, err := model.SimilarEntities(context.Background(), similarity.NewLabelRef("a"), 2)
	require.NoError(t, err)
	require.Len(t, pred, 2)
	for _, n := range pred {
		require.NotEqual(t, "a", n.Entity())
	}
}

func TestTransH_SimilarEntities_ByID(t *testing.T) {
	model := testModel(t)

	byLabel, err := model.SimilarEntities(context.Background(), similarity.NewLabelRef("a"), 3)
	require.NoError(t, err)
	byID, err := model.SimilarEntities(context.Background(), similarity.NewIDRef(0), 3)
	require.NoError(t, err)
	require.Equal(t, byLabel, byID)
}

func TestTransH_SimilarEntities_Unknown(t *testing.T) {
	model := testModel(t)
	ctx := context.Background()

	_, err := model.SimilarEntities(ctx, similarity.NewLabelRef("zz"), 3)
	require.True(t, errors.Is(err, similarity.ErrUnknownEntity))

	_, err = model.SimilarEntities(ctx, similarity.NewIDRef(99), 3)
	require.True(t, errors.Is(err, similarity.ErrUnknownEntity))

	_, err = model.SimilarEntities(ctx, similarity.NewIDRef(-1), 3)
	require.True(t, errors.Is(err, similarity.ErrUnknownEntity))
}

func TestTransH_SimilarEntities_Cancelled(t *testing.T) {
	model := testModel(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := model.SimilarEntities(ctx, similarity.NewLabelRef("a"), 3)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewTransH_Validation(t *testing.T) {
	vocab := NewVocabulary([]string{"a", "b"})

	_, err := NewTransH(vocab, 2, []float32{0, 0}, []float32{0, 0}, []float32{0, 1}, 0, nil)
	require.Error(t, err, "short entity table")

	_, err = NewTransH(vocab, 2, make([]float32, 4), []float32{0, 0}, []float32{0, 1}, 3, nil)
	require.Error(t, err, "relation index out of range")
}

func writeEmbeddingFile(t *testing.T, dir string, dim, nEntities, nRelations uint32, tables ...[]float32) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, embeddingFile))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, binary.Write(f, binary.LittleEndian, [4]byte{'T', 'R', 'N', 'H'}))
	require.NoError(t, binary.Write(f, binary.LittleEndian, dim))
	require.NoError(t, binary.Write(f, binary.LittleEndian, nEntities))
	require.NoError(t, binary.Write(f, binary.LittleEndian, nRelations))
	for _, table := range tables {
		require.NoError(t, binary.Write(f, binary.LittleEndian, table))
	}
}

func TestLoadTransH_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, datasetFile),
		[]byte("a\tlinked\tb\nc\tlinked\td\n"),
		0o644,
	))
	writeEmbeddingFile(t, dir, 2, 4, 1,
		[]float32{0, 0, 1, 5, 2, -3, 10, 0},
		[]float32{0, 0},
		[]float32{0, 1},
	)

	model, err := LoadTransH(dir, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 4, model.Vocabulary().Size())

	pred, err := model.SimilarEntities(context.Background(), similarity.NewLabelRef("a"), 2)
	require.NoError(t, err)
	require.Equal(t, "b", pred[0].Entity())
	require.Equal(t, "c", pred[1].Entity())
}

func TestLoadTransH_BadMagic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, datasetFile), []byte("a\tr\tb\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, embeddingFile), []byte("XXXX\x00\x00\x00\x00"), 0o644))

	_, err := LoadTransH(dir, 0, nil)
	require.Error(t, err)
}

func TestLoadTransH_EntityCountMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, datasetFile), []byte("a\tr\tb\n"), 0o644))
	writeEmbeddingFile(t, dir, 2, 4, 1,
		make([]float32, 8), make([]float32, 2), make([]float32, 2),
	)

	_, err := LoadTransH(dir, 0, nil)
	require.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, datasetFile),
		[]byte("paris\tcapital_of\tfrance\nlondon\tcapital_of\tuk\nparis\tlocated_in\tfrance\n"),
		0o644,
	))

	vocab, err := LoadVocabulary(dir)
	require.NoError(t, err)
	require.Equal(t, 4, vocab.Size())

	// Ids follow sorted label order.
	id, ok := vocab.ID("france")
	require.True(t, ok)
	require.Equal(t, 0, id)
	label, ok := vocab.Label(2)
	require.True(t, ok)
	require.Equal(t, "paris", label)
}

func TestLoadVocabulary_Gzip(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, datasetFileGzip))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("a\tr\tb\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	vocab, err := LoadVocabulary(dir)
	require.NoError(t, err)
	require.Equal(t, 2, vocab.Size())
}

func TestLoadVocabulary_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, datasetFile), []byte("only two\tfields\n"), 0o644))

	_, err := LoadVocabulary(dir)
	require.Error(t, err)
}
