package retrieval

import (
	"context"
	"testing"

	"github.com/sandevgo/motorbot/internal/core"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return e.vector, e.err
}

type fakeIndex struct {
	matches []core.Match
	err     error
	calls   int
}

func (i *fakeIndex) Query(context.Context, []float32, int) ([]core.Match, error) {
	i.calls++
	return i.matches, i.err
}

func TestVectorKeepsMatchesAboveThreshold(t *testing.T) {
	index := &fakeIndex{matches: []core.Match{
		{Score: 0.82, Text: "營業時間為每日 9:00-21:00"},
		{Score: 0.55, Text: "保固說明"},
		{Score: 0.31, Text: "無關段落"},
	}}
	v := NewVector(&fakeEmbedder{vector: []float32{0.1}}, index, 5, 0.5, 0)

	res, err := v.Retrieve(context.Background(), "你們幾點開門")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if res.Source != core.SourceVector {
		t.Errorf("source = %v", res.Source)
	}
	if len(res.Matches) != 2 {
		t.Errorf("matches = %v", res.Matches)
	}
	if res.Confidence != 0.82 {
		t.Errorf("confidence = %v", res.Confidence)
	}
}

func TestVectorAllBelowThreshold(t *testing.T) {
	index := &fakeIndex{matches: []core.Match{{Score: 0.42, Text: "弱相關"}}}
	v := NewVector(&fakeEmbedder{vector: []float32{0.1}}, index, 5, 0.5, 0)

	res, err := v.Retrieve(context.Background(), "冷門問題")
	if err != nil {
		t.Fatalf("a sub-threshold result is not an error: %v", err)
	}
	if res.Source != core.SourceNone || len(res.Matches) != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.Confidence != 0.42 {
		t.Errorf("confidence should still report the best score, got %v", res.Confidence)
	}
}

func TestVectorLowerThresholdAdmits(t *testing.T) {
	index := &fakeIndex{matches: []core.Match{{Score: 0.42, Text: "弱相關"}}}
	v := NewVector(&fakeEmbedder{vector: []float32{0.1}}, index, 5, 0.3, 0)

	res, err := v.Retrieve(context.Background(), "冷門問題")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if res.Source != core.SourceVector || len(res.Matches) != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestVectorEmbedFailure(t *testing.T) {
	index := &fakeIndex{}
	v := NewVector(&fakeEmbedder{err: &core.UpstreamError{Upstream: "openai", Status: 500}}, index, 5, 0.5, 0)

	_, err := v.Retrieve(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if index.calls != 0 {
		t.Error("index must not be queried when embedding fails")
	}
}
