package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/internal/service/filter"
	"github.com/sandevgo/motorbot/internal/storage/memstore"
)

type fakeClassifier struct {
	intent core.Intent
	err    error
	calls  int
}

func (c *fakeClassifier) Classify(context.Context, []string, string) (core.Intent, error) {
	c.calls++
	return c.intent, c.err
}

type fakeStructured struct {
	result core.RetrievalResult
	err    error
	calls  int
	preds  []core.Predicate
}

func (s *fakeStructured) Retrieve(_ context.Context, predicates []core.Predicate) (core.RetrievalResult, error) {
	s.calls++
	s.preds = predicates
	return s.result, s.err
}

type fakeVector struct {
	result core.RetrievalResult
	err    error
	calls  int
}

func (v *fakeVector) Retrieve(context.Context, string) (core.RetrievalResult, error) {
	v.calls++
	return v.result, v.err
}

func newResolver(c *fakeClassifier, s *fakeStructured, v *fakeVector) (*Resolver, core.SessionStore) {
	sessions := memstore.NewSessions(time.Hour, 10, "廠牌")
	r := New(sessions, c, filter.NewCompiler(nil), s, v, Config{
		TurnTimeout:  5 * time.Second,
		PausePhrase:  "人工客服您好",
		ResumePhrase: "人工客服結束",
	})
	return r, sessions
}

func TestResolveStructuredHit(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{
		Category: core.CategoryStructured,
		Filters: []core.Filter{
			{Field: "廠牌", Value: "Lexus"},
			{Field: "年份", Op: core.OpGte, Value: int64(2020)},
		},
	}}
	rows := []core.Record{{"車款": "RX"}, {"車款": "NX"}, {"車款": "ES"}}
	structured := &fakeStructured{result: core.RetrievalResult{Source: core.SourceStructured, Records: rows}}
	vector := &fakeVector{}
	r, _ := newResolver(classifier, structured, vector)

	out, err := r.Resolve(context.Background(), "u1", "有2020年後的Lexus嗎")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Source != core.SourceStructured || len(out.Records) != 3 {
		t.Errorf("outcome = %+v", out)
	}
	if vector.calls != 0 {
		t.Error("structured queries must not touch the similarity index")
	}
	want := []core.Predicate{
		{Field: "廠牌", Op: core.OpContains, Value: "Lexus"},
		{Field: "年份", Op: core.OpGte, Value: "2020"},
	}
	if len(structured.preds) != 2 || structured.preds[0] != want[0] || structured.preds[1] != want[1] {
		t.Errorf("predicates = %v, want %v", structured.preds, want)
	}
}

func TestResolveOutOfDomain(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{
		Category: core.CategoryOutOfDomain,
		Followup: "請詢問亞鈺汽車相關問題，謝謝！",
	}}
	structured := &fakeStructured{}
	vector := &fakeVector{}
	r, sessions := newResolver(classifier, structured, vector)

	if err := sessions.MergeTopic(context.Background(), "u1", map[string]any{"廠牌": "Toyota"}, "之前的車"); err != nil {
		t.Fatal(err)
	}

	out, err := r.Resolve(context.Background(), "u1", "今天天氣如何")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Source != core.SourceNone || out.Followup != "請詢問亞鈺汽車相關問題，謝謝！" {
		t.Errorf("outcome = %+v", out)
	}
	if structured.calls != 0 || vector.calls != 0 {
		t.Error("out-of-domain turns must not reach any retriever")
	}

	sess, _ := sessions.Load(context.Background(), "u1")
	if sess.Topic["廠牌"] != "Toyota" {
		t.Errorf("off-topic turn polluted the topic: %v", sess.Topic)
	}
}

func TestResolveKnowledgeVectorFirst(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{Category: core.CategoryKnowledge}}
	structured := &fakeStructured{}
	vector := &fakeVector{result: core.RetrievalResult{
		Source:     core.SourceVector,
		Matches:    []core.Match{{Score: 0.8, Text: "每日 9:00-21:00"}},
		Confidence: 0.8,
	}}
	r, _ := newResolver(classifier, structured, vector)

	out, err := r.Resolve(context.Background(), "u1", "營業時間")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Source != core.SourceVector || out.Context != "每日 9:00-21:00" {
		t.Errorf("outcome = %+v", out)
	}
	if structured.calls != 0 {
		t.Error("record store queried despite a vector hit")
	}
}

func TestResolveKnowledgeFallsThroughToStructured(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{Category: core.CategoryKnowledge}}
	structured := &fakeStructured{result: core.RetrievalResult{
		Source:  core.SourceStructured,
		Records: []core.Record{{"標題": "門市地址"}},
	}}
	// best score 0.3 under a 0.5 threshold surfaces as SourceNone
	vector := &fakeVector{result: core.RetrievalResult{Source: core.SourceNone, Confidence: 0.3}}
	r, _ := newResolver(classifier, structured, vector)

	out, err := r.Resolve(context.Background(), "u1", "你們在哪裡")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Source != core.SourceStructured {
		t.Errorf("outcome = %+v", out)
	}
	if vector.calls != 1 || structured.calls != 1 {
		t.Errorf("calls: vector=%d structured=%d", vector.calls, structured.calls)
	}
}

func TestResolveKnowledgeSurvivesVectorOutage(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{Category: core.CategoryKnowledge}}
	structured := &fakeStructured{result: core.RetrievalResult{
		Source:  core.SourceStructured,
		Records: []core.Record{{"標題": "保固條款"}},
	}}
	vector := &fakeVector{err: &core.UpstreamError{Upstream: "pinecone", Status: 503}}
	r, _ := newResolver(classifier, structured, vector)

	out, err := r.Resolve(context.Background(), "u1", "保固多久")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Source != core.SourceStructured {
		t.Errorf("outcome = %+v, want the record store answer", out)
	}
	if structured.calls != 1 {
		t.Errorf("structured calls = %d, record store must still be consulted", structured.calls)
	}
}

func TestResolveNothingFound(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{Category: core.CategoryStructured}}
	structured := &fakeStructured{result: core.RetrievalResult{Source: core.SourceNone}}
	r, _ := newResolver(classifier, structured, &fakeVector{})

	out, err := r.Resolve(context.Background(), "u1", "有飛天車嗎")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Source != core.SourceNone || out.Followup != MsgNoData {
		t.Errorf("outcome = %+v", out)
	}
}

func TestResolveMalformedClassification(t *testing.T) {
	classifier := &fakeClassifier{err: &core.ValidationError{Reason: "malformed classifier JSON"}}
	structured := &fakeStructured{}
	vector := &fakeVector{}
	r, _ := newResolver(classifier, structured, vector)

	out, err := r.Resolve(context.Background(), "u1", "嗡嗡嗡")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Followup != MsgRetry {
		t.Errorf("outcome = %+v", out)
	}
	if classifier.calls != 1 {
		t.Errorf("validation errors must not be retried, calls = %d", classifier.calls)
	}
	if structured.calls != 0 || vector.calls != 0 {
		t.Error("no retriever may run after a failed classification")
	}
}

func TestResolveUpstreamFailure(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{Category: core.CategoryStructured}}
	structured := &fakeStructured{err: &core.UpstreamError{Upstream: "supabase", Status: 503}}
	r, _ := newResolver(classifier, structured, &fakeVector{})

	out, err := r.Resolve(context.Background(), "u1", "有Toyota嗎")
	if err != nil {
		t.Fatalf("upstream failures must fold into a fallback: %v", err)
	}
	if out.Followup != MsgUnavailable {
		t.Errorf("outcome = %+v", out)
	}
}

func TestResolvePauseAndResume(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{Category: core.CategoryStructured}}
	structured := &fakeStructured{result: core.RetrievalResult{Source: core.SourceNone}}
	r, sessions := newResolver(classifier, structured, &fakeVector{})
	ctx := context.Background()

	out, err := r.Resolve(ctx, "u1", "人工客服您好")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Followup != MsgPaused {
		t.Errorf("outcome = %+v", out)
	}

	_, err = r.Resolve(ctx, "u1", "還在嗎？")
	if !errors.Is(err, ErrSilenced) {
		t.Fatalf("paused session must stay silent, got %v", err)
	}
	if classifier.calls != 0 {
		t.Error("no classification while paused")
	}

	out, err = r.Resolve(ctx, "u1", "人工客服結束")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Followup != MsgResumed {
		t.Errorf("outcome = %+v", out)
	}

	sess, _ := sessions.Load(ctx, "u1")
	if sess.ManualOverride {
		t.Error("override still set after resume")
	}
}

func TestResolveAppendsHistory(t *testing.T) {
	classifier := &fakeClassifier{intent: core.Intent{Category: core.CategoryStructured}}
	structured := &fakeStructured{result: core.RetrievalResult{Source: core.SourceNone}}
	r, sessions := newResolver(classifier, structured, &fakeVector{})

	if _, err := r.Resolve(context.Background(), "u1", "有沒有白色的車"); err != nil {
		t.Fatal(err)
	}
	sess, _ := sessions.Load(context.Background(), "u1")
	if len(sess.History) != 1 || sess.History[0] != "有沒有白色的車" {
		t.Errorf("history = %v", sess.History)
	}
}
