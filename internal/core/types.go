package core

const (
	BotName      = "MotorBot"
	BotUserAgent = "MotorBot/0.1"
	BotVersion   = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Category is the classifier's closed set of intent tags.
type Category string

const (
	// CategoryStructured is a query answerable by filtering the record store.
	CategoryStructured Category = "cars"
	// CategoryKnowledge is a free-form question answered from the
	// similarity index, with a structured fallback.
	CategoryKnowledge Category = "company"
	// CategoryOutOfDomain is anything unrelated to the dealership.
	CategoryOutOfDomain Category = "other"
)

func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryStructured, CategoryKnowledge, CategoryOutOfDomain:
		return Category(s), true
	}
	return "", false
}

type Operator string

const (
	OpEq       Operator = "eq"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpContains Operator = "ilike"
)

// Filter is one extracted constraint in classifier output order. Op is empty
// for free-text values; the compiler turns those into Contains predicates.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Intent is the validated interpretation of one utterance.
type Intent struct {
	Category Category
	Filters  []Filter
	Followup string
}

// FilterMap flattens the ordered filters for topic merging.
func (in Intent) FilterMap() map[string]any {
	if len(in.Filters) == 0 {
		return nil
	}
	m := make(map[string]any, len(in.Filters))
	for _, f := range in.Filters {
		m[f.Field] = f.Value
	}
	return m
}

// Predicate is a compiled, store-ready constraint.
type Predicate struct {
	Field string
	Op    Operator
	Value string
}

type Source string

const (
	SourceStructured Source = "structured"
	SourceVector     Source = "vector"
	SourceNone       Source = "none"
)

// Record is one schema-less row from the record store.
type Record map[string]any

// Match is one scored neighbor from the similarity index.
type Match struct {
	Score float64
	Text  string
}

// RetrievalResult is what one retrieval attempt produced.
type RetrievalResult struct {
	Source  Source
	Records []Record
	Matches []Match
	// Confidence is the best match score, vector source only.
	Confidence float64
}

func (r RetrievalResult) Empty() bool {
	return len(r.Records) == 0 && len(r.Matches) == 0
}

// Outcome is the engine's final per-turn result, handed to the reply layer.
// Records carries structured rows, Context carries vector match text;
// Followup is the canned or clarifying message when neither is available.
type Outcome struct {
	Source   Source
	Records  []Record
	Context  string
	Followup string
}
