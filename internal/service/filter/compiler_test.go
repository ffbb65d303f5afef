package filter

import (
	"reflect"
	"testing"

	"github.com/sandevgo/motorbot/internal/core"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		filters []core.Filter
		want    []core.Predicate
	}{
		{
			name: "range with empty sibling dropped",
			filters: []core.Filter{
				{Field: "年份", Op: core.OpGte, Value: float64(2020)},
				{Field: "顏色", Value: ""},
			},
			want: []core.Predicate{
				{Field: "年份", Op: core.OpGte, Value: "2020"},
			},
		},
		{
			name: "free text becomes contains",
			filters: []core.Filter{
				{Field: "廠牌", Value: "Toyota"},
			},
			want: []core.Predicate{
				{Field: "廠牌", Op: core.OpContains, Value: "Toyota"},
			},
		},
		{
			name: "cjk amount normalized in range bound",
			filters: []core.Filter{
				{Field: "車輛售價", Op: core.OpLte, Value: "500萬"},
			},
			want: []core.Predicate{
				{Field: "車輛售價", Op: core.OpLte, Value: "5000000"},
			},
		},
		{
			name: "alias resolves to store column",
			filters: []core.Filter{
				{Field: "價格", Op: core.OpGte, Value: "100萬"},
				{Field: "brand", Value: "BMW"},
			},
			want: []core.Predicate{
				{Field: "車輛售價", Op: core.OpGte, Value: "1000000"},
				{Field: "廠牌", Op: core.OpContains, Value: "BMW"},
			},
		},
		{
			name: "unknown field passes through",
			filters: []core.Filter{
				{Field: "安全性配備", Value: "盲點偵測"},
			},
			want: []core.Predicate{
				{Field: "安全性配備", Op: core.OpContains, Value: "盲點偵測"},
			},
		},
		{
			name: "nil and empty values dropped",
			filters: []core.Filter{
				{Field: "顏色", Value: nil},
				{Field: "車款", Value: ""},
			},
			want: []core.Predicate{},
		},
		{
			name: "insertion order preserved",
			filters: []core.Filter{
				{Field: "顏色", Value: "白"},
				{Field: "年份", Op: core.OpGte, Value: float64(2018)},
				{Field: "廠牌", Value: "Lexus"},
			},
			want: []core.Predicate{
				{Field: "顏色", Op: core.OpContains, Value: "白"},
				{Field: "年份", Op: core.OpGte, Value: "2018"},
				{Field: "廠牌", Op: core.OpContains, Value: "Lexus"},
			},
		},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Compile(tt.filters)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAliasTableRoundTrip(t *testing.T) {
	a := DefaultAliasTable()
	if got := a.ColumnFor("price"); got != "車輛售價" {
		t.Errorf("ColumnFor(price) = %q", got)
	}
	if got := a.FieldFor("行駛里程"); got != "里程" {
		t.Errorf("FieldFor(行駛里程) = %q, want the canonical alias", got)
	}
	if got := a.FieldFor("車輛售價"); got != "價格" {
		t.Errorf("FieldFor(車輛售價) = %q, want the canonical alias", got)
	}
	if got := a.ColumnFor("聯絡人"); got != "聯絡人" {
		t.Errorf("unknown field changed: %q", got)
	}
}

func TestAliasTableCanonicalReverse(t *testing.T) {
	a := NewAliasTable([]Alias{
		{"里程", "行駛里程"},
		{"mileage", "行駛里程"},
	})
	for i := 0; i < 50; i++ {
		if got := a.FieldFor("行駛里程"); got != "里程" {
			t.Fatalf("FieldFor(行駛里程) = %q, first listed alias must win", got)
		}
	}
}
