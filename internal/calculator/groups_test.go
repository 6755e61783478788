package calculator

import "testing"

func metrics(name string, createdAt int64, owed, owe string) GroupMetrics {
	g := GroupMetrics{TotalOwed: d(owed), TotalOwe: d(owe)}
	g.Name = name
	g.CreatedAt = createdAt
	return g
}

func names(groups []GroupMetrics) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out
}

func sample() []GroupMetrics {
	return []GroupMetrics{
		metrics("trip", 2, "0", "12.50"),
		metrics("Flat", 3, "40", "0"),
		metrics("office", 1, "5", "5"),
		metrics("book club", 4, "0", "0"),
	}
}

func TestFilterGroups(t *testing.T) {
	tests := []struct {
		filter GroupFilter
		want   []string
	}{
		{FilterNone, []string{"trip", "Flat", "office", "book club"}},
		{FilterOwe, []string{"trip", "office"}},
		{FilterOwed, []string{"Flat", "office"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := names(FilterGroups(sample(), tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestSortGroups(t *testing.T) {
	tests := []struct {
		key   GroupSortKey
		order SortOrder
		want  []string
	}{
		{SortByCreatedAt, OrderDesc, []string{"book club", "Flat", "trip", "office"}},
		{SortByCreatedAt, OrderAsc, []string{"office", "trip", "Flat", "book club"}},
		{SortByName, OrderAsc, []string{"book club", "Flat", "office", "trip"}},
		{SortByOwed, OrderDesc, []string{"Flat", "office", "trip", "book club"}},
		{SortByOwe, OrderDesc, []string{"trip", "office", "Flat", "book club"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key)+"_"+string(tt.order), func(t *testing.T) {
			groups := sample()
			SortGroups(groups, tt.key, tt.order)
			got := names(groups)
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestParseListOptions(t *testing.T) {
	if k, err := ParseGroupSortKey(""); err != nil || k != SortByCreatedAt {
		t.Errorf("default sort key = %v, %v", k, err)
	}
	if o, err := ParseSortOrder(""); err != nil || o != OrderDesc {
		t.Errorf("default order = %v, %v", o, err)
	}
	if _, err := ParseGroupFilter("rich"); err == nil {
		t.Error("expected unknown filter to be rejected")
	}
	if _, err := ParseGroupSortKey("balance"); err == nil {
		t.Error("expected unknown sort key to be rejected")
	}
}
