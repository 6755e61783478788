package storage

import (
	"testing"

	"github.com/Sanket3107/Rupaya/internal/apperr"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		skip      int
		limit     int
		wantLimit int
		wantErr   bool
	}{
		{"defaults", 0, 0, DefaultLimit, false},
		{"explicit", 40, 10, 10, false},
		{"negative skip", -1, 10, 0, true},
		{"negative limit", 0, -5, 0, true},
		{"limit too large", 0, MaxLimit + 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NewPage(tt.skip, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if page.Limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", page.Limit, tt.wantLimit)
			}
		})
	}
}

func TestPaginateSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name        string
		page        Page
		wantItems   int
		wantHasMore bool
	}{
		{"first page", Page{Skip: 0, Limit: 2}, 2, true},
		{"last partial page", Page{Skip: 4, Limit: 2}, 1, false},
		{"exact end", Page{Skip: 3, Limit: 2}, 2, false},
		{"past the end", Page{Skip: 10, Limit: 2}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaginateSlice(all, tt.page)
			if len(got.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(got.Items), tt.wantItems)
			}
			if got.HasMore != tt.wantHasMore {
				t.Errorf("has_more = %v, want %v", got.HasMore, tt.wantHasMore)
			}
			if got.Total != len(all) {
				t.Errorf("total = %d, want %d", got.Total, len(all))
			}
		})
	}
}
