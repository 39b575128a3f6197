package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(0, 0)
	if p.Page != 1 {
		t.Errorf("page: got %d, want 1", p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("limit: got %d, want %d", p.Limit, DefaultLimit)
	}
	if p.Offset != 0 {
		t.Errorf("offset: got %d, want 0", p.Offset)
	}
}

func TestNormalizeClampsLimit(t *testing.T) {
	p := Normalize(2, 500)
	if p.Limit != MaxLimit {
		t.Errorf("limit: got %d, want %d", p.Limit, MaxLimit)
	}
	if p.Offset != MaxLimit {
		t.Errorf("offset: got %d, want %d", p.Offset, MaxLimit)
	}
}

func TestNormalizeOffset(t *testing.T) {
	p := Normalize(3, 25)
	if p.Offset != 50 {
		t.Errorf("offset: got %d, want 50", p.Offset)
	}
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(Normalize(2, 20), 45)
	if meta.TotalPages != 3 {
		t.Errorf("total pages: got %d, want 3", meta.TotalPages)
	}
	if !meta.HasNext {
		t.Error("page 2 of 3 should have a next page")
	}
	if !meta.HasPrev {
		t.Error("page 2 should have a previous page")
	}
}

func TestGetMetaExactFit(t *testing.T) {
	meta := GetMeta(Normalize(2, 20), 40)
	if meta.TotalPages != 2 {
		t.Errorf("total pages: got %d, want 2", meta.TotalPages)
	}
	if meta.HasNext {
		t.Error("last page must not have a next page")
	}
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b"}
	resp := NewResponse(data, Normalize(1, 20), 2)
	if resp.Meta.Total != 2 {
		t.Errorf("total: got %d, want 2", resp.Meta.Total)
	}
	if resp.Meta.HasNext || resp.Meta.HasPrev {
		t.Error("single page response has no neighbours")
	}
}
