package store

import "testing"

func TestPageOf(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := PageOf(items, 1, 2)
	if page.Total != 5 || page.TotalPages != 3 {
		t.Errorf("Total/TotalPages = %d/%d, want 5/3", page.Total, page.TotalPages)
	}
	if got := page.Items.([]int); len(got) != 2 || got[0] != 1 {
		t.Errorf("Page 1 items = %v, want [1 2]", got)
	}

	page = PageOf(items, 3, 2)
	if got := page.Items.([]int); len(got) != 1 || got[0] != 5 {
		t.Errorf("Page 3 items = %v, want [5]", got)
	}

	// Past the end is empty, not an error.
	page = PageOf(items, 9, 2)
	if got := page.Items.([]int); len(got) != 0 {
		t.Errorf("Page 9 items = %v, want empty", got)
	}

	page = PageOf([]int{}, 1, 20)
	if page.Total != 0 || page.TotalPages != 0 {
		t.Errorf("Empty list Total/TotalPages = %d/%d, want 0/0", page.Total, page.TotalPages)
	}
}

func TestPageOfClampsOutOfRangeParameters(t *testing.T) {
	items := []int{1, 2, 3}

	// page <= 0 clamps to the first page.
	page := PageOf(items, 0, 2)
	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}
	if got := page.Items.([]int); len(got) != 2 || got[0] != 1 {
		t.Errorf("Page 0 items = %v, want [1 2]", got)
	}
	page = PageOf(items, -5, 2)
	if got := page.Items.([]int); len(got) != 2 || got[0] != 1 {
		t.Errorf("Page -5 items = %v, want [1 2]", got)
	}

	// pageSize <= 0 clamps to 1 instead of dividing by zero.
	page = PageOf(items, 1, 0)
	if page.PageSize != 1 || page.TotalPages != 3 {
		t.Errorf("PageSize/TotalPages = %d/%d, want 1/3", page.PageSize, page.TotalPages)
	}
	if got := page.Items.([]int); len(got) != 1 || got[0] != 1 {
		t.Errorf("PageSize 0 items = %v, want [1]", got)
	}
}
