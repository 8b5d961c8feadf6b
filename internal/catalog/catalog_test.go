package catalog

import "testing"

func TestItemsDenseAndUnique(t *testing.T) {
	all := Items()
	if len(all) != MaxID {
		t.Fatalf("expected %d catalog items, got %d", MaxID, len(all))
	}

	seen := map[int]bool{}
	for i, it := range all {
		if it.ID != i+1 {
			t.Errorf("expected item at index %d to have ID %d, got %d", i, i+1, it.ID)
		}
		if it.Title == "" {
			t.Errorf("catalog ID %d has an empty title", it.ID)
		}
		if seen[it.ID] {
			t.Errorf("duplicate catalog ID %d", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestTitle(t *testing.T) {
	if got := Title(9); got != "HSTS Enabled" {
		t.Errorf("Title(9) = %q, want %q", got, "HSTS Enabled")
	}
	if got := Title(99); got != "" {
		t.Errorf("Title(99) = %q, want empty string", got)
	}
}

func TestContains(t *testing.T) {
	for id := MinID; id <= MaxID; id++ {
		if !Contains(id) {
			t.Errorf("expected Contains(%d) to be true", id)
		}
	}
	for _, id := range []int{0, -1, 29, 100} {
		if Contains(id) {
			t.Errorf("expected Contains(%d) to be false", id)
		}
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	first := Items()
	first[0].Title = "mutated"

	if Items()[0].Title == "mutated" {
		t.Fatal("Items must return a copy of the catalog")
	}
}
