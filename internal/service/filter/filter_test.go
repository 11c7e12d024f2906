package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

func sampleRecords() []model.PersonRecord {
	return []model.PersonRecord{
		{FullName: "Ana", Department: "Montevideo", Interest: "Voluntaria"},
		{FullName: "Bruno", Department: "Canelones", Interest: "Referente"},
		{FullName: "Carla", Department: "Montevideo", Interest: "Referente"},
		{FullName: "Diego", Department: "Rivera", Interest: ""},
	}
}

func names(records []model.PersonRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.FullName
	}
	return out
}

func TestApply_DefaultSelectsObserved(t *testing.T) {
	t.Parallel()

	got := names(Apply(sampleRecords(), Selection{}))
	want := []string{"Ana", "Bruno", "Carla"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("default filter mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_BothFacets(t *testing.T) {
	t.Parallel()

	sel := Selection{Departments: []string{"Montevideo"}, Interests: []string{"Referente"}}
	got := names(Apply(sampleRecords(), sel))
	if diff := cmp.Diff([]string{"Carla"}, got); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_EmptySelectionYieldsNothing(t *testing.T) {
	t.Parallel()

	if got := Apply(sampleRecords(), Selection{Departments: []string{}}); len(got) != 0 {
		t.Fatalf("empty department selection should yield nothing, got %v", names(got))
	}
	if got := Apply(sampleRecords(), Selection{Interests: []string{}}); len(got) != 0 {
		t.Fatalf("empty interest selection should yield nothing, got %v", names(got))
	}
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	selections := []Selection{
		{},
		{Departments: []string{"Montevideo", "Rivera"}},
		{Interests: []string{"Referente"}},
		{Departments: []string{"Canelones"}, Interests: []string{"Voluntaria", "Referente"}},
	}
	for _, sel := range selections {
		once := Apply(sampleRecords(), sel)
		twice := Apply(once, sel)
		if diff := cmp.Diff(names(once), names(twice)); diff != "" {
			t.Fatalf("filter not idempotent for %+v (-once +twice):\n%s", sel, diff)
		}
	}
}

func TestObserve(t *testing.T) {
	t.Parallel()

	f := Observe(sampleRecords())
	if diff := cmp.Diff([]string{"Canelones", "Montevideo", "Rivera"}, f.Departments); diff != "" {
		t.Fatalf("departments mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Referente", "Voluntaria"}, f.Interests); diff != "" {
		t.Fatalf("interests mismatch (-want +got):\n%s", diff)
	}
}
