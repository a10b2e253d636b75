package types

import (
	"testing"
)

func TestPrimaryTag(t *testing.T) {
	p := &Prompt{Tags: EncodeStringList([]string{"outdoors", "movement"})}
	if got := p.PrimaryTag(); got != "outdoors" {
		t.Fatalf("PrimaryTag=%q, want outdoors", got)
	}

	untagged := &Prompt{}
	if got := untagged.PrimaryTag(); got != "none" {
		t.Fatalf("PrimaryTag=%q for untagged prompt, want none", got)
	}
}

func TestMatchesAgeBracket(t *testing.T) {
	cases := []struct {
		name       string
		categories []string
		bracket    string
		want       bool
	}{
		{name: "exact_match", categories: []string{AgeBracketToddler, AgeBracketElementary}, bracket: AgeBracketElementary, want: true},
		{name: "all_matches_everything", categories: []string{AgeCategoryAll}, bracket: AgeBracketTeen, want: true},
		{name: "no_match", categories: []string{AgeBracketInfant}, bracket: AgeBracketTeen, want: false},
		{name: "empty_matches_nothing", categories: nil, bracket: AgeBracketTeen, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Prompt{AgeCategories: EncodeStringList(tc.categories)}
			if got := p.MatchesAgeBracket(tc.bracket); got != tc.want {
				t.Fatalf("MatchesAgeBracket=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsFaithTagged(t *testing.T) {
	cases := []struct {
		name string
		tags []string
		want bool
	}{
		{name: "faith_tag", tags: []string{"faith"}, want: true},
		{name: "lds_tag", tags: []string{"lds-scripture"}, want: true},
		{name: "case_insensitive", tags: []string{"Faith-Building"}, want: true},
		{name: "substring", tags: []string{"interfaith"}, want: true},
		{name: "secular", tags: []string{"outdoors", "movement"}, want: false},
		{name: "untagged", tags: nil, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Prompt{Tags: EncodeStringList(tc.tags)}
			if got := p.IsFaithTagged(); got != tc.want {
				t.Fatalf("IsFaithTagged=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompletionHelpers(t *testing.T) {
	note := "  "
	c := &Completion{ReflectionNote: &note}
	if c.HasReflectionNote() {
		t.Fatalf("whitespace-only note should not count")
	}
	real := "she asked to do it again"
	c.ReflectionNote = &real
	if !c.HasReflectionNote() {
		t.Fatalf("non-empty note should count")
	}

	if _, ok := c.Duration(); ok {
		t.Fatalf("missing duration should report ok=false")
	}
	d := 420
	c.DurationSeconds = &d
	if got, ok := c.Duration(); !ok || got != 420 {
		t.Fatalf("Duration=%d ok=%v, want 420 true", got, ok)
	}

	var nilCompletion *Completion
	if nilCompletion.HasReflectionNote() {
		t.Fatalf("nil completion has no note")
	}
}
