package types

import (
	"testing"
	"time"
)

func TestAgeHandlesBirthdayBoundary(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		birthDate time.Time
		want      int
	}{
		{name: "birthday_today", birthDate: time.Date(2020, 8, 30, 0, 0, 0, 0, time.UTC), want: 6},
		{name: "birthday_tomorrow", birthDate: time.Date(2020, 8, 31, 0, 0, 0, 0, time.UTC), want: 5},
		{name: "birthday_yesterday", birthDate: time.Date(2020, 8, 29, 0, 0, 0, 0, time.UTC), want: 6},
		{name: "newborn", birthDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), want: 0},
		{name: "future_birth_date", birthDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), want: 0},
		{name: "zero_birth_date", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Child{BirthDate: tc.birthDate}
			if got := c.Age(now); got != tc.want {
				t.Fatalf("Age=%d, want %d", got, tc.want)
			}
		})
	}

	var nilChild *Child
	if got := nilChild.Age(now); got != 0 {
		t.Fatalf("nil child Age=%d, want 0", got)
	}
}

func TestAgeBracketBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		age  int
		want string
	}{
		{age: 0, want: AgeBracketInfant},
		{age: 1, want: AgeBracketInfant},
		{age: 2, want: AgeBracketToddler},
		{age: 4, want: AgeBracketToddler},
		{age: 5, want: AgeBracketElementary},
		{age: 11, want: AgeBracketElementary},
		{age: 12, want: AgeBracketTeen},
		{age: 17, want: AgeBracketTeen},
		{age: 18, want: AgeBracketYoungAdult},
	}
	for _, tc := range cases {
		c := &Child{BirthDate: now.AddDate(-tc.age, 0, -1)}
		if got := c.AgeBracket(now); got != tc.want {
			t.Fatalf("age %d: AgeBracket=%q, want %q", tc.age, got, tc.want)
		}
	}
}

func TestChildListAccessors(t *testing.T) {
	c := &Child{
		Interests:         EncodeStringList([]string{"dinosaurs", "space"}),
		CurrentChallenges: EncodeStringList(nil),
	}
	if got := c.InterestList(); len(got) != 2 || got[0] != "dinosaurs" {
		t.Fatalf("InterestList=%v", got)
	}
	if got := c.ChallengeList(); len(got) != 0 {
		t.Fatalf("ChallengeList=%v, want empty", got)
	}
	// Unset JSON columns decode as nil rather than erroring.
	if got := c.TraitList(); got != nil {
		t.Fatalf("TraitList=%v for unset column, want nil", got)
	}

	var nilChild *Child
	if nilChild.InterestList() != nil || nilChild.ChallengeList() != nil || nilChild.TraitList() != nil {
		t.Fatalf("nil child accessors must return nil")
	}
}
