package agents

import (
	"errors"
	"testing"
)

func TestNewAttributeSetBounds(t *testing.T) {
	cases := []struct {
		name string
		vals [5]int
		ok   bool
	}{
		{"all default", [5]int{60, 60, 60, 60, 60}, true},
		{"edges", [5]int{0, 110, 0, 110, 55}, true},
		{"over max", [5]int{150, 60, 60, 60, 60}, false},
		{"under min", [5]int{60, 60, -10, 60, 60}, false},
		{"just over", [5]int{60, 60, 60, 60, 111}, false},
	}
	for _, tc := range cases {
		_, err := NewAttributeSet(tc.vals[0], tc.vals[1], tc.vals[2], tc.vals[3], tc.vals[4])
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrAttributeRange) {
			t.Errorf("%s: expected ErrAttributeRange, got %v", tc.name, err)
		}
	}
}

func TestWithModifierClampsAndCopies(t *testing.T) {
	base, err := NewAttributeSet(108, 1, 60, 60, 60)
	if err != nil {
		t.Fatalf("NewAttributeSet: %v", err)
	}
	got := base.WithModifier(Modifier{9, -3, 10, 0, 0})

	if got.Strength != MaxAttribute {
		t.Errorf("strength = %d, want clamp to %d", got.Strength, MaxAttribute)
	}
	if got.Empathy != MinAttribute {
		t.Errorf("empathy = %d, want clamp to %d", got.Empathy, MinAttribute)
	}
	if got.Intelligence != 70 {
		t.Errorf("intelligence = %d, want 70", got.Intelligence)
	}
	if base.Strength != 108 || base.Empathy != 1 {
		t.Fatalf("original mutated: %+v", base)
	}
}

func TestAttributeMapKeys(t *testing.T) {
	m := DefaultAttributes().Map()
	for _, k := range []string{"Strength", "Empathy", "Intelligence", "Mobility", "Tactical"} {
		if m[k] != DefaultAttribute {
			t.Errorf("%s = %d, want %d", k, m[k], DefaultAttribute)
		}
	}
}

func TestSpeciesModifierUnknownIsZero(t *testing.T) {
	if m := SpeciesModifier("Kragath"); m != (Modifier{}) {
		t.Fatalf("expected zero modifier, got %v", m)
	}
	if m := SpeciesModifier("Aetherborn"); m[AttrStrength] != 9 {
		t.Fatalf("Aetherborn strength delta = %d, want 9", m[AttrStrength])
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("Explosives Expert") != RoleExplosivesExpert {
		t.Fatal("expected Explosives Expert to resolve")
	}
	if ParseRole("Bruiser") != RoleUnknown {
		t.Fatal("expected unknown role")
	}
	if len(Roles()) != 8 {
		t.Fatalf("expected 8 roles, got %d", len(Roles()))
	}
	if RoleUnknown.Banter() != nil {
		t.Fatal("unknown role should have no banter")
	}
}

func TestRuleActionFirstMatchWins(t *testing.T) {
	cases := []struct {
		role     Role
		scenario string
		want     ActionKind
	}{
		{RoleLifebinder, "Planetary OCEAN rising", ActionStabilise},
		{RoleLifebinder, "Clan schism", ActionDefend},
		{RoleWhisper, "Pirate corsairs blockading stargate", ActionNegotiate},
		{RoleSpecter, "Pirate corsairs", ActionAdvance},
		{RoleSpecter, "Refugee flotilla near a magnetar", ActionDefend},
		{RoleBrawler, "Xenofauna stampede", ActionAdvance},
		{RoleArmsmaster, "Refugee flotilla near a magnetar", ActionDefend},
		{RoleArmsmaster, "Clan schism", ActionAdvance},
		{RoleExplosivesExpert, "pirate", ActionAdvance},
		{RoleArchivist, "schism", ActionNegotiate},
		{RoleLongsight, "pirate", ActionDefend},
		{RoleUnknown, "pirate", ActionDefend},
	}
	for _, tc := range cases {
		if got := RuleAction(tc.role, tc.scenario); got != tc.want {
			t.Errorf("%s on %q = %s, want %s", tc.role, tc.scenario, got, tc.want)
		}
	}
}

type fixedPolicy struct {
	action ActionKind
	ok     bool
}

func (p fixedPolicy) Greedy(string) (ActionKind, bool) { return p.action, p.ok }

func TestChooseActionUsesPolicyOnlyForTrainedRole(t *testing.T) {
	policy := fixedPolicy{action: ActionWithdraw, ok: true}

	sniper := NewAgent("Longsight", "Vyr'khai", DefaultAttributes())
	if got := ChooseAction(sniper, "pirate", policy); got != ActionWithdraw {
		t.Fatalf("trained role ignored policy: got %s", got)
	}
	if got := ChooseAction(sniper, "pirate", nil); got != ActionDefend {
		t.Fatalf("trained role without policy: got %s, want defend", got)
	}
	if got := ChooseAction(sniper, "pirate", fixedPolicy{}); got != ActionDefend {
		t.Fatalf("empty policy should fall back to rules: got %s", got)
	}

	medic := NewAgent("Lifebinder", "Lumenari", DefaultAttributes())
	if got := ChooseAction(medic, "ocean rising", policy); got != ActionStabilise {
		t.Fatalf("untrained role used policy: got %s", got)
	}
}

func TestMoveClampsAndRecords(t *testing.T) {
	a := NewAgent("Specter", "Zephryl", DefaultAttributes())
	if len(a.Trajectory) != 1 || a.Trajectory[0] != StartPosition {
		t.Fatalf("trajectory should start with the initial position, got %v", a.Trajectory)
	}
	a.Move(0.1, 0.1)
	a.Move(2, -2)
	if a.Position != (Position{X: 1, Y: 0}) {
		t.Fatalf("expected clamp to (1, 0), got %+v", a.Position)
	}
	if len(a.Trajectory) != 3 {
		t.Fatalf("trajectory length = %d, want 3", len(a.Trajectory))
	}
}

func TestRewardMultiplierRange(t *testing.T) {
	a := NewAgent("Brawler", "", AttributeSet{Strength: 0})
	if a.RewardMultiplier() != 0.5 {
		t.Fatalf("multiplier at 0 = %v", a.RewardMultiplier())
	}
	a.Stats.Strength = MaxAttribute
	if a.RewardMultiplier() != 1.05 {
		t.Fatalf("multiplier at max = %v", a.RewardMultiplier())
	}
}

func TestBuildSquadPreservesOrderAndAppliesSpecies(t *testing.T) {
	squad, err := BuildSquad([]Spec{
		{Role: "Whisper", Species: "Mycelian", Base: DefaultAttributes()},
		{Role: "Brawler", Species: "Aetherborn", Base: DefaultAttributes()},
		{Role: "Archivist", Species: "Ferroth", Base: DefaultAttributes()},
	})
	if err != nil {
		t.Fatalf("BuildSquad: %v", err)
	}
	roles := squad.Roles()
	want := []string{"Whisper", "Brawler", "Archivist"}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
	brawler, ok := squad.Agent("Brawler")
	if !ok {
		t.Fatal("Brawler missing")
	}
	if brawler.Stats.Strength != 69 || brawler.Stats.Intelligence != 68 {
		t.Fatalf("species modifiers not applied: %+v", brawler.Stats)
	}
	if brawler.Description != "Hand-to-hand combat specialist" {
		t.Fatalf("description = %q", brawler.Description)
	}
}

func TestBuildSquadRejectsDuplicatesAndBadStats(t *testing.T) {
	_, err := BuildSquad([]Spec{
		{Role: "Specter", Base: DefaultAttributes()},
		{Role: "Specter", Base: DefaultAttributes()},
	})
	if !errors.Is(err, ErrDuplicateRole) {
		t.Fatalf("expected ErrDuplicateRole, got %v", err)
	}

	_, err = BuildSquad([]Spec{{Role: "Specter", Base: AttributeSet{Strength: 200}}})
	if !errors.Is(err, ErrAttributeRange) {
		t.Fatalf("expected ErrAttributeRange, got %v", err)
	}
}
