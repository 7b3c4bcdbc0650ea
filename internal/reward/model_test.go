package reward

import (
	"math"
	"testing"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/entropy"
	"github.com/talgya/softkill/internal/world"
)

func TestExpectedComposesTables(t *testing.T) {
	m := NewModel(false, entropy.New(1))

	// Longsight advance 8, pirate advance +2, Desert Glass advance -1,
	// Clear 0.
	got := m.Expected(agents.RoleLongsight, agents.ActionAdvance, world.Scenarios[2], "Desert Glass", "Clear")
	if got != 9 {
		t.Fatalf("expected 9, got %v", got)
	}

	// Lifebinder stabilise 10, ocean +2, Oceanic Platforms +2, Gravity Eddies +1.
	got = m.Expected(agents.RoleLifebinder, agents.ActionStabilise, world.Scenarios[3], "Oceanic Platforms", "Gravity Eddies")
	if got != 15 {
		t.Fatalf("expected 15, got %v", got)
	}
}

func TestLookupMissesContributeZero(t *testing.T) {
	m := NewModel(true, entropy.New(1))
	got := m.Expected(agents.RoleUnknown, agents.ActionAdvance, "a quiet day", "Gas Giant", "Fog")
	if got != 0 {
		t.Fatalf("expected 0 for all-miss lookup, got %v", got)
	}
	if got := m.Expected(agents.RoleBrawler, agents.ActionKind(9), world.Scenarios[0], "Ice Ridge", "Clear"); got != 0 {
		t.Fatalf("invalid action should score 0, got %v", got)
	}
}

func TestEthicsBonus(t *testing.T) {
	cases := []struct {
		name   string
		role   agents.Role
		action agents.ActionKind
		key    string
		want   float64
	}{
		{"magnetar withdraw", agents.RoleSpecter, agents.ActionWithdraw, world.KeyMagnetar, BonusSaveCivilian},
		{"explosives magnetar withdraw stacks", agents.RoleExplosivesExpert, agents.ActionWithdraw, world.KeyMagnetar, 2 * BonusSaveCivilian},
		{"archivist pirate negotiate", agents.RoleArchivist, agents.ActionNegotiate, world.KeyPirate, BonusDeescalate + BonusDocument},
		{"brawler defend anywhere", agents.RoleBrawler, agents.ActionDefend, "", BonusSaveCivilian},
		{"armsmaster pirate advance", agents.RoleArmsmaster, agents.ActionAdvance, world.KeyPirate, BonusDeescalate},
		{"armsmaster schism advance", agents.RoleArmsmaster, agents.ActionAdvance, world.KeySchism, 0},
		{"ocean advance", agents.RoleLongsight, agents.ActionAdvance, world.KeyOcean, BonusSaveCivilian},
		{"no match", agents.RoleWhisper, agents.ActionAdvance, world.KeySchism, 0},
	}
	for _, tc := range cases {
		if got := EthicsBonus(tc.role, tc.action, tc.key); got != tc.want {
			t.Errorf("%s: bonus = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEthicsToggle(t *testing.T) {
	on := NewModel(true, entropy.New(1))
	off := NewModel(false, entropy.New(1))
	args := func(m *Model) float64 {
		return m.Expected(agents.RoleWhisper, agents.ActionNegotiate, world.Scenarios[4], "Crystal Caves", "Sonic Winds")
	}
	if diff := args(on) - args(off); diff != BonusDeescalate {
		t.Fatalf("ethics difference = %v, want %v", diff, BonusDeescalate)
	}
}

func TestNoiseIsBounded(t *testing.T) {
	m := NewModel(true, entropy.New(2024))
	const n = 20000
	expected := m.Expected(agents.RoleArchivist, agents.ActionDefend, world.Scenarios[1], "Ice Ridge", "Ion Storm")

	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for i := 0; i < n; i++ {
		noise := m.Calculate(agents.RoleArchivist, agents.ActionDefend, world.Scenarios[1], "Ice Ridge", "Ion Storm") - expected
		if noise < -NoiseAmplitude-1e-9 || noise > NoiseAmplitude+1e-9 {
			t.Fatalf("noise %v outside [-1.5, 1.5)", noise)
		}
		lo = math.Min(lo, noise)
		hi = math.Max(hi, noise)
		sum += noise
	}
	if lo > -1.4 || hi < 1.4 {
		t.Errorf("noise did not span the interval: [%v, %v]", lo, hi)
	}
	if mean := sum / n; math.Abs(mean) > 0.05 {
		t.Errorf("noise mean = %v, want near 0", mean)
	}
}

func TestCalculateReplaysUnderSeed(t *testing.T) {
	a := NewModel(true, entropy.New(77))
	b := NewModel(true, entropy.New(77))
	for i := 0; i < 10; i++ {
		x := a.Calculate(agents.RoleSpecter, agents.ActionAdvance, world.Scenarios[2], "Jungle Canopy", "Sandstorm")
		y := b.Calculate(agents.RoleSpecter, agents.ActionAdvance, world.Scenarios[2], "Jungle Canopy", "Sandstorm")
		if x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}

func TestBaseReward(t *testing.T) {
	if BaseReward(agents.RoleWhisper, agents.ActionNegotiate) != 10 {
		t.Fatal("Whisper negotiate base should be 10")
	}
	if BaseReward(agents.RoleUnknown, agents.ActionNegotiate) != 0 {
		t.Fatal("unknown role base should be 0")
	}
}
