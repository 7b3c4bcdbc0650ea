package learning

import (
	"errors"
	"testing"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/entropy"
	"github.com/talgya/softkill/internal/reward"
	"github.com/talgya/softkill/internal/world"
)

// favouring scores one action at 10 and every other action at -10.
type favouring struct {
	action agents.ActionKind
	calls  int
}

func (f *favouring) Calculate(_ agents.Role, a agents.ActionKind, _, _, _ string) float64 {
	f.calls++
	if a == f.action {
		return 10
	}
	return -10
}

func newTrainer(t *testing.T, hp Hyperparams, scorer reward.Scorer, seed int64) *Trainer {
	t.Helper()
	tr, err := NewTrainer(hp, scorer, entropy.New(seed))
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	return tr
}

func TestZeroEpisodesLeavesTableEmpty(t *testing.T) {
	scorer := &favouring{action: agents.ActionNegotiate}
	hp := Hyperparams{Episodes: 0, Gamma: 0.9, Alpha: 0.3, Epsilon: 0.2}
	table := newTrainer(t, hp, scorer, 1).Train(agents.RoleLongsight)

	if len(table.States) != len(world.ScenarioKeys()) {
		t.Fatalf("states = %v", table.States)
	}
	for s, row := range table.Values {
		for a, v := range row {
			if v != 0 {
				t.Fatalf("Q[%d][%d] = %v, want 0", s, a, v)
			}
		}
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer called %d times", scorer.calls)
	}
}

func TestGreedyConvergesToFavouredAction(t *testing.T) {
	for _, favoured := range agents.Actions() {
		scorer := &favouring{action: favoured}
		hp := Hyperparams{Episodes: 1000, Gamma: 0.9, Alpha: 0.3, Epsilon: 0}
		table := newTrainer(t, hp, scorer, 11).Train(agents.RoleLongsight)

		for s := range table.States {
			if got := table.Best(s); got != favoured {
				t.Errorf("favoured %s: state %s picks %s", favoured, table.States[s], got)
			}
		}
	}
}

func TestPirateAdvanceWithRewardModel(t *testing.T) {
	// Longsight's advance base is its highest, and pirate adds +2 to it.
	src := entropy.New(2024)
	model := reward.NewModel(false, src)
	tr, err := NewTrainer(Hyperparams{Episodes: 1000, Gamma: 0.9, Alpha: 0.3, Epsilon: 0}, model, src)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	table := tr.Train(agents.RoleLongsight)

	got, ok := table.Greedy(world.Scenarios[2])
	if !ok {
		t.Fatal("trained table reported no policy")
	}
	if got != agents.ActionAdvance {
		t.Fatalf("pirate scenario picks %s, want advance (row %v)", got, table.Values[table.StateIndex("pirate")])
	}
}

func TestTrainingIsReproducible(t *testing.T) {
	run := func() *Table {
		src := entropy.New(5)
		tr, err := NewTrainer(DefaultHyperparams(), reward.NewModel(true, src), src)
		if err != nil {
			t.Fatalf("NewTrainer: %v", err)
		}
		return tr.Train(agents.RoleLongsight)
	}
	a, b := run(), run()
	for s := range a.Values {
		if a.Values[s] != b.Values[s] {
			t.Fatalf("row %d differs: %v vs %v", s, a.Values[s], b.Values[s])
		}
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	bad := []Hyperparams{
		{Episodes: -1, Gamma: 0.9, Alpha: 0.3, Epsilon: 0.2},
		{Episodes: 10, Gamma: 1.1, Alpha: 0.3, Epsilon: 0.2},
		{Episodes: 10, Gamma: 0.9, Alpha: -0.1, Epsilon: 0.2},
		{Episodes: 10, Gamma: 0.9, Alpha: 0.3, Epsilon: 2},
	}
	for _, hp := range bad {
		if _, err := NewTrainer(hp, &favouring{}, entropy.New(1)); !errors.Is(err, ErrHyperparameter) {
			t.Errorf("%+v: expected ErrHyperparameter, got %v", hp, err)
		}
	}
	if err := DefaultHyperparams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestTableLookup(t *testing.T) {
	table := NewTable([]string{"magnetar", "pirate"})
	table.Values[1] = [agents.NumActions]float64{1, 3, 3, 0, 0}

	if table.StateIndex("Pirate corsairs") != 1 {
		t.Fatal("pirate narrative should map to state 1")
	}
	if table.StateIndex("nothing relevant") != 0 {
		t.Fatal("unmatched narrative should map to state 0")
	}
	if got, _ := table.Greedy("PIRATES!"); got != agents.ActionDefend {
		t.Fatalf("tie should break to lowest index, got %s", got)
	}
	var empty *Table
	if _, ok := empty.Greedy("pirate"); ok {
		t.Fatal("nil table should report no policy")
	}
	if _, ok := NewTable(nil).Greedy("pirate"); ok {
		t.Fatal("stateless table should report no policy")
	}
}
