package game

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
)

// newTestGame deals a game with a fixed role layout, player_1 gets roles[0].
func newTestGame(roles ...Role) *Game {
	return newFromRoles(roles)
}

func standardTable() *Game {
	return newTestGame(RoleMafia, RoleCommoner, RoleDetective, RoleHealer, RoleCommoner, RoleCommoner)
}

func mustPlayer(t *testing.T, g *Game, id string) Player {
	t.Helper()
	p, ok := g.Player(id)
	if !ok {
		t.Fatalf("player %s not found", id)
	}
	return p
}

func TestRoleCounts(t *testing.T) {
	for n := MinPlayers; n <= 50; n++ {
		counts := RoleCounts(n)
		total := 0
		for _, c := range counts {
			total += c
		}
		if total != n {
			t.Errorf("n=%d: expected roles to sum to %d, got %d", n, n, total)
		}
		for _, role := range []Role{RoleMafia, RoleDetective, RoleHealer} {
			if counts[role] < 1 {
				t.Errorf("n=%d: expected at least one %s, got %d", n, role, counts[role])
			}
		}
		if counts[RoleCommoner] < 0 {
			t.Errorf("n=%d: negative commoner count", n)
		}
	}

	counts := RoleCounts(10)
	if counts[RoleMafia] != 2 || counts[RoleDetective] != 2 || counts[RoleHealer] != 1 || counts[RoleCommoner] != 5 {
		t.Errorf("unexpected distribution for 10 players: %v", counts)
	}
}

func TestNew_TooFewPlayers(t *testing.T) {
	_, err := New(5, "")
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNew_InitialState(t *testing.T) {
	g, err := New(8, "", WithRand(rand.New(rand.NewSource(7))))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	s := g.Snapshot()
	if len(s.Players) != 8 {
		t.Fatalf("Expected 8 players, got %d", len(s.Players))
	}
	if s.CurrentPhase() != PhaseNight || s.Round != 1 || s.GameEnded {
		t.Errorf("unexpected initial state: phase=%s round=%d ended=%v", s.CurrentPhase(), s.Round, s.GameEnded)
	}
	for i, p := range s.Players {
		if p.IsUser != (i == 0) {
			t.Errorf("player %d: unexpected isUser=%v", i, p.IsUser)
		}
		if p.HP != InitialHP(p.Role) || !p.IsAlive {
			t.Errorf("player %s: unexpected hp=%d alive=%v", p.ID, p.HP, p.IsAlive)
		}
	}
}

func TestNew_RequestedUserRole(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		for _, role := range []Role{RoleMafia, RoleDetective, RoleHealer, RoleCommoner} {
			g, err := New(6, role, WithRand(rand.New(rand.NewSource(seed))))
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			user, _ := g.UserPlayer()
			if user.Role != role {
				t.Errorf("seed %d: expected user role %s, got %s", seed, role, user.Role)
			}
		}
	}
}

func TestNew_WithNames(t *testing.T) {
	g, err := New(6, "", WithNames("alice", "", "bob"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	s := g.Snapshot()
	if s.Players[0].Name != "alice" || s.Players[1].Name != "Player 2" || s.Players[2].Name != "bob" {
		t.Errorf("unexpected names: %q %q %q", s.Players[0].Name, s.Players[1].Name, s.Players[2].Name)
	}
}

func TestSetTargets_Validation(t *testing.T) {
	g := newTestGame(RoleMafia, RoleMafia, RoleDetective, RoleDetective, RoleHealer, RoleHealer, RoleCommoner)

	if err := g.SetMafiaTarget("player_2"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Mafia targeting Mafia: expected ErrInvalidTarget, got %v", err)
	}
	if err := g.SetDetectiveTarget("player_4"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Detective targeting Detective: expected ErrInvalidTarget, got %v", err)
	}
	if err := g.SetHealerTarget("player_6"); err != nil {
		t.Errorf("Healer targeting Healer should be allowed, got %v", err)
	}
	if err := g.SetMafiaTarget("nobody"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("missing target: expected ErrInvalidTarget, got %v", err)
	}

	g.state.Players[6].IsAlive = false
	if err := g.SetHealerTarget("player_7"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("dead target: expected ErrInvalidTarget, got %v", err)
	}
	if err := g.SetNightTarget(RoleCommoner, "player_1"); !errors.Is(err, ErrNoNightAction) {
		t.Errorf("Commoner night action: expected ErrNoNightAction, got %v", err)
	}

	actions, _ := g.Snapshot().NightActions()
	if actions.MafiaTarget != "" || actions.DetectiveTarget != "" {
		t.Errorf("rejected submissions must not be stored: %+v", actions)
	}
}

func TestSetTargets_LatestWins(t *testing.T) {
	g := standardTable()
	if err := g.SetMafiaTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetMafiaTarget("player_5"); err != nil {
		t.Fatal(err)
	}
	actions, _ := g.Snapshot().NightActions()
	if actions.MafiaTarget != "player_5" {
		t.Errorf("Expected latest target player_5, got %s", actions.MafiaTarget)
	}
}

func TestSetTargets_IgnoredDuringDay(t *testing.T) {
	g := standardTable()
	g.FlipPhase()
	if err := g.SetMafiaTarget("nobody"); err != nil {
		t.Errorf("night submission during day should be a no-op, got %v", err)
	}
}

func TestProcessNight_MafiaKillsCommoner(t *testing.T) {
	g := standardTable()
	if err := g.SetMafiaTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	victim := mustPlayer(t, g, "player_2")
	if victim.IsAlive || victim.HP != 0 {
		t.Errorf("Expected commoner dead with 0 hp, got alive=%v hp=%d", victim.IsAlive, victim.HP)
	}
	mafia := mustPlayer(t, g, "player_1")
	if mafia.HP != 1500 {
		t.Errorf("Expected mafia hp 1500, got %d", mafia.HP)
	}
	if g.Phase() != PhaseDay {
		t.Errorf("Expected day phase, got %s", g.Phase())
	}
	if g.Round() != 1 {
		t.Errorf("round must not advance at night resolution, got %d", g.Round())
	}
}

func TestProcessNight_TargetSurvivesWeakMafia(t *testing.T) {
	g := standardTable()
	g.state.Players[0].HP = 300
	if err := g.SetMafiaTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	victim := mustPlayer(t, g, "player_2")
	if !victim.IsAlive || victim.HP != 700 {
		t.Errorf("Expected target alive with 700 hp, got alive=%v hp=%d", victim.IsAlive, victim.HP)
	}
	if mafia := mustPlayer(t, g, "player_1"); mafia.HP != 0 || !mafia.IsAlive {
		t.Errorf("Expected mafia hp clamped at 0 and still alive, got hp=%d alive=%v", mafia.HP, mafia.IsAlive)
	}
}

func TestProcessNight_DamageSplitAcrossMafia(t *testing.T) {
	g := newTestGame(RoleMafia, RoleMafia, RoleCommoner, RoleDetective, RoleHealer, RoleCommoner, RoleCommoner, RoleCommoner)
	if err := g.SetMafiaTarget("player_3"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	for _, id := range []string{"player_1", "player_2"} {
		if p := mustPlayer(t, g, id); p.HP != 2000 {
			t.Errorf("%s: expected hp 2000, got %d", id, p.HP)
		}
	}
}

func TestProcessNight_DetectiveExposesMafia(t *testing.T) {
	g := standardTable()
	if err := g.SetDetectiveTarget("player_1"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetMafiaTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	s := g.Snapshot()
	mafia := mustPlayer(t, g, "player_1")
	if mafia.IsAlive || mafia.HP != 0 {
		t.Errorf("Expected exposed mafia eliminated, got alive=%v hp=%d", mafia.IsAlive, mafia.HP)
	}
	if victim := mustPlayer(t, g, "player_2"); !victim.IsAlive || victim.HP != 1000 {
		t.Errorf("mafia attack must be skipped, got alive=%v hp=%d", victim.IsAlive, victim.HP)
	}
	if s.CurrentPhase() != PhaseNight || s.Round != 1 {
		t.Errorf("Expected phase night round 1, got %s round %d", s.CurrentPhase(), s.Round)
	}
	vr := s.VotingResults()
	if vr == nil || vr.EliminatedPlayer != "player_1" || len(vr.Votes) != 0 {
		t.Errorf("unexpected voting results: %+v", vr)
	}
	if s.DetectiveResult == nil || !s.DetectiveResult.IsMafia {
		t.Errorf("unexpected detective result: %+v", s.DetectiveResult)
	}
	if !s.GameEnded || s.Winner != WinnerVillagers {
		t.Errorf("Expected villagers to win, got ended=%v winner=%q", s.GameEnded, s.Winner)
	}
}

func TestProcessNight_ExposureWithMafiaLeft(t *testing.T) {
	g := newTestGame(RoleMafia, RoleMafia, RoleDetective, RoleHealer,
		RoleCommoner, RoleCommoner, RoleCommoner, RoleCommoner, RoleCommoner, RoleCommoner)
	if err := g.SetDetectiveTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetMafiaTarget("player_5"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	if p := mustPlayer(t, g, "player_2"); p.IsAlive {
		t.Error("Expected the exposed mafia eliminated")
	}
	if g.Ended() {
		t.Fatalf("one mafia against eight must not end the game, winner %q", g.Winner())
	}
	s := g.Snapshot()
	if s.CurrentPhase() != PhaseNight || s.Round != 1 {
		t.Errorf("Expected night round 1 after the exposure, got %s round %d", s.CurrentPhase(), s.Round)
	}
	if vr := s.VotingResults(); vr == nil || vr.EliminatedPlayer != "player_2" {
		t.Errorf("Expected the exposure recorded, got %+v", vr)
	}

	// 超时翻到白天后曝光结果被丢弃
	g.FlipPhase()
	s = g.Snapshot()
	if s.CurrentPhase() != PhaseDay {
		t.Fatalf("Expected day, got %s", s.CurrentPhase())
	}
	if vr := s.VotingResults(); vr == nil || vr.EliminatedPlayer != "" || len(vr.Votes) != 0 {
		t.Errorf("Expected a fresh day tally, got %+v", vr)
	}
	if p := mustPlayer(t, g, "player_5"); !p.IsAlive || p.HP != 1000 {
		t.Errorf("the mafia attack must stay skipped, got alive=%v hp=%d", p.IsAlive, p.HP)
	}
}

func TestProcessNight_DetectiveClearsInnocent(t *testing.T) {
	g := standardTable()
	if err := g.SetDetectiveTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	s := g.Snapshot()
	if s.DetectiveResult == nil || s.DetectiveResult.IsMafia {
		t.Errorf("unexpected detective result: %+v", s.DetectiveResult)
	}
	if s.CurrentPhase() != PhaseDay {
		t.Errorf("Expected day phase, got %s", s.CurrentPhase())
	}
}

func TestProcessNight_HealRevivesKilledTarget(t *testing.T) {
	g := standardTable()
	if err := g.SetMafiaTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetHealerTarget("player_2"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	if p := mustPlayer(t, g, "player_2"); !p.IsAlive || p.HP != 500 {
		t.Errorf("Expected revived target with 500 hp, got alive=%v hp=%d", p.IsAlive, p.HP)
	}
}

func TestProcessNight_HealBoostsLivingTarget(t *testing.T) {
	g := standardTable()
	if err := g.SetHealerTarget("player_4"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	if p := mustPlayer(t, g, "player_4"); p.HP != 1300 {
		t.Errorf("Expected healer hp 1300, got %d", p.HP)
	}
}

func TestProcessNight_DeadHealerCannotHeal(t *testing.T) {
	g := newTestGame(RoleCommoner, RoleMafia, RoleDetective, RoleHealer, RoleCommoner, RoleCommoner)
	if err := g.SetMafiaTarget("player_4"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetHealerTarget("player_5"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	if healer := mustPlayer(t, g, "player_4"); healer.IsAlive || healer.HP != 0 {
		t.Fatalf("Expected the healer killed, got alive=%v hp=%d", healer.IsAlive, healer.HP)
	}
	if p := mustPlayer(t, g, "player_5"); p.HP != 1000 {
		t.Errorf("Expected the heal skipped, got hp %d", p.HP)
	}
}

func TestProcessNight_KilledHealerCannotSelfRevive(t *testing.T) {
	g := standardTable()
	if err := g.SetMafiaTarget("player_4"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetHealerTarget("player_4"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()

	if p := mustPlayer(t, g, "player_4"); p.IsAlive || p.HP != 0 {
		t.Errorf("Expected the healer to stay dead, got alive=%v hp=%d", p.IsAlive, p.HP)
	}
}

func TestProcessNight_Idempotent(t *testing.T) {
	g := standardTable()
	if err := g.SetMafiaTarget("player_5"); err != nil {
		t.Fatal(err)
	}
	g.ProcessNightActions()
	first := g.Snapshot()
	g.ProcessNightActions()
	second := g.Snapshot()

	for i := range first.Players {
		if first.Players[i] != second.Players[i] {
			t.Errorf("second resolution changed %s: %+v -> %+v", first.Players[i].ID, first.Players[i], second.Players[i])
		}
	}
}

func TestCheckWinCondition_Parity(t *testing.T) {
	g := newTestGame(RoleMafia, RoleMafia, RoleCommoner, RoleCommoner, RoleDetective, RoleHealer)
	g.state.Players[4].IsAlive = false
	g.state.Players[5].IsAlive = false
	g.checkWinCondition()

	if !g.Ended() || g.Winner() != WinnerMafia {
		t.Errorf("Expected Mafia win at 2v2, got ended=%v winner=%q", g.Ended(), g.Winner())
	}
}

func TestCheckWinCondition_Continues(t *testing.T) {
	g := standardTable()
	g.checkWinCondition()
	if g.Ended() {
		t.Error("fresh game must not be over")
	}
}

func TestCastVote_Validation(t *testing.T) {
	g := standardTable()
	if err := g.CastVote("player_2", "player_3"); err != nil {
		t.Errorf("vote at night should be a no-op, got %v", err)
	}

	g.FlipPhase()
	g.state.Players[5].IsAlive = false
	if err := g.CastVote("player_6", "player_1"); !errors.Is(err, ErrInvalidVote) {
		t.Errorf("dead voter: expected ErrInvalidVote, got %v", err)
	}
	if err := g.CastVote("player_1", "player_6"); !errors.Is(err, ErrInvalidVote) {
		t.Errorf("dead target: expected ErrInvalidVote, got %v", err)
	}
	if err := g.CastVote("ghost", "player_1"); !errors.Is(err, ErrInvalidVote) {
		t.Errorf("missing voter: expected ErrInvalidVote, got %v", err)
	}

	// repeat votes accumulate
	for range 3 {
		if err := g.CastVote("player_2", "player_1"); err != nil {
			t.Fatal(err)
		}
	}
	if got := g.Snapshot().VotingResults().Votes["player_1"]; got != 3 {
		t.Errorf("Expected 3 tallies, got %d", got)
	}
}

func TestProcessVoting_Tie(t *testing.T) {
	g := standardTable()
	g.FlipPhase()
	_ = g.CastVote("player_1", "player_3")
	_ = g.CastVote("player_2", "player_4")
	g.ProcessVoting()

	s := g.Snapshot()
	if vr := s.VotingResults(); vr == nil || len(vr.Votes) != 0 || vr.EliminatedPlayer != "" {
		t.Errorf("Expected empty tally after tie, got %+v", vr)
	}
	if s.Round != 1 || s.CurrentPhase() != PhaseDay {
		t.Errorf("tie must not advance: round=%d phase=%s", s.Round, s.CurrentPhase())
	}
	for _, p := range s.Players {
		if !p.IsAlive {
			t.Errorf("%s eliminated on a tie", p.ID)
		}
	}
}

func TestProcessVoting_Plurality(t *testing.T) {
	g := standardTable()
	g.FlipPhase()
	_ = g.CastVote("player_1", "player_3")
	_ = g.CastVote("player_2", "player_3")
	_ = g.CastVote("player_3", "player_4")
	g.ProcessVoting()

	s := g.Snapshot()
	if p := mustPlayer(t, g, "player_3"); p.IsAlive {
		t.Error("Expected player_3 to be eliminated")
	}
	if s.Round != 2 || s.CurrentPhase() != PhaseNight {
		t.Errorf("Expected round 2 night, got round %d %s", s.Round, s.CurrentPhase())
	}
	if s.VotingResults() != nil || s.DetectiveResult != nil {
		t.Error("Expected day data cleared after advancing")
	}
}

func TestProcessVoting_NoVotes(t *testing.T) {
	g := standardTable()
	g.FlipPhase()
	g.ProcessVoting()
	if g.Phase() != PhaseDay || g.Round() != 1 {
		t.Errorf("no votes must be a no-op, got %s round %d", g.Phase(), g.Round())
	}
}

func TestProcessVoting_EliminatingLastMafiaEndsGame(t *testing.T) {
	g := standardTable()
	g.FlipPhase()
	_ = g.CastVote("player_2", "player_1")
	g.ProcessVoting()

	s := g.Snapshot()
	if !s.GameEnded || s.Winner != WinnerVillagers {
		t.Fatalf("Expected villagers win, got ended=%v winner=%q", s.GameEnded, s.Winner)
	}
	if s.Round != 1 {
		t.Errorf("finished game must not advance round, got %d", s.Round)
	}
	if vr := s.VotingResults(); vr == nil || vr.EliminatedPlayer != "player_1" {
		t.Errorf("Expected eliminated player recorded, got %+v", vr)
	}
}

func TestFlipPhase(t *testing.T) {
	g := standardTable()
	_ = g.SetMafiaTarget("player_2")
	g.FlipPhase()
	if g.Phase() != PhaseDay {
		t.Fatalf("Expected day, got %s", g.Phase())
	}
	if p := mustPlayer(t, g, "player_2"); !p.IsAlive {
		t.Error("flip must discard the pending attack")
	}
	if vr := g.Snapshot().VotingResults(); vr == nil || len(vr.Votes) != 0 {
		t.Errorf("Expected empty tally on entering day, got %+v", vr)
	}

	_ = g.CastVote("player_1", "player_2")
	g.FlipPhase()
	if actions, ok := g.Snapshot().NightActions(); !ok || actions != (NightActions{}) {
		t.Errorf("Expected empty night actions, got %+v ok=%v", actions, ok)
	}
	if g.Round() != 1 {
		t.Errorf("flip must not advance round, got %d", g.Round())
	}
}

func TestPendingRolesAndUserTurn(t *testing.T) {
	g := newTestGame(RoleDetective, RoleMafia, RoleHealer, RoleCommoner, RoleCommoner, RoleCommoner)
	if !g.IsUserTurn() {
		t.Error("detective user should have a night turn")
	}
	if got := g.PendingRoles(); len(got) != 3 {
		t.Errorf("Expected 3 pending roles, got %v", got)
	}

	_ = g.SetDetectiveTarget("player_4")
	if g.IsUserTurn() {
		t.Error("user turn should be over after submitting")
	}
	_ = g.SetMafiaTarget("player_5")
	_ = g.SetHealerTarget("player_5")
	if got := g.PendingRoles(); len(got) != 0 {
		t.Errorf("Expected no pending roles, got %v", got)
	}

	g.ProcessNightActions()
	if !g.IsUserTurn() {
		t.Error("user should have a day turn before any elimination")
	}
}

func TestQueries(t *testing.T) {
	g := standardTable()
	g.state.Players[1].IsAlive = false

	if got := len(g.AlivePlayers()); got != 5 {
		t.Errorf("Expected 5 alive players, got %d", got)
	}
	targets := g.AvailableTargets(RoleMafia)
	for _, id := range targets {
		if id == "player_1" || id == "player_2" {
			t.Errorf("unexpected target %s", id)
		}
	}
	if len(targets) != 4 {
		t.Errorf("Expected 4 targets, got %v", targets)
	}
	if got := len(g.AvailableTargets("")); got != 5 {
		t.Errorf("Expected 5 targets without exclusion, got %d", got)
	}
}

func TestRedactFor(t *testing.T) {
	g := newTestGame(RoleMafia, RoleMafia, RoleDetective, RoleHealer, RoleCommoner, RoleCommoner)
	_ = g.SetMafiaTarget("player_5")
	s := g.Snapshot()

	mafiaView := s.RedactFor("player_1")
	if mafiaView.Players[1].Role != RoleMafia {
		t.Error("mafia should see fellow mafia")
	}
	if mafiaView.Players[2].Role != "" {
		t.Error("mafia must not see the detective")
	}
	if actions, _ := mafiaView.NightActions(); actions.MafiaTarget != "" {
		t.Error("night targets must be hidden")
	}

	villagerView := s.RedactFor("player_5")
	if villagerView.Players[0].Role != "" || villagerView.Players[4].Role != RoleCommoner {
		t.Error("villager should only see its own role")
	}
	if s.Players[2].Role != RoleDetective {
		t.Error("RedactFor must not modify the source state")
	}
}

func TestGameStateJSON(t *testing.T) {
	g := standardTable()
	_ = g.SetMafiaTarget("player_2")
	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["currentPhase"] != "night" {
		t.Errorf("Expected currentPhase night, got %v", decoded["currentPhase"])
	}
	if decoded["winner"] != nil {
		t.Errorf("Expected null winner, got %v", decoded["winner"])
	}
	actions, ok := decoded["nightActions"].(map[string]any)
	if !ok || actions["mafiaTarget"] != "player_2" {
		t.Errorf("unexpected nightActions: %v", decoded["nightActions"])
	}
	if _, present := decoded["votingResults"]; present {
		t.Error("votingResults must be absent during a quiet night")
	}
}

func TestGameStateDecode(t *testing.T) {
	g := standardTable()
	g.FlipPhase()
	_ = g.CastVote("player_1", "player_2")
	_ = g.CastVote("player_3", "player_2")

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var decoded GameState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.CurrentPhase() != PhaseDay {
		t.Errorf("Expected day, got %s", decoded.CurrentPhase())
	}
	if vr := decoded.VotingResults(); vr == nil || vr.Votes["player_2"] != 2 {
		t.Errorf("Expected 2 votes for player_2, got %+v", vr)
	}
	if len(decoded.Players) != 6 || decoded.Players[0].Role != RoleMafia {
		t.Errorf("players not restored: %+v", decoded.Players)
	}

	// gob 走同一套编码
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g.Snapshot()); err != nil {
		t.Fatalf("gob encode failed: %v", err)
	}
	var viaGob GameState
	if err := gob.NewDecoder(&buf).Decode(&viaGob); err != nil {
		t.Fatalf("gob decode failed: %v", err)
	}
	if viaGob.CurrentPhase() != PhaseDay || viaGob.Round != g.Round() {
		t.Errorf("gob round trip lost the phase: %s round %d", viaGob.CurrentPhase(), viaGob.Round)
	}
}
