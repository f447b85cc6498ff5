package gameserver_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/idlegather/internal/config"
	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
	"github.com/cory-johannsen/idlegather/internal/game/dice"
	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/session"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
	"github.com/cory-johannsen/idlegather/internal/gameserver"
	"github.com/cory-johannsen/idlegather/internal/scripting"
	"github.com/cory-johannsen/idlegather/internal/storage"
	"github.com/cory-johannsen/idlegather/internal/storage/savefile"
)

var (
	testPlayer = uuid.MustParse("7d5bd0b4-1df4-4c4a-9d43-1e2f1f0d8a11")
	t0         = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
)

func testConfig() config.GameConfig {
	return config.GameConfig{
		TickInterval: 10 * time.Millisecond,
		PlayerID:     testPlayer.String(),
		SaveOnQuit:   true,
	}
}

type fixture struct {
	engine *gameserver.Engine
	store  *savefile.Store
	sess   *session.Session
}

func newFixture(t *testing.T, cfg config.GameConfig, scripts *scripting.Manager) fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store, err := savefile.New(t.TempDir())
	require.NoError(t, err)
	picker := dice.NewPicker(dice.FixedSource(0.5), logger)
	sess := session.New(player.New(testPlayer), resource.DefaultCatalog(), picker, logger)
	return fixture{
		engine: gameserver.NewEngine(cfg, testPlayer, sess, store, scripts, logger),
		store:  store,
		sess:   sess,
	}
}

func text(resp gameserver.Response) string {
	return telnet.StripANSI(strings.Join(resp.Lines, "\n"))
}

func TestExecute_CopperOreScenario(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	out := text(f.engine.Execute(t0, "mine copper"))
	assert.Contains(t, out, "You start mining Copper Ore")

	out = text(f.engine.Execute(t0, "inventory"))
	assert.Contains(t, out, "You get 1x Copper Ore")
	assert.Contains(t, out, "Copper Ore: 1")

	out = text(f.engine.Execute(t0.Add(3*time.Second), "skills"))
	assert.Contains(t, out, "You get 1x Copper Ore")
	assert.Contains(t, out, "XP: 35/100")

	p := f.sess.Player()
	assert.Equal(t, player.Progress{Level: 1, XP: 35}, p.Progress(skill.Mining))
	assert.Equal(t, 2, p.Inventory().Quantity("copper_ore"))
}

func TestExecute_StatusShowsRespawnCountdown(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	f.engine.Execute(t0, "mine copper ore")
	f.engine.Execute(t0, "")

	out := text(f.engine.Execute(t0.Add(500*time.Millisecond), "status"))
	assert.Contains(t, out, "Current: Mining - Mining Copper Ore (depleted, respawns in 2.5s)")
}

func TestExecute_EmptyLineOnlyCatchesUp(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	resp := f.engine.Execute(t0, "   ")
	assert.Empty(t, resp.Lines)
	assert.False(t, resp.Quit)
}

func TestExecute_UnknownCommandShowsHelp(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	out := text(f.engine.Execute(t0, "dance"))
	assert.Contains(t, out, "Unknown command: dance.")
	assert.Contains(t, out, "--- Commands ---")
}

func TestExecute_AliasesResolve(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	out := text(f.engine.Execute(t0, "wc normal"))
	assert.Contains(t, out, "You start cutting Normal Tree")
	sk, ok := f.sess.Player().ActiveSkill()
	require.True(t, ok)
	assert.Equal(t, skill.Woodcutting, sk)
}

func TestExecute_LevelGateRendersError(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	out := text(f.engine.Execute(t0, "chop oak"))
	assert.Contains(t, out, "You need level 15 Woodcutting")
	assert.NotContains(t, out, "insufficient level")
	_, focused := f.sess.Player().ActiveSkill()
	assert.False(t, focused)
}

func TestExecute_NothingCatchableRefusesStart(t *testing.T) {
	logger := zaptest.NewLogger(t)
	def := resource.DefaultCatalog()
	pool := &resource.Node{ID: "deep_pool", Name: "Deep Pool", Skill: skill.Fishing, LevelReq: 1,
		Interval: time.Second, Outcomes: []resource.Outcome{{ItemID: "raw_shark", LevelReq: 76, XP: 110, Weight: 1}}}
	fishing, err := resource.NewTable(skill.Fishing, append(def.Table(skill.Fishing).Nodes(), pool))
	require.NoError(t, err)
	catalog, err := resource.NewCatalog(def.Table(skill.Woodcutting), def.Table(skill.Mining), fishing, def.Table(skill.Firemaking))
	require.NoError(t, err)
	store, err := savefile.New(t.TempDir())
	require.NoError(t, err)
	sess := session.New(player.New(testPlayer), catalog, dice.NewPicker(dice.FixedSource(0.5), logger), logger)
	engine := gameserver.NewEngine(testConfig(), testPlayer, sess, store, nil, logger)

	out := text(engine.Execute(t0, "fish deep pool"))
	assert.Contains(t, out, "You need a higher Fishing level for anything at Deep Pool")
	assert.NotContains(t, out, "nothing catchable")
	assert.Contains(t, out, "--- Fishing (level 1) ---")
	_, focused := sess.Player().ActiveSkill()
	assert.False(t, focused)
}

func TestExecute_UnknownTarget(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	out := text(f.engine.Execute(t0, "mine cheese"))
	assert.Contains(t, out, "matches nothing")
	assert.Contains(t, out, "Type 'targets'")
}

func TestExecute_MissingTargetShowsUsage(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	out := text(f.engine.Execute(t0, "fish"))
	assert.Contains(t, out, "Usage: fish <spot> (e.g., fish Netting Spot)")
	assert.Contains(t, out, "--- Fishing (level 1) ---")
}

func TestExecute_StopWhenIdle(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	assert.Contains(t, text(f.engine.Execute(t0, "stop")), "Not doing anything.")

	f.engine.Execute(t0, "fish net")
	assert.Contains(t, text(f.engine.Execute(t0, "stop")), "You stop fishing.")
	assert.Contains(t, text(f.engine.Execute(t0, "stop")), "Not doing anything.")
}

func TestExecute_BurnPartialLogName(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	f.sess.Player().Inventory().Add("normal_log", 1)

	out := text(f.engine.Execute(t0, "burn normal"))
	assert.Contains(t, out, "You burn the Normal Log and gain 40 Firemaking XP")
	assert.Equal(t, 0, f.sess.Player().Inventory().Quantity("normal_log"))

	out = text(f.engine.Execute(t0, "burn normal"))
	assert.Contains(t, out, "You don't have any Normal Log")
}

func TestExecute_SwitchingFocusStopsPreviousGather(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	f.engine.Execute(t0, "chop normal")
	out := text(f.engine.Execute(t0, "mine tin"))
	assert.Contains(t, out, "You stop cutting.")
	assert.Contains(t, out, "You start mining Tin Ore")
}

func TestExecute_Targets(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	out := text(f.engine.Execute(t0, "targets mining"))
	assert.Contains(t, out, "Copper Ore")
	assert.Contains(t, out, "Mithril Ore")
	assert.Contains(t, out, "(locked)")

	out = text(f.engine.Execute(t0, "targets"))
	for _, sk := range skill.All() {
		assert.Contains(t, out, "--- "+sk.String())
	}

	out = text(f.engine.Execute(t0, "targets cooking"))
	assert.Contains(t, out, "Unknown skill")
}

func TestExecute_SaveAndLoad(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	f.engine.Execute(t0, "mine copper")
	f.engine.Execute(t0, "stop")

	assert.Contains(t, text(f.engine.Execute(t0, "save")), "Game saved successfully!")
	_, err := os.Stat(f.store.Path(testPlayer))
	require.NoError(t, err)

	f.sess.Player().Inventory().Add("copper_ore", 10)
	assert.Contains(t, text(f.engine.Execute(t0, "load")), "Game loaded successfully!")
	assert.Equal(t, 1, f.sess.Player().Inventory().Quantity("copper_ore"))
	assert.Equal(t, 17.5, f.sess.Player().XP(skill.Mining))
}

func TestExecute_LoadWithoutSave(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	assert.Contains(t, text(f.engine.Execute(t0, "load")), "No save found")
}

func TestExecute_QuitSaves(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	resp := f.engine.Execute(t0, "quit")
	assert.True(t, resp.Quit)
	assert.Contains(t, text(resp), "Goodbye!")

	snap, err := f.store.Load(context.Background(), testPlayer)
	require.NoError(t, err)
	assert.Equal(t, testPlayer, snap.PlayerID)
}

func TestExecute_QuitWithoutSaveOnQuit(t *testing.T) {
	cfg := testConfig()
	cfg.SaveOnQuit = false
	f := newFixture(t, cfg, nil)
	resp := f.engine.Execute(t0, "exit")
	assert.True(t, resp.Quit)

	_, err := f.store.Load(context.Background(), testPlayer)
	assert.ErrorIs(t, err, storage.ErrNoSave)
}

func TestExecute_LuaHooksAddFlavour(t *testing.T) {
	scripts := scripting.NewManager(zap.NewNop())
	t.Cleanup(scripts.Close)
	require.NoError(t, scripts.LoadDir("../../content/scripts", 0))

	f := newFixture(t, testConfig(), scripts)
	f.sess.Player().Inventory().Add("normal_log", 1)
	f.engine.Execute(t0, "burn normal log")

	out := text(f.engine.Execute(t0.Add(10*time.Second), "status"))
	assert.Contains(t, out, "Your Normal Log fire has burned out.")
	assert.Contains(t, out, "The last embers of your Normal Log fade away.")
}

func TestBoot_RestoresSave(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	require.NoError(t, f.store.Save(context.Background(), storage.Snapshot{
		PlayerID:  testPlayer,
		Skills:    map[string]storage.SkillRecord{"Mining": {Level: 3, XP: 250}},
		Inventory: map[string]int{"tin_ore": 4},
	}))

	require.NoError(t, f.engine.Boot(context.Background()))
	p := f.engine.Session().Player()
	assert.Equal(t, 3, p.Level(skill.Mining))
	assert.Equal(t, 4, p.Inventory().Quantity("tin_ore"))
}

func TestBoot_MissingSaveStartsFresh(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	require.NoError(t, f.engine.Boot(context.Background()))
	assert.Equal(t, 1, f.engine.Session().Player().Level(skill.Woodcutting))
}

func TestBoot_CorruptSaveStartsFreshAndWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store, err := savefile.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(testPlayer), []byte("{not json"), 0o644))

	sess := session.New(player.New(testPlayer), resource.DefaultCatalog(), nil, zap.NewNop())
	e := gameserver.NewEngine(testConfig(), testPlayer, sess, store, nil, zap.New(core))

	require.NoError(t, e.Boot(context.Background()))
	assert.Equal(t, 0, e.Session().Player().Inventory().Len())
	assert.Equal(t, 1, logs.FilterMessage("save unreadable; starting a new game").Len())
}

type brokenStore struct{ err error }

func (b brokenStore) Load(context.Context, uuid.UUID) (storage.Snapshot, error) {
	return storage.Snapshot{}, b.err
}

func (b brokenStore) Save(context.Context, storage.Snapshot) error { return b.err }

func TestBoot_StoreFailureIsReturned(t *testing.T) {
	boom := errors.New("connection refused")
	sess := session.New(player.New(testPlayer), resource.DefaultCatalog(), nil, zap.NewNop())
	e := gameserver.NewEngine(testConfig(), testPlayer, sess, brokenStore{err: boom}, nil, zap.NewNop())

	err := e.Boot(context.Background())
	assert.ErrorIs(t, err, boom)

	out := text(e.Execute(t0, "save"))
	assert.Contains(t, out, "Error saving game")
}

func TestNewEngine_PanicsOnNilSession(t *testing.T) {
	assert.Panics(t, func() {
		gameserver.NewEngine(testConfig(), testPlayer, nil, brokenStore{}, nil, zap.NewNop())
	})
}

func TestRun_SubmitAndNotices(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notices, unsubscribe := f.engine.Subscribe(8)
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()

	resp, err := f.engine.Submit(ctx, "mine copper")
	require.NoError(t, err)
	assert.Contains(t, text(resp), "You start mining Copper Ore")

	select {
	case batch := <-notices:
		assert.Contains(t, telnet.StripANSI(strings.Join(batch, "\n")), "You get 1x Copper Ore")
	case <-time.After(2 * time.Second):
		t.Fatal("no tick notice received")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}

	_, err = f.engine.Submit(context.Background(), "status")
	assert.ErrorIs(t, err, gameserver.ErrStopped)

	snap, err := f.store.Load(context.Background(), testPlayer)
	require.NoError(t, err, "engine saves on shutdown")
	assert.GreaterOrEqual(t, snap.Inventory["copper_ore"], 1)
}

func TestRun_WarnsWhenTickSlowerThanNodes(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := testConfig()
	cfg.TickInterval = 5 * time.Second
	cfg.SaveOnQuit = false
	sess := session.New(player.New(testPlayer), resource.DefaultCatalog(), nil, zap.NewNop())
	e := gameserver.NewEngine(cfg, testPlayer, sess, brokenStore{}, nil, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 1, logs.FilterMessage("tick interval exceeds the shortest node interval; yields will be delayed").Len())
}

func TestHandle_AdaptsSubmit(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.engine.Run(ctx) }()

	lines, quit, err := f.engine.Handle(ctx, "q")
	require.NoError(t, err)
	assert.True(t, quit)
	assert.Contains(t, telnet.StripANSI(strings.Join(lines, "\n")), "Goodbye!")
}
