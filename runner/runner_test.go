package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalshi-mm-go/config"
	"kalshi-mm-go/infrastructure/logger"
)

// simStrategy returns a fast simulated strategy block ready to run.
func simStrategy(makerType string) config.Strategy {
	s := config.Strategy{
		API:         config.API{Type: "simulated"},
		MarketMaker: config.Maker{Type: makerType, DT: 0.001},
	}
	config.ApplyDefaults(&s)
	return s
}

func newTestRunner(strategies map[string]config.Strategy) *Runner {
	return New(strategies, config.Credentials{}, logger.Nop())
}

func TestRunnerNamesSorted(t *testing.T) {
	r := newTestRunner(map[string]config.Strategy{
		"zeta":  simStrategy("simple"),
		"alpha": simStrategy("simple"),
		"mid":   simStrategy("avellaneda"),
	})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestRunnerStartStopLifecycle(t *testing.T) {
	r := newTestRunner(map[string]config.Strategy{"s1": simStrategy("simple")})

	st, ok := r.Status("s1")
	require.True(t, ok)
	assert.Equal(t, StateIdle, st.State)

	require.NoError(t, r.Start("s1"))
	st, _ = r.Status("s1")
	assert.Equal(t, StateRunning, st.State)

	require.NoError(t, r.Stop("s1"))
	r.Wait()
	st, _ = r.Status("s1")
	assert.Equal(t, StateStopped, st.State)
	assert.NoError(t, st.Err)
}

func TestRunnerStartUnknownStrategy(t *testing.T) {
	r := newTestRunner(map[string]config.Strategy{"s1": simStrategy("simple")})
	assert.Error(t, r.Start("nope"))

	_, ok := r.Status("nope")
	assert.False(t, ok)
}

func TestRunnerDoubleStartRejected(t *testing.T) {
	r := newTestRunner(map[string]config.Strategy{"s1": simStrategy("simple")})
	require.NoError(t, r.Start("s1"))
	assert.Error(t, r.Start("s1"))

	r.StopAll()
	r.Wait()
}

func TestRunnerStopNotRunning(t *testing.T) {
	r := newTestRunner(map[string]config.Strategy{"s1": simStrategy("simple")})
	assert.Error(t, r.Stop("s1"))
}

// A strategy with a bogus venue type fails at construction with a typed
// configuration error and the sibling keeps running untouched.
func TestRunnerIsolatesConstructionFailure(t *testing.T) {
	broken := simStrategy("simple")
	broken.API.Type = "telepathy"
	r := newTestRunner(map[string]config.Strategy{
		"broken": broken,
		"good":   simStrategy("simple"),
	})

	failures := r.StartAll()
	require.Len(t, failures, 1)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, failures["broken"], &cfgErr)
	assert.Equal(t, "broken", cfgErr.Strategy)
	assert.Equal(t, "api.type", cfgErr.Field)

	st, _ := r.Status("broken")
	assert.Equal(t, StateFailed, st.State)
	st, _ = r.Status("good")
	assert.Equal(t, StateRunning, st.State)

	r.StopAll()
	r.Wait()
	st, _ = r.Status("good")
	assert.Equal(t, StateStopped, st.State)
}

func TestRunnerUnknownQuoterType(t *testing.T) {
	bad := simStrategy("simple")
	bad.MarketMaker.Type = "martingale"
	r := newTestRunner(map[string]config.Strategy{"bad": bad})

	err := r.Start("bad")
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "market_maker.type", cfgErr.Field)

	st, _ := r.Status("bad")
	assert.Equal(t, StateFailed, st.State)
}

func TestRunnerAvellanedaStopsAtHorizon(t *testing.T) {
	s := simStrategy("avellaneda")
	s.MarketMaker.Horizon = 0.02 // seconds
	r := newTestRunner(map[string]config.Strategy{"adaptive": s})

	require.NoError(t, r.Start("adaptive"))

	done := make(chan struct{})
	go func() { r.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("strategy did not stop at its horizon")
	}

	st, _ := r.Status("adaptive")
	assert.Equal(t, StateStopped, st.State)
}

// Reload swaps the configured set for future starts without touching
// anything already running.
func TestRunnerReload(t *testing.T) {
	r := newTestRunner(map[string]config.Strategy{"old": simStrategy("simple")})
	require.NoError(t, r.Start("old"))

	r.Reload(map[string]config.Strategy{"new": simStrategy("simple")})
	assert.Equal(t, []string{"new"}, r.Names())
	assert.Error(t, r.Start("old"))
	require.NoError(t, r.Start("new"))

	// The strategy started before the reload is still alive.
	st, ok := r.Status("old")
	require.True(t, ok)
	assert.Equal(t, StateRunning, st.State)

	r.StopAll()
	r.Wait()
}

func TestRunnerStatuses(t *testing.T) {
	r := newTestRunner(map[string]config.Strategy{
		"a": simStrategy("simple"),
		"b": simStrategy("simple"),
	})
	require.NoError(t, r.Start("a"))

	all := r.Statuses()
	require.Len(t, all, 2)
	assert.Equal(t, StateRunning, all["a"].State)
	assert.Equal(t, StateIdle, all["b"].State)

	r.StopAll()
	r.Wait()
}
