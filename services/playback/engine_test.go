package playback

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"phimhub/models"
)

func testEngine(delay time.Duration) *Engine {
	return NewEngineWithChain(DefaultChain(), TechXGPlayer, delay)
}

func fullSource() models.PlaybackSource {
	return models.PlaybackSource{
		ManifestURL: "https://hls.example/ep1.m3u8",
		EmbedURL:    "https://embed.example/ep1",
	}
}

// waitActive polls until the session leaves Recovering.
func waitActive(t *testing.T, e *Engine, id string) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		var err error
		snap, err = e.Get(id)
		require.NoError(t, err)
		return snap.State != StateRecovering
	}, 2*time.Second, 2*time.Millisecond)
	return snap
}

func TestFallbackChainIsDeterministic(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)
	require.Equal(t, StateActive, snap.State)
	require.Equal(t, TechXGPlayer, snap.Technology)

	wantOrder := []string{TechShaka, TechVideoJS, TechEmbed}
	for _, want := range wantOrder {
		failed, err := e.ReportFatal(snap.ID, "decode error")
		require.NoError(t, err)
		require.Equal(t, StateRecovering, failed.State)

		next := waitActive(t, e, snap.ID)
		require.Equal(t, StateActive, next.State)
		require.Equal(t, want, next.Technology)
	}

	// Fourth fatal lands on the embed dead-end: terminal, no fifth attempt.
	final, err := e.ReportFatal(snap.ID, "embed blocked")
	require.NoError(t, err)
	require.Equal(t, StateExhausted, final.State)
	require.Equal(t, 4, final.Teardowns, "every re-activation must be preceded by a teardown")

	// Exhausted is sticky; further fatals are no-ops.
	again, err := e.ReportFatal(snap.ID, "still broken")
	require.NoError(t, err)
	require.Equal(t, StateExhausted, again.State)
	require.Equal(t, 4, again.Teardowns)
}

func TestRecoveringHoldsForConfiguredDelay(t *testing.T) {
	e := testEngine(80 * time.Millisecond)

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)

	failed, err := e.ReportFatal(snap.ID, "boom")
	require.NoError(t, err)
	require.Equal(t, StateRecovering, failed.State)

	// Still recovering well inside the hold window.
	time.Sleep(20 * time.Millisecond)
	mid, err := e.Get(snap.ID)
	require.NoError(t, err)
	require.Equal(t, StateRecovering, mid.State)

	next := waitActive(t, e, snap.ID)
	require.Equal(t, TechShaka, next.Technology)
}

func TestManifestlessSourceStartsOnEmbed(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(models.PlaybackSource{EmbedURL: "https://embed.example/only"}, "")
	require.NoError(t, err)
	require.Equal(t, TechEmbed, snap.Technology)

	// Embed is a dead-end even as the first technology.
	final, err := e.ReportFatal(snap.ID, "blocked")
	require.NoError(t, err)
	require.Equal(t, StateExhausted, final.State)
}

func TestEmbedlessSourceExhaustsAfterManifestPlayers(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(models.PlaybackSource{ManifestURL: "https://hls.example/x.m3u8"}, TechVideoJS)
	require.NoError(t, err)
	require.Equal(t, TechVideoJS, snap.Technology)

	final, err := e.ReportFatal(snap.ID, "decode error")
	require.NoError(t, err)
	require.Equal(t, StateExhausted, final.State, "no embed link means nothing below videojs")
}

func TestManualPlayersAreSelectable(t *testing.T) {
	e := testEngine(time.Millisecond)

	for _, manual := range []string{TechOPlayer, TechReactPlayer} {
		snap, err := e.Start(fullSource(), "")
		require.NoError(t, err)

		got, err := e.SelectTechnology(snap.ID, manual)
		require.NoError(t, err)
		require.Equal(t, StateActive, got.State)
		require.Equal(t, manual, got.Technology)
	}
}

func TestStartHonorsManualPlayerPreference(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(fullSource(), TechOPlayer)
	require.NoError(t, err)
	require.Equal(t, TechOPlayer, snap.Technology)

	// A manual preference that cannot present the source falls back to the
	// chain instead.
	snap, err = e.Start(models.PlaybackSource{EmbedURL: "https://embed.example/x"}, TechOPlayer)
	require.NoError(t, err)
	require.Equal(t, TechEmbed, snap.Technology)
}

func TestManualPlayerFatalReentersChainAtTop(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)
	_, err = e.SelectTechnology(snap.ID, TechOPlayer)
	require.NoError(t, err)

	failed, err := e.ReportFatal(snap.ID, "oplayer crashed")
	require.NoError(t, err)
	require.Equal(t, StateRecovering, failed.State)

	next := waitActive(t, e, snap.ID)
	require.Equal(t, TechXGPlayer, next.Technology, "manual player failure restarts the chain")
}

func TestManualSelectResetsChainPosition(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)

	// Auto-fall to shaka first.
	_, err = e.ReportFatal(snap.ID, "decode error")
	require.NoError(t, err)
	fallen := waitActive(t, e, snap.ID)
	require.Equal(t, TechShaka, fallen.Technology)

	// Manual override to videojs moves the chain cursor there.
	selected, err := e.SelectTechnology(snap.ID, TechVideoJS)
	require.NoError(t, err)
	require.Equal(t, TechVideoJS, selected.Technology)

	// The next fatal continues from videojs's successor, not shaka's.
	_, err = e.ReportFatal(snap.ID, "decode error")
	require.NoError(t, err)
	next := waitActive(t, e, snap.ID)
	require.Equal(t, TechEmbed, next.Technology)
}

func TestSelectRejectsUnknownTechnology(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)

	_, err = e.SelectTechnology(snap.ID, "flowplayer")
	require.Error(t, err)

	got, err := e.Get(snap.ID)
	require.NoError(t, err)
	require.Equal(t, TechXGPlayer, got.Technology, "failed select must not change the active player")
}

func TestProgressGuardsNonFiniteValues(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)

	require.NoError(t, e.ReportProgress(snap.ID, 120.5, 2400))
	got, err := e.Get(snap.ID)
	require.NoError(t, err)
	require.Equal(t, 120.5, got.Position)

	// A dying player can emit NaN/Inf; those must not clobber the playhead.
	require.NoError(t, e.ReportProgress(snap.ID, math.NaN(), 2400))
	require.NoError(t, e.ReportProgress(snap.ID, math.Inf(1), 2400))
	require.NoError(t, e.ReportProgress(snap.ID, 130, math.NaN()))

	got, err = e.Get(snap.ID)
	require.NoError(t, err)
	require.Equal(t, 120.5, got.Position)
	require.Equal(t, float64(2400), got.Duration)
}

func TestManualSelectClearsExhausted(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(models.PlaybackSource{EmbedURL: "https://embed.example/x"}, "")
	require.NoError(t, err)
	_, err = e.ReportFatal(snap.ID, "blocked")
	require.NoError(t, err)

	got, err := e.SelectTechnology(snap.ID, TechEmbed)
	require.NoError(t, err)
	require.Equal(t, StateActive, got.State)
	require.Empty(t, got.LastError)
}

func TestSelectRejectsUnpresentableTechnology(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(models.PlaybackSource{EmbedURL: "https://embed.example/x"}, "")
	require.NoError(t, err)

	_, err = e.SelectTechnology(snap.ID, TechShaka)
	require.Error(t, err, "manifest player cannot present an embed-only source")
}

func TestSetSourceResetsChainAndCancelsRecovery(t *testing.T) {
	e := testEngine(time.Hour) // recovery would hang forever without the reset

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)
	failed, err := e.ReportFatal(snap.ID, "boom")
	require.NoError(t, err)
	require.Equal(t, StateRecovering, failed.State)

	got, err := e.SetSource(snap.ID, models.PlaybackSource{ManifestURL: "https://hls.example/ep2.m3u8"})
	require.NoError(t, err)
	require.Equal(t, StateActive, got.State)
	require.Equal(t, TechXGPlayer, got.Technology)
	require.Zero(t, got.Position)

	// The stale recovery timer must never fire into the new source.
	time.Sleep(10 * time.Millisecond)
	still, err := e.Get(snap.ID)
	require.NoError(t, err)
	require.Equal(t, StateActive, still.State)
	require.Equal(t, TechXGPlayer, still.Technology)
}

func TestEndedSessionIgnoresLateFatals(t *testing.T) {
	e := testEngine(time.Millisecond)

	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)

	got, err := e.ReportEnded(snap.ID)
	require.NoError(t, err)
	require.Equal(t, StateEnded, got.State)

	// A straggling fatal after the credits must not restart the chain.
	got, err = e.ReportFatal(snap.ID, "late error")
	require.NoError(t, err)
	require.Equal(t, StateEnded, got.State)

	// A new source reuses the session.
	got, err = e.SetSource(snap.ID, fullSource())
	require.NoError(t, err)
	require.Equal(t, StateActive, got.State)
}

func TestStartRejectsEmptySource(t *testing.T) {
	e := testEngine(time.Millisecond)
	_, err := e.Start(models.PlaybackSource{}, "")
	require.ErrorIs(t, err, ErrNoPlayableSource)
}

func TestStopForgetsSession(t *testing.T) {
	e := testEngine(time.Millisecond)
	snap, err := e.Start(fullSource(), "")
	require.NoError(t, err)

	require.NoError(t, e.Stop(snap.ID))
	_, err = e.Get(snap.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, e.Stop(snap.ID), ErrSessionNotFound)
}
