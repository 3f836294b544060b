package vm

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	config  ObserverConfig
	steps   []StepEvent
	calls   []CallEvent
	returns []ReturnEvent

	// Halt on the step with this opcode when set
	haltOn op.Code
}

func (r *recordingObserver) Config() ObserverConfig { return r.config }

func (r *recordingObserver) OnStep(e StepEvent) bool {
	r.steps = append(r.steps, e)
	return r.haltOn == 0 || e.Opcode != r.haltOn
}

func (r *recordingObserver) OnCall(e CallEvent) bool {
	r.calls = append(r.calls, e)
	return true
}

func (r *recordingObserver) OnReturn(e ReturnEvent) bool {
	r.returns = append(r.returns, e)
	return true
}

const observedSource = `fn inc(x) {
	return x + 1;
}
fn noop() {}
let a = inc(1);
noop();
a;`

func TestObserverCallsAndReturns(t *testing.T) {
	obs := &recordingObserver{config: NewObserverConfig(StepNone)}
	result, err := Run(context.Background(), compileSource(t, observedSource), WithObserver(obs))
	require.NoError(t, err)
	require.Equal(t, object.NewInt(2), result)
	require.Empty(t, obs.steps)

	require.Len(t, obs.calls, 2)
	require.Equal(t, "inc", obs.calls[0].Function)
	require.Equal(t, 1, obs.calls[0].ArgCount)
	require.Equal(t, 5, obs.calls[0].Location.Line)
	require.Equal(t, 9, obs.calls[0].Location.Column)
	require.Equal(t, 2, obs.calls[0].FrameDepth)
	require.Equal(t, "noop", obs.calls[1].Function)

	require.Len(t, obs.returns, 2)
	require.Equal(t, "inc", obs.returns[0].Function)
	require.Equal(t, 2, obs.returns[0].Location.Line)
	require.Equal(t, 1, obs.returns[0].FrameDepth)
	require.Equal(t, "noop", obs.returns[1].Function)
	require.True(t, obs.returns[1].Location.IsZero())
}

func TestObserverStepModes(t *testing.T) {
	code := compileSource(t, observedSource)

	all := &recordingObserver{config: NewObserverConfig(StepAll)}
	_, err := Run(context.Background(), code, WithObserver(all))
	require.NoError(t, err)
	require.NotEmpty(t, all.steps)
	require.Equal(t, "main", all.steps[0].Function)
	require.Equal(t, 0, all.steps[0].IP)

	onLine := &recordingObserver{config: NewObserverConfig(StepOnLine)}
	_, err = Run(context.Background(), code, WithObserver(onLine))
	require.NoError(t, err)
	require.Less(t, len(onLine.steps), len(all.steps))
	for i := 1; i < len(onLine.steps); i++ {
		prev, cur := onLine.steps[i-1], onLine.steps[i]
		require.False(t, prev.Function == cur.Function && prev.Location.Line == cur.Location.Line)
	}

	cfg := NewObserverConfig(StepSampled)
	cfg.SampleInterval = 2
	sampled := &recordingObserver{config: cfg}
	_, err = Run(context.Background(), code, WithObserver(sampled))
	require.NoError(t, err)
	require.Equal(t, len(all.steps)/2, len(sampled.steps))
}

func TestObserverHalt(t *testing.T) {
	var out bytes.Buffer
	obs := &recordingObserver{config: NewObserverConfig(StepAll), haltOn: op.CallPrimitive}
	_, err := Run(context.Background(), compileSource(t, `let x = 1; writeln!(x);`),
		WithObserver(obs), WithStdout(&out))
	require.ErrorIs(t, err, ErrHalted)
	require.Empty(t, out.String())
}

func TestTraceObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	obs := NewTraceObserver(logger).WithStepMode(StepNone)

	_, err := Run(context.Background(), compileSource(t, observedSource), WithObserver(obs))
	require.NoError(t, err)

	var messages []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		require.Equal(t, "debug", entry["level"])
		messages = append(messages, entry["message"].(string)+":"+entry["fn"].(string))
	}
	require.Equal(t, []string{"call:inc", "return:inc", "call:noop", "return:noop"}, messages)
}

func TestTraceObserverSilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	_, err := Run(context.Background(), compileSource(t, observedSource),
		WithObserver(NewTraceObserver(logger)))
	require.NoError(t, err)
	require.Empty(t, buf.String())
}
