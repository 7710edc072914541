package tools

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.RegisterFunc("echo", "Repeat the input.", func(_ context.Context, in string) (string, error) {
		return "echo: " + in, nil
	}))
	require.NoError(t, r.RegisterFunc("calculator", "Do math.", func(_ context.Context, in string) (string, error) {
		return "4", nil
	}))
	return r
}

func TestRegistryOrderAndLookup(t *testing.T) {
	r := echoRegistry(t)

	assert.Equal(t, []string{"echo", "calculator"}, r.Names())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Has("echo"))
	assert.False(t, r.Has("Echo"))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "echo", list[0].Name)
	assert.Equal(t, "echo: Repeat the input.\ncalculator: Do math.", r.Description())
}

func TestRegistryDuplicate(t *testing.T) {
	r := echoRegistry(t)
	err := r.RegisterFunc("echo", "again", func(context.Context, string) (string, error) { return "", nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryEmptyName(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.RegisterFunc(" ", "x", nil))
}

func TestInvokeSuccess(t *testing.T) {
	r := echoRegistry(t)
	out, call := r.InvokeWithStats(context.Background(), "echo", "hi")
	assert.Equal(t, "echo: hi", out)
	assert.True(t, call.Success)
	assert.Equal(t, 2, call.InputSize)
	assert.Equal(t, len(out), call.OutputSize)
}

func TestInvokeUnknownTool(t *testing.T) {
	r := echoRegistry(t)
	out := r.Invoke(context.Background(), "Calculater", "2+2")
	assert.True(t, strings.HasPrefix(out, FailurePrefix))
	assert.Contains(t, out, "unknown tool 'Calculater'")
	assert.Contains(t, out, "echo, calculator")
}

func TestInvokeFailureBecomesText(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterFunc("broken", "fails", func(context.Context, string) (string, error) {
		return "", errors.New("invalid input value")
	}))
	out, call := r.InvokeWithStats(context.Background(), "broken", "x")
	assert.True(t, strings.HasPrefix(out, FailurePrefix))
	assert.Contains(t, out, "invalid input value")
	assert.False(t, call.Success)
}

func TestInvokeRecoversPanic(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterFunc("panicky", "panics", func(context.Context, string) (string, error) {
		panic("kaboom")
	}))
	var out string
	require.NotPanics(t, func() { out = r.Invoke(context.Background(), "panicky", "x") })
	assert.True(t, strings.HasPrefix(out, FailurePrefix))
	assert.Contains(t, out, "kaboom")
}

func TestInvokeTimeout(t *testing.T) {
	r := NewRegistry().WithExecutor(NewExecutor(ToolConfig{Timeout: 50 * time.Millisecond, MaxRetries: 1}))
	require.NoError(t, r.RegisterFunc("slow", "blocks", func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}))
	out := r.Invoke(context.Background(), "slow", "x")
	assert.True(t, strings.HasPrefix(out, FailurePrefix))
	assert.Contains(t, out, "timed out")
}

func TestSuggest(t *testing.T) {
	r := echoRegistry(t)
	assert.Equal(t, []string{"calculator"}, r.Suggest("calc"))
	assert.Empty(t, r.Suggest("weather"))
}

func TestConcurrentInvoke(t *testing.T) {
	r := echoRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "4", r.Invoke(context.Background(), "calculator", "2+2"))
		}()
	}
	wg.Wait()
}

func TestExecutorRetriesTransient(t *testing.T) {
	attempts := 0
	tool := NewFunc("flaky", "", func(context.Context, string) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	})
	res, err := NewExecutor(ToolConfig{Timeout: time.Second, MaxRetries: 3}).Execute(context.Background(), tool, "x")
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "ok", res.Output)
	assert.Equal(t, 2, attempts)
}

func TestExecutorDoesNotRetryDeterministicFailure(t *testing.T) {
	attempts := 0
	tool := NewFunc("bad", "", func(context.Context, string) (string, error) {
		attempts++
		return "", errors.New("division by zero")
	})
	res, err := NewExecutor(ToolConfig{Timeout: time.Second, MaxRetries: 3}).Execute(context.Background(), tool, "1/0")
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 1, attempts)
}

func TestExecutorValidates(t *testing.T) {
	res, err := NewDefaultExecutor().Execute(context.Background(), NewRegexTool(), "   ")
	require.NoError(t, err)
	require.False(t, res.Success())
	assert.Contains(t, res.Error.Error(), "validation failed")
}

func TestSplitArgs(t *testing.T) {
	got, err := SplitArgs(" 100 | usd |eur ", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "usd", "eur"}, got)

	_, err = SplitArgs("100|USD", 3)
	assert.Error(t, err)

	_, err = SplitArgs("100||EUR", 3)
	assert.Error(t, err)

	got, err = SplitArgs("a|b|c|d", 2)
	require.NoError(t, err)
	assert.Equal(t, "b|c|d", got[1])

	assert.Equal(t, "1|USD|EUR", JoinArgs("1", "USD", "EUR"))
}

func TestToolResultJSON(t *testing.T) {
	b, err := FailureResultf("nope").MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"output":"","error":"nope"}`, string(b))
}
