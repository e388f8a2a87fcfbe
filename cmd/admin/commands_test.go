package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dynamite/internal/interfaces/worker"
	"dynamite/internal/shared/auth"
)

type MockRevaluer struct {
	mu     sync.Mutex
	seen   []string
	values map[string]decimal.Decimal
	fail   map[string]error
}

func (m *MockRevaluer) Revalue(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.Lock()
	m.seen = append(m.seen, accountID)
	m.mu.Unlock()
	if err := m.fail[accountID]; err != nil {
		return decimal.Zero, err
	}
	return m.values[accountID], nil
}

func TestUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"0.005", "$0.01"},
		{"999999.99", "$999,999.99"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, USD(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tb := newTable("ID", "AMOUNT").alignRight(1)
	tb.add("a", "$1.00")
	tb.add("longer-id", "$1,000.00")
	tb.render(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "─")
	assert.True(t, strings.HasSuffix(lines[2], "    $1.00"), "amount is right aligned: %q", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "longer-id"))
}

func TestRevalueAll(t *testing.T) {
	revaluer := &MockRevaluer{
		values: map[string]decimal.Decimal{
			"acct-a": decimal.NewFromInt(10),
			"acct-b": decimal.NewFromInt(20),
		},
		fail: map[string]error{"acct-c": errors.New("boom")},
	}

	results, err := revalueAll(t.Context(), revaluer, []string{"acct-c", "acct-a", "acct-b"}, 2, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "acct-a", results[0].AccountID)
	assert.True(t, decimal.NewFromInt(10).Equal(results[0].Value))
	assert.Equal(t, "acct-b", results[1].AccountID)
	assert.Equal(t, "acct-c", results[2].AccountID)
	assert.Error(t, results[2].Err)
	assert.ElementsMatch(t, []string{"acct-a", "acct-b", "acct-c"}, revaluer.seen)
}

func TestRevalueAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := revalueAll(ctx, &MockRevaluer{}, []string{"acct-a", "acct-b", "acct-c", "acct-d"}, 1, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportRevalue_FailureReturnsError(t *testing.T) {
	var buf bytes.Buffer
	revalueCmd.SetOut(&buf)
	defer revalueCmd.SetOut(nil)

	err := reportRevalue(revalueCmd, []worker.RevalueResult{
		{AccountID: "acct-a", Value: decimal.NewFromInt(5)},
		{AccountID: "acct-b", Err: errors.New("price missing")},
	}, 0)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "$5.00")
	assert.Contains(t, buf.String(), "price missing")
}

func TestHashKeyCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{name: "argument", args: []string{"hash-key", "s3cret"}},
		{name: "stdin", args: []string{"hash-key"}, stdin: "s3cret\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetArgs(tt.args)
			rootCmd.SetOut(&out)
			rootCmd.SetIn(strings.NewReader(tt.stdin))
			t.Cleanup(func() {
				rootCmd.SetArgs(nil)
				rootCmd.SetOut(nil)
				rootCmd.SetIn(nil)
			})

			require.NoError(t, rootCmd.Execute())
			hash := strings.TrimSpace(out.String())
			assert.NoError(t, auth.VerifySecret(hash, "s3cret"))
		})
	}
}

func TestHashKeyCommand_EmptyInput(t *testing.T) {
	rootCmd.SetArgs([]string{"hash-key"})
	rootCmd.SetIn(strings.NewReader("\n"))
	rootCmd.SetOut(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
	})

	assert.Error(t, rootCmd.Execute())
}
