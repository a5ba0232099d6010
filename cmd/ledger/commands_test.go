package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/services"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/SscSPs/account_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner() (*commandRunner, *bytes.Buffer) {
	out := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	container := services.NewServiceContainer(memory.NewRepositoryProvider())
	return newCommandRunner(container.Account, logger, out), out
}

func lastResponse(t *testing.T, out *bytes.Buffer) dto.AccountResponse {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &resp))
	return resp
}

func TestExecute_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	runner, out := newTestRunner()

	require.NoError(t, runner.execute(ctx, []string{"create", "Ana", "111", "1000", "1", "c-1"}))
	resp := lastResponse(t, out)
	assert.Equal(t, "1", resp.AccountID)
	assert.Equal(t, "c-1", resp.Owner.CustomerID)
	assert.Equal(t, "1000", resp.AvailableCredit.String())

	require.NoError(t, runner.execute(ctx, []string{"create", "Carla", "222", "0", "2"}))
	require.NoError(t, runner.execute(ctx, []string{"deposit", "1", "100"}))
	require.NoError(t, runner.execute(ctx, []string{"transfer", "1", "2", "20.50"}))
	assert.Equal(t, "79.5", lastResponse(t, out).Balance.String())

	require.NoError(t, runner.execute(ctx, []string{"loan", "1", "1000"}))
	resp = lastResponse(t, out)
	assert.Equal(t, "1079.5", resp.Balance.String())
	assert.True(t, resp.AvailableCredit.IsZero())

	require.NoError(t, runner.execute(ctx, []string{"grant-credit", "1", "50"}))
	assert.Equal(t, "50", lastResponse(t, out).AvailableCredit.String())

	require.NoError(t, runner.execute(ctx, []string{"find", "2"}))
	assert.Equal(t, "20.5", lastResponse(t, out).Balance.String())

	require.NoError(t, runner.execute(ctx, []string{"delete", "2"}))
	assert.Contains(t, out.String(), `{"deleted":"2"}`)
	assert.ErrorIs(t, runner.execute(ctx, []string{"find", "2"}), apperrors.ErrAccountNotFound)
}

func TestExecute_DeleteOutputIsValidJSON(t *testing.T) {
	ctx := context.Background()
	runner, out := newTestRunner()
	id := "q\"\x01\u00e9"

	require.NoError(t, runner.execute(ctx, []string{"create", "Ana", "111", "0", id}))
	out.Reset()
	require.NoError(t, runner.execute(ctx, []string{"delete", id}))

	var resp dto.DeleteAccountResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	assert.Equal(t, id, resp.Deleted)
}

func TestExecute_UsageErrors(t *testing.T) {
	runner, _ := newTestRunner()
	testCases := [][]string{
		nil,
		{"bogus"},
		{"create", "Ana"},
		{"find"},
		{"deposit", "1"},
		{"deposit", "1", "ten"},
		{"transfer", "1", "2"},
		{"delete"},
	}
	for _, args := range testCases {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			assert.ErrorIs(t, runner.execute(context.Background(), args), errUsage)
		})
	}
}

func TestExecute_BusinessErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner()
	require.NoError(t, runner.execute(ctx, []string{"create", "Ana", "111", "10", "1"}))

	err := runner.execute(ctx, []string{"loan", "1", "11"})
	assert.EqualError(t, err, "Invalid account - [id: 1]")

	err = runner.execute(ctx, []string{"deposit", "1", "-5"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestShell_RunsEachLine(t *testing.T) {
	runner, out := newTestRunner()
	script := strings.Join([]string{
		"# two accounts",
		"create Ana 111 1000 1",
		"create Carla 222 0 2",
		"",
		"deposit 1 100",
		"transfer 1 2 500",
		"transfer 1 2 20",
		"find 2",
	}, "\n")
	errOut := &bytes.Buffer{}

	require.NoError(t, runner.shell(context.Background(), strings.NewReader(script), errOut))

	assert.Equal(t, "error: Invalid account - [id: 1]\n", errOut.String())
	resp := lastResponse(t, out)
	assert.Equal(t, "2", resp.AccountID)
	assert.Equal(t, "20", resp.Balance.String())
}
