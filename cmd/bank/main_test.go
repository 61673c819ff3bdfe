package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"pixbank/internal/domain"
	"pixbank/internal/repository/memory"
	"pixbank/internal/service"
	"pixbank/internal/storage"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PersistsBetweenSessions(t *testing.T) {
	dir := t.TempDir()
	args := []string{
		"--env-file=" + filepath.Join(dir, "none.env"),
		"--data-file=" + filepath.Join(dir, "state.json"),
		"--snapshot-secret=s3cret",
		"--log-file=" + filepath.Join(dir, "bank.log"),
	}

	var out bytes.Buffer
	input := strings.Join([]string{"1", "Ana", "52998224725", "10", "7", "52998224725", "0"}, "\n") + "\n"
	require.NoError(t, run(args, strings.NewReader(input), &out))
	assert.Contains(t, out.String(), "Checking account 1 opened for Ana.")

	_, err := os.Stat(filepath.Join(dir, "state.json"))
	require.NoError(t, err)

	out.Reset()
	input = strings.Join([]string{"10", "1", "Bea", "11144477735", "", "0"}, "\n") + "\n"
	require.NoError(t, run(args, strings.NewReader(input), &out))
	assert.Contains(t, out.String(), "529.982.247-25")
	assert.Contains(t, out.String(), "Checking account 2 opened for Bea.")
}

func TestRun_CorruptSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	args := []string{
		"--env-file=" + filepath.Join(dir, "none.env"),
		"--data-file=" + path,
		"--log-file=" + filepath.Join(dir, "bank.log"),
	}

	var out bytes.Buffer
	require.NoError(t, run(args, strings.NewReader("10\n0\n"), &out))
	assert.Contains(t, out.String(), "No accounts registered.")
}

func TestRun_InvalidConfig(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"--log-format=xml", "--env-file=" + filepath.Join(t.TempDir(), "none.env")}, strings.NewReader(""), &out)
	assert.Error(t, err)
}

func TestStateSaver_ConcurrentSavesWriteOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	ledger := service.NewLedgerService(memory.NewAccountRepository(), logger)
	_, err := ledger.CreateAccount(ctx, service.CreateAccountRequest{
		Kind:      domain.KindChecking,
		OwnerName: "Ana",
		OwnerID:   "52998224725",
	})
	require.NoError(t, err)

	saver := &stateSaver{ledger: ledger, path: path, logger: logger}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = saver.Save()
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	snap, err := storage.LoadSnapshot(path, nil)
	require.NoError(t, err)
	assert.Len(t, snap.Accounts, 1)
}
