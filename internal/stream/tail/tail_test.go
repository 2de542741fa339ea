// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package tail

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow_ReadsExistingAndAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	r := Follow(ctx, path, 5*time.Millisecond)
	defer r.Close()

	scanner := bufio.NewScanner(r)

	require.True(t, scanner.Scan())
	assert.Equal(t, "one", scanner.Text())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.True(t, scanner.Scan())
	assert.Equal(t, "two", scanner.Text())

	// Cancellation ends the stream with a clean EOF.
	cancel()
	assert.False(t, scanner.Scan())
	assert.NoError(t, scanner.Err())
}

func TestFollow_WaitsForFileToAppear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.jsonl")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := Follow(ctx, path, 5*time.Millisecond)
	defer r.Close()

	go func() {
		time.Sleep(25 * time.Millisecond)
		os.WriteFile(path, []byte("finally\n"), 0644)
	}()

	scanner := bufio.NewScanner(r)
	require.True(t, scanner.Scan())
	assert.Equal(t, "finally", scanner.Text())
}

func TestFollow_CancelBeforeFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.jsonl")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Follow(ctx, path, 5*time.Millisecond)
	defer r.Close()

	scanner := bufio.NewScanner(r)
	assert.False(t, scanner.Scan())
	assert.NoError(t, scanner.Err())
}
