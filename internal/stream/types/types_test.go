// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOK   bool
		wantType string
	}{
		{"typed object", `{"type":"message_start","message":{}}`, true, "message_start"},
		{"object without type", `{"foo":"bar"}`, true, ""},
		{"leading whitespace", `   {"type":"ping"}`, true, "ping"},
		{"empty line", ``, false, ""},
		{"whitespace only", `   `, false, ""},
		{"plain text", `agent exited with code 0`, false, ""},
		{"truncated json", `{"type":"message_start"`, false, ""},
		{"json array", `[1,2,3]`, false, ""},
		{"bare null", `null`, false, ""},
		{"bare string", `"hello"`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := DecodeRecord([]byte(tt.line))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantType, rec.Type)
				assert.NotEmpty(t, rec.Data)
			}
		})
	}
}

func TestTurnIndex_DistinctPointers(t *testing.T) {
	a := TurnIndex(1)
	b := TurnIndex(1)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)
	assert.NotSame(t, a, b)
}
