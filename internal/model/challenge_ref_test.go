package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChallengeRef(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		id      string
		want    ChallengeRef
		wantKey string
		wantErr bool
	}{
		{name: "empty kind defaults to generated", kind: "", id: "web_trivial", want: GeneratedRef("web_trivial"), wantKey: "web_trivial"},
		{name: "generated", kind: "generated", id: "web_trivial", want: GeneratedRef("web_trivial"), wantKey: "web_trivial"},
		{name: "custom", kind: "Custom", id: "abc", want: CustomRef("abc"), wantKey: "custom_abc"},
		{name: "unknown kind", kind: "docker", id: "abc", wantErr: true},
		{name: "blank id", kind: "custom", id: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseChallengeRef(tt.kind, tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
			assert.Equal(t, tt.wantKey, ref.SolvedKey())
		})
	}
}

func TestChallengeStatus_Valid(t *testing.T) {
	assert.True(t, ChallengeStatusPending.Valid())
	assert.True(t, ChallengeStatusApproved.Valid())
	assert.True(t, ChallengeStatusRejected.Valid())
	assert.False(t, ChallengeStatus("archived").Valid())
}
