package generator

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flagPattern = regexp.MustCompile(`^CTF\{[0-9a-f]{12}-[0-9a-f]{12}\}$`)

func TestGenerateFlag(t *testing.T) {
	a, b := GenerateFlag(), GenerateFlag()
	assert.Regexp(t, flagPattern, a)
	assert.NotEqual(t, a, b)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Crypto")
	require.NoError(t, err)
	assert.Equal(t, KindCrypto, k)

	_, err = ParseKind("pwn")
	assert.Error(t, err)
}

func TestGenerator_AllKinds(t *testing.T) {
	root := t.TempDir()
	g := New(root)

	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			res, err := g.Generate(kind)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(res.ID, "challenge_"))
			assert.Regexp(t, flagPattern, res.Flag)

			flag, err := os.ReadFile(filepath.Join(res.Dir, "flag.txt"))
			require.NoError(t, err)
			assert.Equal(t, res.Flag, strings.TrimSpace(string(flag)))

			for _, name := range []string{"README.md", "SOLUTION.md"} {
				_, err := os.Stat(filepath.Join(res.Dir, name))
				assert.NoError(t, err, name)
			}
		})
	}
}

func TestGenerator_CryptoAssetDecodes(t *testing.T) {
	g := New(t.TempDir())
	res, err := g.GenerateWithID("crypto_one", KindCrypto, "CTF{abc}")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(res.Dir, "cipher.txt"))
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "CTF{abc}", rot13(string(decoded)))
}

func TestGenerator_ForensicsContainsFlag(t *testing.T) {
	g := New(t.TempDir())
	res, err := g.GenerateWithID("forensics_one", KindForensics, "CTF{needle}")
	require.NoError(t, err)

	blob, err := os.ReadFile(filepath.Join(res.Dir, "evidence.bin"))
	require.NoError(t, err)
	assert.Contains(t, string(blob), "CTF{needle}")
	assert.Equal(t, byte(0), blob[0])
}

func TestGenerator_RejectsBadIDs(t *testing.T) {
	g := New(t.TempDir())

	_, err := g.GenerateWithID("../escape", KindWeb, "CTF{x}")
	assert.Error(t, err)

	_, err = g.GenerateWithID("dup", KindWeb, "CTF{x}")
	require.NoError(t, err)
	_, err = g.GenerateWithID("dup", KindWeb, "CTF{x}")
	assert.ErrorIs(t, err, ErrExists)

	_, err = g.GenerateWithID("bad_kind", Kind("pwn"), "CTF{x}")
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(g.root, "bad_kind"))
	assert.True(t, os.IsNotExist(statErr))
}
