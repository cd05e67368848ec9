// Package generator creates self-contained challenge directories: a flag file,
// a README, a write-up and the assets players work with.
package generator

import (
	"bytes"
	"crypto/rand"
	"embed"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/google/uuid"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Kind selects the flavour of generated challenge.
type Kind string

const (
	KindWeb       Kind = "web"
	KindCrypto    Kind = "crypto"
	KindForensics Kind = "forensics"
)

// Kinds lists the supported kinds in display order.
func Kinds() []Kind {
	return []Kind{KindWeb, KindCrypto, KindForensics}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown challenge type %q", s)
}

// ErrExists is returned when the generated directory name is already taken.
var ErrExists = errors.New("challenge directory already exists")

// Result describes one generated challenge.
type Result struct {
	ID   string
	Dir  string
	Kind Kind
	Flag string
}

// Generator writes challenges under a root directory.
type Generator struct {
	root string
}

// New creates a generator writing into root.
func New(root string) *Generator {
	return &Generator{root: root}
}

// GenerateFlag returns a fresh random flag.
func GenerateFlag() string {
	part1 := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	part2 := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("CTF{%s-%s}", part1, part2)
}

// Generate creates a new challenge of the given kind.
func (g *Generator) Generate(kind Kind) (*Result, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return nil, fmt.Errorf("random id: %w", err)
	}
	return g.GenerateWithID("challenge_"+hex.EncodeToString(suffix), kind, GenerateFlag())
}

// GenerateWithID creates a challenge with a fixed id and flag.
func (g *Generator) GenerateWithID(id string, kind Kind, flag string) (*Result, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("invalid challenge id %q", id)
	}
	if err := os.MkdirAll(g.root, 0o755); err != nil {
		return nil, fmt.Errorf("create challenges dir: %w", err)
	}
	dir := filepath.Join(g.root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create challenge dir: %w", err)
	}

	content, err := build(kind, flag)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	files := map[string][]byte{"flag.txt": []byte(flag + "\n")}
	for name, data := range content.assets {
		files[name] = data
	}
	readme, err := render("README.md.tmpl", content)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	files["README.md"] = readme
	solution, err := render("SOLUTION.md.tmpl", content)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	files["SOLUTION.md"] = solution

	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			_ = os.RemoveAll(dir)
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	return &Result{ID: id, Dir: dir, Kind: kind, Flag: flag}, nil
}

// challengeContent is the data the README and SOLUTION templates see.
type challengeContent struct {
	Title       string
	Kind        Kind
	Description string
	Solution    string
	Flag        string
	Port        int
	assets      map[string][]byte
}

func build(kind Kind, flag string) (*challengeContent, error) {
	c := &challengeContent{Kind: kind, Flag: flag, Port: 5000, assets: map[string][]byte{}}

	switch kind {
	case KindWeb:
		variant := "web_login_app.py.tmpl"
		c.Title = "Admin Login"
		c.Description = "A tiny login service guards the flag. Read app.py and find the way in."
		c.Solution = "The admin password is the flag itself and is visible in app.py."
		if randomBit() {
			variant = "web_lfi_app.py.tmpl"
			c.Title = "File Viewer"
			c.Description = "A file viewer only serves files next to it. The flag lives in flag.txt beside the app."
			c.Solution = "basename() keeps flag.txt intact, so /?file=flag.txt returns it."
		}
		app, err := render(variant, c)
		if err != nil {
			return nil, err
		}
		c.assets["app.py"] = app
	case KindCrypto:
		c.Title = "Caesar Salad"
		c.Description = "The flag was shifted and then base64 encoded. cipher.txt holds the result."
		c.Solution = "Decode base64, then rotate every letter back by 13."
		c.assets["cipher.txt"] = []byte(base64.StdEncoding.EncodeToString([]byte(rot13(flag))) + "\n")
	case KindForensics:
		c.Title = "Needle in a Blob"
		c.Description = "Something readable is hidden in evidence.bin."
		c.Solution = "Run strings over evidence.bin."
		blob, err := evidenceBlob(flag)
		if err != nil {
			return nil, err
		}
		c.assets["evidence.bin"] = blob
	default:
		return nil, fmt.Errorf("unknown challenge type %q", kind)
	}
	return c, nil
}

func render(name string, data *challengeContent) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

// evidenceBlob surrounds the flag with random non-text bytes.
func evidenceBlob(flag string) ([]byte, error) {
	noise := make([]byte, 512)
	if _, err := rand.Read(noise); err != nil {
		return nil, fmt.Errorf("random blob: %w", err)
	}
	for i := range noise {
		// keep the noise outside printable ASCII so the flag is the only string
		noise[i] = 0x80 | noise[i]
	}
	noise[0] = 0x00
	blob := append([]byte{}, noise[:256]...)
	blob = append(blob, flag...)
	return append(blob, noise[256:]...), nil
}

func randomBit() bool {
	b := make([]byte, 1)
	_, _ = rand.Read(b)
	return b[0]&1 == 1
}
