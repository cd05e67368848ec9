package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"ctfboard/internal/model"
)

const (
	// FlagFilename holds the canonical answer of a generated challenge.
	FlagFilename = "flag.txt"
	// SolutionFilename holds the author's write-up.
	SolutionFilename = "SOLUTION.md"
	// ReadmeFilename holds the challenge description.
	ReadmeFilename = "README.md"
)

// ErrNotExist is returned when a generated challenge or one of its files is missing.
var ErrNotExist = errors.New("does not exist")

// GeneratedRepository reads generated challenges from a directory tree,
// one sub-directory per challenge.
type GeneratedRepository interface {
	// List returns every challenge ordered by id, without its file list.
	List(ctx context.Context) ([]model.GeneratedChallenge, error)
	// Find returns one challenge with full README text and file list.
	Find(ctx context.Context, id string) (*model.GeneratedChallenge, error)
	// ReadFlag returns the raw contents of the challenge's flag file.
	ReadFlag(ctx context.Context, id string) (string, error)
	// FilePath returns the path of name inside the challenge directory.
	// name must already be a bare file name.
	FilePath(ctx context.Context, id, name string) (string, error)
}

type generatedRepository struct {
	root string
}

// NewGeneratedRepository creates a repository rooted at dir.
func NewGeneratedRepository(dir string) GeneratedRepository {
	return &generatedRepository{root: dir}
}

// challengeDir resolves id to its directory, rejecting ids that are not a single path element.
func (r *generatedRepository) challengeDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", ErrNotExist
	}
	dir := filepath.Join(r.root, id)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotExist
		}
		return "", err
	}
	if !info.IsDir() {
		return "", ErrNotExist
	}
	return dir, nil
}

func (r *generatedRepository) List(ctx context.Context) ([]model.GeneratedChallenge, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.GeneratedChallenge{}, nil
		}
		return nil, fmt.Errorf("read challenges dir: %w", err)
	}

	challenges := make([]model.GeneratedChallenge, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		challenge, err := r.load(ctx, filepath.Join(r.root, entry.Name()), entry.Name(), false)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *challenge)
	}
	return challenges, nil
}

func (r *generatedRepository) Find(ctx context.Context, id string) (*model.GeneratedChallenge, error) {
	dir, err := r.challengeDir(id)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, dir, id, true)
}

// load reads one challenge directory. An unreadable README is logged and treated as missing.
func (r *generatedRepository) load(ctx context.Context, dir, id string, withFiles bool) (*model.GeneratedChallenge, error) {
	challenge := &model.GeneratedChallenge{
		ID:   id,
		Name: DisplayName(id),
	}

	readme, err := os.ReadFile(filepath.Join(dir, ReadmeFilename))
	switch {
	case err == nil:
		challenge.Description = string(readme)
		challenge.HasReadme = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		slog.WarnContext(ctx, "unreadable challenge readme", "challenge_id", id, "error", err)
	}

	if !withFiles {
		return challenge, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list files of %s: %w", id, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || IsProtectedFile(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	challenge.Files = files
	return challenge, nil
}

func (r *generatedRepository) ReadFlag(ctx context.Context, id string) (string, error) {
	dir, err := r.challengeDir(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, FlagFilename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotExist
		}
		return "", fmt.Errorf("read flag of %s: %w", id, err)
	}
	return string(data), nil
}

func (r *generatedRepository) FilePath(ctx context.Context, id, name string) (string, error) {
	dir, err := r.challengeDir(id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotExist
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotExist
	}
	return path, nil
}

// IsProtectedFile reports whether name is one of the files never listed or served.
func IsProtectedFile(name string) bool {
	return strings.EqualFold(name, FlagFilename) || strings.EqualFold(name, SolutionFilename)
}

// DisplayName turns a directory name into a title: underscores become spaces and every
// run of letters is capitalised ("web_trivial" -> "Web Trivial").
func DisplayName(id string) string {
	var sb strings.Builder
	prevCased := false
	for _, r := range strings.ReplaceAll(id, "_", " ") {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && !prevCased:
			sb.WriteRune(unicode.ToTitle(r))
		case cased:
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
		prevCased = cased
	}
	return sb.String()
}
