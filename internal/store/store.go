// Package store persists session geometry as versioned JSON files.
// Each session keeps a current.json plus a chain of version_N.json
// snapshots that Undo walks backwards through.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Nukpro/DeedRecreator/internal/geom"
)

const (
	currentFile = "current.json"

	// MaxVersions bounds the undo chain kept on disk.
	MaxVersions = 20
)

var (
	ErrNothingToUndo  = errors.New("no actions to undo")
	ErrVersionMissing = errors.New("previous version file not found")
)

// Store manages the geometry files of all sessions under one root
// directory. Writes are last-write-wins; concurrent editors of the same
// session are not arbitrated.
type Store struct {
	root string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &Store{root: dir}, nil
}

// SessionDir returns the geometry directory of a session, creating it
// on first use.
func (s *Store) SessionDir(sessionID int) (string, error) {
	dir := filepath.Join(s.root, fmt.Sprintf("session_%d", sessionID), "geom_tmp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	return dir, nil
}

// Load returns the current document of a session. A session with no
// saved state yet yields an empty version-0 session document.
func (s *Store) Load(sessionID int) (*geom.Document, error) {
	dir, err := s.SessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, currentFile))
	if errors.Is(err, os.ErrNotExist) {
		return &geom.Document{
			Format:  geom.FormatSession,
			History: &geom.History{CurrentVersion: 0},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %d: %w", sessionID, err)
	}

	doc, err := geom.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, err)
	}
	return doc, nil
}

// Save writes doc as the new current state. The previous current state
// is first snapshotted to version_<N>.json so it stays reachable for
// Undo, the version counter advances, and snapshots beyond MaxVersions
// are pruned oldest-first.
func (s *Store) Save(sessionID int, doc *geom.Document) error {
	dir, err := s.SessionDir(sessionID)
	if err != nil {
		return err
	}

	prev, err := s.Load(sessionID)
	if err != nil {
		return err
	}

	var prevFile *string
	if prev.Version > 0 {
		name := versionFileName(prev.Version)
		data, err := geom.MarshalDocument(prev)
		if err != nil {
			return fmt.Errorf("snapshot session %d: %w", sessionID, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("snapshot session %d: %w", sessionID, err)
		}
		prevFile = &name
	}

	doc.Version = prev.Version + 1
	doc.History = &geom.History{
		CurrentVersion:      doc.Version,
		PreviousVersionFile: prevFile,
	}

	data, err := geom.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", sessionID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, currentFile), data, 0o644); err != nil {
		return fmt.Errorf("write session %d: %w", sessionID, err)
	}

	s.pruneVersions(dir)
	return nil
}

// Undo replaces the current state with the snapshot named in its
// history chain and decrements the version counter. Returns the
// restored document.
func (s *Store) Undo(sessionID int) (*geom.Document, error) {
	dir, err := s.SessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	current, err := s.Load(sessionID)
	if err != nil {
		return nil, err
	}
	if current.History == nil || current.History.PreviousVersionFile == nil {
		return nil, ErrNothingToUndo
	}

	name := filepath.Base(*current.History.PreviousVersionFile)
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrVersionMissing, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}

	restored, err := geom.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	restored.Version = current.Version - 1

	out, err := geom.MarshalDocument(restored)
	if err != nil {
		return nil, fmt.Errorf("encode session %d: %w", sessionID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, currentFile), out, 0o644); err != nil {
		return nil, fmt.Errorf("write session %d: %w", sessionID, err)
	}
	return restored, nil
}

// Raw returns the current state as stored JSON without decoding it.
func (s *Store) Raw(sessionID int) (json.RawMessage, error) {
	dir, err := s.SessionDir(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, currentFile))
	if errors.Is(err, os.ErrNotExist) {
		doc, err := s.Load(sessionID)
		if err != nil {
			return nil, err
		}
		return geom.MarshalDocument(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("read session %d: %w", sessionID, err)
	}
	return data, nil
}

func versionFileName(version int) string {
	return fmt.Sprintf("version_%d.json", version)
}

// pruneVersions keeps the newest MaxVersions snapshots. Errors are
// ignored; a leftover snapshot only wastes disk.
func (s *Store) pruneVersions(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var versions []int
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "version_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "version_"), ".json"))
		if err != nil {
			continue
		}
		versions = append(versions, n)
	}
	if len(versions) <= MaxVersions {
		return
	}

	sort.Ints(versions)
	for _, n := range versions[:len(versions)-MaxVersions] {
		os.Remove(filepath.Join(dir, versionFileName(n)))
	}
}
