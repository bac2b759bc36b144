package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileManager stores synthesized audio artifacts on the local filesystem.
type FileManager struct {
	baseDir  string
	audioDir string
}

func NewFileManager(baseDir string) (*FileManager, error) {
	fm := &FileManager{
		baseDir:  baseDir,
		audioDir: filepath.Join(baseDir, "audio"),
	}

	for _, dir := range []string{fm.baseDir, fm.audioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	return fm, nil
}

// SaveAudio writes the artifact under audio/<name>.mp3 and returns its path.
func (fm *FileManager) SaveAudio(_ context.Context, data []byte, name string) (string, error) {
	path := filepath.Join(fm.audioDir, fmt.Sprintf("%s.mp3", name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return path, nil
}

// ReadAudio returns the artifact bytes, or nil when the file is missing.
func (fm *FileManager) ReadAudio(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	return data, nil
}

func (fm *FileManager) AudioPath(name string) string {
	return filepath.Join(fm.audioDir, fmt.Sprintf("%s.mp3", name))
}
