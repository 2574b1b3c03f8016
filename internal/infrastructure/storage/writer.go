package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SceneStore читает сцены и сохраняет карты наблюдений агентов.
type SceneStore struct {
	Dir string
}

func NewSceneStore(dir string) *SceneStore {
	// Создаем папку если нет
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
	return &SceneStore{Dir: dir}
}

// SaveMap пишет карту агента в map_<agent>_lvl<level>.yaml и возвращает путь.
func (s *SceneStore) SaveMap(agentID string, sc *Scene) (string, error) {
	filename := fmt.Sprintf("map_%s_lvl%d.yaml", agentID, sc.Level)
	path := filepath.Join(s.Dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteScene(f, sc); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return path, nil
}

// WriteScene сериализует сцену в YAML.
func WriteScene(w io.Writer, sc *Scene) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	return enc.Close()
}
