package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load читает сцену из файла. Относительные пути ищутся в Dir.
func (s *SceneStore) Load(path string) (*Scene, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc, err := ReadScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ReadScene разбирает YAML-сцену. Неизвестные поля: ошибка.
func ReadScene(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scene
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}
	if err := sc.normalize(); err != nil {
		return nil, err
	}
	return &sc, nil
}
