package engine

import "time"

// Config хранит параметры запуска движка
type Config struct {
	// Seed - мастер-зерно генератора уровней.
	// Level N Seed = Seed + N
	Seed int64

	// Tick - шаг симуляции.
	Tick time.Duration

	// Workers - сколько поисков пути может идти параллельно.
	Workers int64

	// Explore - праздные агенты сами выбирают разведочные цели.
	Explore bool

	// Параметры генерируемого уровня (если сцена не задана)
	Width  int
	Height int
	Rooms  int
	Droids int
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:    time.Now().UnixNano(),
		Tick:    100 * time.Millisecond,
		Workers: 4,
		Width:   48,
		Height:  32,
		Rooms:   8,
		Droids:  3,
	}
}
