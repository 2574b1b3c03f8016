package domain

import "math"

// CategoryWall: категория стен уровня.
const CategoryWall = "wall"

// Параметры тел по умолчанию (единицы уровня)
const (
	DroidRadius    = 0.35
	EnemyRadius    = 0.35
	ObstacleRadius = 0.5
	FlagRadius     = 0.2
	BulletRadius   = 0.05
)

// Параметры восприятия и движения дроида
const (
	FieldOfView  = 2 * math.Pi / 3
	ForwardSpeed = 2.0     // единиц в секунду
	TurnSpeed    = math.Pi // радиан в секунду
	SearchRadius = 12.0    // радиус снимка препятствий для поиска пути
)

// DefaultRadius возвращает радиус тела по умолчанию для вида.
func DefaultRadius(k ItemKind) float64 {
	switch k {
	case KindDroid:
		return DroidRadius
	case KindEnemy:
		return EnemyRadius
	case KindObstacle:
		return ObstacleRadius
	case KindFlag:
		return FlagRadius
	case KindBullet:
		return BulletRadius
	}
	return 0
}

// TrackedCategories: что дроид запоминает в карте наблюдений.
func TrackedCategories() []string {
	return []string{
		CategoryWall,
		KindDroid.Category(),
		KindEnemy.Category(),
		KindObstacle.Category(),
		KindFlag.Category(),
	}
}
