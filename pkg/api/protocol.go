package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// TickUpdate: то, что сервер отправляет подписчику агента после каждого
// тика мира: состояние агента и его текущее наблюдение.
type TickUpdate struct {
	// Type тип сообщения. На данный момент всегда "TICK".
	Type string `json:"type"`

	// Tick номер тика мира.
	Tick uint64 `json:"tick"`

	// Agent состояние агента после тика.
	Agent AgentView `json:"agent"`

	// Triangles наблюдение агента справа налево (может отсутствовать,
	// если агент не смог посмотреть, например, упёрся в стену).
	Triangles []TriangleView `json:"triangles,omitempty"`
}

// Vec: точка уровня.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AgentView это DTO агента для списка и потока обновлений.
type AgentView struct {
	ID       string  `json:"id"`
	ItemID   string  `json:"itemId"`
	Level    int16   `json:"level"`
	Position Vec     `json:"pos"`
	Facing   float64 `json:"facing"` // радианы

	// Navigator состояние фонового поиска: idle, searching, result-ready.
	Navigator string `json:"navigator"`

	// Target текущая цель движения, если есть.
	Target *Vec `json:"target,omitempty"`

	// PathLegs сколько отрезков пути осталось пройти.
	PathLegs int `json:"pathLegs"`

	// KnownSegments / KnownEntities: размер карты наблюдений.
	KnownSegments int `json:"knownSegments"`
	KnownEntities int `json:"knownEntities"`
}

// TriangleView это DTO одного клина наблюдения. Углы в градусах.
// Для открытого пространства и дуги вне поля зрения Open = true и
// расстояния не заполняются.
type TriangleView struct {
	Right     float64     `json:"right"`
	Left      float64     `json:"left"`
	RightDist float64     `json:"rightDist,omitempty"`
	LeftDist  float64     `json:"leftDist,omitempty"`
	Open      bool        `json:"open,omitempty"`
	Category  string      `json:"category,omitempty"`
	Range     *[2]float64 `json:"range,omitempty"`
}

// SegmentView это DTO отрезка (стены или её увиденной части).
type SegmentView struct {
	A        Vec    `json:"a"`
	B        Vec    `json:"b"`
	Category string `json:"category"`
}

// CircleView это DTO круглой сущности.
type CircleView struct {
	Center   Vec     `json:"center"`
	Radius   float64 `json:"radius"`
	Category string  `json:"category"`
}

// MapView: всё, что агент узнал об уровне.
type MapView struct {
	Agent    string        `json:"agent"`
	Level    int16         `json:"level"`
	Segments []SegmentView `json:"segments"`
	Entities []CircleView  `json:"entities"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// Действия клиента.
const (
	ActionWatch  = "WATCH"
	ActionMoveTo = "MOVE_TO"
)

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID агента, за которым следит клиент.
	// Обязателен только для первого сообщения "WATCH".
	Token string `json:"token,omitempty"`

	// Action название действия: WATCH, MOVE_TO.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// TargetPayload используется для MOVE_TO: точка, куда агенту идти.
type TargetPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ErrorResponse возвращается HTTP-обработчиками при ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
}
