package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"geballer-core/internal/domain"
	"geballer-core/internal/engine"
	"geballer-core/internal/infrastructure/storage"
	"geballer-core/internal/navigation"
	"geballer-core/internal/perception"
	"geballer-core/pkg/api"

	"github.com/davecgh/go-spew/spew"
	"github.com/faiface/pixel"
	"github.com/gorilla/mux"
)

// dumpConfig ограничивает глубину: у агента есть ссылки на пул и карту.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                5,
	SortKeys:                true,
	DisablePointerAddresses: true,
}

// DebugHandler предоставляет доступ к внутреннему состоянию мира
type DebugHandler struct {
	World *engine.World
}

func NewDebugHandler(w *engine.World) *DebugHandler {
	return &DebugHandler{World: w}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/level", h.handleLevel).Methods(http.MethodGet)
	r.HandleFunc("/agents", h.handleListAgents).Methods(http.MethodGet)
	r.HandleFunc("/agents/{id}", h.handleAgent).Methods(http.MethodGet)
	r.HandleFunc("/agents/{id}/map", h.handleMap).Methods(http.MethodGet)
	r.HandleFunc("/agents/{id}/dump", h.handleDump).Methods(http.MethodGet)
	r.HandleFunc("/agents/{id}/target", h.handleTarget).Methods(http.MethodPost)
}

// /debug/level - сводка текущего уровня
func (h *DebugHandler) handleLevel(w http.ResponseWriter, r *http.Request) {
	type ItemSummary struct {
		ID     string  `json:"id"`
		Kind   string  `json:"kind"`
		Pos    api.Vec `json:"pos"`
		Radius float64 `json:"radius"`
	}
	type LevelSummary struct {
		ID     int16         `json:"id"`
		Bounds [4]float64    `json:"bounds"`
		Walls  int           `json:"walls"`
		Items  []ItemSummary `json:"items"`
		Tick   uint64        `json:"tick"`
	}

	// Снимок под блокировкой мира
	var summary LevelSummary
	h.World.WithLevel(func(lvl *domain.Level) {
		b := lvl.Bounds
		summary = LevelSummary{
			ID:     lvl.ID,
			Bounds: [4]float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
			Walls:  len(lvl.Walls),
			Items:  []ItemSummary{},
		}
		for _, it := range lvl.Items() {
			summary.Items = append(summary.Items, ItemSummary{
				ID:     it.ID.String(),
				Kind:   it.Kind.String(),
				Pos:    api.Vec{X: it.Body.Center.X, Y: it.Body.Center.Y},
				Radius: it.Body.Radius,
			})
		}
	})
	summary.Tick = h.World.TickCount()
	writeJSON(w, http.StatusOK, summary)
}

// /debug/agents - список агентов
func (h *DebugHandler) handleListAgents(w http.ResponseWriter, r *http.Request) {
	views := []api.AgentView{}
	for _, id := range h.World.AgentIDs() {
		if v, ok := h.World.View(id); ok {
			views = append(views, v)
		}
	}
	writeJSON(w, http.StatusOK, views)
}

// /debug/agents/{id}
func (h *DebugHandler) handleAgent(w http.ResponseWriter, r *http.Request) {
	v, ok := h.World.View(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// /debug/agents/{id}/map[?format=yaml] - карта наблюдений агента.
// В YAML отдаётся в формате сцены, её можно загрузить обратно через -scene.
func (h *DebugHandler) handleMap(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if r.URL.Query().Get("format") == "yaml" {
		lvl, segments, entities, ok := h.World.Memory(id)
		if !ok {
			writeError(w, http.StatusNotFound, "agent not found")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		sc := storage.MapScene(lvl.ID, lvl.Bounds, segments, entities)
		if err := storage.WriteScene(w, sc); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	m, ok := h.World.MapOf(id)
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// agentDump: то, что печатается в /dump. Собирается под блокировкой мира.
type agentDump struct {
	ID          string
	Item        string
	Facing      float64
	FieldOfView float64
	Speeds      navigation.Speeds
	Generation  uint64
	Navigator   string
	Target      *pixel.Vec
	Path        []navigation.Leg
	Known       int
	Last        []perception.Triangle
}

// /debug/agents/{id}/dump - полный текстовый дамп агента (go-spew)
func (h *DebugHandler) handleDump(w http.ResponseWriter, r *http.Request) {
	var d agentDump
	ok := h.World.Inspect(mux.Vars(r)["id"], func(a *engine.Agent) {
		d = agentDump{
			ID:          a.ID,
			Item:        a.Item.String(),
			Facing:      a.Facing,
			FieldOfView: a.FieldOfView,
			Speeds:      a.Speeds,
			Generation:  a.Generation(),
			Navigator:   a.Nav.State().String(),
			Target:      a.Target,
			Path:        append([]navigation.Leg(nil), a.Path...),
			Known:       a.Memory.SegmentCount(),
		}
		if a.Last != nil {
			d.Last = a.Last.Triangles()
		}
	})
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	dumpConfig.Fdump(w, d)
}

// POST /debug/agents/{id}/target - отправить агента в точку
func (h *DebugHandler) handleTarget(w http.ResponseWriter, r *http.Request) {
	var p api.TargetPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accepted, err := h.World.MoveTo(mux.Vars(r)["id"], pixel.V(p.X, p.Y))
	if errors.Is(err, engine.ErrUnknownAgent) {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": accepted})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
