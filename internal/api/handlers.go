package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/tui-tetris/internal/achievements"
	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/replay"
	"github.com/vovakirdan/tui-tetris/internal/stats"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// Handler serves every route. It only reads and writes the store.
type Handler struct {
	store        *storage.Store
	achievements []achievements.Definition
	now          func() time.Time
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type modeResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Race        bool   `json:"race"` // ranked by time instead of score
	Best        int    `json:"best"`
}

// Modes handles GET /api/modes
func (h *Handler) Modes(w http.ResponseWriter, r *http.Request) {
	list := registry.List()
	out := make([]modeResponse, 0, len(list))
	for _, info := range list {
		mode, err := registry.Get(info.ID)
		if err != nil {
			continue
		}
		best, err := h.store.HighScore(info.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, modeResponse{
			ID:          info.ID,
			Title:       info.Title,
			Description: info.Description,
			Race:        modes.IsRace(mode),
			Best:        best,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type scoresResponse struct {
	Mode   string               `json:"mode"`
	Best   int                  `json:"best"`
	Scores []storage.ScoreEntry `json:"scores"`
	Games  []storage.GameRecord `json:"games"`
}

// Scores handles GET /api/scores?mode=&limit=
func (h *Handler) Scores(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = modes.Classic
	}
	if !registry.Exists(mode) {
		writeError(w, http.StatusNotFound, "unknown mode: "+mode)
		return
	}
	limit := queryInt(r, "limit", 10, 100)

	best, err := h.store.HighScore(mode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	scores, err := h.store.TopScores(mode, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	games, err := h.store.Games(mode, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scoresResponse{
		Mode:   mode,
		Best:   best,
		Scores: nonNil(scores),
		Games:  nonNil(games),
	})
}

// Stats handles GET /api/stats?range=
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Games("", 1000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rng := stats.ParseRange(r.URL.Query().Get("range"))
	writeJSON(w, http.StatusOK, stats.Analyze(records, rng, h.now()))
}

type achievementResponse struct {
	achievements.Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

type achievementsResponse struct {
	Points       int                   `json:"points"`
	Achievements []achievementResponse `json:"achievements"`
}

// Achievements handles GET /api/achievements
func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := h.store.Achievements()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	at := make(map[string]time.Time, len(unlocked))
	ids := make([]string, 0, len(unlocked))
	for _, u := range unlocked {
		at[u.ID] = u.UnlockedAt
		ids = append(ids, u.ID)
	}

	resp := achievementsResponse{
		Points:       achievements.Points(h.achievements, ids),
		Achievements: make([]achievementResponse, 0, len(h.achievements)),
	}
	for _, d := range h.achievements {
		a := achievementResponse{Definition: d}
		if t, ok := at[d.ID]; ok {
			a.Unlocked = true
			a.UnlockedAt = &t
		}
		resp.Achievements = append(resp.Achievements, a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Matches handles GET /api/matches?player=&limit=
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	battles, err := h.store.RecentBattles(r.URL.Query().Get("player"), queryInt(r, "limit", 20, 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(battles))
}

// GetMatch handles GET /api/matches/{id}
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	battle, err := h.store.Battle(chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, battle)
}

// Standings handles GET /api/standings?limit=
func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.store.Standings(queryInt(r, "limit", 10, 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(standings))
}

// ListReplays handles GET /api/replays?limit=
func (h *Handler) ListReplays(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.Replays(queryInt(r, "limit", 0, 1000))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(infos))
}

// GetReplay handles GET /api/replays/{id}
func (h *Handler) GetReplay(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.Replay(chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// DeleteReplay handles DELETE /api/replays/{id}
func (h *Handler) DeleteReplay(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteReplay(chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadResponse struct {
	ID         string `json:"id"`
	Verified   bool   `json:"verified"`
	FinalScore int    `json:"finalScore"`
}

type desyncResponse struct {
	Error string `json:"error"`
	Frame int    `json:"frame"`
	Field string `json:"field"`
}

// UploadReplay handles POST /api/replays?verify=1
func (h *Handler) UploadReplay(w http.ResponseWriter, r *http.Request) {
	rep, err := replay.Decode(http.MaxBytesReader(w, r.Body, maxReplayBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	verify := r.URL.Query().Get("verify") == "1"
	if verify {
		if _, err := replay.Play(rep, true); err != nil {
			var desync *replay.DesyncError
			if errors.As(err, &desync) {
				writeJSON(w, http.StatusUnprocessableEntity, desyncResponse{
					Error: err.Error(),
					Frame: desync.Frame,
					Field: desync.Field,
				})
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	id, err := h.store.SaveReplay(rep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{ID: id, Verified: verify, FinalScore: rep.FinalScore})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
