package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vancomm/regionsweeper/internal/config"
	"github.com/vancomm/regionsweeper/internal/middleware"
	"github.com/vancomm/regionsweeper/internal/mines"
	"github.com/vancomm/regionsweeper/internal/regions"
	"github.com/vancomm/regionsweeper/internal/session"
)

var (
	ErrBadSessionId = errors.New("session id must be an integer")
	ErrUnauthorized = errors.New("missing or invalid session token")
)

type SessionHandler struct {
	logger    *slog.Logger
	store     session.Store
	catalog   *regions.Catalog
	tokens    *config.Tokens
	ws        *config.WebSocket
	newRand   func() *rand.Rand
	autoChord bool
}

type SessionHandlerParams struct {
	Store     session.Store
	Catalog   *regions.Catalog
	Tokens    *config.Tokens
	WebSocket *config.WebSocket
	NewRand   func() *rand.Rand
	AutoChord bool
}

func NewSessionHandler(logger *slog.Logger, p SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		logger:    logger,
		store:     p.Store,
		catalog:   p.Catalog,
		tokens:    p.Tokens,
		ws:        p.WebSocket,
		newRand:   p.NewRand,
		autoChord: p.AutoChord,
	}
}

func (h *SessionHandler) Routes(router *mux.Router) {
	router.Methods(http.MethodPost).Path("/sessions").HandlerFunc(h.New)
	router.Methods(http.MethodGet).Path("/sessions/{id}").HandlerFunc(h.Fetch)
	router.Methods(http.MethodPost).Path("/sessions/{id}/move").HandlerFunc(h.Move)
	router.Methods(http.MethodPost).Path("/sessions/{id}/restart").HandlerFunc(h.Restart)
	router.Methods(http.MethodPost).Path("/sessions/{id}/travel").HandlerFunc(h.Travel)
	router.Methods(http.MethodPost).Path("/sessions/{id}/forfeit").HandlerFunc(h.Forfeit)
	router.Methods(http.MethodGet).Path("/sessions/{id}/connect").HandlerFunc(h.ConnectWS)
	router.Methods(http.MethodGet).Path("/highscores").HandlerFunc(h.Highscores)
}

// status maps domain errors to HTTP status codes.
func status(err error) int {
	var invalid *mines.InvalidPositionError
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, regions.ErrUnknownRegion):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrSessionOver),
		errors.Is(err, session.ErrNotCleared),
		errors.Is(err, session.ErrTourOver),
		errors.Is(err, regions.ErrNotADestination),
		errors.Is(err, mines.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, session.ErrBadMove),
		errors.Is(err, ErrBadCommand),
		errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *SessionHandler) fail(w http.ResponseWriter, err error) {
	code := status(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("unable to handle request", slog.Any("error", err))
		err = errors.New("internal error")
	}
	SendErrorOrLog(w, h.logger, code, err)
}

func sessionId(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, ErrBadSessionId
	}
	return id, nil
}

// authorize resolves the session id and checks that the caller holds its
// token.
func (h *SessionHandler) authorize(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := sessionId(r)
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return 0, false
	}
	token, ok := middleware.Token(r)
	if !ok {
		SendErrorOrLog(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return 0, false
	}
	if err := h.tokens.Verify(token, id); err != nil {
		h.logger.Debug("rejected session token", slog.Int64("id", id), slog.Any("error", err))
		SendErrorOrLog(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return 0, false
	}
	return id, true
}

func (h *SessionHandler) New(w http.ResponseWriter, r *http.Request) {
	dto, err := decode[RegionDTO](r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	sess, err := session.New(h.catalog, h.newRand(), session.Options{
		Region:    dto.Region,
		AutoChord: h.autoChord,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.store.Create(r.Context(), sess); err != nil {
		h.fail(w, fmt.Errorf("unable to create session: %w", err))
		return
	}

	token, err := h.tokens.Sign(sess.ID)
	if err != nil {
		h.fail(w, fmt.Errorf("unable to sign session token: %w", err))
		return
	}

	h.logger.Debug("created session", slog.Int64("id", sess.ID), slog.String("region", sess.Region()))
	w.Header().Set("Location", fmt.Sprintf("/sessions/%d", sess.ID))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	SendJSONOrLog(w, h.logger, CreatedSessionDTO{
		SessionDTO: NewSessionDTO(sess, h.catalog, nil),
		Token:      token,
	})
}

func (h *SessionHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := sessionId(r)
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	sess, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	SendJSONOrLog(w, h.logger, NewSessionDTO(sess, h.catalog, nil))
}

type mutation func(*session.Session) (*regions.Clearance, error)

// mutate runs fn against the stored session and records any region it
// clears.
func (h *SessionHandler) mutate(
	r *http.Request, id int64, fn mutation,
) (*session.Session, *regions.Clearance, error) {
	var clearance *regions.Clearance
	sess, err := h.store.Update(r.Context(), id, func(s *session.Session) error {
		var err error
		clearance, err = fn(s)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if clearance != nil {
		clear := session.NewClear(sess, clearance)
		if err := h.store.RecordClear(r.Context(), clear); err != nil {
			h.logger.Error("unable to record clear", slog.Any("clear", clear), slog.Any("error", err))
		}
		h.logger.Info(
			"region cleared",
			slog.Int64("session", sess.ID),
			slog.String("region", clearance.Region),
			slog.Float64("playtime_ms", clear.PlaytimeMs),
		)
	}
	return sess, clearance, nil
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, fn mutation) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	sess, clearance, err := h.mutate(r, id, fn)
	if err != nil {
		h.fail(w, err)
		return
	}
	SendJSONOrLog(w, h.logger, NewSessionDTO(sess, h.catalog, clearance))
}

func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	move, pos, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.respond(w, r, func(s *session.Session) (*regions.Clearance, error) {
		return s.Apply(h.catalog, move, pos.Row, pos.Col)
	})
}

func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(s *session.Session) (*regions.Clearance, error) {
		return nil, s.Restart(h.catalog, h.newRand())
	})
}

func (h *SessionHandler) Travel(w http.ResponseWriter, r *http.Request) {
	dto, err := decode[RequiredRegionDTO](r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.respond(w, r, func(s *session.Session) (*regions.Clearance, error) {
		return nil, s.Travel(h.catalog, h.newRand(), dto.Region)
	})
}

func (h *SessionHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(s *session.Session) (*regions.Clearance, error) {
		s.Forfeit(h.catalog)
		return nil, nil
	})
}

func (h *SessionHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseHighscoreFilter(r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if filter.Region != nil {
		if _, err := h.catalog.Get(*filter.Region); err != nil {
			h.fail(w, err)
			return
		}
	}
	highscores, err := h.store.Highscores(r.Context(), filter)
	if err != nil {
		h.fail(w, fmt.Errorf("unable to fetch highscores: %w", err))
		return
	}
	SendJSONOrLog(w, h.logger, highscores)
}
