package handlers

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/regionsweeper/internal/regions"
	"github.com/vancomm/regionsweeper/internal/session"
)

func iterBySep(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0, // get
	"o": 2, // open row col
	"f": 2, // flag row col
	"c": 2, // chord row col
	"n": 0, // new board
	"t": 1, // travel region
}

var ErrBadCommand = errors.New("bad command")

type command struct {
	name     string
	row, col int
	region   string
}

func parseRowCol(twoStrings []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = fmt.Errorf("%w: first argument must be an int", ErrBadCommand)
		return
	}
	if col, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = fmt.Errorf("%w: second argument must be an int", ErrBadCommand)
		return
	}
	return
}

func parseCommand(c string) (command, error) {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return command{}, fmt.Errorf("%w: empty", ErrBadCommand)
	}

	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return command{}, fmt.Errorf("%w: unknown %q", ErrBadCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return command{}, fmt.Errorf(
			"%w: %q takes %d arguments, got %d",
			ErrBadCommand, parts[0], nargs, len(parts)-1,
		)
	}

	cmd := command{name: parts[0]}
	switch nargs {
	case 1:
		cmd.region = parts[1]
	case 2:
		row, col, err := parseRowCol(parts[1:])
		if err != nil {
			return command{}, err
		}
		cmd.row, cmd.col = row, col
	}
	return cmd, nil
}

// mutation turns a command into a session update. It is nil for read-only
// commands.
func (c command) mutation(h *SessionHandler) mutation {
	move := map[string]session.Move{"o": session.Open, "f": session.Flag, "c": session.Chord}
	switch c.name {
	case "o", "f", "c":
		return func(s *session.Session) (*regions.Clearance, error) {
			return s.Apply(h.catalog, move[c.name], c.row, c.col)
		}
	case "n":
		return func(s *session.Session) (*regions.Clearance, error) {
			return nil, s.Restart(h.catalog, h.newRand())
		}
	case "t":
		return func(s *session.Session) (*regions.Clearance, error) {
			return nil, s.Travel(h.catalog, h.newRand(), c.region)
		}
	}
	return nil
}

func (h *SessionHandler) execute(
	r *http.Request, id int64, text string,
) (*session.Session, *regions.Clearance, error) {
	var (
		sess      *session.Session
		clearance *regions.Clearance
	)
	for _, line := range iterBySep(text, "\n") {
		cmd, err := parseCommand(line)
		if err != nil {
			return nil, nil, err
		}
		fn := cmd.mutation(h)
		if fn == nil {
			sess, err = h.store.Get(r.Context(), id)
		} else {
			var cleared *regions.Clearance
			sess, cleared, err = h.mutate(r, id, fn)
			if cleared != nil {
				clearance = cleared
			}
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return sess, clearance, nil
}

// ConnectWS streams the session over a websocket. Every text message holds
// one or more newline separated commands; the session is sent back after
// each message.
func (h *SessionHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if _, err := h.store.Get(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}

	c, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()

	logger := h.logger.With(slog.Int64("session", id))
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}
		text := strings.TrimSpace(string(message))
		logger.Debug(fmt.Sprintf("\t> %s", text))

		var reply any
		sess, clearance, err := h.execute(r, id, text)
		if err != nil {
			if status(err) == http.StatusInternalServerError {
				logger.Error("unable to process command", slog.Any("error", err))
				return
			}
			reply = wrapError(err)
		} else {
			reply = NewSessionDTO(sess, h.catalog, clearance)
		}

		if err := c.WriteJSON(reply); err != nil {
			logger.Error("unable to write json", slog.Any("error", err))
			break
		}
		logger.Debug("\t< <session data>")
	}
}
