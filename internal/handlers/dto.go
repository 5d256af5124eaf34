package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"

	"github.com/vancomm/regionsweeper/internal/mines"
	"github.com/vancomm/regionsweeper/internal/regions"
	"github.com/vancomm/regionsweeper/internal/session"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

func decode[T any](src url.Values) (T, error) {
	var dto T
	err := decoder.Decode(&dto, src)
	return dto, err
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row,required"`
	Col  int    `schema:"col,required"`
}

func ParseMoveDTO(src url.Values) (session.Move, mines.Position, error) {
	dto, err := decode[MoveDTO](src)
	if err != nil {
		return 0, mines.Position{}, err
	}
	move, err := session.ParseMove(dto.Move)
	if err != nil {
		return 0, mines.Position{}, err
	}
	return move, mines.Position{Row: dto.Row, Col: dto.Col}, nil
}

type RegionDTO struct {
	Region string `schema:"region"`
}

type RequiredRegionDTO struct {
	Region string `schema:"region,required"`
}

type HighscoreDTO struct {
	Region string `schema:"region"`
	Limit  int    `schema:"limit"`
}

const (
	defaultHighscoreLimit = 10
	maxHighscoreLimit     = 100
)

func ParseHighscoreFilter(src url.Values) (session.HighscoreFilter, error) {
	dto, err := decode[HighscoreDTO](src)
	if err != nil {
		return session.HighscoreFilter{}, err
	}
	if dto.Limit < 0 || dto.Limit > maxHighscoreLimit {
		return session.HighscoreFilter{}, fmt.Errorf(
			"limit must be between 0 and %d", maxHighscoreLimit,
		)
	}
	filter := session.HighscoreFilter{Limit: dto.Limit}
	if filter.Limit == 0 {
		filter.Limit = defaultHighscoreLimit
	}
	if dto.Region != "" {
		filter.Region = &dto.Region
	}
	return filter, nil
}

type TourDTO struct {
	Current      string   `json:"current"`
	Beaten       []string `json:"beaten"`
	Destinations []string `json:"destinations,omitempty"`
	Champion     bool     `json:"champion"`
}

type SessionDTO struct {
	SessionId      string             `json:"session_id"`
	Region         string             `json:"region"`
	Status         string             `json:"status"`
	Rows           int                `json:"rows"`
	Cols           int                `json:"cols"`
	Grid           mines.Grid         `json:"grid"`
	MineCount      int                `json:"mine_count"`
	RemainingFlags int                `json:"remaining_flags"`
	AutoChord      bool               `json:"auto_chord"`
	Tour           TourDTO            `json:"tour"`
	Clearance      *regions.Clearance `json:"clearance,omitempty"`
	StartedAt      int64              `json:"started_at"`
	EndedAt        *int64             `json:"ended_at,omitempty"`
}

func NewSessionDTO(
	s *session.Session, c *regions.Catalog, clearance *regions.Clearance,
) *SessionDTO {
	var endedAt *int64
	if s.EndedAt != nil {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}
	beaten := s.Tour.Beaten
	if beaten == nil {
		beaten = []string{}
	}
	tour := TourDTO{
		Current:      s.Tour.Current,
		Beaten:       beaten,
		Destinations: s.Destinations(c),
		Champion:     s.Tour.Champion(c),
	}
	return &SessionDTO{
		SessionId:      strconv.FormatInt(s.ID, 10),
		Region:         s.Region(),
		Status:         s.Game.Status.String(),
		Rows:           s.Game.Board.Rows,
		Cols:           s.Game.Board.Cols,
		Grid:           mines.PlayerGrid(s.Game),
		MineCount:      s.Game.MineCount(),
		RemainingFlags: s.Game.RemainingFlags(),
		AutoChord:      s.Game.AutoChord,
		Tour:           tour,
		Clearance:      clearance,
		StartedAt:      s.StartedAt.UnixMilli(),
		EndedAt:        endedAt,
	}
}

type CreatedSessionDTO struct {
	*SessionDTO
	Token string `json:"token"`
}

type CatalogDTO struct {
	Start   string            `json:"start"`
	Regions []*regions.Region `json:"regions"`
}
