package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/domain"
	"github.com/textdao/indexer/internal/present/rest/presenter"
	"github.com/textdao/indexer/internal/service"
	"github.com/textdao/indexer/internal/usecase"
)

const proposalCacheTTL = 10 // seconds

type Handler struct {
	query  *usecase.QueryUsecase
	signal *service.SignalService
	mc     *memcache.Client
}

func NewHandler(query *usecase.QueryUsecase, signal *service.SignalService, mc *memcache.Client) *Handler {
	return &Handler{
		query:  query,
		signal: signal,
		mc:     mc,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/proposals", h.handleListProposals)
	e.GET("/api/v1/proposals/:id", h.handleGetProposal)
	e.GET("/api/v1/proposals/:id/snapshots/:epoch", h.handleGetSnapshot)
	e.GET("/api/v1/texts", h.handleListTexts)
	e.GET("/api/v1/texts/:id", h.handleGetText)
	e.GET("/api/v1/members", h.handleListMembers)
	e.GET("/api/v1/members/:id", h.handleGetMember)
	e.GET("/api/v1/config", h.handleGetConfig)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleListProposals(c echo.Context) error {
	ctx := c.Request().Context()

	proposals, err := h.query.ListProposals(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, proposals)
}

func (h *Handler) handleGetProposal(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	cacheKey := "proposal:" + id
	if h.mc != nil {
		if item, err := h.mc.Get(cacheKey); err == nil {
			var detail usecase.ProposalDetail
			if err := json.Unmarshal(item.Value, &detail); err == nil {
				return presenter.OK(c, detail)
			}
		}
	}

	detail, err := h.query.GetProposal(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "proposal not found")
		}
		return presenter.InternalError(c, err)
	}

	if h.mc != nil {
		if data, err := json.Marshal(detail); err == nil {
			h.mc.Set(&memcache.Item{Key: cacheKey, Value: data, Expiration: proposalCacheTTL})
		}
	}
	return presenter.OK(c, detail)
}

func (h *Handler) handleGetSnapshot(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	epoch, err := strconv.ParseUint(c.Param("epoch"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "epoch must be a number")
	}

	snapshot, err := h.query.GetSnapshot(ctx, id, epoch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "snapshot not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, snapshot)
}

func (h *Handler) handleListTexts(c echo.Context) error {
	ctx := c.Request().Context()

	texts, err := h.query.ListTexts(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, texts)
}

func (h *Handler) handleGetText(c echo.Context) error {
	ctx := c.Request().Context()

	text, err := h.query.GetText(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "text not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, text)
}

func (h *Handler) handleListMembers(c echo.Context) error {
	ctx := c.Request().Context()

	members, err := h.query.ListMembers(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, members)
}

func (h *Handler) handleGetMember(c echo.Context) error {
	ctx := c.Request().Context()

	member, err := h.query.GetMember(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "member not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, member)
}

func (h *Handler) handleGetConfig(c echo.Context) error {
	ctx := c.Request().Context()

	config, err := h.query.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "deliberation config not set")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, config)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type  string   `json:"type"`
	Types []string `json:"types"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	input := make(chan []string)
	defer close(input)
	output := make(chan textdao.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				input <- req.Types
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Types),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case ev := <-output:
			err := ws.WriteJSON(ev)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
