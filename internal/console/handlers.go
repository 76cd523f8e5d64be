package console

import (
	"context"
	"net/http"
	"strconv"

	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/config"
	"channel-console/internal/dispatch"
	"channel-console/internal/options"

	"github.com/gin-gonic/gin"
)

type searchRequest struct {
	Keyword string `json:"keyword"`
}

type sortRequest struct {
	Key string `json:"key" binding:"required"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type detailRequest struct {
	ShowDetail *bool `json:"show_detail" binding:"required"`
}

type optionView struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Display string `json:"display"`
	Toggle  bool   `json:"toggle"`
}

// remoteContext keeps request values but not cancellation: a call already
// issued to the gateway is applied even if the console client goes away.
func remoteContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (s *Server) sendError(c *gin.Context, err error) {
	c.JSON(consoleerrors.HTTPStatus(err), consoleerrors.ToHTTPError(err))
}

func badRequest(field string, err error) error {
	return consoleerrors.NewValidationError(field, err.Error())
}

// renderAfter runs op and answers with the freshly rendered page.
func (s *Server) renderAfter(c *gin.Context, op func() error) {
	if err := op(); err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, s.view.Render())
}

func (s *Server) handleCSRFToken(c *gin.Context) {
	token := s.csrf.GenerateToken()
	if token == "" {
		s.sendError(c, consoleerrors.NewInternalError("csrf", "failed to generate token", nil))
		return
	}
	ok(c, gin.H{"token": token})
}

func (s *Server) handleRender(c *gin.Context) {
	ok(c, s.view.Render())
}

func (s *Server) handleLoad(c *gin.Context) {
	s.renderAfter(c, func() error { return s.view.Load(remoteContext(c)) })
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.renderAfter(c, func() error { return s.view.Refresh(remoteContext(c)) })
}

func (s *Server) handleGoToPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		s.sendError(c, badRequest("page", err))
		return
	}
	s.renderAfter(c, func() error { return s.view.GoToPage(remoteContext(c), page) })
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, badRequest("body", err))
		return
	}
	s.renderAfter(c, func() error { return s.view.Search(remoteContext(c), req.Keyword) })
}

func (s *Server) handleSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, badRequest("key", err))
		return
	}
	s.renderAfter(c, func() error { return s.view.Sort(req.Key) })
}

// handleRowAction addresses a row by its index on the active page. The body
// value is optional and only read by priority, weight and model switches.
func (s *Server) handleRowAction(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.sendError(c, badRequest("index", err))
		return
	}
	var req valueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.sendError(c, badRequest("body", err))
			return
		}
	}
	kind := dispatch.Kind(c.Param("kind"))
	s.renderAfter(c, func() error {
		return s.dispatcher.Run(remoteContext(c), kind, index, req.Value)
	})
}

func (s *Server) handleBulkAction(c *gin.Context) {
	kind := dispatch.Kind(c.Param("kind"))
	if kind == dispatch.KindPurgeDisabled {
		count, err := s.dispatcher.PurgeDisabled(remoteContext(c))
		if err != nil {
			s.sendError(c, err)
			return
		}
		ok(c, gin.H{"deleted": count, "page": s.view.Render()})
		return
	}
	if err := s.dispatcher.RunBulk(remoteContext(c), kind); err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, gin.H{"kind": kind})
}

func (s *Server) handleGetDetail(c *gin.Context) {
	ok(c, gin.H{"show_detail": s.view.ShowDetail()})
}

func (s *Server) handleSetDetail(c *gin.Context) {
	var req detailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, badRequest("show_detail", err))
		return
	}
	if err := s.view.SetShowDetail(*req.ShowDetail); err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, gin.H{"show_detail": *req.ShowDetail})
}

func (s *Server) handleToggleDetail(c *gin.Context) {
	show, err := s.view.ToggleDetail()
	if err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, gin.H{"show_detail": show})
}

func (s *Server) handleNotices(c *gin.Context) {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, s.notices.Recent(limit))
}

func (s *Server) handleActions(c *gin.Context) {
	limit, err := queryInt(c, "limit", config.Default.Pagination.DefaultLimit)
	if err != nil {
		s.sendError(c, err)
		return
	}
	if limit <= 0 {
		limit = config.Default.Pagination.DefaultLimit
	}
	if limit > config.Default.Pagination.MaxLimit {
		limit = config.Default.Pagination.MaxLimit
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		s.sendError(c, err)
		return
	}
	if offset < 0 {
		offset = 0
	}
	failedOnly := c.Query("failed_only") == "true"

	actions, total, err := s.journal.GetActions(limit, offset, failedOnly)
	if err != nil {
		s.sendError(c, consoleerrors.NewInternalError("journal", "failed to read actions", err))
		return
	}
	ok(c, gin.H{"actions": actions, "total": total, "limit": limit, "offset": offset})
}

func (s *Server) handleChannelActions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.sendError(c, badRequest("id", err))
		return
	}
	actions, err := s.journal.GetActionsByChannel(id)
	if err != nil {
		s.sendError(c, consoleerrors.NewInternalError("journal", "failed to read actions", err))
		return
	}
	ok(c, actions)
}

func (s *Server) handleActionStats(c *gin.Context) {
	stats, err := s.journal.GetStats()
	if err != nil {
		s.sendError(c, consoleerrors.NewInternalError("journal", "failed to read stats", err))
		return
	}
	ok(c, stats)
}

func (s *Server) handleListOptions(c *gin.Context) {
	opts, err := s.options.List(remoteContext(c))
	if err != nil {
		s.sendError(c, err)
		return
	}
	out := make([]optionView, 0, len(opts))
	for _, o := range opts {
		out = append(out, optionView{
			Key:     o.Key,
			Value:   o.Value,
			Display: options.Display(o),
			Toggle:  options.IsToggle(o.Key),
		})
	}
	ok(c, out)
}

func (s *Server) handleSetOption(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, badRequest("value", err))
		return
	}
	changed, err := s.options.Set(remoteContext(c), c.Param("key"), req.Value)
	if err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, gin.H{"key": c.Param("key"), "changed": changed})
}

func (s *Server) handleToggleOption(c *gin.Context) {
	value, err := s.options.Toggle(remoteContext(c), c.Param("key"))
	if err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, gin.H{"key": c.Param("key"), "value": value})
}

func (s *Server) handleUpdateAbilities(c *gin.Context) {
	if err := s.options.UpdateAbilities(remoteContext(c)); err != nil {
		s.sendError(c, err)
		return
	}
	ok(c, nil)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, consoleerrors.NewValidationError(key, "must be an integer")
	}
	return n, nil
}
