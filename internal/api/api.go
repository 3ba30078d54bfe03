// Package api exposes the catalog admin surface over HTTP: catalog CRUD,
// score preview, rendering, publishing and the crawler trigger.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hok11/hok-rank/internal/catalog"
	"github.com/hok11/hok-rank/internal/history"
	"github.com/hok11/hok-rank/internal/models"
	"github.com/hok11/hok-rank/internal/render"
	"github.com/hok11/hok-rank/internal/score"
	"github.com/hok11/hok-rank/internal/services/crawler"
	"github.com/hok11/hok-rank/internal/services/publisher"
)

type APIHandler struct {
	svc      *catalog.Service
	renderer *render.Renderer
	crawler  *crawler.Crawler
	pub      *publisher.Publisher
	recorder *history.Recorder
	hub      *Hub
}

func SetupRoutes(r *gin.RouterGroup, svc *catalog.Service, rend *render.Renderer, crawl *crawler.Crawler, pub *publisher.Publisher, rec *history.Recorder, hub *Hub) *APIHandler {
	handler := &APIHandler{
		svc:      svc,
		renderer: rend,
		crawler:  crawl,
		pub:      pub,
		recorder: rec,
		hub:      hub,
	}

	skins := r.Group("/skins")
	{
		skins.GET("", handler.ListSkins)
		skins.POST("", handler.AddSkin)
		skins.DELETE("/:name", handler.DeleteSkin)
		skins.POST("/:name/launch", handler.LaunchPreset)
		skins.POST("/:name/discontinue", handler.Discontinue)
		skins.POST("/:name/remove", handler.RemoveFromBoard)
		skins.PUT("/:name/score", handler.SetScore)
		skins.GET("/:name/history", handler.SkinHistory)
	}

	r.GET("/leaderboard", handler.Leaderboard)
	r.GET("/preview", handler.PreviewScore)

	quality := r.Group("/quality")
	{
		quality.GET("", handler.GetQualityConfig)
		quality.PUT("/:key", handler.UpsertQualityTier)
	}

	r.GET("/instructions", handler.GetInstructions)
	r.PUT("/instructions", handler.SetInstructions)

	r.POST("/render", handler.RenderPage)
	r.POST("/publish", handler.Publish)
	r.POST("/crawl", handler.CrawlImages)

	proxy := r.Group("/proxy")
	{
		proxy.POST("", handler.SetProxy)
		proxy.DELETE("", handler.UnsetProxy)
	}

	return handler
}

func (h *APIHandler) ListSkins(c *gin.Context) {
	cat := h.svc.Snapshot()
	c.JSON(http.StatusOK, gin.H{"skins": cat.Skins, "total": len(cat.Skins)})
}

func (h *APIHandler) Leaderboard(c *gin.Context) {
	board := h.svc.ActiveLeaderboard()
	c.JSON(http.StatusOK, gin.H{"skins": board, "total": len(board)})
}

type addSkinRequest struct {
	Name        string   `json:"name" binding:"required"`
	Quality     float64  `json:"quality"`
	Status      string   `json:"status"`
	OnBoard     bool     `json:"on_leaderboard"`
	RealPrice   float64  `json:"real_price"`
	Growth      float64  `json:"growth"`
	TargetRank  int      `json:"target_rank"`
	ManualScore *float64 `json:"manual_score"`
}

func (r addSkinRequest) mode() catalog.ScoreMode {
	switch {
	case r.ManualScore != nil:
		return catalog.ScoreManual
	case r.TargetRank > 0:
		return catalog.ScoreByRank
	default:
		return catalog.ScoreNone
	}
}

func (h *APIHandler) AddSkin(c *gin.Context) {
	var req addSkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	p := catalog.AddParams{
		Name:       req.Name,
		Quality:    req.Quality,
		Status:     catalog.Status(req.Status),
		OnBoard:    req.OnBoard,
		RealPrice:  req.RealPrice,
		Growth:     req.Growth,
		Mode:       req.mode(),
		TargetRank: req.TargetRank,
	}
	if req.ManualScore != nil {
		p.ManualScore = *req.ManualScore
	}
	skin, err := h.svc.AddSkin(p)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"skin": skin})
}

type launchRequest struct {
	RealPrice   float64  `json:"real_price"`
	Growth      float64  `json:"growth"`
	TargetRank  int      `json:"target_rank"`
	ManualScore *float64 `json:"manual_score"`
}

func (h *APIHandler) LaunchPreset(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	p := catalog.LaunchParams{
		Name:       c.Param("name"),
		RealPrice:  req.RealPrice,
		Growth:     req.Growth,
		TargetRank: req.TargetRank,
	}
	switch {
	case req.ManualScore != nil:
		p.Mode = catalog.ScoreManual
		p.ManualScore = *req.ManualScore
	case req.TargetRank > 0:
		p.Mode = catalog.ScoreByRank
	default:
		p.Mode = catalog.ScoreNone
	}
	skin, err := h.svc.LaunchPreset(p)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"skin": skin})
}

func (h *APIHandler) Discontinue(c *gin.Context) {
	if err := h.svc.Discontinue(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已绝版"})
}

func (h *APIHandler) RemoveFromBoard(c *gin.Context) {
	if err := h.svc.RemoveFromBoard(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退榜"})
}

func (h *APIHandler) DeleteSkin(c *gin.Context) {
	if err := h.svc.DeleteSkin(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

func (h *APIHandler) SetScore(c *gin.Context) {
	var req struct {
		Score float64 `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	if err := h.svc.SetScore(c.Param("name"), req.Score); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已更新"})
}

func (h *APIHandler) SkinHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.recorder.Recent(c.Param("name"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "历史查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

// PreviewScore computes what a skin inserted at ?rank= would score,
// without touching the catalog.
func (h *APIHandler) PreviewScore(c *gin.Context) {
	rank, err := strconv.Atoi(c.Query("rank"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rank 参数错误"})
		return
	}
	realPrice, _ := strconv.ParseFloat(c.DefaultQuery("real_price", "0"), 64)
	growth, _ := strconv.ParseFloat(c.DefaultQuery("growth", "0"), 64)

	val, err := h.svc.PreviewInsertion(rank, realPrice, growth)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank": rank, "score": val})
}

func (h *APIHandler) GetQualityConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quality_config": h.svc.Snapshot().QualityConfig})
}

func (h *APIHandler) UpsertQualityTier(c *gin.Context) {
	var tier models.QualityTier
	if err := c.ShouldBindJSON(&tier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	if err := h.svc.UpsertQualityTier(c.Param("key"), tier); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已更新"})
}

func (h *APIHandler) GetInstructions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instructions": h.svc.Snapshot().Instructions})
}

func (h *APIHandler) SetInstructions(c *gin.Context) {
	var req struct {
		Instructions []string `json:"instructions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	if err := h.svc.SetInstructions(req.Instructions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已更新"})
}

// RenderPage regenerates index.html in the pages repo.
func (h *APIHandler) RenderPage(c *gin.Context) {
	if err := h.svc.AttachImages(h.renderer.ScanLocalImages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.renderer.WriteIndex(h.svc.Snapshot()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "渲染完成"})
}

func (h *APIHandler) Publish(c *gin.Context) {
	if err := h.pub.Publish(time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "发布成功", "site": h.pub.SiteURL()})
}

// CrawlImages walks the catalog and downloads any missing avatars.
func (h *APIHandler) CrawlImages(c *gin.Context) {
	var logs []string
	fetched := 0
	err := h.svc.AttachImages(func(skin *models.Skin) bool {
		changed, msg, err := h.crawler.FetchSingleImage(skin)
		if err != nil {
			logs = append(logs, skin.Name+": "+err.Error())
			return false
		}
		logs = append(logs, skin.Name+": "+msg)
		if changed {
			fetched++
		}
		return changed
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fetched": fetched, "logs": logs})
}

func (h *APIHandler) SetProxy(c *gin.Context) {
	var req struct {
		Port string `json:"port" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	if err := h.pub.SetProxy(req.Port); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已设置代理端口 " + req.Port})
}

func (h *APIHandler) UnsetProxy(c *gin.Context) {
	h.pub.UnsetProxy()
	c.JSON(http.StatusOK, gin.H{"message": "已清除代理"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrNotPreset),
		errors.Is(err, catalog.ErrStatusOnBoard),
		errors.Is(err, score.ErrInvalidRank),
		errors.Is(err, score.ErrNegativePrice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
