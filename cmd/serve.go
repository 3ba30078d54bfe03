package cmd

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/api"
	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/render"
	"github.com/hok11/hok-rank/internal/services/crawler"
	"github.com/hok11/hok-rank/internal/services/publisher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动网页后台",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		svc, rec, err := openService(cfg)
		if err != nil {
			return err
		}

		rend := render.New(cfg.RepoPath)
		crawl := crawler.New(cfg.RepoPath)
		pub := publisher.New(cfg.GitPath, cfg.RepoPath, cfg.GitHubUser)

		hub := api.NewHub()
		svc.OnChange(hub.Broadcast)

		r := gin.Default()

		// CORS middleware
		r.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}
			c.Next()
		})

		api.SetupRoutes(r.Group("/api"), svc, rend, crawl, pub, rec, hub)
		r.GET("/ws", hub.Serve)
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
		})

		// Serve the pages repo itself so the generated leaderboard and its
		// assets preview locally exactly as GitHub Pages serves them.
		r.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(cfg.RepoPath, "index.html"))
		})
		for _, dir := range []string{"skin_avatars", "skin_descs", "images", "show"} {
			r.Static("/"+dir, filepath.Join(cfg.RepoPath, dir))
		}
		r.NoRoute(func(c *gin.Context) {
			p := c.Request.URL.Path
			if strings.HasPrefix(p, "/api/") || p == "/ws" || strings.Contains(p, "..") {
				c.Status(http.StatusNotFound)
				return
			}
			c.File(filepath.Join(cfg.RepoPath, filepath.FromSlash(strings.TrimPrefix(p, "/"))))
		})

		log.Printf("🚀 后台已启动: http://localhost:%s", cfg.Port)
		return r.Run(":" + cfg.Port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
