// Package cmd wires the leaderboard tool's subcommands: the web admin,
// the interactive console, rendering, publishing and bulk import/export.
package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/catalog"
	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/database"
	"github.com/hok11/hok-rank/internal/history"
	"github.com/hok11/hok-rank/internal/score"
	"github.com/hok11/hok-rank/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hok-rank",
	Short: "王者荣耀皮肤排行榜管理工具",
	Long: `hok-rank maintains a ranked catalog of Honor of Kings skins and
publishes it as a static leaderboard page:
- 榜单点数按排名插值计算，真实点数按价格折算
- 数据保存在 GitHub Pages 仓库的 data.json
- 支持网页后台、控制台菜单、图片爬取与一键发布`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hokrank.yaml)")
}

// openService builds the catalog service every subcommand works against.
// The history database is best-effort: a failure downgrades to no history
// rather than blocking the catalog.
func openService(cfg *config.Config) (*catalog.Service, *history.Recorder, error) {
	rec := history.NewRecorder(nil)
	if db, err := database.Initialize(cfg.HistoryPath()); err == nil {
		rec = history.NewRecorder(db)
	} else {
		log.Printf("⚠️ 历史数据库不可用: %v", err)
	}

	curve := score.Curve{C1: cfg.CurveC1, C2: cfg.CurveC2}
	svc, err := catalog.NewService(store.New(cfg.DataPath()), curve, cfg.Capacity, rec)
	if err != nil {
		return nil, nil, err
	}
	return svc, rec, nil
}
