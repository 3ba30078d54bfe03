package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/models"
	"github.com/hok11/hok-rank/internal/services/crawler"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "抓取缺失的皮肤头像",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		svc, _, err := openService(cfg)
		if err != nil {
			return err
		}
		c := crawler.New(cfg.RepoPath)

		fetched := 0
		err = svc.AttachImages(func(skin *models.Skin) bool {
			changed, msg, err := c.FetchSingleImage(skin)
			if err != nil {
				log.Printf("❌ %s: %v", skin.Name, err)
				return false
			}
			log.Printf("%s: %s", skin.Name, msg)
			if changed {
				fetched++
			}
			return changed
		})
		if err != nil {
			return err
		}
		log.Printf("✅ 完成，更新 %d 张头像", fetched)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}
