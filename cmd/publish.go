package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/services/publisher"
)

var (
	proxyPort  string
	clearProxy bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "提交并推送榜单仓库到 GitHub",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		pub := publisher.New(cfg.GitPath, cfg.RepoPath, cfg.GitHubUser)

		if clearProxy {
			pub.UnsetProxy()
			log.Println("已清除代理")
		} else if proxyPort != "" {
			if err := pub.SetProxy(proxyPort); err != nil {
				return err
			}
			log.Printf("已设置代理端口 %s", proxyPort)
		}

		if err := pub.Publish(time.Now()); err != nil {
			return err
		}
		log.Println("✅ 发布成功!")
		if url := pub.SiteURL(); url != "" {
			log.Printf("🌐 你的网站地址: %s", url)
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&proxyPort, "proxy-port", "", "发布前设置本地 HTTP 代理端口 (如 7890)")
	publishCmd.Flags().BoolVar(&clearProxy, "clear-proxy", false, "发布前清除代理配置")
	rootCmd.AddCommand(publishCmd)
}
