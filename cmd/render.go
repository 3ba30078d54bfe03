package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "生成榜单页面 index.html",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		svc, _, err := openService(cfg)
		if err != nil {
			return err
		}
		rend := render.New(cfg.RepoPath)
		if err := svc.AttachImages(rend.ScanLocalImages); err != nil {
			return err
		}
		if err := rend.WriteIndex(svc.Snapshot()); err != nil {
			return err
		}
		log.Println("✅ 页面已生成")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
