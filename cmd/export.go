package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/excel"
)

var exportCmd = &cobra.Command{
	Use:   "export <catalog.xlsx>",
	Short: "导出全部皮肤到 Excel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		svc, _, err := openService(cfg)
		if err != nil {
			return err
		}
		cat := svc.Snapshot()
		if err := excel.Export(args[0], cat.Skins); err != nil {
			return err
		}
		log.Printf("✅ 已导出 %d 条到 %s", len(cat.Skins), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
