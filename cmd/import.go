package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/excel"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.xlsx>",
	Short: "从 Excel 整体替换皮肤目录",
	Long: `Replaces every skin record with the rows of the workbook. Quality
tiers and instructions are kept; list prices and real scores are
recomputed after the swap.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		svc, _, err := openService(cfg)
		if err != nil {
			return err
		}
		skins, err := excel.Import(args[0])
		if err != nil {
			return err
		}
		if err := svc.ReplaceAll(skins); err != nil {
			return err
		}
		log.Printf("✅ 已导入 %d 条皮肤记录", len(skins))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
