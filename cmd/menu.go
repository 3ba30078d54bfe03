package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hok11/hok-rank/internal/catalog"
	"github.com/hok11/hok-rank/internal/config"
	"github.com/hok11/hok-rank/internal/models"
	"github.com/hok11/hok-rank/internal/render"
	"github.com/hok11/hok-rank/internal/services/publisher"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "控制台管理菜单",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		svc, _, err := openService(cfg)
		if err != nil {
			return err
		}
		m := &menu{
			svc:      svc,
			renderer: render.New(cfg.RepoPath),
			pub:      publisher.New(cfg.GitPath, cfg.RepoPath, cfg.GitHubUser),
			in:       bufio.NewScanner(os.Stdin),
		}
		m.run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

type menu struct {
	svc      *catalog.Service
	renderer *render.Renderer
	pub      *publisher.Publisher
	in       *bufio.Scanner
}

func (m *menu) run() {
	for {
		fmt.Println("\n" + strings.Repeat("=", 40))
		fmt.Println("👑 王者荣耀榜单管理员系统")
		fmt.Println("1. 新品上榜")
		fmt.Println("2. 皮肤退榜")
		fmt.Println("3. 修改点数")
		fmt.Println("4. >>> 发布到互联网 <<<")
		fmt.Println("0. 退出")
		fmt.Println(strings.Repeat("=", 40))

		switch m.prompt("指令: ") {
		case "1":
			m.addSkin()
		case "2":
			m.removeSkin()
		case "3":
			m.modifyScore()
		case "4":
			m.publish()
		case "0":
			return
		}
	}
}

func (m *menu) prompt(label string) string {
	fmt.Print(label)
	if !m.in.Scan() {
		return "0"
	}
	return strings.TrimSpace(m.in.Text())
}

func (m *menu) addSkin() {
	fmt.Println("\n>>> 请输入皮肤信息 (格式: 品质代码 名字 [任意数字代表复刻])")
	raw := strings.Fields(m.prompt("输入: "))
	if len(raw) < 2 {
		return
	}
	quality, err := strconv.ParseFloat(raw[0], 64)
	if err != nil {
		fmt.Println("❌ 品质代码错误")
		return
	}
	name := raw[1]
	status := catalog.StatusNew
	if len(raw) >= 3 {
		status = catalog.StatusRerun
	}

	board := m.svc.ActiveLeaderboard()
	rank := m.promptInt(fmt.Sprintf("插入排名位置 (1-%d): ", len(board)+1), 1)
	if rank < 1 {
		rank = 1
	}
	if rank > len(board)+1 {
		rank = len(board) + 1
	}

	var price, growth float64
	if rank == 1 {
		price = m.promptFloat("售价 (RMB): ")
		growth = m.promptFloat("次日涨幅 (%): ")
	} else {
		extra := strings.Fields(m.prompt("输入 [涨幅 售价] (可选): "))
		if len(extra) >= 1 {
			growth, _ = strconv.ParseFloat(extra[0], 64)
		}
		if len(extra) >= 2 {
			price, _ = strconv.ParseFloat(extra[1], 64)
		}
	}

	skin, err := m.svc.AddSkin(catalog.AddParams{
		Name:       name,
		Quality:    quality,
		Status:     status,
		OnBoard:    true,
		RealPrice:  price,
		Growth:     growth,
		Mode:       catalog.ScoreByRank,
		TargetRank: rank,
	})
	if err != nil {
		fmt.Printf("❌ 错误: %v\n", err)
		return
	}
	m.regenerate()
	fmt.Printf("✅ 录入成功: %s 点数 %.1f\n", skin.Name, *skin.Score)
}

func (m *menu) removeSkin() {
	board := m.showBoard()
	idx := m.promptInt("请输入要退榜的 [排名序号]: ", 0)
	if idx < 1 || idx > len(board) {
		return
	}
	if err := m.svc.RemoveFromBoard(board[idx-1].Name); err != nil {
		fmt.Printf("❌ 错误: %v\n", err)
		return
	}
	m.regenerate()
	fmt.Println("✅ 退榜成功")
}

func (m *menu) modifyScore() {
	board := m.showBoard()
	idx := m.promptInt("请输入新品榜序号: ", 0)
	if idx < 1 || idx > len(board) {
		fmt.Println("输入错误")
		return
	}
	val := m.promptFloat("新点数: ")
	if err := m.svc.SetScore(board[idx-1].Name, val); err != nil {
		fmt.Printf("❌ 错误: %v\n", err)
		return
	}
	m.regenerate()
	fmt.Println("✅ 修改成功")
}

func (m *menu) publish() {
	fmt.Println("\n🚀 正在发布到 GitHub...")
	if err := m.pub.Publish(time.Now()); err != nil {
		fmt.Printf("\n❌ 发布失败: %v\n", err)
		fmt.Println("请检查：")
		fmt.Println("1. repo_path 和 git_path 是否都填对了？")
		fmt.Println("2. 第一次运行可能需要你在弹出的窗口里登录 GitHub 账号。")
		return
	}
	fmt.Println("\n✅ 发布成功!")
	if url := m.pub.SiteURL(); url != "" {
		fmt.Printf("🌐 你的网站地址: %s\n", url)
	}
	fmt.Println("(注意：GitHub 更新可能有 1-2 分钟延迟，请稍后刷新网页)")
}

func (m *menu) showBoard() []*models.Skin {
	board := m.svc.ActiveLeaderboard()
	fmt.Println()
	for i, s := range board {
		score := 0.0
		if s.Score != nil {
			score = *s.Score
		}
		fmt.Printf("%2d. %-20s %.1f\n", i+1, s.Name, score)
	}
	return board
}

func (m *menu) regenerate() {
	if err := m.svc.AttachImages(m.renderer.ScanLocalImages); err != nil {
		fmt.Printf("⚠️ 扫描图片失败: %v\n", err)
	}
	if err := m.renderer.WriteIndex(m.svc.Snapshot()); err != nil {
		fmt.Printf("⚠️ 生成页面失败: %v\n", err)
	}
}

func (m *menu) promptInt(label string, fallback int) int {
	v, err := strconv.Atoi(m.prompt(label))
	if err != nil {
		return fallback
	}
	return v
}

func (m *menu) promptFloat(label string) float64 {
	v, _ := strconv.ParseFloat(m.prompt(label), 64)
	return v
}
