// Package crawler downloads skin avatar images from Baidu image search
// into the pages repo's skin_avatars directory.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hok11/hok-rank/internal/models"
	"github.com/hok11/hok-rank/internal/render"
)

const defaultSearchURL = "https://image.baidu.com/search/acjson"

type Crawler struct {
	repoPath  string
	saveDir   string
	client    *resty.Client
	searchURL string
	// delay between downloads, overridable in tests
	sleep func()
}

type searchResponse struct {
	Data []struct {
		ThumbURL   string `json:"thumbURL"`
		ReplaceURL []struct {
			ObjURL string `json:"ObjURL"`
		} `json:"replaceUrl"`
	} `json:"data"`
}

func New(repoPath string) *Crawler {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetHeaders(map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":     "text/plain, */*; q=0.01",
		"Referer":    "https://image.baidu.com/search/index",
	})

	return &Crawler{
		repoPath:  repoPath,
		saveDir:   filepath.Join(repoPath, "skin_avatars"),
		client:    client,
		searchURL: defaultSearchURL,
		sleep: func() {
			time.Sleep(time.Duration(500+rand.Intn(500)) * time.Millisecond)
		},
	}
}

// FetchSingleImage finds or downloads an avatar for one skin. It returns
// whether the skin record changed, plus a human-readable log line.
func (c *Crawler) FetchSingleImage(skin *models.Skin) (bool, string, error) {
	if err := os.MkdirAll(c.saveDir, 0o755); err != nil {
		return false, "", fmt.Errorf("create avatar dir: %w", err)
	}

	safe := render.SafeName(skin.Name)

	// 本地 gif 动态头像优先
	gifName := safe + ".gif"
	if _, err := os.Stat(filepath.Join(c.saveDir, gifName)); err == nil {
		rel := "skin_avatars/" + gifName
		if skin.LocalImg != rel {
			skin.LocalImg = rel
			return true, "锁定本地动态头像: " + gifName, nil
		}
		return false, "已存在本地动态头像", nil
	}

	if skin.LocalImg != "" {
		if _, err := os.Stat(filepath.Join(c.repoPath, filepath.FromSlash(skin.LocalImg))); err == nil {
			return false, "已存在图片", nil
		}
	}

	imgURL, keyword, err := c.search(skin.Name)
	if err != nil {
		return false, "", fmt.Errorf("爬取错误: %w", err)
	}
	if imgURL == "" {
		return false, "未找到图片: " + keyword, nil
	}

	resp, err := c.client.R().Get(imgURL)
	if err != nil {
		return false, "", fmt.Errorf("下载图片: %w", err)
	}
	fileName := safe + ".jpg"
	if err := os.WriteFile(filepath.Join(c.saveDir, fileName), resp.Body(), 0o644); err != nil {
		return false, "", fmt.Errorf("保存图片: %w", err)
	}
	skin.LocalImg = "skin_avatars/" + fileName
	c.sleep()
	return true, "下载成功: " + fileName, nil
}

// search queries Baidu for the first image hit. Names like "英雄-皮肤"
// search as "皮肤 英雄" to bias toward skin art.
func (c *Crawler) search(name string) (imgURL, keyword string, err error) {
	keyword = name
	if parts := strings.SplitN(name, "-", 2); len(parts) == 2 {
		keyword = parts[1] + " " + parts[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"tn": "resultjson_com", "ipn": "rj", "fp": "result",
			"queryWord": keyword, "cl": "2", "lm": "-1",
			"ie": "utf-8", "oe": "utf-8",
			"word": keyword, "pn": "0", "rn": "1",
		}).
		Get(c.searchURL)
	if err != nil {
		return "", keyword, err
	}

	body := resp.Body()
	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		// 百度返回的 JSON 偶尔带非法转义
		cleaned := strings.ReplaceAll(string(body), `\'`, `'`)
		if err := json.Unmarshal([]byte(cleaned), &sr); err != nil {
			return "", keyword, err
		}
	}

	if len(sr.Data) == 0 {
		return "", keyword, nil
	}
	first := sr.Data[0]
	if first.ThumbURL != "" {
		return first.ThumbURL, keyword, nil
	}
	if len(first.ReplaceURL) > 0 {
		return first.ReplaceURL[0].ObjURL, keyword, nil
	}
	return "", keyword, nil
}
