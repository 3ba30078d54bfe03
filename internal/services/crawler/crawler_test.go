package crawler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hok11/hok-rank/internal/models"
)

func newTestCrawler(t *testing.T, handler http.Handler) (*Crawler, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	c := New(dir)
	c.searchURL = srv.URL + "/search/acjson"
	c.sleep = func() {}
	return c, dir
}

func TestFetchSingleImageDownloads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/acjson", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "龙胆 赵云", r.URL.Query().Get("word"))
		w.Write([]byte(`{"data":[{"thumbURL":"` + "http://" + r.Host + `/img.jpg"}]}`))
	})
	mux.HandleFunc("/img.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-jpeg-bytes"))
	})
	c, dir := newTestCrawler(t, mux)

	skin := &models.Skin{Name: "赵云-龙胆"}
	changed, msg, err := c.FetchSingleImage(skin)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, msg, "下载成功")
	assert.Equal(t, "skin_avatars/赵云-龙胆.jpg", skin.LocalImg)

	raw, err := os.ReadFile(filepath.Join(dir, "skin_avatars", "赵云-龙胆.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "fake-jpeg-bytes", string(raw))
}

func TestFetchSingleImagePrefersLocalGif(t *testing.T) {
	c, dir := newTestCrawler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected when a gif exists")
	}))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skin_avatars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skin_avatars", "貂蝉仲夏夜.gif"), []byte("x"), 0o644))

	skin := &models.Skin{Name: "貂蝉仲夏夜"}
	changed, msg, err := c.FetchSingleImage(skin)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, msg, "锁定本地动态头像")
	assert.Equal(t, "skin_avatars/貂蝉仲夏夜.gif", skin.LocalImg)

	// already locked: nothing to do
	changed, msg, err = c.FetchSingleImage(skin)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "已存在本地动态头像", msg)
}

func TestFetchSingleImageKeepsExisting(t *testing.T) {
	c, dir := newTestCrawler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected when the image exists")
	}))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skin_avatars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skin_avatars", "已有图.jpg"), []byte("x"), 0o644))

	skin := &models.Skin{Name: "已有图", LocalImg: "skin_avatars/已有图.jpg"}
	changed, msg, err := c.FetchSingleImage(skin)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "已存在图片", msg)
}

func TestFetchSingleImageFallbackURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/acjson", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"thumbURL":"","replaceUrl":[{"ObjURL":"` + "http://" + r.Host + `/obj.jpg"}]}]}`))
	})
	mux.HandleFunc("/obj.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("obj-bytes"))
	})
	c, _ := newTestCrawler(t, mux)

	skin := &models.Skin{Name: "替补链接"}
	changed, _, err := c.FetchSingleImage(skin)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "skin_avatars/替补链接.jpg", skin.LocalImg)
}

func TestFetchSingleImageNoResult(t *testing.T) {
	c, _ := newTestCrawler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))

	skin := &models.Skin{Name: "找不到"}
	changed, msg, err := c.FetchSingleImage(skin)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Contains(t, msg, "未找到图片")
	assert.Empty(t, skin.LocalImg)
}

func TestSearchToleratesBadEscapes(t *testing.T) {
	c, _ := newTestCrawler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"thumbURL":"http://example.com/a\'s.jpg"}]}`))
	}))

	url, _, err := c.search("单引号")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a's.jpg", url)
}
