// Package publisher pushes the rendered pages repo to GitHub via the
// system git binary.
package publisher

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type Publisher struct {
	// GitPath is the git executable, "git" when it is on PATH.
	GitPath    string
	RepoPath   string
	GitHubUser string
}

func New(gitPath, repoPath, githubUser string) *Publisher {
	if gitPath == "" {
		gitPath = "git"
	}
	return &Publisher{GitPath: gitPath, RepoPath: repoPath, GitHubUser: githubUser}
}

func (p *Publisher) run(args ...string) (string, error) {
	cmd := exec.Command(p.GitPath, args...)
	cmd.Dir = p.RepoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// IsRepo reports whether RepoPath is inside a git checkout.
func (p *Publisher) IsRepo() bool {
	cmd := exec.Command(p.GitPath, "rev-parse", "--git-dir")
	cmd.Dir = p.RepoPath
	return cmd.Run() == nil
}

// Publish stages everything, commits with a timestamped message and pushes.
// A commit with nothing staged is not an error: the push still runs so a
// previously unpushed commit gets out.
func (p *Publisher) Publish(now time.Time) error {
	if !p.IsRepo() {
		return fmt.Errorf("%s 不是 git 仓库", p.RepoPath)
	}
	if _, err := p.run("add", "."); err != nil {
		return err
	}
	msg := "Update " + now.Format("15:04")
	if out, err := p.run("commit", "-m", msg); err != nil {
		if !strings.Contains(out, "nothing to commit") && !strings.Contains(out, "working tree clean") {
			return err
		}
	}
	if _, err := p.run("push"); err != nil {
		return err
	}
	return nil
}

// SiteURL is the GitHub Pages address the repo publishes to.
func (p *Publisher) SiteURL() string {
	if p.GitHubUser == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.github.io/hok-rank/", p.GitHubUser)
}

// SetProxy routes git traffic through a local HTTP proxy port.
func (p *Publisher) SetProxy(port string) error {
	proxy := "http://127.0.0.1:" + port
	if _, err := p.run("config", "--global", "http.proxy", proxy); err != nil {
		return err
	}
	_, err := p.run("config", "--global", "https.proxy", proxy)
	return err
}

// UnsetProxy removes the proxy configuration, ignoring the error git
// reports when no proxy was set.
func (p *Publisher) UnsetProxy() {
	p.run("config", "--global", "--unset", "http.proxy")
	p.run("config", "--global", "--unset", "https.proxy")
}
