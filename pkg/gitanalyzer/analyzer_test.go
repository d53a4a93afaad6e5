package gitanalyzer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, wt *git.Worktree, repoPath, name, content string, when time.Time) {
	t.Helper()
	full := filepath.Join(repoPath, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	_, err := wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: when},
	})
	require.NoError(t, err)
}

func TestAnalyze_RecencyHistoryComodification(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	commitFile(t, wt, dir, "a.py", "a=1", now.AddDate(0, 0, -400))
	commitFile(t, wt, dir, "a.py", "a=2", now.AddDate(0, 0, -10))

	full := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(full, []byte("b=1"), 0644))
	_, err = wt.Add("b.py")
	require.NoError(t, err)
	_, err = wt.Add("a.py")
	require.NoError(t, err)
	_, err = wt.Commit("touch a and b", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: now.AddDate(0, 0, -5)},
	})
	require.NoError(t, err)

	signals, err := NewGitAnalyzer(nil).Analyze(dir, now, []string{"a.py", "b.py"})
	require.NoError(t, err)

	require.Contains(t, signals.Recency, "a.py")
	require.Greater(t, signals.Recency["a.py"], 0.9)

	require.Contains(t, signals.History, "a.py")
	require.GreaterOrEqual(t, signals.History["a.py"], signals.History["b.py"])

	require.Contains(t, signals.Comodification, "a.py")
	require.Contains(t, signals.Comodification["a.py"], "b.py")
}

func TestAnalyze_NotAGitRepoReturnsEmptySignals(t *testing.T) {
	dir := t.TempDir()
	signals, err := NewGitAnalyzer(nil).Analyze(dir, time.Now(), nil)
	require.NoError(t, err)
	require.Empty(t, signals.Recency)
	require.Empty(t, signals.History)
}

func TestAnalyze_NotAGitRepoDefaultsKnownPathsToHalf(t *testing.T) {
	dir := t.TempDir()
	signals, err := NewGitAnalyzer(nil).Analyze(dir, time.Now(), []string{"a.py", "pkg/sub/b.py"})
	require.NoError(t, err)

	require.Equal(t, 0.5, signals.Recency["a.py"])
	require.Equal(t, 0.5, signals.Recency["pkg/sub/b.py"])
	require.Equal(t, 0.5, signals.History["a.py"])
	require.Equal(t, 0.5, signals.History["pkg/sub/b.py"])
}
