package publish

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"associate-os/internal/model"
	"associate-os/internal/statusutil"
	"associate-os/internal/store"
)

type WriteOptions struct {
	IncludeDone bool
	Overwrite   bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

func WriteTask(doc model.AppData, taskID string, toDir string, opt WriteOptions) (WriteResult, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return WriteResult{}, errors.New("missing taskID")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	md, err := RenderTaskMarkdown(doc, taskID)
	if err != nil {
		return WriteResult{}, err
	}

	outPath := filepath.Join(toDir, "tasks", taskID+".md")
	if err := writeFile(outPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{outPath}}, nil
}

func WriteMatter(doc model.AppData, matterRef string, toDir string, opt WriteOptions) (WriteResult, error) {
	matterRef = strings.TrimSpace(matterRef)
	if matterRef == "" {
		return WriteResult{}, errors.New("missing matter")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	all := make([]*model.Task, 0)
	for _, t := range doc.Tasks {
		if strings.TrimSpace(t.MatterRef) == matterRef {
			all = append(all, t)
		}
	}
	if len(all) == 0 {
		return WriteResult{}, errors.New("no tasks filed under matter: " + matterRef)
	}

	matterDir := filepath.Join(toDir, "matters", safeName(matterRef))

	indexPath := filepath.Join(matterDir, "index.md")
	indexMD := RenderMatterIndexMarkdown(matterRef, all, RenderOptions{IncludeDone: opt.IncludeDone})
	if err := writeFile(indexPath, []byte(indexMD), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Task pages (stop on first error).
	written := []string{indexPath}
	for _, t := range all {
		if statusutil.IsEndState(t.Status) && !opt.IncludeDone {
			continue
		}
		md, err := RenderTaskMarkdown(doc, t.ID)
		if err != nil {
			return WriteResult{}, err
		}
		p := filepath.Join(matterDir, "tasks", t.ID+".md")
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}

	return WriteResult{Written: written}, nil
}

var reUnsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeName(s string) string {
	s = reUnsafeName.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		return "matter"
	}
	return s
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return store.WriteFileAtomic(path, b)
}
