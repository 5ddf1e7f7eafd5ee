package mirror

import (
	"context"
	"fmt"

	"go-forge/pkg/fsutils"
)

// DirSaver mirrors files into a directory on the local disk.
type DirSaver struct {
	Root string
}

// NewDirSaver creates the root directory and returns a saver for it.
func NewDirSaver(root string) (*DirSaver, error) {
	if root == "" {
		return nil, fmt.Errorf("mirror root cannot be empty")
	}
	if err := fsutils.CreateDir(root); err != nil {
		return nil, fmt.Errorf("failed to create mirror root %s: %w", root, err)
	}
	return &DirSaver{Root: root}, nil
}

// Save writes content to Root/relPath, creating parent directories.
func (d *DirSaver) Save(ctx context.Context, relPath, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := fsutils.ParseRelPath(relPath)
	if err != nil {
		return err
	}
	target := fsutils.JoinUnder(d.Root, p)
	if err := fsutils.WriteToFile(target, []byte(content)); err != nil {
		return fmt.Errorf("failed to mirror %s: %w", p, err)
	}
	return nil
}
