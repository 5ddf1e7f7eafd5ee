package mirror

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	fastshot "github.com/opus-domini/fast-shot"
)

// DefaultSavePath is the companion endpoint that accepts file writes.
const DefaultSavePath = "/save-file"

// saveFileRequest is the companion's request body.
type saveFileRequest struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

// saveFileResponse is the companion's reply.
type saveFileResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HTTPSaver posts files to the desktop companion process.
type HTTPSaver struct {
	client   fastshot.ClientHttpMethods
	savePath string
	root     string
}

// NewHTTPSaver builds a saver for the companion at baseURL. root is joined
// in front of every project path to form the absolute filePath the companion
// expects.
func NewHTTPSaver(baseURL, savePath, root string, timeout time.Duration) *HTTPSaver {
	if savePath == "" {
		savePath = DefaultSavePath
	}
	c := fastshot.NewClient(baseURL)
	if timeout > 0 {
		c.Config().SetTimeout(timeout)
	}
	return &HTTPSaver{
		client: c.Header().Add("Content-Type", "application/json").
			Build(),
		savePath: savePath,
		root:     root,
	}
}

// Save sends one file. A transport error and a success:false reply are
// reported the same way.
func (h *HTTPSaver) Save(ctx context.Context, relPath, content string) error {
	req := saveFileRequest{FilePath: h.absolute(relPath), Content: content}

	resp, err := h.client.
		POST(h.savePath).
		Context().Set(ctx).
		Header().Add("Accept", "application/json").
		Body().AsJSON(req).
		Send()
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", relPath, err)
	}
	defer resp.Body().Close()

	var res saveFileResponse
	if err := parseHTTPResponse(*resp, &res); err != nil {
		return fmt.Errorf("failed to save %s: %w", relPath, err)
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "companion reported failure"
		}
		return fmt.Errorf("failed to save %s: %s", relPath, msg)
	}
	return nil
}

func (h *HTTPSaver) absolute(relPath string) string {
	if h.root == "" {
		return relPath
	}
	return path.Join(strings.ReplaceAll(h.root, `\`, "/"), relPath)
}

func parseHTTPResponse[T any](resp fastshot.Response, result *T) error {
	if resp.Status().IsError() {
		msg, err := resp.Body().AsString()
		if err != nil {
			return fmt.Errorf("failed to read error response: %w", err)
		}
		return errors.New(strings.TrimSpace(msg))
	}

	err := resp.Body().AsJSON(result)
	if err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
