package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewWriteFileTool returns the write_file tool. All paths are resolved inside
// baseDir; attempts to escape it are rejected before any filesystem access.
func NewWriteFileTool(baseDir string, optFns ...func(t *FunctionTool)) *FunctionTool {
	return NewFunctionTool(
		"write_file",
		"Write content to a file.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filename": map[string]any{
					"type":        "string",
					"description": "The path of the file to write.",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "The content to write into the file.",
				},
			},
			"required": []string{"filename", "content"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			filename, _ := args["filename"].(string)
			content, _ := args["content"].(string)

			path, err := resolveInBase(baseDir, filename)
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("write file: %w", err)
			}
			return fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), filename), nil
		},
		optFns...,
	)
}

// resolveInBase joins a relative filename onto baseDir and rejects anything
// that would resolve outside it.
func resolveInBase(baseDir, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename must not be empty")
	}
	if filepath.IsAbs(filename) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", filename)
	}
	path := filepath.Join(baseDir, filepath.Clean(filename))
	rel, err := filepath.Rel(baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the allowed directory: %s", filename)
	}
	return path, nil
}
