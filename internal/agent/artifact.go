// Package agent implements the two external code-generation collaborators:
// Gemini plans, analyzes style, and reviews; Codex implements and refines.
// Both speak through the generation pipeline and persist their outputs as
// artifacts; neither touches the working tree except through the patch gate.
package agent

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names under the artifacts directory.
const (
	RequirementsFile = "requirements_request.md"
	StyleGuideFile   = "style_guide.md"
	PatchFile        = "patch.diff"
	ReviewFile       = "review.md"
	JudgementFile    = "review_judgement.md"
	ReviewFixFile    = "review_fix.diff"
)

// writeArtifact persists one artifact, creating the directory on first use.
func writeArtifact(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return path, nil
}
