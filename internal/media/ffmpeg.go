package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExtractWAV re-encodes the source audio to mono 16kHz WAV, which some
// speech-to-text engines require in place of compressed browser captures.
// It returns the path of the converted file; the caller owns its removal.
func ExtractWAV(ctx context.Context, srcPath, tmpDir string) (string, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	outPath := filepath.Join(tmpDir, base+"_16k.wav")

	// ffmpeg -y -i <src> -ac 1 -ar 16000 -f wav <out>
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", // Overwrite output file if it exists
		"-i", srcPath,
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg failed: %v\nStderr: %s", err, stderr.String())
	}
	return outPath, nil
}
