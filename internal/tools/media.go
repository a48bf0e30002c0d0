package tools

import "context"

// FFmpegTranscoder converts audio and video with ffmpeg.
type FFmpegTranscoder struct {
	runner *Runner
}

func NewFFmpegTranscoder(runner *Runner) *FFmpegTranscoder {
	return &FFmpegTranscoder{runner: runner}
}

func (f *FFmpegTranscoder) Remux(ctx context.Context, in, out string) error {
	return f.runner.Run(ctx, "ffmpeg", "-y", "-i", in, "-c", "copy", "-map", "0", "-hide_banner", "-loglevel", "error", out)
}

func (f *FFmpegTranscoder) Transcode(ctx context.Context, in, out string) error {
	return f.runner.Run(ctx, "ffmpeg", "-y", "-i", in, "-hide_banner", "-loglevel", "error", out)
}
