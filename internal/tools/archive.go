package tools

import "context"

// TarArchiver packs directories with tar.
type TarArchiver struct {
	runner *Runner
}

func NewTarArchiver(runner *Runner) *TarArchiver {
	return &TarArchiver{runner: runner}
}

func (a *TarArchiver) ArchiveDir(ctx context.Context, parent, name, archive string) error {
	return a.runner.Run(ctx, "tar", "-C", parent, "-cf", archive, name)
}
