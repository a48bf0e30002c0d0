package tools

import (
	"fmt"

	"morph-bang/internal/config"
	"morph-bang/internal/morph"
)

// Kit is the full set of external collaborators built from configuration.
type Kit struct {
	Toolset  morph.Toolset
	Archiver morph.Archiver
	Identity morph.IdentityResolver
	Runner   *Runner
}

// NewKitFromConfig creates every collaborator based on the tools and classifier config.
func NewKitFromConfig(tcfg config.ToolsConfig, ccfg config.ClassifierConfig, logger morph.Logger) (*Kit, error) {
	timeout, err := tcfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	runner := NewRunner(timeout, tcfg.Binaries)

	sniffer, err := NewSniffer(ccfg.Sniffer, runner)
	if err != nil {
		return nil, fmt.Errorf("creating sniffer: %w", err)
	}
	rasterizer, err := NewRasterizer(tcfg.Rasterizer, runner, tcfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("creating rasterizer: %w", err)
	}

	identity := NewUserResolver()
	return &Kit{
		Toolset: morph.Toolset{
			Sniffer:    sniffer,
			Rasterizer: rasterizer,
			Transcoder: NewFFmpegTranscoder(runner),
			Documents:  NewPandocConverter(runner, tcfg.PDFEngine),
			PDF:        NewPopplerPDF(runner),
			Notifier:   NewDesktopNotifier(runner, identity, logger),
		},
		Archiver: NewTarArchiver(runner),
		Identity: identity,
		Runner:   runner,
	}, nil
}

// Compile-time checks that the collaborators implement their morph interfaces
var (
	_ morph.Sniffer           = (*FileSniffer)(nil)
	_ morph.Sniffer           = (*NativeSniffer)(nil)
	_ morph.Rasterizer        = (*VipsRasterizer)(nil)
	_ morph.Rasterizer        = (*NativeRasterizer)(nil)
	_ morph.Transcoder        = (*FFmpegTranscoder)(nil)
	_ morph.DocumentConverter = (*PandocConverter)(nil)
	_ morph.PDFTool           = (*PopplerPDF)(nil)
	_ morph.Archiver          = (*TarArchiver)(nil)
	_ morph.IdentityResolver  = (*UserResolver)(nil)
	_ morph.Notifier          = (*DesktopNotifier)(nil)
)
