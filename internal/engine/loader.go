package engine

import (
	"fmt"

	"github.com/ivlev/apexscroll/internal/config"
	"github.com/ivlev/apexscroll/internal/source"
)

// OpenLoader builds the frame source named by cfg. A PDF source defines the
// frame count by its pages, so cfg.Frames.Count is updated to match.
func OpenLoader(cfg *config.Config) (source.Loader, error) {
	switch cfg.Frames.Source {
	case config.SourcePDF:
		l, err := source.NewPDFLoader(cfg.Frames.PDFPath, cfg.Frames.DPI)
		if err != nil {
			return nil, err
		}
		if l.PageCount() == 0 {
			l.Close()
			return nil, fmt.Errorf("%s has no pages", cfg.Frames.PDFPath)
		}
		cfg.Frames.Count = l.PageCount()
		return l, nil
	case config.SourceFolder, "":
		return source.NewOSDirLoader(".", cfg.Sequence()), nil
	}
	return nil, fmt.Errorf("unknown frame source %q", cfg.Frames.Source)
}
