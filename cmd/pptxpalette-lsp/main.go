package main

import (
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/jsvensson/pptxpalette/internal/config"
	"github.com/jsvensson/pptxpalette/internal/lsp"
)

var version = "dev"

func main() {
	cfg, err := config.Load("", "")
	if err != nil {
		cfg = config.Default()
	}
	// stdout carries the protocol; the simple backend logs to stderr
	// unless a file is configured.
	var path *string
	if cfg.LogFile != "" {
		path = &cfg.LogFile
	}
	commonlog.Configure(cfg.LogVerbosity, path)

	s := lsp.NewServer(version)
	if err := s.Run(); err != nil {
		os.Exit(1)
	}
}
