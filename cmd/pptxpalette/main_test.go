package main

import (
	"testing"

	"github.com/jsvensson/pptxpalette/internal/config"
)

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name          string
		verbose       int
		listen        string
		wantVerbosity int
		wantErr       bool
	}{
		{"no flags", 0, "", 1, false},
		{"two v", 2, "", 2, false},
		{"too many v", 7, "", config.MaxLogVerbosity, false},
		{"listen override", 0, "0.0.0.0:9000", 1, false},
		{"bad listen", 0, "nonsense", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flagVerbose, flagListen, flagLogFile = tt.verbose, tt.listen, ""
			t.Cleanup(func() { flagVerbose, flagListen = 0, "" })

			cfg := config.Default()
			err := applyFlags(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if cfg.LogVerbosity != tt.wantVerbosity {
				t.Errorf("LogVerbosity = %d, want %d", cfg.LogVerbosity, tt.wantVerbosity)
			}
			if tt.listen != "" && cfg.Listen != tt.listen {
				t.Errorf("Listen = %q, want %q", cfg.Listen, tt.listen)
			}
		})
	}
}
